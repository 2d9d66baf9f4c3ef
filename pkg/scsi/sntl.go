/*
Copyright 2023 The GoStor Authors All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// SCSI to NVMe translation dispatch
package scsi

import (
	log "github.com/sirupsen/logrus"

	"github.com/gostor/gosnt/pkg/api"
)

// Respond runs one decoded CDB through the translation: the CDB is
// validated against the opcode table, the matching handler reads the
// Identify buffers and the device's mode page state, and the response
// is written to out (truncated, never overflowed). dataOut carries the
// parameter list for commands with a data-out phase (MODE SELECT).
// idNs may be nil. On failure the returned error is a *CheckCondition.
func (d *Device) Respond(cdb []byte, idCtrl, idNs []byte, nsid uint32, dataOut, out []byte) (int, error) {
	if err := ValidateCDB(cdb); err != nil {
		return 0, err
	}
	opcode := api.SCSICommandType(cdb[0])
	log.Debugf("translating opcode 0x%x", cdb[0])
	switch opcode {
	case api.INQUIRY:
		return d.Inquiry(cdb, idCtrl, idNs, out)
	case api.MODE_SENSE_10:
		return d.ModeSense10(cdb, out)
	case api.MODE_SELECT_10:
		return d.ModeSelect10(cdb, dataOut)
	case api.REPORT_LUNS:
		return d.ReportLuns(cdb, idCtrl, nsid, out)
	case api.MAINT_PROTOCOL_IN:
		sa := uint16(cdb[1] & 0x1f)
		switch sa {
		case api.MI_REPORT_OPCODES:
			return d.ReportOpcodes(cdb, d.OACS, d.ONCS, out)
		case api.MI_REPORT_TMFS:
			return d.ReportTMFs(cdb, out)
		}
		return 0, senseInvalidField(true, 1, 4)
	}
	// in the table (e.g. READ/WRITE) but not handled by the
	// translation core itself
	return 0, senseAscAscq(ILLEGAL_REQUEST, ASC_INVALID_OP_CODE)
}
