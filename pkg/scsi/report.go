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

// REPORT SUPPORTED OPERATION CODES / TASK MANAGEMENT FUNCTIONS and
// REPORT LUNS translation
package scsi

import (
	log "github.com/sirupsen/logrus"

	"github.com/gostor/gosnt/pkg/util"
)

const reportPageSize = 4096

// ReportOpcodes translates REPORT SUPPORTED OPERATION CODES from the
// opcode table. oacs and oncs are the Identify Controller optional
// command support fields, carried for diagnostics.
func (d *Device) ReportOpcodes(cdb []byte, oacs, oncs uint16, out []byte) (int, error) {
	var arr [reportPageSize]byte

	log.Debugf("report opcodes: oacs=0x%x, oncs=0x%x", oacs, oncs)
	rctd := cdb[2]&0x80 != 0 /* report command timeout descriptor */
	reportingOpts := cdb[2] & 0x7
	reqOpcode := cdb[3]
	reqSA := util.GetUnalignedUint16(cdb[4:6])
	allocLen := int(util.GetUnalignedUint32(cdb[6:10]))
	if allocLen < 4 || allocLen > 0xffff {
		return 0, senseInvalidField(true, 6, 255)
	}
	aLen := reportPageSize - 72
	offset := 0

	switch reportingOpts {
	case 0: /* report all */
		count := 0
		bump := 8
		if rctd {
			bump = 20
		}
		offset = 4
		for i := range opcodeTable {
			oip := &opcodeTable[i]
			if offset >= aLen {
				break
			}
			if oip.Flags&F_INV_OP != 0 {
				continue
			}
			count++
			arr[offset] = oip.Opcode
			util.PutUnalignedUint16(arr[offset+2:], oip.ServiceAction)
			if rctd {
				arr[offset+5] |= 0x2
			}
			if oip.Flags&FF_SA != 0 {
				arr[offset+5] |= 0x1
			}
			util.PutUnalignedUint16(arr[offset+6:], uint16(oip.LenMask[0]))
			if rctd {
				util.PutUnalignedUint16(arr[offset+8:], 0xa)
			}
			offset += bump
		}
		util.PutUnalignedUint32(arr[0:], uint32(count*bump))
	case 1, 2, 3: /* report one command */
		oip := lookupOpcode(reqOpcode, reqSA)
		var supp byte
		if oip == nil || oip.Flags&F_INV_OP != 0 {
			supp = 1 /* not supported */
			offset = 4
		} else {
			if reportingOpts == 1 {
				if oip.Flags&FF_SA != 0 {
					return 0, senseInvalidField(true, 2, 2)
				}
				reqSA = 0
			} else if reportingOpts == 2 && oip.Flags&FF_SA == 0 {
				return 0, senseInvalidField(true, 4, 255)
			}
			if oip.Flags&FF_SA == 0 && reqOpcode == oip.Opcode {
				supp = 3
			} else if oip.Flags&FF_SA == 0 {
				supp = 1
			} else if reqSA != oip.ServiceAction {
				supp = 1
			} else {
				supp = 3
			}
			if supp == 3 {
				u := int(oip.LenMask[0])
				util.PutUnalignedUint16(arr[2:], uint16(u))
				arr[4] = oip.Opcode
				for k := 1; k < u; k++ {
					if k < 16 {
						arr[4+k] = oip.LenMask[k]
					} else {
						arr[4+k] = 0xff
					}
				}
				offset = 4 + u
			} else {
				offset = 4
			}
		}
		arr[1] = supp
		if rctd {
			arr[1] |= 0x80
			util.PutUnalignedUint16(arr[offset:], 0xa)
			offset += 12
		}
	default:
		return 0, senseInvalidField(true, 2, 2)
	}
	if offset > aLen {
		offset = aLen
	}
	n := offset
	if allocLen < n {
		n = allocLen
	}
	if len(out) < n {
		n = len(out)
	}
	if n > 0 {
		copy(out, arr[:n])
	}
	return n, nil
}

// ReportTMFs translates REPORT SUPPORTED TASK MANAGEMENT FUNCTIONS: a
// fixed bitmap of ABORT TASK, ABORT TASK SET, LOGICAL UNIT RESET and
// I_T NEXUS RESET, extended when the REPD bit is set.
func (d *Device) ReportTMFs(cdb []byte, out []byte) (int, error) {
	var arr [16]byte

	repd := cdb[2]&0x80 != 0
	allocLen := int(util.GetUnalignedUint32(cdb[6:10]))
	if allocLen < 4 {
		return 0, senseInvalidField(true, 6, 255)
	}
	arr[0] = 0xc8 /* ATS | ATSS | LURS */
	arr[1] = 0x1  /* ITNRS */
	n := 4
	if repd {
		arr[3] = 0xc
		n = 16
	}
	if allocLen < n {
		n = allocLen
	}
	if len(out) < n {
		n = len(out)
	}
	if n > 0 {
		copy(out, arr[:n])
	}
	return n, nil
}

// ReportLuns translates REPORT LUNS: one flat-addressed 8 byte entry
// per namespace up to the controller's number of namespaces (Identify
// Controller NN field). The reference returned a zero byte count with a
// populated error record for an unrecognized select report; here the
// error return carries the sense and the count is zero, aligning it
// with the other handlers.
func (d *Device) ReportLuns(cdb []byte, idCtrl []byte, nsid uint32, out []byte) (int, error) {
	var rl [256]byte

	selReport := cdb[2]
	allocLen := int(util.GetUnalignedUint32(cdb[6:10]))
	maxNsid := util.GetUnalignedLEUint32(idCtrl[516:520])
	log.Debugf("report luns: select_report=0x%x max_nsid=%d", selReport, maxNsid)
	var num uint32
	switch selReport {
	case 0, 2:
		num = maxNsid
	case 1, 0x10, 0x12:
		num = 0
	case 0x11:
		if nsid == 1 {
			num = maxNsid
		}
	default:
		log.Debugf("report luns: bad select_report value: 0x%x", selReport)
		return 0, senseInvalidField(true, 2, 7)
	}
	for k, off := uint32(0), 8; k < num; k, off = k+1, off+8 {
		if off+8 <= len(rl) {
			util.PutUnalignedUint16(rl[off:], uint16(k))
		}
	}
	n := int(num) * 8
	util.PutUnalignedUint32(rl[0:], uint32(n))
	n += 8
	if allocLen > 0 {
		if allocLen < n {
			n = allocLen
		}
		if len(out) < n {
			n = len(out)
		}
		if n > len(rl) {
			n = len(rl)
		}
		if n > 0 {
			copy(out, rl[:n])
		}
	}
	return n, nil
}
