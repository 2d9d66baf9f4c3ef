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

package scsi

// OpcodeInfo flags
const (
	F_SA_LOW      = 0x80  /* service action in cdb byte 1, bits 4 to 0 */
	F_SA_HIGH     = 0x100 /* as used by variable length cdbs */
	FF_SA         = F_SA_HIGH | F_SA_LOW
	F_INV_OP      = 0x200
	F_NEED_TS_SUP = 0x100000 /* needs NVMe Timestamp support */
)

// OpcodeInfo describes one SCSI command the translation supports: which
// command-set document it belongs to (DocPDT -1 for SPC, 0 for SBC), its
// opcode and service action, and the CDB length plus per-byte usage mask
// served by REPORT SUPPORTED OPERATION CODES. LenMask[0] is the CDB
// length, LenMask[1:] the masks for cdb[1] onward.
type OpcodeInfo struct {
	DocPDT        int8
	Opcode        byte
	ServiceAction uint16
	Flags         uint32
	LenMask       [16]byte
}

// opcodeTable lists the SCSI commands translated to NVMe. Order matters:
// a lookup on opcode alone resolves to the first matching entry, which is
// the disambiguation rule for opcodes with several service actions.
var opcodeTable = []OpcodeInfo{
	{-1 /* SPC */, 0x0, 0, 0, [16]byte{6, /* TEST UNIT READY */
		0, 0, 0, 0, 0xc7, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	{-1, 0x3, 0, 0, [16]byte{6, /* REQUEST SENSE */
		0xe1, 0, 0, 0xff, 0xc7, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	{-1, 0x12, 0, 0, [16]byte{6, /* INQUIRY */
		0xe3, 0xff, 0xff, 0xff, 0xc7, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	{0, 0x1b, 0, 0, [16]byte{6, /* START STOP UNIT */
		0x1, 0, 0xf, 0xf7, 0xc7, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	{-1, 0x1c, 0, 0, [16]byte{6, /* RECEIVE DIAGNOSTIC RESULTS */
		0x1, 0xff, 0xff, 0xff, 0xc7, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	{-1, 0x1d, 0, 0, [16]byte{6, /* SEND DIAGNOSTIC */
		0xf7, 0x0, 0xff, 0xff, 0xc7, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	{0, 0x25, 0, 0, [16]byte{10, /* READ CAPACITY(10) */
		0x1, 0xff, 0xff, 0xff, 0xff, 0, 0, 0x1, 0xc7, 0, 0, 0, 0, 0, 0}},
	{0, 0x28, 0, 0, [16]byte{10, /* READ(10) */
		0xff, 0xff, 0xff, 0xff, 0xff, 0x3f, 0xff, 0xff, 0xc7, 0, 0, 0, 0,
		0, 0}},
	{0, 0x2a, 0, 0, [16]byte{10, /* WRITE(10) */
		0xfb, 0xff, 0xff, 0xff, 0xff, 0x3f, 0xff, 0xff, 0xc7, 0, 0, 0, 0,
		0, 0}},
	{0, 0x2f, 0, 0, [16]byte{10, /* VERIFY(10) */
		0xf6, 0xff, 0xff, 0xff, 0xff, 0x3f, 0xff, 0xff, 0xc7, 0, 0, 0, 0,
		0, 0}},
	{0, 0x35, 0, 0, [16]byte{10, /* SYNCHRONIZE CACHE(10) */
		0x7, 0xff, 0xff, 0xff, 0xff, 0x3f, 0xff, 0xff, 0xc7, 0, 0, 0, 0,
		0, 0}},
	{0, 0x41, 0, 0, [16]byte{10, /* WRITE SAME(10) */
		0xff, 0xff, 0xff, 0xff, 0xff, 0x3f, 0xff, 0xff, 0xc7, 0, 0, 0, 0,
		0, 0}},
	{-1, 0x55, 0, 0, [16]byte{10, /* MODE SELECT(10) */
		0x13, 0x0, 0x0, 0x0, 0x0, 0x0, 0xff, 0xff, 0xc7, 0, 0, 0, 0, 0, 0}},
	{-1, 0x5a, 0, 0, [16]byte{10, /* MODE SENSE(10) */
		0x18, 0xff, 0xff, 0x0, 0x0, 0x0, 0xff, 0xff, 0xc7, 0, 0, 0, 0, 0, 0}},
	{0, 0x88, 0, 0, [16]byte{16, /* READ(16) */
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xc7}},
	{0, 0x8a, 0, 0, [16]byte{16, /* WRITE(16) */
		0xfb, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xc7}},
	{0, 0x8f, 0, 0, [16]byte{16, /* VERIFY(16) */
		0xf6, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0x3f, 0xc7}},
	{0, 0x91, 0, 0, [16]byte{16, /* SYNCHRONIZE CACHE(16) */
		0x7, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0x3f, 0xc7}},
	{0, 0x93, 0, 0, [16]byte{16, /* WRITE SAME(16) */
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0x3f, 0xc7}},
	{0, 0x9e, 0x10, F_SA_LOW, [16]byte{16, /* READ CAPACITY(16) [service action in] */
		0x10, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0x1, 0xc7}},
	{-1, 0xa0, 0, 0, [16]byte{12, /* REPORT LUNS */
		0xe3, 0xff, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0, 0xc7, 0, 0, 0, 0}},
	{-1, 0xa3, 0xc, F_SA_LOW, [16]byte{12, /* REPORT SUPPORTED OPERATION CODES */
		0xc, 0x87, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0, 0xc7, 0, 0, 0,
		0}},
	{-1, 0xa3, 0xd, F_SA_LOW, [16]byte{12, /* REPORT SUPPORTED TASK MAN. FUNCTIONS */
		0xd, 0x80, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0, 0xc7, 0, 0, 0, 0}},
	{-1, 0xa3, 0xf, F_SA_LOW | F_NEED_TS_SUP, [16]byte{12, /* REPORT TIMESTAMP */
		0xf, 0x0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0, 0xc7, 0, 0, 0, 0}},
	{-1, 0xa4, 0xf, F_SA_LOW | F_NEED_TS_SUP, [16]byte{12, /* SET TIMESTAMP */
		0xf, 0x0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0, 0xc7, 0, 0, 0, 0}},
}

// OpcodeTranslation returns the ordered table of SCSI commands the
// translation supports.
func OpcodeTranslation() []OpcodeInfo {
	return opcodeTable
}

// lookupOpcode finds the table entry matching opcode and service action
// exactly, walking in table order.
func lookupOpcode(opcode byte, sa uint16) *OpcodeInfo {
	for i := range opcodeTable {
		oip := &opcodeTable[i]
		if oip.Opcode == opcode && oip.ServiceAction == sa {
			return oip
		}
	}
	return nil
}

// firstOpcode finds the first table entry for opcode regardless of
// service action.
func firstOpcode(opcode byte) *OpcodeInfo {
	for i := range opcodeTable {
		if opcodeTable[i].Opcode == opcode {
			return &opcodeTable[i]
		}
	}
	return nil
}

// ValidateCDB checks cdb against the usage mask of its table entry: any
// bit set in the CDB but clear in the mask is a reserved or unsupported
// field. On violation the returned error points at the offending byte
// and bit.
func ValidateCDB(cdb []byte) error {
	if len(cdb) == 0 {
		return senseAscAscq(ILLEGAL_REQUEST, ASC_INVALID_OP_CODE)
	}
	oip := firstOpcode(cdb[0])
	if oip != nil && oip.Flags&FF_SA != 0 && len(cdb) > 1 {
		sa := uint16(cdb[1] & 0x1f)
		if byEntry := lookupOpcode(cdb[0], sa); byEntry != nil {
			oip = byEntry
		}
	}
	if oip == nil || oip.Flags&F_INV_OP != 0 {
		return senseAscAscq(ILLEGAL_REQUEST, ASC_INVALID_OP_CODE)
	}
	if len(cdb) < int(oip.LenMask[0]) {
		return senseInvalidField(true, len(cdb), 255)
	}
	for k := 1; k < int(oip.LenMask[0]) && k < 16; k++ {
		bad := cdb[k] &^ oip.LenMask[k]
		if bad == 0 {
			continue
		}
		for bit := 7; bit >= 0; bit-- {
			if bad&(1<<uint(bit)) != 0 {
				return senseInvalidField(true, k, bit)
			}
		}
	}
	return nil
}
