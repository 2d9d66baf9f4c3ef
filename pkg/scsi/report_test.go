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

// REPORT SUPPORTED OPERATION CODES / TMFs and REPORT LUNS test
package scsi

import (
	"testing"

	"github.com/gostor/gosnt/pkg/api"
	"github.com/gostor/gosnt/pkg/util"
)

func reportOpcodesCDB(ropts byte, rctd bool, opcode byte, sa uint16, allocLen uint32) []byte {
	cdb := make([]byte, 12)
	cdb[0] = byte(api.MAINT_PROTOCOL_IN)
	cdb[1] = byte(api.MI_REPORT_OPCODES)
	cdb[2] = ropts & 0x7
	if rctd {
		cdb[2] |= 0x80
	}
	cdb[3] = opcode
	util.PutUnalignedUint16(cdb[4:6], sa)
	util.PutUnalignedUint32(cdb[6:10], allocLen)
	return cdb
}

func TestReportOpcodesAll(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)
	out := make([]byte, 4096)

	n, err := d.ReportOpcodes(reportOpcodesCDB(0, false, 0, 0, 4096), 0, 0, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	want := 4 + 8*len(opcodeTable)
	if n != want {
		t.Errorf("Expected %d bytes, but got %d", want, n)
	}
	if got := util.GetUnalignedUint32(out[0:]); int(got) != want-4 {
		t.Errorf("Expected command data length %d, but got %d", want-4, got)
	}
	if out[4] != 0x0 {
		t.Errorf("Expected TEST UNIT READY first, but got 0x%x", out[4])
	}
	// find the READ CAPACITY(16) entry and check its service action
	found := false
	for off := 4; off < n; off += 8 {
		if out[off] == 0x9e {
			found = true
			if got := util.GetUnalignedUint16(out[off+2:]); got != 0x10 {
				t.Errorf("Expected service action 0x10, but got 0x%x", got)
			}
			if out[off+5]&0x1 == 0 {
				t.Errorf("Expected SERVACTV set, but got 0x%x", out[off+5])
			}
			if got := util.GetUnalignedUint16(out[off+6:]); got != 16 {
				t.Errorf("Expected cdb length 16, but got %d", got)
			}
		}
	}
	if !found {
		t.Error("Expected a READ CAPACITY(16) entry")
	}
}

func TestReportOpcodesAllRCTD(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)
	out := make([]byte, 4096)

	n, err := d.ReportOpcodes(reportOpcodesCDB(0, true, 0, 0, 4096), 0, 0, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	want := 4 + 20*len(opcodeTable)
	if n != want {
		t.Errorf("Expected %d bytes, but got %d", want, n)
	}
	if out[9]&0x2 == 0 {
		t.Errorf("Expected CTDP set in the first entry, but got 0x%x", out[9])
	}
	if got := util.GetUnalignedUint16(out[12:]); got != 0xa {
		t.Errorf("Expected timeout descriptor length 0xa, but got 0x%x", got)
	}
}

func TestReportOpcodesOneCommand(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)
	out := make([]byte, 4096)

	n, err := d.ReportOpcodes(reportOpcodesCDB(1, false, byte(api.INQUIRY), 0, 4096), 0, 0, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 10 {
		t.Errorf("Expected 10 bytes, but got %d", n)
	}
	if out[1] != 3 {
		t.Errorf("Expected support 3, but got %d", out[1])
	}
	if got := util.GetUnalignedUint16(out[2:]); got != 6 {
		t.Errorf("Expected cdb size 6, but got %d", got)
	}
	if out[4] != byte(api.INQUIRY) {
		t.Errorf("Expected the INQUIRY opcode, but got 0x%x", out[4])
	}
	if out[5] != 0xe3 || out[9] != 0xc7 {
		t.Errorf("Expected the INQUIRY usage mask, but got %v", out[5:10])
	}
}

func TestReportOpcodesUnknownCommand(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)
	out := make([]byte, 4096)

	n, err := d.ReportOpcodes(reportOpcodesCDB(1, false, 0xee, 0, 4096), 0, 0, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 4 {
		t.Errorf("Expected 4 bytes, but got %d", n)
	}
	if out[1] != 1 {
		t.Errorf("Expected support 1 (not supported), but got %d", out[1])
	}
}

func TestReportOpcodesOptionMismatch(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)
	out := make([]byte, 4096)

	// ropts 1 may not name a command that requires a service action
	_, err := d.ReportOpcodes(reportOpcodesCDB(1, false, 0x9e, 0x10, 4096), 0, 0, out)
	if cc, ok := err.(*CheckCondition); !ok || cc.InByte != 2 || cc.InBit != 2 {
		t.Errorf("Expected invalid field in cdb byte 2 bit 2, but got %v", err)
	}

	// ropts 2 requires one
	_, err = d.ReportOpcodes(reportOpcodesCDB(2, false, byte(api.INQUIRY), 0, 4096), 0, 0, out)
	if cc, ok := err.(*CheckCondition); !ok || cc.InByte != 4 || cc.InBit != NoBitPosition {
		t.Errorf("Expected invalid field in cdb byte 4, but got %v", err)
	}

	// ropts 2 with opcode plus service action succeeds
	n, err := d.ReportOpcodes(reportOpcodesCDB(2, false, 0xa3, 0xc, 4096), 0, 0, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 16 || out[1] != 3 {
		t.Errorf("Expected 16 byte support 3 response, but got n=%d supp=%d", n, out[1])
	}

	// reserved reporting options value
	_, err = d.ReportOpcodes(reportOpcodesCDB(4, false, 0, 0, 4096), 0, 0, out)
	if cc, ok := err.(*CheckCondition); !ok || cc.InByte != 2 || cc.InBit != 2 {
		t.Errorf("Expected invalid field in cdb byte 2 bit 2, but got %v", err)
	}
}

func TestReportOpcodesAllocLen(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)

	_, err := d.ReportOpcodes(reportOpcodesCDB(0, false, 0, 0, 3), 0, 0, make([]byte, 16))
	if cc, ok := err.(*CheckCondition); !ok || cc.InByte != 6 {
		t.Errorf("Expected invalid field in cdb byte 6, but got %v", err)
	}
	_, err = d.ReportOpcodes(reportOpcodesCDB(0, false, 0, 0, 0x10000), 0, 0, make([]byte, 16))
	if cc, ok := err.(*CheckCondition); !ok || cc.InByte != 6 {
		t.Errorf("Expected invalid field in cdb byte 6, but got %v", err)
	}
}

func TestReportTMFs(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)
	out := make([]byte, 16)
	cdb := make([]byte, 12)
	cdb[0] = byte(api.MAINT_PROTOCOL_IN)
	cdb[1] = byte(api.MI_REPORT_TMFS)
	util.PutUnalignedUint32(cdb[6:10], 16)

	n, err := d.ReportTMFs(cdb, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 4 {
		t.Errorf("Expected 4 bytes, but got %d", n)
	}
	if out[0] != 0xc8 || out[1] != 0x1 {
		t.Errorf("Expected ATS|ATSS|LURS and ITNRS, but got 0x%x 0x%x", out[0], out[1])
	}

	cdb[2] = 0x80 /* REPD */
	n, err = d.ReportTMFs(cdb, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 16 {
		t.Errorf("Expected 16 bytes, but got %d", n)
	}
	if out[3] != 0xc {
		t.Errorf("Expected extended format length 0xc, but got 0x%x", out[3])
	}

	util.PutUnalignedUint32(cdb[6:10], 2)
	if _, err = d.ReportTMFs(cdb, out); err == nil {
		t.Error("Expected error for short allocation length, but got nothing")
	}
}

func reportLunsCDB(selReport byte, allocLen uint32) []byte {
	cdb := make([]byte, 12)
	cdb[0] = byte(api.REPORT_LUNS)
	cdb[2] = selReport
	util.PutUnalignedUint32(cdb[6:10], allocLen)
	return cdb
}

func TestReportLuns(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)
	idCtrl := testIdentifyCtrl() /* NN = 4 */
	out := make([]byte, 256)

	n, err := d.ReportLuns(reportLunsCDB(0, 256), idCtrl, 1, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 8+4*8 {
		t.Errorf("Expected %d bytes, but got %d", 8+4*8, n)
	}
	if got := util.GetUnalignedUint32(out[0:]); got != 32 {
		t.Errorf("Expected lun list length 32, but got %d", got)
	}
	for k := 0; k < 4; k++ {
		if got := util.GetUnalignedUint16(out[8+8*k:]); int(got) != k {
			t.Errorf("Expected lun %d at entry %d, but got %d", k, k, got)
		}
	}
}

func TestReportLunsSelectReport(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)
	idCtrl := testIdentifyCtrl()
	out := make([]byte, 256)

	// well known logical units: none
	n, err := d.ReportLuns(reportLunsCDB(1, 256), idCtrl, 1, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 8 {
		t.Errorf("Expected empty list, but got %d bytes", n)
	}

	// administrative lu: all luns when addressed at nsid 1
	n, err = d.ReportLuns(reportLunsCDB(0x11, 256), idCtrl, 1, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 8+4*8 {
		t.Errorf("Expected %d bytes, but got %d", 8+4*8, n)
	}
	n, err = d.ReportLuns(reportLunsCDB(0x11, 256), idCtrl, 2, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 8 {
		t.Errorf("Expected empty list at nsid 2, but got %d bytes", n)
	}

	_, err = d.ReportLuns(reportLunsCDB(0x3, 256), idCtrl, 1, out)
	if cc, ok := err.(*CheckCondition); !ok || cc.InByte != 2 || cc.InBit != 7 {
		t.Errorf("Expected invalid field in cdb byte 2 bit 7, but got %v", err)
	}
}
