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

// Translation dispatch test
package scsi

import (
	"testing"

	"github.com/gostor/gosnt/pkg/api"
	"github.com/gostor/gosnt/pkg/util"
)

func TestRespondDispatch(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)
	idCtrl := testIdentifyCtrl()
	out := make([]byte, 4096)

	n, err := d.Respond(inquiryCDB(false, 0, 252), idCtrl, nil, 1, nil, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 74 {
		t.Errorf("Expected a 74 byte INQUIRY response, but got %d", n)
	}

	n, err = d.Respond(modeSenseCDB(0, MPAGE_ALL, 0, false, 252), idCtrl, nil, 1, nil, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 91 {
		t.Errorf("Expected a 91 byte MODE SENSE response, but got %d", n)
	}

	data := make([]byte, 8+12)
	data[8] = MPAGE_CONTROL
	data[9] = 10
	data[10] = 0x6
	n, err = d.Respond(modeSelectCDB(uint16(len(data))), idCtrl, nil, 1, data, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != len(data) {
		t.Errorf("Expected %d bytes consumed, but got %d", len(data), n)
	}
	if !d.DSense {
		t.Error("Expected MODE SELECT to reach the device state")
	}

	n, err = d.Respond(reportLunsCDB(0, 256), idCtrl, nil, 1, nil, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 8+4*8 {
		t.Errorf("Expected a 40 byte REPORT LUNS response, but got %d", n)
	}

	n, err = d.Respond(reportOpcodesCDB(0, false, 0, 0, 4096), idCtrl, nil, 1, nil, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 4+8*len(opcodeTable) {
		t.Errorf("Expected the full opcode report, but got %d bytes", n)
	}

	cdb := make([]byte, 12)
	cdb[0] = byte(api.MAINT_PROTOCOL_IN)
	cdb[1] = byte(api.MI_REPORT_TMFS)
	util.PutUnalignedUint32(cdb[6:10], 16)
	n, err = d.Respond(cdb, idCtrl, nil, 1, nil, out)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if n != 4 {
		t.Errorf("Expected a 4 byte TMF report, but got %d", n)
	}
}

func TestRespondUnhandled(t *testing.T) {
	d := NewDevice(api.PDT_DISK, false)
	idCtrl := testIdentifyCtrl()
	out := make([]byte, 256)

	// READ(10) is in the opcode table but not handled here
	cdb := make([]byte, 10)
	cdb[0] = byte(api.READ_10)
	cdb[8] = 1
	_, err := d.Respond(cdb, idCtrl, nil, 1, nil, out)
	cc, ok := err.(*CheckCondition)
	if !ok {
		t.Fatalf("Expected CheckCondition, but got %v", err)
	}
	if cc.ASC != 0x20 {
		t.Errorf("Expected invalid operation code, but got %v", cc)
	}

	// REPORT TIMESTAMP validates but is not translated
	cdb = make([]byte, 12)
	cdb[0] = byte(api.MAINT_PROTOCOL_IN)
	cdb[1] = byte(api.MI_REPORT_TIMESTAMP)
	util.PutUnalignedUint32(cdb[6:10], 16)
	_, err = d.Respond(cdb, idCtrl, nil, 1, nil, out)
	if cc, ok = err.(*CheckCondition); !ok || cc.InByte != 1 || cc.InBit != 4 {
		t.Errorf("Expected invalid field in cdb byte 1 bit 4, but got %v", err)
	}

	// malformed cdb rejected before dispatch
	_, err = d.Respond([]byte{0x12, 0x4, 0, 0, 0xfc, 0}, idCtrl, nil, 1, nil, out)
	if cc, ok = err.(*CheckCondition); !ok || cc.InByte != 1 || cc.InBit != 2 {
		t.Errorf("Expected invalid field in cdb byte 1 bit 2, but got %v", err)
	}
}
