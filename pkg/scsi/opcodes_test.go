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

// Opcode table and CDB validation test
package scsi

import (
	"testing"

	"github.com/gostor/gosnt/pkg/api"
)

func TestOpcodeTableOrder(t *testing.T) {
	table := OpcodeTranslation()
	if len(table) == 0 {
		t.Fatal("Expected a non-empty opcode table")
	}
	if table[0].Opcode != 0x0 {
		t.Errorf("Expected TEST UNIT READY first, but got 0x%x", table[0].Opcode)
	}
	if last := table[len(table)-1]; last.Opcode != 0xa4 || last.ServiceAction != 0xf {
		t.Errorf("Expected SET TIMESTAMP last, but got 0x%x/0x%x", last.Opcode, last.ServiceAction)
	}
	for i := range table {
		if table[i].LenMask[0] == 0 {
			t.Errorf("Expected a cdb length for entry %d", i)
		}
	}
}

func TestLookupOpcode(t *testing.T) {
	sai := byte(api.SERVICE_ACTION_IN)
	if oip := lookupOpcode(sai, api.SAI_READ_CAPACITY_16); oip == nil || oip.Flags&FF_SA == 0 {
		t.Error("Expected READ CAPACITY(16) with a service action flag")
	}
	if oip := lookupOpcode(sai, 0x11); oip != nil {
		t.Errorf("Expected no entry for 0x9e/0x11, but got %v", oip)
	}
	// first match wins for opcodes with several service actions
	if oip := firstOpcode(0xa3); oip == nil || oip.ServiceAction != 0xc {
		t.Error("Expected the REPORT SUPPORTED OPERATION CODES entry first")
	}
}

func TestValidateCDB(t *testing.T) {
	// well formed INQUIRY
	if err := ValidateCDB([]byte{0x12, 0x1, 0x80, 0, 0xfc, 0}); err != nil {
		t.Errorf("Expected not error, but got %v", err)
	}

	// reserved bit set in byte 1 (mask 0xe3)
	err := ValidateCDB([]byte{0x12, 0x4, 0, 0, 0xfc, 0})
	if cc, ok := err.(*CheckCondition); !ok || cc.InByte != 1 || cc.InBit != 2 {
		t.Errorf("Expected invalid field in cdb byte 1 bit 2, but got %v", err)
	}

	// unknown opcode
	err = ValidateCDB([]byte{0x42, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	if cc, ok := err.(*CheckCondition); !ok || cc.ASC != 0x20 {
		t.Errorf("Expected invalid operation code, but got %v", err)
	}

	// truncated cdb
	err = ValidateCDB([]byte{0x12, 0})
	if cc, ok := err.(*CheckCondition); !ok || cc.InByte != 2 {
		t.Errorf("Expected invalid field at the truncation point, but got %v", err)
	}

	// service action opcodes validate against their own entry
	cdb := make([]byte, 12)
	cdb[0] = 0xa3
	cdb[1] = 0xd
	cdb[2] = 0x80
	cdb[10] = 0xff /* reserved byte */
	err = ValidateCDB(cdb)
	if cc, ok := err.(*CheckCondition); !ok || cc.InByte != 10 || cc.InBit != 7 {
		t.Errorf("Expected invalid field in cdb byte 10 bit 7, but got %v", err)
	}
	cdb[10] = 0
	if err = ValidateCDB(cdb); err != nil {
		t.Errorf("Expected not error, but got %v", err)
	}

	if err = ValidateCDB(nil); err == nil {
		t.Error("Expected error for an empty cdb, but got nothing")
	}
}
