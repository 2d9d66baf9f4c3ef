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

import (
	"fmt"

	"github.com/gostor/gosnt/pkg/api"
)

var (
	NO_SENSE        byte = 0x00
	RECOVERED_ERROR byte = 0x01
	NOT_READY       byte = 0x02
	MEDIUM_ERROR    byte = 0x03
	HARDWARE_ERROR  byte = 0x04
	ILLEGAL_REQUEST byte = 0x05
	UNIT_ATTENTION  byte = 0x06
	DATA_PROTECT    byte = 0x07
	ABORTED_COMMAND byte = 0x0b
	MISCOMPARE      byte = 0x0e
)

// SCSISubError packs ASC in the high byte and ASCQ in the low byte.
type SCSISubError uint16

var (
	NO_ADDITIONAL_SENSE           SCSISubError = 0x0000
	ASC_PARAMETER_LIST_LENGTH_ERR SCSISubError = 0x1a00
	ASC_INVALID_OP_CODE           SCSISubError = 0x2000
	ASC_LBA_OUT_OF_RANGE          SCSISubError = 0x2100
	ASC_INVALID_FIELD_IN_CDB      SCSISubError = 0x2400
	ASC_LUN_NOT_SUPPORTED         SCSISubError = 0x2500
	ASC_INVALID_FIELD_IN_PARMS    SCSISubError = 0x2600
	ASC_SAVING_PARMS_UNSUP        SCSISubError = 0x3900
	ASC_INTERNAL_TGT_FAILURE      SCSISubError = 0x4400
)

// NoBitPosition in CheckCondition.InBit means the sense-key specific
// field pointer names a whole byte, not a bit within it.
const NoBitPosition byte = 255

// CheckCondition is the error value every translation handler returns on
// failure. It carries everything needed to build CHECK CONDITION sense
// data: the sense key, ASC/ASCQ pair and, for ILLEGAL REQUEST, the
// offending byte (and optionally bit) of the CDB or parameter list.
type CheckCondition struct {
	Status byte
	Key    byte
	ASC    byte
	ASCQ   byte
	InCDB  bool
	InByte uint16
	InBit  byte
}

func (c *CheckCondition) Error() string {
	if c.Key == ILLEGAL_REQUEST && (c.InByte > 0 || c.InBit != NoBitPosition) {
		where := "parameter list"
		if c.InCDB {
			where = "cdb"
		}
		if c.InBit == NoBitPosition {
			return fmt.Sprintf("check condition: key=0x%x asc=0x%x ascq=0x%x, invalid field in %s byte %d",
				c.Key, c.ASC, c.ASCQ, where, c.InByte)
		}
		return fmt.Sprintf("check condition: key=0x%x asc=0x%x ascq=0x%x, invalid field in %s byte %d bit %d",
			c.Key, c.ASC, c.ASCQ, where, c.InByte, c.InBit)
	}
	return fmt.Sprintf("check condition: key=0x%x asc=0x%x ascq=0x%x", c.Key, c.ASC, c.ASCQ)
}

// senseAscAscq builds a CHECK CONDITION with an explicit key/asc/ascq
// triple and no field pointer.
func senseAscAscq(key byte, sub SCSISubError) *CheckCondition {
	return &CheckCondition{
		Status: api.SAM_STAT_CHECK_CONDITION,
		Key:    key,
		ASC:    byte(sub >> 8),
		ASCQ:   byte(sub),
		InByte: 0,
		InBit:  NoBitPosition,
	}
}

// senseInvalidField builds the ILLEGAL REQUEST variants pointing at a CDB
// or parameter list field. inBit of NoBitPosition (or anything above 7)
// means byte-level only.
func senseInvalidField(inCDB bool, inByte int, inBit int) *CheckCondition {
	sub := ASC_INVALID_FIELD_IN_PARMS
	if inCDB {
		sub = ASC_INVALID_FIELD_IN_CDB
	}
	return &CheckCondition{
		Status: api.SAM_STAT_CHECK_CONDITION,
		Key:    ILLEGAL_REQUEST,
		ASC:    byte(sub >> 8),
		ASCQ:   byte(sub),
		InCDB:  inCDB,
		InByte: uint16(inByte),
		InBit:  byte(inBit),
	}
}
