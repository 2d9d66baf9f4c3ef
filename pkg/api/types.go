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
package api

import (
	uuid "github.com/satori/go.uuid"
)

type SCSICommandType byte

var (
	TEST_UNIT_READY    SCSICommandType = 0x00
	REQUEST_SENSE      SCSICommandType = 0x03
	INQUIRY            SCSICommandType = 0x12
	START_STOP         SCSICommandType = 0x1b
	RECEIVE_DIAGNOSTIC SCSICommandType = 0x1c
	SEND_DIAGNOSTIC    SCSICommandType = 0x1d
	READ_CAPACITY      SCSICommandType = 0x25
	READ_10            SCSICommandType = 0x28
	WRITE_10           SCSICommandType = 0x2a
	VERIFY_10          SCSICommandType = 0x2f
	SYNCHRONIZE_CACHE  SCSICommandType = 0x35
	WRITE_SAME         SCSICommandType = 0x41
	MODE_SELECT_10     SCSICommandType = 0x55
	MODE_SENSE_10      SCSICommandType = 0x5a
	READ_16            SCSICommandType = 0x88
	WRITE_16           SCSICommandType = 0x8a
	VERIFY_16          SCSICommandType = 0x8f
	SYNC_CACHE_16      SCSICommandType = 0x91
	WRITE_SAME_16      SCSICommandType = 0x93
	SERVICE_ACTION_IN  SCSICommandType = 0x9e
	REPORT_LUNS        SCSICommandType = 0xa0
	MAINT_PROTOCOL_IN  SCSICommandType = 0xa3
	SET_TIMESTAMP      SCSICommandType = 0xa4
)

/* MAINTENANCE IN service actions */
var (
	SAI_READ_CAPACITY_16 uint16 = 0x10
	MI_REPORT_OPCODES    uint16 = 0x0c
	MI_REPORT_TMFS       uint16 = 0x0d
	MI_REPORT_TIMESTAMP  uint16 = 0x0f
)

var (
	SAM_STAT_GOOD            byte = 0x00
	SAM_STAT_CHECK_CONDITION byte = 0x02
	SAM_STAT_CONDITION_MET   byte = 0x04
	SAM_STAT_BUSY            byte = 0x08
	SAM_STAT_TASK_SET_FULL   byte = 0x28
	SAM_STAT_TASK_ABORTED    byte = 0x40
)

/* SCSI Peripheral Device Types of interest to the translation */
var (
	PDT_DISK      byte = 0x00
	PDT_PROCESSOR byte = 0x03
	PDT_RBC       byte = 0x0e
	PDT_SES       byte = 0x0d
	PDT_ZBC       byte = 0x14
	PDT_UNKNOWN   byte = 0x1f
)

// LogicalUnit describes one emulated SCSI logical unit backed by an NVMe
// namespace. The translation state itself lives in pkg/scsi.
type LogicalUnit struct {
	ID      uuid.UUID `json:"id"`
	NSID    uint32    `json:"nsid"`
	PDT     byte      `json:"pdt"`
	EncServ bool      `json:"enc_serv"`
	Model   string    `json:"model"`
	Serial  string    `json:"serial"`
}

// TranslateRequest is the API server's wire form of one SCSI command:
// a hex encoded CDB plus, for commands with a data-out phase, the hex
// encoded parameter data.
type TranslateRequest struct {
	NSID    uint32 `json:"nsid"`
	CDB     string `json:"cdb"`
	DataOut string `json:"data_out,omitempty"`
	AllocLn int    `json:"alloc_len,omitempty"`
}

// TranslateResponse carries either response data or sense information.
type TranslateResponse struct {
	Length   int    `json:"length"`
	DataIn   string `json:"data_in,omitempty"`
	Status   byte   `json:"status"`
	SenseKey byte   `json:"sense_key,omitempty"`
	ASC      byte   `json:"asc,omitempty"`
	ASCQ     byte   `json:"ascq,omitempty"`
	InByte   uint16 `json:"in_byte,omitempty"`
	InBit    byte   `json:"in_bit,omitempty"`
}
