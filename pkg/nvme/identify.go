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

// Package nvme provides typed views of the NVMe Admin Identify data the
// translation consumes. The translation core itself reads the raw 4096
// byte buffers; these types exist for the command line tools, the API
// server and for building synthetic Identify data.
package nvme

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// IdentifySize is the length of an Identify Controller or Identify
// Namespace response.
const IdentifySize = 4096

// Byte offsets of the Identify Controller fields consumed by the
// translation.
const (
	SerialNumberOffset = 4
	ModelNumberOffset  = 24
	FirmwareRevOffset  = 64
	CmicOffset         = 76
	NvmsrOffset        = 253
	OacsOffset         = 256
	NnOffset           = 516
	OncsOffset         = 520
)

// Identify Namespace identifier offsets.
const (
	NguidOffset = 104
	Eui64Offset = 120
)

type identPowerState struct {
	MaxPower        uint16 // Centiwatts
	Rsvd2           uint8
	Flags           uint8
	EntryLat        uint32 // Microseconds
	ExitLat         uint32 // Microseconds
	ReadTput        uint8
	ReadLat         uint8
	WriteTput       uint8
	WriteLat        uint8
	IdlePower       uint16
	IdleScale       uint8
	Rsvd19          uint8
	ActivePower     uint16
	ActiveWorkScale uint8
	Rsvd23          [9]byte
}

// IdentifyController mirrors the NVMe Identify Controller data
// structure. All multi-byte fields are little-endian on the wire.
type IdentifyController struct {
	VendorID     uint16   // PCI Vendor ID
	Ssvid        uint16   // PCI Subsystem Vendor ID
	SerialNumber [20]byte // Serial Number
	ModelNumber  [40]byte // Model Number
	Firmware     [8]byte  // Firmware Revision
	Rab          uint8    // Recommended Arbitration Burst
	IEEE         [3]byte  // IEEE OUI Identifier
	Cmic         uint8    // Controller Multi-Path I/O and Namespace Sharing Capabilities
	Mdts         uint8    // Maximum Data Transfer Size
	Cntlid       uint16   // Controller ID
	Ver          uint32   // Version
	Rtd3r        uint32   // RTD3 Resume Latency
	Rtd3e        uint32   // RTD3 Entry Latency
	Oaes         uint32   // Optional Asynchronous Events Supported
	Rsvd96       [157]byte
	Nvmsr        uint8     // NVM Subsystem Report
	Rsvd254      [2]byte   // ...
	Oacs         uint16    // Optional Admin Command Support
	Acl          uint8     // Abort Command Limit
	Aerl         uint8     // Asynchronous Event Request Limit
	Frmw         uint8     // Firmware Updates
	Lpa          uint8     // Log Page Attributes
	Elpe         uint8     // Error Log Page Entries
	Npss         uint8     // Number of Power States Support
	Avscc        uint8     // Admin Vendor Specific Command Configuration
	Apsta        uint8     // Autonomous Power State Transition Attributes
	Wctemp       uint16    // Warning Composite Temperature Threshold
	Cctemp       uint16    // Critical Composite Temperature Threshold
	Mtfa         uint16    // Maximum Time for Firmware Activation
	Hmpre        uint32    // Host Memory Buffer Preferred Size
	Hmmin        uint32    // Host Memory Buffer Minimum Size
	Tnvmcap      [16]byte  // Total NVM Capacity
	Unvmcap      [16]byte  // Unallocated NVM Capacity
	Rpmbs        uint32    // Replay Protected Memory Block Support
	Rsvd316      [196]byte // ...
	Sqes         uint8     // Submission Queue Entry Size
	Cqes         uint8     // Completion Queue Entry Size
	Rsvd514      [2]byte
	Nn           uint32 // Number of Namespaces
	Oncs         uint16 // Optional NVM Command Support
	Fuses        uint16 // Fused Operation Support
	Fna          uint8  // Format NVM Attributes
	Vwc          uint8  // Volatile Write Cache
	Awun         uint16 // Atomic Write Unit Normal
	Awupf        uint16 // Atomic Write Unit Power Fail
	Nvscc        uint8  // NVM Vendor Specific Command Configuration
	Rsvd531      uint8
	Acwu         uint16 // Atomic Compare & Write Unit
	Rsvd534      [2]byte
	Sgls         uint32 // SGL Support
	Rsvd540      [1508]byte
	Psd          [32]identPowerState // Power State Descriptors
	Vs           [1024]byte          // Vendor Specific
} // 4096 bytes

type lbaFormat struct {
	Ms uint16
	Ds uint8
	Rp uint8
}

// IdentifyNamespace mirrors the NVMe Identify Namespace data structure.
type IdentifyNamespace struct {
	Nsze    uint64
	Ncap    uint64
	Nuse    uint64
	Nsfeat  uint8
	Nlbaf   uint8
	Flbas   uint8
	Mc      uint8
	Dpc     uint8
	Dps     uint8
	Nmic    uint8
	Rescap  uint8
	Fpi     uint8
	Rsvd33  uint8
	Nawun   uint16
	Nawupf  uint16
	Nacwu   uint16
	Nabsn   uint16
	Nabo    uint16
	Nabspf  uint16
	Rsvd46  [2]byte
	Nvmcap  [16]byte
	Rsvd64  [40]byte
	Nguid   [16]byte
	EUI64   [8]byte
	Lbaf    [16]lbaFormat
	Rsvd192 [192]byte
	Vs      [3712]byte
} // 4096 bytes

// ParseIdentifyController decodes a raw 4096 byte Identify Controller
// response.
func ParseIdentifyController(buf []byte) (*IdentifyController, error) {
	if len(buf) != IdentifySize {
		return nil, fmt.Errorf("identify controller buffer is %d bytes, want %d", len(buf), IdentifySize)
	}
	var id IdentifyController
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseIdentifyNamespace decodes a raw 4096 byte Identify Namespace
// response.
func ParseIdentifyNamespace(buf []byte) (*IdentifyNamespace, error) {
	if len(buf) != IdentifySize {
		return nil, fmt.Errorf("identify namespace buffer is %d bytes, want %d", len(buf), IdentifySize)
	}
	var id IdentifyNamespace
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (id *IdentifyController) ModelName() string {
	return strings.TrimRight(string(id.ModelNumber[:]), " ")
}

func (id *IdentifyController) SerialName() string {
	return strings.TrimRight(string(id.SerialNumber[:]), " ")
}

func (id *IdentifyController) FirmwareRev() string {
	return strings.TrimRight(string(id.Firmware[:]), " ")
}

// MaxNamespaces returns the NN field, which bounds the namespace IDs a
// REPORT LUNS translation enumerates.
func (id *IdentifyController) MaxNamespaces() uint32 {
	return id.Nn
}

func padCopy(dst []byte, s string) {
	for i := range dst {
		dst[i] = ' '
	}
	copy(dst, s)
}

// EncodeIdentifyController builds a synthetic raw Identify Controller
// buffer. The string fields are space padded the way real controllers
// report them. Used by the command line tools when no dump file is
// given, and by tests.
func EncodeIdentifyController(model, serial, firmware string, nn uint32, cmic byte) []byte {
	buf := make([]byte, IdentifySize)
	padCopy(buf[SerialNumberOffset:SerialNumberOffset+20], serial)
	padCopy(buf[ModelNumberOffset:ModelNumberOffset+40], model)
	padCopy(buf[FirmwareRevOffset:FirmwareRevOffset+8], firmware)
	buf[CmicOffset] = cmic
	binary.LittleEndian.PutUint32(buf[NnOffset:], nn)
	return buf
}

// EncodeIdentifyNamespace builds a synthetic raw Identify Namespace
// buffer carrying the given NGUID and EUI64 (either may be nil).
func EncodeIdentifyNamespace(nguid, eui64 []byte) []byte {
	buf := make([]byte, IdentifySize)
	copy(buf[NguidOffset:NguidOffset+16], nguid)
	copy(buf[Eui64Offset:Eui64Offset+8], eui64)
	return buf
}
