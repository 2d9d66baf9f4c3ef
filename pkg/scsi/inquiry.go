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

// INQUIRY translation: standard response and VPD pages built from NVMe
// Identify data
package scsi

import (
	"fmt"

	"github.com/gostor/gosnt/pkg/api"
	"github.com/gostor/gosnt/pkg/util"
)

// The SCSI vendor identification is always "NVMe" regardless of the
// controller's actual PCI vendor.
const nvmeScsiVendor = "NVMe    "

// VPDNicr is the vendor specific VPD page wrapping the raw NVMe
// Identify Controller response.
const VPDNicr byte = 0xde

const stdInquiryLen = 74

var stdInquiryVersDesc = []uint16{
	0x00C2, /* SAM-6 INCITS 546-2021 */
	0x05C2, /* SPC-5 INCITS 502-2019 */
	0x1f60, /* SNT (no version claimed) */
}

const (
	diskVersDesc uint16 = 0x0602 /* SBC-4 INCITS 506-2021 */
	sesVersDesc  uint16 = 0x0682 /* SES-4 INCITS 555-2020 */
)

// StdInquiry builds the 74 byte standard INQUIRY response from a 4096
// byte Identify Controller buffer.
func StdInquiry(idCtrl []byte, pdt byte, encServ bool) []byte {
	inq := make([]byte, stdInquiryLen)
	/* pdt=0 --> disk; pdt=0xd --> SES; pdt=3 --> processor (safte) */
	inq[0] = 0x1f & pdt /* (PQ=0)<<5 */
	inq[2] = 7          /* version: SPC-5 */
	inq[3] = 2          /* NORMACA=0, HISUP=0, response data format: 2 */
	inq[4] = stdInquiryLen - 5
	if encServ {
		inq[6] = 0x40
	}
	if idCtrl[76]&0x1 != 0 { /* bit 0 of the ctl::CMIC field */
		inq[6] |= 0x10 /* SCSI MultiP */
	}
	inq[7] = 0x2 /* CMDQUE=1 */
	copy(inq[8:16], nvmeScsiVendor)
	copy(inq[16:32], idCtrl[24:40])                                /* Prod <-- MN */
	copy(inq[32:36], util.LastNonBlank(string(idCtrl[64:72]), 4))  /* Rev <-- FR */
	for k, vd := range stdInquiryVersDesc {
		util.PutUnalignedUint16(inq[58+k*2:], vd)
	}
	slot := 58 + 2*len(stdInquiryVersDesc)
	switch pdt {
	case api.PDT_SES:
		util.PutUnalignedUint16(inq[slot:], sesVersDesc)
	case api.PDT_UNKNOWN:
		/* no command-set specific descriptor */
	default:
		util.PutUnalignedUint16(inq[slot:], diskVersDesc)
	}
	return inq
}

// MakeVPDDeviceID writes the VPD page 0x83 (device identification)
// descriptors derived from the Identify Controller buffer and, when
// idNs is non-nil, the namespace NGUID/EUI64 identifiers. tproto below
// zero means the transport protocol is unknown. Returns the number of
// bytes written, which never exceeds len(out); the total page length
// field out[2:4] is left for the caller.
func MakeVPDDeviceID(idCtrl, idNs []byte, pdt byte, tproto int, out []byte) int {
	if idCtrl == nil || len(out) < 56 {
		return 0
	}
	for i := range out {
		out[i] = 0
	}
	out[0] = 0x1f & pdt /* (PQ=0)<<5 | (PDT=pdt); 0 or 0xd (SES) */
	out[1] = 0x83       /* Device Identification VPD page number */
	/* T10 Vendor ID based designator (desig_id=1) for the controller */
	if tproto >= 0 {
		out[4] = byte((0xf&tproto)<<4) | 0x2
		out[5] = 0xa1 /* PIV=1, ASSOC=2 (target device), desig_id=1 */
	} else {
		out[4] = 0x2  /* Protocol id=0, code_set=2 (ASCII) */
		out[5] = 0x21 /* PIV=0, ASSOC=2 (target device), desig_id=1 */
	}
	copy(out[8:16], nvmeScsiVendor)
	copy(out[16:56], idCtrl[24:64]) /* MN */
	k := 40
	for ; k > 0; k-- {
		if out[15+k] == ' ' {
			out[15+k] = '_' /* convert trailing spaces */
		} else {
			break
		}
	}
	if k == 40 {
		k--
	}
	n := 16 + 1 + k
	if len(out) < n+20 {
		return 0
	}
	copy(out[n:n+20], idCtrl[4:24]) /* SN */
	for k = 20; k > 0; k-- {        /* trim trailing spaces */
		if out[n+k-1] == ' ' {
			out[n+k-1] = 0
		} else {
			break
		}
	}
	n += k
	if n%4 != 0 {
		n = (n/4 + 1) * 4 /* round up to next modulo 4 */
	}
	out[7] = byte(n - 8)
	if idNs == nil {
		return n
	}

	// Prefer a non-zero NGUID (16 bytes) over EUI64 (8 bytes); emit a
	// binary EUI designator plus a "eui." SCSI name string for
	// whichever is present.
	haveNguid := !util.AllZeros(idNs[104:120])
	haveEui64 := !util.AllZeros(idNs[120:128])
	if !haveNguid && !haveEui64 {
		return n
	}
	if haveNguid {
		if len(out) < n+20 {
			return n
		}
		out[n+0] = 0x1  /* Protocol id=0, code_set=1 (binary) */
		out[n+1] = 0x02 /* PIV=0, ASSOC=0 (lu), desig_id=2 (eui) */
		out[n+3] = 16
		copy(out[n+4:], idNs[104:120])
		n += 20
		if len(out) < n+40 {
			return n
		}
		out[n+0] = 0x3  /* Protocol id=0, code_set=3 (utf8) */
		out[n+1] = 0x08 /* PIV=0, ASSOC=0 (lu), desig_id=8 (scsi string) */
		out[n+3] = 36
		copy(out[n+4:], "eui.")
		for i := 0; i < 16; i++ {
			copy(out[n+8+2*i:], fmt.Sprintf("%02X", idNs[104+i]))
		}
		return n + 40
	}
	/* 8 byte EUI64 identifier */
	if len(out) < n+12 {
		return n
	}
	out[n+0] = 0x1
	out[n+1] = 0x02
	out[n+3] = 8
	copy(out[n+4:], idNs[120:128])
	n += 12
	if len(out) < n+24 {
		return n
	}
	out[n+0] = 0x3
	out[n+1] = 0x08
	out[n+3] = 20
	copy(out[n+4:], "eui.")
	for i := 0; i < 8; i++ {
		copy(out[n+8+2*i:], fmt.Sprintf("%02X", idNs[120+i]))
	}
	return n + 24
}

var (
	sntVendor  = "GOSTOR  "         /* 8 bytes */
	sntProduct = "SNT in gosnt    " /* 16 bytes */
	sntRev     = "0100"             /* 4 bytes */
)

// Inquiry translates the INQUIRY command: the standard response or one
// of the supported VPD pages, truncated to the smaller of the CDB
// allocation length and len(out). idNs may be nil when no namespace
// identify data is available.
func (d *Device) Inquiry(cdb []byte, idCtrl, idNs []byte, out []byte) (int, error) {
	if cdb[1]&0x2 != 0 { /* reject CmdDt=1 */
		return 0, senseInvalidField(true, 1, 1)
	}
	allocLen := int(util.GetUnalignedUint16(cdb[3:5]))
	evpd := cdb[1]&0x1 != 0
	pgCode := cdb[2]

	if !evpd { /* standard INQUIRY response */
		inq := StdInquiry(idCtrl, d.PDT, d.EncServ)
		n := len(inq)
		if allocLen > 0 {
			if allocLen < n {
				n = allocLen
			}
			if len(out) < n {
				n = len(out)
			}
			copy(out, inq[:n])
		}
		return n, nil
	}

	var (
		din     [256]byte
		n       int
		cpIDCtl bool
	)
	switch pgCode {
	case 0x00: /* Supported VPD pages */
		din[1] = pgCode
		n = 12
		util.PutUnalignedUint16(din[2:], uint16(n-4))
		din[4] = 0x0
		din[5] = 0x80
		din[6] = 0x83
		din[7] = 0x86
		din[8] = 0x87
		din[9] = 0x92
		din[10] = 0xb1
		din[n-1] = VPDNicr /* last VPD number */
	case 0x80: /* Unit serial number */
		din[1] = pgCode
		n = 24
		util.PutUnalignedUint16(din[2:], uint16(n-4))
		copy(din[4:24], idCtrl[4:24]) /* SN */
	case 0x83: /* Device identification */
		n = MakeVPDDeviceID(idCtrl, idNs, d.PDT, -1 /* tproto */, din[:])
		if n > 3 {
			util.PutUnalignedUint16(din[2:], uint16(n-4))
		}
	case 0x86: /* Extended INQUIRY (per SFS SPC Discovery 2016) */
		din[1] = pgCode
		n = 64
		util.PutUnalignedUint16(din[2:], uint16(n-4))
		din[5] = 0x1   /* SIMPSUP=1 */
		din[7] = 0x1   /* LUICLR=1 */
		din[13] = 0x40 /* max supported sense data length */
	case 0x87: /* Mode page policy (per SFS SPC Discovery 2016) */
		din[1] = pgCode
		n = 8
		util.PutUnalignedUint16(din[2:], uint16(n-4))
		din[4] = 0x3f /* all mode pages */
		din[5] = 0xff /*     and their sub-pages */
		din[6] = 0x80 /* MLUS=1, policy=shared */
	case 0x92: /* SCSI Feature set: only SPC Discovery 2016 */
		din[1] = pgCode
		n = 10
		util.PutUnalignedUint16(din[2:], uint16(n-4))
		din[9] = 0x1
	case 0xb1: /* Block Device Characteristics */
		din[1] = pgCode
		n = 64
		util.PutUnalignedUint16(din[2:], uint16(n-4))
		din[3] = 0x3c
		din[5] = 0x01
	case VPDNicr: /* 16 byte header then the NVMe Identify controller response */
		din[1] = pgCode
		util.PutUnalignedUint16(din[2:], uint16((64+4096)-4))
		copy(din[8:16], sntVendor)
		copy(din[16:32], sntProduct)
		copy(din[32:36], sntRev)
		n = 64 + 4096
		cpIDCtl = true
	default: /* point at the page_code field in the cdb */
		return 0, senseInvalidField(true, 2, 7)
	}
	if allocLen > 0 {
		if allocLen < n {
			n = allocLen
		}
		if len(out) < n {
			n = len(out)
		}
		if n > 0 {
			if cpIDCtl {
				head := n
				if head > 64 {
					head = 64
				}
				copy(out, din[:head])
				if n > 64 {
					copy(out[64:n], idCtrl)
				}
			} else {
				copy(out, din[:n])
			}
		}
	}
	return n, nil
}
