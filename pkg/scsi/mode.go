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

// MODE SENSE(10) and MODE SELECT(10) translation
package scsi

import (
	"github.com/gostor/gosnt/pkg/util"
)

const maxModeSenseSize = 256
const maxModeSelectSize = 512

// ModeSense10 translates MODE SENSE(10). cdb must be at least 10 bytes.
// The returned count is the number of bytes written to out, bounded by
// the allocation length, len(out) and the composed page size.
func (d *Device) ModeSense10(cdb []byte, out []byte) (int, error) {
	var (
		// made-up geometry served in the block descriptor
		numBlocks uint32 = 0x100000
		lbSize    uint32 = 512

		arr [maxModeSenseSize]byte
	)

	dbd := cdb[1]&0x8 != 0 /* disable block descriptors */
	pcontrol := int(cdb[2]&0xc0) >> 6
	pcode := cdb[2] & 0x3f
	subpcode := cdb[3]
	llbaa := cdb[1]&0x10 != 0
	isDisk := diskLike(d.PDT)
	bdLen := 0
	if isDisk && !dbd {
		if llbaa {
			bdLen = 16
		} else {
			bdLen = 8
		}
	}
	allocLen := int(util.GetUnalignedUint16(cdb[7:9]))
	if pcontrol == pctrlSaved {
		return 0, senseAscAscq(ILLEGAL_REQUEST, ASC_SAVING_PARMS_UNSUP)
	}
	// for disks set DPOFUA bit and clear write protect (WP) bit
	if isDisk {
		arr[3] = 0x10
	}
	if bdLen == 16 {
		arr[4] = 0x1 /* LONGLBA */
	}
	arr[7] = byte(bdLen)
	offset := 8

	if bdLen == 8 {
		util.PutUnalignedUint32(arr[offset:], numBlocks)
		util.PutUnalignedUint16(arr[offset+6:], uint16(lbSize))
		offset += bdLen
	} else if bdLen == 16 {
		util.PutUnalignedUint64(arr[offset:], uint64(numBlocks))
		util.PutUnalignedUint32(arr[offset+12:], lbSize)
		offset += bdLen
	}
	badPcode := false

	switch pcode {
	case MPAGE_DISCONNECT: /* all devices */
		if subpcode == 0 {
			offset += respPage(arr[offset:], d.pages.disconnect, pcontrol)
		} else {
			badPcode = true
		}
	case MPAGE_CACHING: /* disk (like) devices only */
		if isDisk && subpcode == 0 {
			offset += d.respCaching(arr[offset:], pcontrol)
		} else {
			badPcode = true
		}
	case MPAGE_CONTROL: /* all devices */
		switch subpcode {
		case 0:
			offset += respPage(arr[offset:], d.pages.control, pcontrol)
		case SPAGE_CONTROL_EXT:
			offset += respPage(arr[offset:], d.pages.controlExt, pcontrol)
		default:
			badPcode = true
		}
	case MPAGE_IEC: /* all devices */
		if subpcode == 0 {
			offset += respPage(arr[offset:], d.pages.iec, pcontrol)
		} else {
			badPcode = true
		}
	case MPAGE_ALL:
		if subpcode == 0 || subpcode == SPAGE_ALL {
			offset += respPage(arr[offset:], d.pages.disconnect, pcontrol)
			if isDisk {
				offset += d.respCaching(arr[offset:], pcontrol)
			}
			offset += respPage(arr[offset:], d.pages.control, pcontrol)
			if subpcode == SPAGE_ALL {
				offset += respPage(arr[offset:], d.pages.controlExt, pcontrol)
			}
			offset += respPage(arr[offset:], d.pages.iec, pcontrol)
			offset += respPage(arr[offset:], d.pages.vendorUA, pcontrol)
		} else {
			return 0, senseInvalidField(true, 3, 255)
		}
	case MPAGE_VENDOR_UA:
		/* all sub-page codes */
		offset += respPage(arr[offset:], d.pages.vendorUA, pcontrol)
	default:
		badPcode = true
	}
	if badPcode {
		return 0, senseInvalidField(true, 2, 5)
	}
	// header length reflects the untruncated composed size
	util.PutUnalignedUint16(arr[0:], uint16(offset-2))
	n := offset
	if allocLen < n {
		n = allocLen
	}
	if len(out) < n {
		n = len(out)
	}
	copy(out, arr[:n])
	return n, nil
}

// ModeSelect10 translates MODE SELECT(10), overwriting the addressed
// stored page's current values in place. Returns the number of
// parameter list bytes consumed.
func (d *Device) ModeSelect10(cdb []byte, data []byte) (int, error) {
	var arr [maxModeSelectSize]byte

	pf := cdb[1]&0x10 != 0
	sp := cdb[1]&0x1 != 0
	paramLen := int(util.GetUnalignedUint16(cdb[7:9]))
	if !pf || sp || paramLen > maxModeSelectSize {
		inByte, inBit := 1, 255
		if sp {
			inBit = 0
		} else if !pf {
			inBit = 4
		} else {
			inByte = 7
		}
		return 0, senseInvalidField(true, inByte, inBit)
	}
	rlen := len(data)
	if paramLen < rlen {
		rlen = paramLen
	}
	copy(arr[:], data[:rlen])
	mdLen := int(util.GetUnalignedUint16(arr[0:2])) + 2
	bdLen := int(util.GetUnalignedUint16(arr[6:8]))
	if mdLen > 2 {
		return 0, senseInvalidField(false, 0, 255)
	}
	off := bdLen + 8
	if off+4 > maxModeSelectSize {
		return 0, senseAscAscq(ILLEGAL_REQUEST, ASC_PARAMETER_LIST_LENGTH_ERR)
	}
	mpage := arr[off] & 0x3f
	if arr[off]&0x80 != 0 { /* PS bit: pages not saveable here */
		return 0, senseInvalidField(false, off, 7)
	}
	spf := arr[off]&0x40 != 0
	var pgLen int
	var subMpage byte
	if spf {
		pgLen = int(util.GetUnalignedUint16(arr[off+2:off+4])) + 4
		subMpage = arr[off+1]
	} else {
		pgLen = int(arr[off+1]) + 2
		subMpage = 0
	}
	if pgLen+off > paramLen {
		return 0, senseAscAscq(ILLEGAL_REQUEST, ASC_PARAMETER_LIST_LENGTH_ERR)
	}
	switch mpage {
	case MPAGE_CACHING:
		page := d.pages.caching
		if subMpage == 0 && page.Current[1] == arr[off+1] {
			copy(page.Current[2:], arr[off+2:off+len(page.Current)])
			d.WCE = page.Current[2]&0x4 != 0
			d.WCEChanged = true
			break
		}
		return 0, senseInvalidField(false, off, 5)
	case MPAGE_CONTROL:
		page := d.pages.control
		if subMpage == 0 && page.Current[1] == arr[off+1] {
			copy(page.Current[2:], arr[off+2:off+len(page.Current)])
			d.DSense = page.Current[2]&0x4 != 0
			break
		}
		return 0, senseInvalidField(false, off, 5)
	case MPAGE_IEC:
		page := d.pages.iec
		if subMpage == 0 && page.Current[1] == arr[off+1] {
			copy(page.Current[2:], arr[off+2:off+len(page.Current)])
			break
		}
		return 0, senseInvalidField(false, off, 5)
	case MPAGE_VENDOR_UA:
		// silently ignored on a length mismatch, matching the
		// reference behavior
		page := d.pages.vendorUA
		if page.Current[1] == arr[off+1] {
			copy(page.Current[2:], arr[off+2:off+len(page.Current)])
			d.EnclosureOverride = page.Current[2]
		}
	default:
		return 0, senseInvalidField(false, off, 5)
	}
	return rlen, nil
}
