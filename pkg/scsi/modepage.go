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

// Mode page emulation for MODE SENSE(10)/MODE SELECT(10)
package scsi

const (
	MPAGE_VENDOR_UA  byte = 0x00
	MPAGE_DISCONNECT byte = 0x02
	MPAGE_CACHING    byte = 0x08
	MPAGE_CONTROL    byte = 0x0a
	MPAGE_IEC        byte = 0x1c
	MPAGE_ALL        byte = 0x3f

	SPAGE_CONTROL_EXT byte = 0x01
	SPAGE_ALL         byte = 0xff
)

// Page control values in MODE SENSE(10) cdb byte 2, bits 7-6.
const (
	pctrlCurrent    = 0
	pctrlChangeable = 1
	pctrlDefault    = 2
	pctrlSaved      = 3
)

// ModePage holds the three variants of one (page, subpage) combination.
// Each variant is the full page image including the 2 byte (4 byte for
// subpage format) header. Only Current may change, and only through
// MODE SELECT(10); Changeable doubles as the write mask served for
// page control 01b.
type ModePage struct {
	Code       byte
	SubCode    byte
	Current    []byte
	Changeable []byte
	Default    []byte
}

// variant returns the page image for the decoded page control field.
// Page control 11b (saved) is rejected before this is reached.
func (p *ModePage) variant(pcontrol int) []byte {
	switch pcontrol {
	case pctrlChangeable:
		return p.Changeable
	case pctrlDefault:
		return p.Default
	default:
		return p.Current
	}
}

// modePageSet is the per-device mode page catalog. The reference design
// kept these as process-wide mutable arrays; owning them per Device
// removes the cross-instance aliasing while keeping the same page
// images.
type modePageSet struct {
	disconnect *ModePage
	caching    *ModePage
	control    *ModePage
	controlExt *ModePage
	iec        *ModePage
	vendorUA   *ModePage
}

func newPage(code, sub byte, cur, chg, def []byte) *ModePage {
	p := &ModePage{
		Code:       code,
		SubCode:    sub,
		Current:    make([]byte, len(cur)),
		Changeable: make([]byte, len(chg)),
		Default:    make([]byte, len(def)),
	}
	copy(p.Current, cur)
	copy(p.Changeable, chg)
	copy(p.Default, def)
	return p
}

func newModePageSet() modePageSet {
	var (
		disconnectPg = []byte{0x2, 0xe, 128, 128, 0, 10, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0}
		chDisconnectPg = []byte{0x2, 0xe, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0}

		cachingPg = []byte{0x8, 18, 0x14, 0, 0xff, 0xff, 0, 0,
			0xff, 0xff, 0xff, 0xff, 0x80, 0x14, 0, 0,
			0, 0, 0, 0}
		chCachingPg = []byte{0x8, 18, 0x4, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0}

		ctrlPg   = []byte{0xa, 10, 2, 0, 0, 0, 0, 0, 0, 0, 0x2, 0x4b}
		chCtrlPg = []byte{0xa, 10, 0x6, 0, 0, 0, 0, 0, 0, 0, 0, 0}

		ctrlExtPg = []byte{0x4a, 0x1, 0, 0x1c, 0, 0, 0x40, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0}
		chCtrlExtPg = []byte{0x4a, 0x1, 0, 0x1c, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0}

		iecPg   = []byte{0x1c, 0xa, 0x08, 0, 0, 0, 0, 0, 0, 0, 0x0, 0x0}
		chIecPg = []byte{0x1c, 0xa, 0x4, 0xf, 0, 0, 0, 0, 0, 0, 0x0, 0x0}

		// 15 bytes, one short of the declared length; kept as the
		// reference emits it
		vsUAPg   = []byte{0x0, 0xe, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
		chVsUAPg = []byte{0x0, 0xe, 0xff, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	)

	return modePageSet{
		disconnect: newPage(MPAGE_DISCONNECT, 0, disconnectPg, chDisconnectPg, disconnectPg),
		caching:    newPage(MPAGE_CACHING, 0, cachingPg, chCachingPg, cachingPg),
		control:    newPage(MPAGE_CONTROL, 0, ctrlPg, chCtrlPg, ctrlPg),
		controlExt: newPage(MPAGE_CONTROL, SPAGE_CONTROL_EXT, ctrlExtPg, chCtrlExtPg, ctrlExtPg),
		iec:        newPage(MPAGE_IEC, 0, iecPg, chIecPg, iecPg),
		vendorUA:   newPage(MPAGE_VENDOR_UA, 0, vsUAPg, chVsUAPg, vsUAPg),
	}
}

// respCaching serves the Caching page with the WCE bit of the current
// (and only the current) variant mirrored from the device state.
func (d *Device) respCaching(p []byte, pcontrol int) int {
	page := d.pages.caching
	n := copy(p, page.variant(pcontrol))
	if pcontrol == pctrlCurrent {
		if d.WCE {
			p[2] |= 0x4
		} else {
			p[2] &^= 0x4
		}
	}
	return n
}

func respPage(p []byte, page *ModePage, pcontrol int) int {
	return copy(p, page.variant(pcontrol))
}
