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
	"github.com/gostor/gosnt/pkg/api"
)

// Device is the per-logical-unit translation state. Each emulated
// logical unit owns one Device, including its own set of mode pages, so
// two units never alias each other's MODE SELECT results. A Device is
// not safe for concurrent use; callers serialize per logical unit.
type Device struct {
	WCE               bool // Write Cache Enable (WCE) setting
	WCEChanged        bool // WCE setting has been changed
	DSense            bool // descriptor format sense data selected
	EnclosureOverride byte // ENC_OV in sdparm
	PDT               byte // 5 bit value in INQUIRY response
	EncServ           bool // single bit in INQUIRY response
	NVMSR             byte // NVMSR field of Identify controller (byte 253)
	OACS              uint16
	ONCS              uint16

	pages modePageSet
}

// NewDevice builds the translation state for one logical unit, seeding
// the write-cache, descriptor-sense and enclosure-override settings
// from the Caching, Control and vendor Unit Attention mode page
// defaults.
func NewDevice(pdt byte, encServ bool) *Device {
	d := &Device{
		PDT:     pdt,
		EncServ: encServ,
		pages:   newModePageSet(),
	}
	d.WCE = d.pages.caching.Current[2]&0x4 != 0
	d.DSense = d.pages.control.Current[2]&0x4 != 0
	d.EnclosureOverride = d.pages.vendorUA.Current[2]
	return d
}

// diskLike reports whether pdt decays to the direct-access class
// (disk, RBC, zoned block).
func diskLike(pdt byte) bool {
	switch pdt {
	case api.PDT_DISK, api.PDT_RBC, api.PDT_ZBC:
		return true
	}
	return false
}
