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
	"os"
	"sort"
	"sync"

	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/gostor/gosnt/pkg/api"
	"github.com/gostor/gosnt/pkg/config"
	"github.com/gostor/gosnt/pkg/nvme"
)

// LogicalUnitEntry binds one logical unit's translation state to its
// Identify buffers. The mutex serializes commands against the unit's
// mode page state; the translation itself is single threaded per unit.
type LogicalUnitEntry struct {
	mu     sync.Mutex
	LU     *api.LogicalUnit
	Dev    *Device
	IDCtrl []byte
	IDNs   []byte
}

// Perform runs one CDB against the logical unit under its lock.
func (e *LogicalUnitEntry) Perform(cdb, dataOut, out []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Dev.Respond(cdb, e.IDCtrl, e.IDNs, e.LU.NSID, dataOut, out)
}

// LUMap is the registry of emulated logical units keyed by namespace
// id.
type LUMap struct {
	mu    sync.RWMutex
	units map[uint32]*LogicalUnitEntry
}

func NewLUMap() *LUMap {
	return &LUMap{units: make(map[uint32]*LogicalUnitEntry)}
}

// Add registers one logical unit. idNs may be nil.
func (m *LUMap) Add(nsid uint32, pdt byte, encServ bool, idCtrl, idNs []byte) (*LogicalUnitEntry, error) {
	if len(idCtrl) != nvme.IdentifySize {
		return nil, fmt.Errorf("nsid %d: identify controller buffer is %d bytes, want %d",
			nsid, len(idCtrl), nvme.IdentifySize)
	}
	id, err := nvme.ParseIdentifyController(idCtrl)
	if err != nil {
		return nil, err
	}
	entry := &LogicalUnitEntry{
		LU: &api.LogicalUnit{
			ID:      uuid.NewV4(),
			NSID:    nsid,
			PDT:     pdt,
			EncServ: encServ,
			Model:   id.ModelName(),
			Serial:  id.SerialName(),
		},
		Dev:    NewDevice(pdt, encServ),
		IDCtrl: idCtrl,
		IDNs:   idNs,
	}
	entry.Dev.OACS = id.Oacs
	entry.Dev.ONCS = id.Oncs
	entry.Dev.NVMSR = id.Nvmsr

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.units[nsid]; ok {
		return nil, fmt.Errorf("nsid %d already mapped", nsid)
	}
	m.units[nsid] = entry
	return entry, nil
}

func (m *LUMap) Get(nsid uint32) (*LogicalUnitEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.units[nsid]
	return e, ok
}

// List returns the registered logical units ordered by namespace id.
func (m *LUMap) List() []*api.LogicalUnit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*api.LogicalUnit, 0, len(m.units))
	for _, e := range m.units {
		out = append(out, e.LU)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NSID < out[j].NSID })
	return out
}

// InitLUMap builds the registry from the loaded configuration, reading
// Identify dump files where configured and synthesizing Identify
// Controller data otherwise.
func InitLUMap(cfg *config.Config) (*LUMap, error) {
	m := NewLUMap()
	for _, lu := range cfg.LUNs {
		var (
			idCtrl []byte
			idNs   []byte
			err    error
		)
		if lu.IdentifyCtrl != "" {
			idCtrl, err = os.ReadFile(lu.IdentifyCtrl)
			if err != nil {
				return nil, err
			}
		} else {
			idCtrl = nvme.EncodeIdentifyController(lu.Model, lu.Serial, lu.Firmware, 1, 0)
		}
		if lu.IdentifyNs != "" {
			idNs, err = os.ReadFile(lu.IdentifyNs)
			if err != nil {
				return nil, err
			}
		}
		entry, err := m.Add(lu.NSID, lu.PDT, lu.EncServ, idCtrl, idNs)
		if err != nil {
			return nil, err
		}
		log.Infof("mapped nsid %d as %s (pdt 0x%x)", lu.NSID, entry.LU.ID, lu.PDT)
	}
	return m, nil
}
