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

package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	config, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if config.LogLevel != "info" {
		t.Errorf("Expected default log level, but got %q", config.LogLevel)
	}
	if len(config.LUNs) != 0 {
		t.Errorf("Expected no logical units, but got %d", len(config.LUNs))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	saved := &Config{
		LogLevel: "debug",
		LUNs: []LogicalUnit{
			{NSID: 1, PDT: 0, Model: "TESTMODEL", Serial: "SN12345", Firmware: "0100"},
			{NSID: 2, PDT: 0xd, EncServ: true},
		},
	}
	if err := saved.Save(filepath.Join(dir, ConfigFileName)); err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("Expected log level debug, but got %q", loaded.LogLevel)
	}
	if len(loaded.LUNs) != 2 {
		t.Fatalf("Expected 2 logical units, but got %d", len(loaded.LUNs))
	}
	if loaded.LUNs[0].Model != "TESTMODEL" || loaded.LUNs[1].EncServ != true {
		t.Errorf("Expected the saved units back, but got %+v", loaded.LUNs)
	}
}
