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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

const (
	// ConfigFileName is the name of config file
	ConfigFileName = "config.json"
)

var (
	configDir = os.Getenv("GOSNT_CONFIG")
)

// LogicalUnit describes one emulated logical unit: which NVMe namespace
// it maps to, how it presents itself over SCSI, and where its Identify
// dumps live. Empty IdentifyCtrl means a synthetic Identify Controller
// buffer is built from Model/Serial/Firmware.
type LogicalUnit struct {
	NSID         uint32 `json:"nsid"`
	PDT          byte   `json:"pdt"`
	EncServ      bool   `json:"enc_serv"`
	IdentifyCtrl string `json:"identify_ctrl,omitempty"`
	IdentifyNs   string `json:"identify_ns,omitempty"`
	Model        string `json:"model,omitempty"`
	Serial       string `json:"serial,omitempty"`
	Firmware     string `json:"firmware,omitempty"`
}

type Config struct {
	LogLevel string        `json:"log_level,omitempty"`
	LUNs     []LogicalUnit `json:"luns"`
}

func init() {
	if configDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			home = "."
		}
		configDir = filepath.Join(home, ".gosnt")
	}
}

// ConfigDir returns the directory the configuration file is stored in
func ConfigDir() string {
	return configDir
}

// Load reads the configuration file in the given directory and returns
// its values. A missing file yields the defaults.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = ConfigDir()
	}

	filename := filepath.Join(configDir, ConfigFileName)
	config := &Config{
		LogLevel: "info",
	}

	if _, err := os.Stat(filename); err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		// if file is there but we can't stat it for any reason other
		// than it doesn't exist then stop
		return config, fmt.Errorf("%s - %v", filename, err)
	}
	file, err := os.Open(filename)
	if err != nil {
		return config, fmt.Errorf("%s - %v", filename, err)
	}
	defer file.Close()
	if err = json.NewDecoder(file).Decode(config); err != nil {
		return config, fmt.Errorf("%s - %v", filename, err)
	}
	return config, nil
}

// Save encodes and writes out the configuration.
func (config *Config) Save(filename string) error {
	if filename == "" {
		return fmt.Errorf("can't save config with empty filename")
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return err
	}
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	enc.SetIndent("", "\t")
	return enc.Encode(config)
}
