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

package cmd

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/gostor/gosnt/pkg/api"
	"github.com/gostor/gosnt/pkg/util"
)

func newModeSenseCommand() *cobra.Command {
	var lu localUnit
	var page, subpage, pcontrol uint8
	var dbd, llbaa bool
	var allocLen uint16
	var cmd = &cobra.Command{
		Use:   "modesense",
		Short: "Run a MODE SENSE(10) against an emulated logical unit",
		Long:  `Run a MODE SENSE(10) and hex dump the returned mode parameter list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cdb := make([]byte, 10)
			cdb[0] = byte(api.MODE_SENSE_10)
			if dbd {
				cdb[1] |= 0x8
			}
			if llbaa {
				cdb[1] |= 0x10
			}
			cdb[2] = (pcontrol << 6) | (page & 0x3f)
			cdb[3] = subpage
			util.PutUnalignedUint16(cdb[7:9], allocLen)
			return lu.runCDB(cdb, nil, int(allocLen))
		},
	}
	lu.addFlags(cmd)
	flags := cmd.Flags()
	flags.Uint8Var(&page, "page", 0x3f, "Mode page code")
	flags.Uint8Var(&subpage, "subpage", 0, "Mode subpage code")
	flags.Uint8Var(&pcontrol, "pcontrol", 0, "Page control: 0 current, 1 changeable, 2 default")
	flags.BoolVar(&dbd, "dbd", false, "Disable block descriptors")
	flags.BoolVar(&llbaa, "llbaa", false, "Request the long LBA block descriptor")
	flags.Uint16Var(&allocLen, "alloc-len", 252, "CDB allocation length")
	return cmd
}

func newModeSelectCommand() *cobra.Command {
	var lu localUnit
	var data string
	var pf, sp bool
	var cmd = &cobra.Command{
		Use:   "modeselect",
		Short: "Run a MODE SELECT(10) against an emulated logical unit",
		Long:  `Run a MODE SELECT(10) with a hex encoded mode parameter list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataOut, err := hex.DecodeString(data)
			if err != nil {
				return err
			}
			cdb := make([]byte, 10)
			cdb[0] = byte(api.MODE_SELECT_10)
			if pf {
				cdb[1] |= 0x10
			}
			if sp {
				cdb[1] |= 0x1
			}
			util.PutUnalignedUint16(cdb[7:9], uint16(len(dataOut)))
			return lu.runCDB(cdb, dataOut, 0)
		},
	}
	lu.addFlags(cmd)
	flags := cmd.Flags()
	flags.StringVar(&data, "data", "", "Hex encoded mode parameter list")
	flags.BoolVar(&pf, "pf", true, "Set the page format bit")
	flags.BoolVar(&sp, "sp", false, "Set the save pages bit")
	return cmd
}
