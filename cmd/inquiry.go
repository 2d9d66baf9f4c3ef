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
	"github.com/spf13/cobra"

	"github.com/gostor/gosnt/pkg/api"
	"github.com/gostor/gosnt/pkg/util"
)

func newInquiryCommand() *cobra.Command {
	var lu localUnit
	var vpd uint8
	var evpd bool
	var allocLen uint16
	var cmd = &cobra.Command{
		Use:   "inquiry",
		Short: "Run an INQUIRY against an emulated logical unit",
		Long:  `Run a standard or VPD INQUIRY and hex dump the response`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cdb := make([]byte, 6)
			cdb[0] = byte(api.INQUIRY)
			if evpd || vpd != 0 {
				cdb[1] = 0x1
				cdb[2] = vpd
			}
			util.PutUnalignedUint16(cdb[3:5], allocLen)
			return lu.runCDB(cdb, nil, int(allocLen))
		},
	}
	lu.addFlags(cmd)
	flags := cmd.Flags()
	flags.Uint8Var(&vpd, "vpd", 0, "VPD page code to request")
	flags.BoolVar(&evpd, "evpd", false, "Request the VPD page even when its code is 0")
	flags.Uint16Var(&allocLen, "alloc-len", 252, "CDB allocation length")
	return cmd
}
