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

func newReportOpcodesCommand() *cobra.Command {
	var lu localUnit
	var ropts, opcode uint8
	var sa uint16
	var rctd bool
	var allocLen uint32
	var cmd = &cobra.Command{
		Use:   "opcodes",
		Short: "Run a REPORT SUPPORTED OPERATION CODES",
		Long:  `Report all supported operation codes or query one command`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cdb := make([]byte, 12)
			cdb[0] = byte(api.MAINT_PROTOCOL_IN)
			cdb[1] = byte(api.MI_REPORT_OPCODES)
			cdb[2] = ropts & 0x7
			if rctd {
				cdb[2] |= 0x80
			}
			cdb[3] = opcode
			util.PutUnalignedUint16(cdb[4:6], sa)
			util.PutUnalignedUint32(cdb[6:10], allocLen)
			return lu.runCDB(cdb, nil, int(allocLen))
		},
	}
	lu.addFlags(cmd)
	flags := cmd.Flags()
	flags.Uint8Var(&ropts, "ropts", 0, "Reporting options: 0 all, 1-3 one command")
	flags.Uint8Var(&opcode, "opcode", 0, "Operation code to query")
	flags.Uint16Var(&sa, "sa", 0, "Service action to query")
	flags.BoolVar(&rctd, "rctd", false, "Request command timeout descriptors")
	flags.Uint32Var(&allocLen, "alloc-len", 4096, "CDB allocation length")
	return cmd
}

func newReportTMFsCommand() *cobra.Command {
	var lu localUnit
	var repd bool
	var allocLen uint32
	var cmd = &cobra.Command{
		Use:   "tmfs",
		Short: "Run a REPORT SUPPORTED TASK MANAGEMENT FUNCTIONS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cdb := make([]byte, 12)
			cdb[0] = byte(api.MAINT_PROTOCOL_IN)
			cdb[1] = byte(api.MI_REPORT_TMFS)
			if repd {
				cdb[2] |= 0x80
			}
			util.PutUnalignedUint32(cdb[6:10], allocLen)
			return lu.runCDB(cdb, nil, int(allocLen))
		},
	}
	lu.addFlags(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&repd, "repd", false, "Request the extended parameter format")
	flags.Uint32Var(&allocLen, "alloc-len", 16, "CDB allocation length")
	return cmd
}

func newReportLunsCommand() *cobra.Command {
	var lu localUnit
	var selectReport uint8
	var allocLen uint32
	var cmd = &cobra.Command{
		Use:   "reportluns",
		Short: "Run a REPORT LUNS against an emulated logical unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cdb := make([]byte, 12)
			cdb[0] = byte(api.REPORT_LUNS)
			cdb[2] = selectReport
			util.PutUnalignedUint32(cdb[6:10], allocLen)
			return lu.runCDB(cdb, nil, int(allocLen))
		},
	}
	lu.addFlags(cmd)
	flags := cmd.Flags()
	flags.Uint8Var(&selectReport, "select-report", 0, "Select report field")
	flags.Uint32Var(&allocLen, "alloc-len", 256, "CDB allocation length")
	return cmd
}
