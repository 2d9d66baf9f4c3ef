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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gostor/gosnt/pkg/nvme"
	"github.com/gostor/gosnt/pkg/scsi"
	"github.com/gostor/gosnt/pkg/util"
)

// localUnit holds the flags shared by the one-shot translation commands.
// Each command runs a single CDB against an in-process logical unit,
// built either from Identify dump files or from synthetic values.
type localUnit struct {
	idCtrlFile string
	idNsFile   string
	model      string
	serial     string
	firmware   string
	nsid       uint32
	pdt        uint8
	encServ    bool
}

func (l *localUnit) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&l.idCtrlFile, "id-ctrl", "", "File with a raw 4096 byte Identify controller response")
	flags.StringVar(&l.idNsFile, "id-ns", "", "File with a raw 4096 byte Identify namespace response")
	flags.StringVar(&l.model, "model", "Gosnt emulated ctl", "Model number when synthesizing Identify data")
	flags.StringVar(&l.serial, "serial", "GOSNT0001", "Serial number when synthesizing Identify data")
	flags.StringVar(&l.firmware, "firmware", "0100", "Firmware revision when synthesizing Identify data")
	flags.Uint32Var(&l.nsid, "nsid", 1, "Namespace id of the addressed logical unit")
	flags.Uint8Var(&l.pdt, "pdt", 0, "Peripheral device type presented by the translation")
	flags.BoolVar(&l.encServ, "enc-serv", false, "Set the enclosure services bit in standard INQUIRY")
}

func (l *localUnit) build() (*scsi.Device, []byte, []byte, error) {
	var idCtrl, idNs []byte
	var err error
	if l.idCtrlFile != "" {
		if idCtrl, err = os.ReadFile(l.idCtrlFile); err != nil {
			return nil, nil, nil, err
		}
	} else {
		idCtrl = nvme.EncodeIdentifyController(l.model, l.serial, l.firmware, 1, 0)
	}
	if l.idNsFile != "" {
		if idNs, err = os.ReadFile(l.idNsFile); err != nil {
			return nil, nil, nil, err
		}
	} else {
		idNs = nvme.EncodeIdentifyNamespace(nil, nil)
	}
	if len(idCtrl) != nvme.IdentifySize {
		return nil, nil, nil, fmt.Errorf("identify controller data must be %d bytes, got %d", nvme.IdentifySize, len(idCtrl))
	}
	if len(idNs) != nvme.IdentifySize {
		return nil, nil, nil, fmt.Errorf("identify namespace data must be %d bytes, got %d", nvme.IdentifySize, len(idNs))
	}
	dev := scsi.NewDevice(l.pdt, l.encServ)
	ctrl, err := nvme.ParseIdentifyController(idCtrl)
	if err != nil {
		return nil, nil, nil, err
	}
	dev.NVMSR = ctrl.Nvmsr
	dev.OACS = ctrl.Oacs
	dev.ONCS = ctrl.Oncs
	return dev, idCtrl, idNs, nil
}

// runCDB performs one translation and prints the result.
func (l *localUnit) runCDB(cdb, dataOut []byte, allocLn int) error {
	dev, idCtrl, idNs, err := l.build()
	if err != nil {
		return err
	}
	out := make([]byte, allocLn)
	n, err := dev.Respond(cdb, idCtrl, idNs, l.nsid, dataOut, out)
	if n > len(out) {
		n = len(out)
	}
	if err != nil {
		if n > 0 {
			fmt.Printf("%s", util.HexDump(out[:n]))
		}
		return err
	}
	if n > 0 {
		fmt.Printf("%s", util.HexDump(out[:n]))
	} else {
		fmt.Println("no data returned")
	}
	return nil
}
