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

	"github.com/spf13/cobra"

	"github.com/gostor/gosnt/pkg/version"
)

func newVersionCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gosnt",
		Long:  `All software has versions. This is Gosnt 's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Gosnt %s -- HEAD\n", version.VERSION)
		},
	}
	return cmd
}
