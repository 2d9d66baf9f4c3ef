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
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gostor/gosnt/pkg/apiserver"
	"github.com/gostor/gosnt/pkg/config"
	"github.com/gostor/gosnt/pkg/scsi"
)

func newDaemonCommand() *cobra.Command {
	var host string
	var logLevel string
	var cmd = &cobra.Command{
		Use:   "daemon",
		Short: "Setup a daemon",
		Long:  `Setup the Gosnt's daemon`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createDaemon(host, logLevel)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&host, "host", "tcp://127.0.0.1:23457", "Address the API server listens on, PROTO://ADDR")
	flags.StringVar(&logLevel, "log", "info", "Log level of the translation daemon")
	return cmd
}

func createDaemon(host, level string) error {
	switch level {
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "panic", "fatal", "error":
		log.SetLevel(log.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level: %v", level)
	}
	config, err := config.Load(config.ConfigDir())
	if err != nil {
		log.Error(err)
		return err
	}

	lus, err := scsi.InitLUMap(config)
	if err != nil {
		log.Error(err)
		return err
	}

	serverConfig := &apiserver.Config{
		Addrs: []apiserver.Addr{},
	}

	hosts := []string{}
	if host != "" {
		hosts = append(hosts, host)
	}
	for _, protoAddr := range hosts {
		protoAddrParts := strings.SplitN(protoAddr, "://", 2)
		if len(protoAddrParts) != 2 {
			err = fmt.Errorf("bad format %s, expected PROTO://ADDR", protoAddr)
			log.Error(err)
			return err
		}
		serverConfig.Addrs = append(serverConfig.Addrs, apiserver.Addr{Proto: protoAddrParts[0], Addr: protoAddrParts[1]})
	}

	s, err := apiserver.New(serverConfig, lus)
	if err != nil {
		log.Error(err)
		return err
	}
	// The serve API routine never exits unless an error occurs
	// We need to start it as a goroutine and wait on it so
	// daemon doesn't exit
	serveAPIWait := make(chan error)
	go func() {
		serveAPIWait <- s.ServeAPI()
	}()

	stopAll := make(chan os.Signal, 1)
	signal.Notify(stopAll, syscall.SIGINT, syscall.SIGTERM)

	select {
	case errAPI := <-serveAPIWait:
		if errAPI != nil {
			log.Warnf("Shutting down due to ServeAPI error: %v", errAPI)
		}
	case <-stopAll:
		break
	}
	s.Close()
	return nil
}
