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

package apiserver

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/net/context"

	"github.com/gostor/gosnt/pkg/api"
	"github.com/gostor/gosnt/pkg/scsi"
)

type route struct {
	method  string
	path    string
	handler apiFunc
}

func (s *Server) routes() []route {
	return []route{
		{"GET", "/luns", s.listLogicalUnits},
		{"POST", "/translate", s.translate},
	}
}

func (s *Server) listLogicalUnits(ctx context.Context, w http.ResponseWriter, r *http.Request, vars map[string]string) error {
	return writeJSON(w, http.StatusOK, s.lus.List())
}

func (s *Server) translate(ctx context.Context, w http.ResponseWriter, r *http.Request, vars map[string]string) error {
	var req api.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return badRequestError{fmt.Errorf("invalid request body: %v", err)}
	}
	cdb, err := hex.DecodeString(req.CDB)
	if err != nil {
		return badRequestError{fmt.Errorf("invalid cdb: %v", err)}
	}
	if len(cdb) == 0 {
		return badRequestError{fmt.Errorf("empty cdb")}
	}
	var dataOut []byte
	if req.DataOut != "" {
		if dataOut, err = hex.DecodeString(req.DataOut); err != nil {
			return badRequestError{fmt.Errorf("invalid data_out: %v", err)}
		}
	}

	lu, ok := s.lus.Get(req.NSID)
	if !ok {
		return notFoundError{fmt.Errorf("no logical unit for nsid %d", req.NSID)}
	}

	allocLn := req.AllocLn
	if allocLn <= 0 || allocLn > 65536 {
		allocLn = 65536
	}
	out := make([]byte, allocLn)
	n, err := lu.Perform(cdb, dataOut, out)
	resp := api.TranslateResponse{
		Length: n,
		Status: api.SAM_STAT_GOOD,
	}
	if n > 0 {
		resp.DataIn = hex.EncodeToString(out[:n])
	}
	if err != nil {
		cc, ok := err.(*scsi.CheckCondition)
		if !ok {
			return err
		}
		resp.Status = cc.Status
		resp.SenseKey = cc.Key
		resp.ASC = cc.ASC
		resp.ASCQ = cc.ASCQ
		resp.InByte = cc.InByte
		resp.InBit = cc.InBit
	}
	return writeJSON(w, http.StatusOK, resp)
}
