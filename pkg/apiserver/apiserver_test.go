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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gostor/gosnt/pkg/api"
	"github.com/gostor/gosnt/pkg/nvme"
	"github.com/gostor/gosnt/pkg/scsi"
)

func testServer(t *testing.T) *Server {
	lus := scsi.NewLUMap()
	idCtrl := nvme.EncodeIdentifyController("TESTMODEL", "SN12345", "FW1.234", 1, 0)
	idNs := nvme.EncodeIdentifyNamespace(nil, nil)
	if _, err := lus.Add(1, api.PDT_DISK, false, idCtrl, idNs); err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	return &Server{cfg: &Config{}, lus: lus}
}

func postTranslate(t *testing.T, m http.Handler, req api.TranslateRequest) (*httptest.ResponseRecorder, api.TranslateResponse) {
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	r := httptest.NewRequest("POST", "/v1.0/translate", bytes.NewReader(body))
	w := httptest.NewRecorder()
	m.ServeHTTP(w, r)
	var resp api.TranslateResponse
	if w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Expected not error, but got %v", err)
		}
	}
	return w, resp
}

func TestTranslateInquiry(t *testing.T) {
	m := testServer(t).createMux()

	w, resp := postTranslate(t, m, api.TranslateRequest{
		NSID:    1,
		CDB:     "12000000fc00",
		AllocLn: 252,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, but got %d", w.Code)
	}
	if resp.Status != api.SAM_STAT_GOOD {
		t.Errorf("Expected GOOD status, but got 0x%x", resp.Status)
	}
	if resp.Length != 74 {
		t.Errorf("Expected a 74 byte response, but got %d", resp.Length)
	}
	din, err := hex.DecodeString(resp.DataIn)
	if err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if len(din) != 74 || string(din[8:16]) != "NVMe    " {
		t.Errorf("Expected a standard INQUIRY response, but got % x", din)
	}
}

func TestTranslateCheckCondition(t *testing.T) {
	m := testServer(t).createMux()

	// INQUIRY with the CmdDt bit set
	w, resp := postTranslate(t, m, api.TranslateRequest{
		NSID:    1,
		CDB:     "120200000000",
		AllocLn: 64,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, but got %d", w.Code)
	}
	if resp.Status != api.SAM_STAT_CHECK_CONDITION {
		t.Errorf("Expected CHECK CONDITION, but got 0x%x", resp.Status)
	}
	if resp.SenseKey != 0x5 || resp.InByte != 1 || resp.InBit != 1 {
		t.Errorf("Expected invalid field in cdb byte 1 bit 1, but got %+v", resp)
	}
}

func TestTranslateErrors(t *testing.T) {
	m := testServer(t).createMux()

	w, _ := postTranslate(t, m, api.TranslateRequest{NSID: 1, CDB: "zz"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a malformed cdb, but got %d", w.Code)
	}

	w, _ = postTranslate(t, m, api.TranslateRequest{NSID: 9, CDB: "12000000fc00"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown nsid, but got %d", w.Code)
	}
}

func TestListLogicalUnits(t *testing.T) {
	m := testServer(t).createMux()

	r := httptest.NewRequest("GET", "/v1.0/luns", nil)
	w := httptest.NewRecorder()
	m.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, but got %d", w.Code)
	}
	var lus []*api.LogicalUnit
	if err := json.NewDecoder(w.Body).Decode(&lus); err != nil {
		t.Fatalf("Expected not error, but got %v", err)
	}
	if len(lus) != 1 || lus[0].NSID != 1 {
		t.Errorf("Expected one logical unit at nsid 1, but got %+v", lus)
	}
}
