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

// Package apiserver exposes the translation over a small REST API.
package apiserver

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"

	systemdActivation "github.com/coreos/go-systemd/activation"
	"github.com/docker/go-connections/sockets"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/gostor/gosnt/pkg/scsi"
)

// versionMatcher defines a variable matcher to be parsed by the router
// when a request is about to be served.
const versionMatcher = "/v{version:[0-9.]+}"

// Config provides the configuration for the API server
type Config struct {
	Logging   bool
	Version   string
	TLSConfig *tls.Config
	Addrs     []Addr
}

// Addr contains string representation of address and its protocol (tcp, unix, fd).
type Addr struct {
	Proto string
	Addr  string
}

// Server contains instance details for the server
type Server struct {
	cfg     *Config
	lus     *scsi.LUMap
	servers []*HTTPServer
}

// New returns a new instance of the server based on the specified
// configuration, serving the given logical unit map. It allocates the
// listeners that ServeAPI will use.
func New(cfg *Config, lus *scsi.LUMap) (*Server, error) {
	s := &Server{
		cfg: cfg,
		lus: lus,
	}
	for _, addr := range cfg.Addrs {
		srv, err := s.newServer(addr.Proto, addr.Addr)
		if err != nil {
			return nil, err
		}
		log.Infof("Server created for HTTP on %s (%s)", addr.Proto, addr.Addr)
		s.servers = append(s.servers, srv...)
	}
	return s, nil
}

// Close closes servers and thus stop receiving requests
func (s *Server) Close() {
	for _, srv := range s.servers {
		if err := srv.Close(); err != nil {
			log.Error(err)
		}
	}
}

// ServeAPI loops through all initialized servers and spawns a goroutine
// with Serve for each.
func (s *Server) ServeAPI() error {
	m := s.createMux()
	var chErrors = make(chan error, len(s.servers))
	for _, srv := range s.servers {
		srv.srv.Handler = m
		go func(srv *HTTPServer) {
			var err error
			log.Infof("API listen on %s", srv.l.Addr())
			if err = srv.Serve(); err != nil && strings.Contains(err.Error(), "use of closed network connection") {
				err = nil
			}
			chErrors <- err
		}(srv)
	}

	for i := 0; i < len(s.servers); i++ {
		err := <-chErrors
		if err != nil {
			return err
		}
	}

	return nil
}

// HTTPServer contains an instance of http server and the listener.
type HTTPServer struct {
	srv *http.Server
	l   net.Listener
}

// Serve starts listening for inbound requests.
func (s *HTTPServer) Serve() error {
	return s.srv.Serve(s.l)
}

// Close closes the HTTPServer from listening for the inbound requests.
func (s *HTTPServer) Close() error {
	return s.l.Close()
}

func (s *Server) newServer(proto, addr string) ([]*HTTPServer, error) {
	var (
		err error
		ls  []net.Listener
	)
	switch proto {
	case "fd":
		ls, err = listenFD(addr)
		if err != nil {
			return nil, err
		}
	case "tcp":
		l, err := sockets.NewTCPSocket(addr, s.cfg.TLSConfig)
		if err != nil {
			return nil, err
		}
		ls = append(ls, l)
	case "unix":
		l, err := sockets.NewUnixSocket(addr, 0)
		if err != nil {
			return nil, err
		}
		ls = append(ls, l)
	default:
		return nil, fmt.Errorf("invalid protocol format: %q", proto)
	}
	var res []*HTTPServer
	for _, l := range ls {
		res = append(res, &HTTPServer{
			srv: &http.Server{Addr: addr},
			l:   l,
		})
	}
	return res, nil
}

// listenFD returns the sockets handed over by systemd socket
// activation.
func listenFD(addr string) ([]net.Listener, error) {
	listeners, err := systemdActivation.Listeners()
	if err != nil {
		return nil, err
	}
	if len(listeners) == 0 {
		return nil, fmt.Errorf("no sockets found via socket activation: make sure the service was started by systemd")
	}
	return listeners, nil
}

// apiFunc is the signature the route handlers share.
type apiFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request, vars map[string]string) error

func (s *Server) makeHTTPHandler(handler apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Logging {
			log.Infof("Calling %s %s", r.Method, r.URL.Path)
		}
		ctx := context.Background()
		vars := mux.Vars(r)
		if vars == nil {
			vars = make(map[string]string)
		}
		if err := handler(ctx, w, r, vars); err != nil {
			log.Errorf("Handler for %s %s returned error: %v", r.Method, r.URL.Path, err)
			writeError(w, err)
		}
	}
}

// createMux initializes the main router the server uses.
func (s *Server) createMux() *mux.Router {
	m := mux.NewRouter()
	log.Infof("Registering routers")
	for _, r := range s.routes() {
		f := s.makeHTTPHandler(r.handler)
		m.Path(versionMatcher + r.path).Methods(r.method).Handler(f)
		m.Path(r.path).Methods(r.method).Handler(f)
	}
	return m
}
