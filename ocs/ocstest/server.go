// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

// Package ocstest provides an in-process fake OCS SOAP server for tests and
// examples. The fake serves scripted pages of computer fragments, can be
// told to fault, and records every decoded <REQUEST> body it receives.
package ocstest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"
)

const respHeader = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<SOAP-ENV:Body>`

const respTrailer = `</SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

// Server is a fake OCS SOAP endpoint.
type Server struct {
	server *httptest.Server

	mu       sync.Mutex
	pages    [][]string
	fault    string
	requests []string
}

// NewServer starts the fake. Callers own it and must Close it when done.
func NewServer() *Server {
	s := &Server{}
	r := mux.NewRouter()
	r.HandleFunc("/ocsinterface", s.handle).Methods(http.MethodPost)
	s.server = httptest.NewServer(r)
	return s
}

// URL returns the base address to hand to the client under test.
func (s *Server) URL() string { return s.server.URL }

// Client returns an HTTP client wired to the fake.
func (s *Server) Client() *http.Client { return s.server.Client() }

// Close shuts the fake down.
func (s *Server) Close() { s.server.Close() }

// EnqueuePage scripts the computer fragments of the next unanswered call.
// Once the script runs out, further calls get an empty page.
func (s *Server) EnqueuePage(fragments ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, fragments)
}

// SetFault makes every following call answer with a SOAP fault carrying
// reason. The reason is entity-escaped on the wire, as a real server would.
func (s *Server) SetFault(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = reason
}

// Requests returns the decoded <REQUEST> bodies received so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.requests...)
}

func (s *Server) handle(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	request, err := extractArg(body)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, request)
	fault := s.fault
	var page []string
	if len(s.pages) > 0 {
		page = s.pages[0]
		s.pages = s.pages[1:]
	}
	s.mu.Unlock()

	rw.Header().Set("Content-Type", `text/xml; charset="utf-8"`)

	if fault != "" {
		rw.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(rw, respHeader)
		fmt.Fprint(rw, `<SOAP-ENV:Fault><faultcode>SOAP-ENV:Server</faultcode><faultstring>`)
		_ = xml.EscapeText(rw, []byte(fault))
		fmt.Fprint(rw, `</faultstring></SOAP-ENV:Fault>`)
		fmt.Fprint(rw, respTrailer)
		return
	}

	var doc bytes.Buffer
	doc.WriteString("<COMPUTERS>")
	for _, f := range page {
		doc.WriteString(f)
	}
	doc.WriteString("</COMPUTERS>")

	fmt.Fprint(rw, respHeader)
	fmt.Fprint(rw, `<m:get_computers_V1Response xmlns:m="urn:ocstest">`)
	fmt.Fprint(rw, `<item xsi:type="xsd:string">`)
	_ = xml.EscapeText(rw, doc.Bytes())
	fmt.Fprint(rw, `</item></m:get_computers_V1Response>`)
	fmt.Fprint(rw, respTrailer)
}

// extractArg pulls the string argument out of the call envelope: the
// character data of the <request> element.
func extractArg(envelope []byte) (string, error) {
	d := xml.NewDecoder(bytes.NewReader(envelope))
	inRequest := false
	var text bytes.Buffer
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return "", fmt.Errorf("no request argument in envelope")
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "request" {
				inRequest = true
			}
		case xml.CharData:
			if inRequest {
				text.Write(t)
			}
		case xml.EndElement:
			if inRequest && t.Name.Local == "request" {
				return text.String(), nil
			}
		}
	}
}
