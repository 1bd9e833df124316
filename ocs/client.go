// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

// Package ocs is a client for the OCS Inventory server's SOAP interface.
// It models the single read operation of that interface, get_computers_V1,
// and normalizes its XML payload into generic computer records.
package ocs

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gnustavo/ocsclient/model"
	"github.com/gnustavo/ocsclient/soap"
	"github.com/gnustavo/ocsclient/xmlmap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Errors returned by this package. The transport's own errors
// (soap.ErrTransport, soap.ErrFault) pass through unchanged.
var (
	ErrInvalidAddress = errors.New("ocs: server address is not a valid URL")
	ErrEndOfComputers = errors.New("ocs: no more computers")
)

const (
	// interfacePath identifies the remote interface; it becomes the SOAP
	// namespace URI of every call.
	interfacePath = "Apache/Ocsinventory/Interface"

	// endpointPath is where the OCS server mounts its SOAP listener.
	endpointPath = "ocsinterface"

	getComputersMethod = "get_computers_V1"
)

// Config contains the data needed to reach an OCS server.
type Config struct {
	// Address is the base URL of the OCS server (i.e. https://ocs.example.com).
	Address string

	// Username and Password are embedded as userinfo in the endpoint URL,
	// which is how the OCS SOAP interface authenticates requests.
	// (Optional) Leave both empty for anonymous access.
	Username string
	Password string

	// HTTPClient sends the underlying requests.
	// (Optional) Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger to be used by the client.
	// (Optional) By default a no op logger will be used.
	Logger *zap.Logger

	// Measures instruments queries when provided.
	// (Optional) Nil disables instrumentation.
	Measures *Measures
}

// Client queries an OCS Inventory server.
type Client struct {
	caller    soap.Caller
	logger    *zap.Logger
	getLogger func(context.Context) *zap.Logger
	measures  *Measures
}

// New creates a Client from cfg. Extra transport options, such as
// soap.WithHeader, are handed to the underlying SOAP transport.
// A syntactically invalid Address fails with ErrInvalidAddress.
func New(cfg Config, transportOpts ...soap.Option) (*Client, error) {
	base, err := url.Parse(cfg.Address)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, cfg.Address)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	namespace := base.JoinPath(interfacePath).String()

	endpoint := *base
	if cfg.Username != "" || cfg.Password != "" {
		// A password without a username goes through as-is; the server is
		// the one that decides what that means.
		endpoint.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	endpointURL := endpoint.JoinPath(endpointPath).String()

	opts := append([]soap.Option{
		soap.WithHTTPClient(cfg.HTTPClient),
		soap.WithLogger(cfg.Logger),
	}, transportOpts...)

	return NewWithCaller(soap.New(endpointURL, namespace, opts...), cfg), nil
}

// NewWithCaller creates a Client on top of an already configured transport.
// Only the Logger and Measures fields of cfg are consulted.
func NewWithCaller(caller soap.Caller, cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		caller:    caller,
		logger:    logger,
		getLogger: sallust.Get,
		measures:  cfg.Measures,
	}
}

// GetComputers performs one get_computers_V1 round trip with params merged
// over the query defaults and returns the computers of that page. A server
// with no matching computers yields an empty slice, not an error.
func (c *Client) GetComputers(ctx context.Context, params Params) ([]model.Computer, error) {
	body := requestBody(mergeParams(params))

	parts, err := c.caller.Call(ctx, getComputersMethod, body)
	if err != nil {
		c.count(FailureOutcome)
		l := c.getLogger(ctx)
		if l == nil {
			l = c.logger
		}
		l.Error("OCS get_computers_V1 call failed", zap.Error(err))
		return nil, err
	}

	computers := []model.Computer{}
	for _, part := range parts {
		page, err := parseComputers([]byte(part))
		if err != nil {
			c.count(FailureOutcome)
			return nil, err
		}
		computers = append(computers, page...)
	}
	c.count(SuccessOutcome)
	return computers, nil
}

func (c *Client) count(outcome string) {
	if c.measures == nil || c.measures.Queries == nil {
		return
	}
	c.measures.Queries.With(prometheus.Labels{OutcomeLabel: outcome}).Add(1)
}

// parseComputers turns one response payload part into computer records. The
// part is either a wrapper document holding one fragment per computer, or a
// single bare computer fragment; either way the wrapper is discarded and
// each fragment is decoded independently.
func parseComputers(part []byte) ([]model.Computer, error) {
	if len(bytes.TrimSpace(part)) == 0 {
		return nil, nil
	}
	forced := xmlmap.ForceList(append([]string{"ACCOUNTINFO", "ENTRY"}, model.ListSections...)...)

	root, err := rootName(part)
	if err != nil {
		return nil, err
	}
	if root != "COMPUTERS" {
		m, err := xmlmap.Decode(part, forced)
		if err != nil {
			return nil, err
		}
		return []model.Computer{newComputer(m)}, nil
	}

	fragments, err := xmlmap.DecodeChildren(part, forced)
	if err != nil {
		return nil, err
	}
	computers := make([]model.Computer, 0, len(fragments))
	for _, m := range fragments {
		computers = append(computers, newComputer(m))
	}
	return computers, nil
}

func newComputer(m map[string]interface{}) model.Computer {
	c := model.Computer(m)
	foldAccountInfo(c)
	return c
}

// foldAccountInfo reshapes the decoded ACCOUNTINFO list into a mapping from
// the internal entry ID to that entry's {Name, content} pair sequence.
func foldAccountInfo(c model.Computer) {
	entries, ok := c["ACCOUNTINFO"].([]interface{})
	if !ok {
		return
	}
	folded := map[string]interface{}{}
	for _, e := range entries {
		entry, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := entry["ID"].(string)
		if id == "" {
			continue
		}
		pairs, _ := entry["ENTRY"].([]interface{})
		if pairs == nil {
			pairs = []interface{}{}
		}
		folded[id] = pairs
	}
	c["ACCOUNTINFO"] = folded
}

func rootName(doc []byte) (string, error) {
	d := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := d.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %s", xmlmap.ErrMalformed, err.Error())
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}
