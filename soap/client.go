// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

// Package soap implements the small slice of SOAP 1.1 that the OCS
// inventory interface speaks: a remote procedure call carrying a single
// string argument, answered by either a list of string parts or a fault.
package soap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Errors returned by this package. Wrapped errors should be checked with
// errors.Is; faults additionally match errors.As against *Fault.
var (
	ErrTransport = errors.New("soap: transport failure")
	ErrFault     = errors.New("soap: server returned a fault")
	ErrBadStatus = errors.New("soap: non-success response status")
)

var (
	errNewRequestFailure  = errors.New("soap: failed creating an HTTP request")
	errReadingBodyFailure = errors.New("soap: failed reading the response body")
)

const errWrappedFmt = "%w: %s"

// Caller is the remote procedure call primitive the inventory client is
// built on: an operation name plus a single string argument, answered by the
// ordered string parts of the response payload.
type Caller interface {
	Call(ctx context.Context, method, arg string) ([]string, error)
}

// Client is an HTTP-backed Caller.
type Client struct {
	endpoint  string
	namespace string
	client    *http.Client
	headers   http.Header
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the http.Client used to send requests. Timeouts
// and retries, if any, belong to this client; the transport adds none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLogger sets the logger used for request debug logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHeader adds a header to every outgoing request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// New creates a Client posting to endpoint. The namespace URI identifies the
// remote interface and becomes the namespace of the call element as well as
// the SOAPAction prefix.
func New(endpoint, namespace string, opts ...Option) *Client {
	c := &Client{
		endpoint:  endpoint,
		namespace: namespace,
		client:    http.DefaultClient,
		headers:   http.Header{},
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Call performs one blocking round trip. A SOAP fault is returned as a
// *Fault error with its message already entity-decoded; network failures
// wrap ErrTransport.
func (c *Client) Call(ctx context.Context, method, arg string) ([]string, error) {
	body := encodeEnvelope(c.namespace, method, arg)

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf(errWrappedFmt, errNewRequestFailure, err.Error())
	}
	r.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	r.Header.Set("SOAPAction", fmt.Sprintf("%q", c.namespace+"#"+method))
	for key, values := range c.headers {
		for _, v := range values {
			r.Header.Add(key, v)
		}
	}

	c.logger.Debug("sending SOAP request",
		zap.String("endpoint", c.endpoint), zap.String("method", method))

	resp, err := c.client.Do(r)
	if err != nil {
		return nil, fmt.Errorf(errWrappedFmt, ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(errWrappedFmt, errReadingBodyFailure, err.Error())
	}

	parts, fault, err := decodeEnvelope(respBody)
	if fault != nil {
		// Faults typically ride on a 500, so they win over the status check.
		c.logger.Debug("SOAP fault", zap.String("method", method), zap.String("fault", fault.Reason))
		return nil, fault
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: received status %v", ErrBadStatus, resp.StatusCode)
	}
	if err != nil {
		return nil, err
	}
	return parts, nil
}
