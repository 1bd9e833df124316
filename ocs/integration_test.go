// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package ocs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnustavo/ocsclient/ocs"
	"github.com/gnustavo/ocsclient/ocs/ocstest"
	"github.com/gnustavo/ocsclient/soap"
)

func TestClientAgainstFakeServer(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	server := ocstest.NewServer()
	defer server.Close()

	server.EnqueuePage(
		`<COMPUTER><HARDWARE><NAME>pc-01</NAME></HARDWARE><DRIVES><VOLUMN>C</VOLUMN></DRIVES></COMPUTER>`,
		`<COMPUTER><HARDWARE><NAME>pc-02</NAME></HARDWARE></COMPUTER>`,
	)

	client, err := ocs.New(ocs.Config{
		Address:    server.URL(),
		Username:   "operator",
		Password:   "s3cr3t",
		HTTPClient: server.Client(),
	})
	require.NoError(err)

	computers, err := client.GetComputers(context.Background(), ocs.Params{"tag": "sala-3"})
	require.NoError(err)
	require.Len(computers, 2)
	assert.Equal("pc-01", computers[0].Hardware()["NAME"])
	assert.Len(computers[0].Section("DRIVES"), 1)

	requests := server.Requests()
	require.Len(requests, 1)
	assert.Contains(requests[0], "<TAG>sala-3</TAG>")
	assert.Contains(requests[0], "<ENGINE>FIRST</ENGINE>")

	// Second page is unscripted, so the iterator stops after the first one.
	it := client.Computers(nil)
	seen := 0
	for {
		_, err := it.Next(context.Background())
		if errors.Is(err, ocs.ErrEndOfComputers) {
			break
		}
		require.NoError(err)
		seen++
	}
	assert.Zero(seen) // the page queue was consumed by GetComputers above
}

func TestClientFaultAgainstFakeServer(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	server := ocstest.NewServer()
	defer server.Close()
	server.SetFault("Bad&Request")

	client, err := ocs.New(ocs.Config{Address: server.URL(), HTTPClient: server.Client()})
	require.NoError(err)

	_, err = client.GetComputers(context.Background(), nil)
	require.Error(err)

	var fault *soap.Fault
	require.True(errors.As(err, &fault))
	assert.Equal("Bad&Request", fault.Error())
}
