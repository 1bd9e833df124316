// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package soap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/">
<SOAP-ENV:Body>
<m:get_computers_V1Response xmlns:m="urn:test">
<item>first part</item>
<item>&lt;COMPUTERS&gt;&lt;/COMPUTERS&gt;</item>
</m:get_computers_V1Response>
</SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

const faultEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/">
<SOAP-ENV:Body>
<SOAP-ENV:Fault>
<faultcode>SOAP-ENV:Server</faultcode>
<faultstring>Bad&amp;Request</faultstring>
</SOAP-ENV:Fault>
</SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

func TestCall(t *testing.T) {
	type testCase struct {
		Description   string
		Status        int
		Response      string
		ExpectedParts []string
		ExpectedErr   error
		ExpectedFault string
	}

	tcs := []testCase{
		{
			Description:   "Success with ordered parts",
			Status:        http.StatusOK,
			Response:      successEnvelope,
			ExpectedParts: []string{"first part", "<COMPUTERS></COMPUTERS>"},
		},
		{
			Description:   "Fault with entity encoded message",
			Status:        http.StatusInternalServerError,
			Response:      faultEnvelope,
			ExpectedErr:   ErrFault,
			ExpectedFault: "Bad&Request",
		},
		{
			Description: "Non-success status without a fault",
			Status:      http.StatusNotFound,
			Response:    "<html>not here</html>",
			ExpectedErr: ErrBadStatus,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			var (
				assert  = assert.New(t)
				require = require.New(t)
			)

			server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
				rw.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
				rw.WriteHeader(tc.Status)
				io.WriteString(rw, tc.Response)
			}))
			defer server.Close()

			client := New(server.URL, "urn:test", WithHTTPClient(server.Client()))
			parts, err := client.Call(context.Background(), "get_computers_V1", "<REQUEST></REQUEST>")

			if tc.ExpectedErr == nil {
				require.NoError(err)
				assert.Equal(tc.ExpectedParts, parts)
				return
			}
			require.Error(err)
			assert.True(errors.Is(err, tc.ExpectedErr))
			if tc.ExpectedFault != "" {
				var fault *Fault
				require.True(errors.As(err, &fault))
				assert.Equal(tc.ExpectedFault, fault.Error())
			}
		})
	}
}

func TestCallTransportFailure(t *testing.T) {
	assert := assert.New(t)

	client := New("http://127.0.0.1:1", "urn:test")
	_, err := client.Call(context.Background(), "get_computers_V1", "")
	assert.True(errors.Is(err, ErrTransport))
}

func TestCallRequestWireFormat(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	var (
		gotBody   string
		gotAction string
		gotHeader string
	)
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(err)
		gotBody = string(body)
		gotAction = r.Header.Get("SOAPAction")
		gotHeader = r.Header.Get("X-Custom")
		io.WriteString(rw, successEnvelope)
	}))
	defer server.Close()

	client := New(server.URL, "urn:test",
		WithHTTPClient(server.Client()), WithHeader("X-Custom", "yes"))
	_, err := client.Call(context.Background(), "get_computers_V1", "<REQUEST><OFFSET>0</OFFSET></REQUEST>")
	require.NoError(err)

	assert.Equal(`"urn:test#get_computers_V1"`, gotAction)
	assert.Equal("yes", gotHeader)
	// The string argument rides inside the call element, XML-escaped.
	assert.Contains(gotBody, `<m:get_computers_V1 xmlns:m="urn:test">`)
	assert.Contains(gotBody, `&lt;REQUEST&gt;&lt;OFFSET&gt;0&lt;/OFFSET&gt;&lt;/REQUEST&gt;`)
	assert.True(strings.HasPrefix(gotBody, `<?xml version="1.0" encoding="UTF-8"?>`))
}
