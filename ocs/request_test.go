// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package ocs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestBody(t *testing.T) {
	type testCase struct {
		Description string
		Params      Params
		Expected    string
	}

	tcs := []testCase{
		{
			Description: "Defaults only",
			Params:      Params{},
			Expected: "<REQUEST>\n" +
				"  <ASKING_FOR>INVENTORY</ASKING_FOR>\n" +
				"  <CHECKSUM>131071</CHECKSUM>\n" +
				"  <ENGINE>FIRST</ENGINE>\n" +
				"  <OFFSET>0</OFFSET>\n" +
				"  <WANTED>3</WANTED>\n" +
				"</REQUEST>",
		},
		{
			Description: "Caller values win over defaults",
			Params:      Params{"offset": 7, "checksum": 1},
			Expected: "<REQUEST>\n" +
				"  <ASKING_FOR>INVENTORY</ASKING_FOR>\n" +
				"  <CHECKSUM>1</CHECKSUM>\n" +
				"  <ENGINE>FIRST</ENGINE>\n" +
				"  <OFFSET>7</OFFSET>\n" +
				"  <WANTED>3</WANTED>\n" +
				"</REQUEST>",
		},
		{
			Description: "Unknown keys pass through uppercased",
			Params:      Params{"tag": "sala-3"},
			Expected: "<REQUEST>\n" +
				"  <ASKING_FOR>INVENTORY</ASKING_FOR>\n" +
				"  <CHECKSUM>131071</CHECKSUM>\n" +
				"  <ENGINE>FIRST</ENGINE>\n" +
				"  <OFFSET>0</OFFSET>\n" +
				"  <TAG>sala-3</TAG>\n" +
				"  <WANTED>3</WANTED>\n" +
				"</REQUEST>",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tc.Expected, requestBody(mergeParams(tc.Params)))
		})
	}
}

func TestMergeParamsDoesNotMutateInput(t *testing.T) {
	assert := assert.New(t)

	params := Params{"offset": 3}
	merged := mergeParams(params)

	assert.Equal(Params{"offset": 3}, params)
	assert.Equal(3, merged["offset"])
	assert.Equal("FIRST", merged["engine"])
	assert.Len(merged, 5)
}
