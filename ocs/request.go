// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package ocs

import (
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Params are the query parameters of a get_computers_V1 request. Values may
// be any scalar; they are coerced to their string form when serialized.
// Caller keys win over the defaults on collision, and keys unknown to this
// package pass through verbatim, uppercased as tag names.
type Params map[string]interface{}

// Query defaults. The checksum and wanted bitmasks select every hardware and
// software category the server knows about.
var defaultParams = Params{
	"engine":     "FIRST",
	"asking_for": "INVENTORY",
	"checksum":   131071,
	"wanted":     3,
	"offset":     0,
}

func mergeParams(params Params) Params {
	merged := Params{}
	for k, v := range defaultParams {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return merged
}

// requestBody serializes the effective parameters as the <REQUEST> document
// the interface expects: one element per parameter, tag name uppercased,
// value in its string form, emitted verbatim. Elements are ordered by tag
// name so the body is deterministic.
func requestBody(params Params) string {
	tags := make([]string, 0, len(params))
	byTag := make(map[string]string, len(params))
	for k, v := range params {
		tag := strings.ToUpper(k)
		tags = append(tags, tag)
		byTag[tag] = cast.ToString(v)
	}
	sort.Strings(tags)

	var b strings.Builder
	b.WriteString("<REQUEST>\n")
	for _, tag := range tags {
		b.WriteString("  <")
		b.WriteString(tag)
		b.WriteString(">")
		b.WriteString(byTag[tag])
		b.WriteString("</")
		b.WriteString(tag)
		b.WriteString(">\n")
	}
	b.WriteString("</REQUEST>")
	return b.String()
}
