// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package ocs

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageCaller fakes the transport at page granularity: call n answers with
// the nth scripted page and every offset observed is recorded.
type pageCaller struct {
	pages   [][]string
	offsets []string
	err     error
}

func (p *pageCaller) Call(_ context.Context, _ string, arg string) ([]string, error) {
	p.offsets = append(p.offsets, offsetIn(arg))
	if p.err != nil {
		return nil, p.err
	}
	var page []string
	if len(p.pages) > 0 {
		page = p.pages[0]
		p.pages = p.pages[1:]
	}
	doc := "<COMPUTERS>"
	for _, f := range page {
		doc += f
	}
	doc += "</COMPUTERS>"
	return []string{doc}, nil
}

var offsetRe = regexp.MustCompile(`<OFFSET>\d+</OFFSET>`)

func offsetIn(requestBody string) string {
	return offsetRe.FindString(requestBody)
}

func computerFragment(name string) string {
	return fmt.Sprintf("<COMPUTER><HARDWARE><NAME>%s</NAME></HARDWARE></COMPUTER>", name)
}

func TestIteratorPaging(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	caller := &pageCaller{
		pages: [][]string{
			{computerFragment("a"), computerFragment("b")},
			{computerFragment("c"), computerFragment("d")},
			{},
		},
	}
	client := NewWithCaller(caller, Config{})
	it := client.Computers(Params{})

	var names []string
	for i := 0; i < 4; i++ {
		c, err := it.Next(context.Background())
		require.NoError(err)
		names = append(names, c.Hardware()["NAME"].(string))
	}
	assert.Equal([]string{"a", "b", "c", "d"}, names)

	_, err := it.Next(context.Background())
	assert.True(errors.Is(err, ErrEndOfComputers))

	// One page fetch per offset, in order, three fetches total.
	assert.Equal([]string{"<OFFSET>0</OFFSET>", "<OFFSET>1</OFFSET>", "<OFFSET>2</OFFSET>"}, caller.offsets)
}

func TestIteratorExhaustionIsSticky(t *testing.T) {
	assert := assert.New(t)

	caller := &pageCaller{pages: [][]string{{}}}
	client := NewWithCaller(caller, Config{})
	it := client.Computers(nil)

	for i := 0; i < 3; i++ {
		_, err := it.Next(context.Background())
		assert.True(errors.Is(err, ErrEndOfComputers))
	}
	assert.Len(caller.offsets, 1, "an exhausted iterator must not fetch again")
}

func TestIteratorFetchErrorIsNotEndOfData(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	boom := errors.New("connection reset")
	caller := &pageCaller{err: boom}
	client := NewWithCaller(caller, Config{})
	it := client.Computers(nil)

	_, err := it.Next(context.Background())
	require.Error(err)
	assert.True(errors.Is(err, boom))
	assert.False(errors.Is(err, ErrEndOfComputers))

	// The failed page is retried on the next call, same offset.
	caller.err = nil
	caller.pages = [][]string{{computerFragment("a")}}
	c, err := it.Next(context.Background())
	require.NoError(err)
	assert.Equal("a", c.Hardware()["NAME"])
	assert.Equal([]string{"<OFFSET>0</OFFSET>", "<OFFSET>0</OFFSET>"}, caller.offsets)
}
