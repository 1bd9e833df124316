// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package ocs

import (
	"context"

	"github.com/gnustavo/ocsclient/model"
)

// Iterator lazily walks the computers of a query, fetching one page per
// underlying GetComputers call. It is meant for a single consumer; it is not
// safe for concurrent use.
type Iterator struct {
	client *Client
	params Params
	buf    []model.Computer
	offset int
	done   bool
}

// Computers returns an iterator over all computers matching params. The
// params are captured at construction; offset is managed by the iterator.
func (c *Client) Computers(params Params) *Iterator {
	captured := Params{}
	for k, v := range params {
		captured[k] = v
	}
	return &Iterator{client: c, params: captured}
}

// Next returns the next computer. Exhaustion is signaled with
// ErrEndOfComputers, the way io.EOF signals end of stream; any other error
// is a failed page fetch and never means end of data. After a fetch failure
// Next may be called again and will retry the same page.
func (it *Iterator) Next(ctx context.Context) (model.Computer, error) {
	for len(it.buf) == 0 {
		if it.done {
			return nil, ErrEndOfComputers
		}
		it.params["offset"] = it.offset
		page, err := it.client.GetComputers(ctx, it.params)
		if err != nil {
			return nil, err
		}
		// One page fetched, one offset consumed, however many records the
		// server chose to return.
		it.offset++
		if len(page) == 0 {
			it.done = true
			return nil, ErrEndOfComputers
		}
		it.buf = append(it.buf, page...)
	}
	next := it.buf[0]
	it.buf = it.buf[1:]
	return next, nil
}
