// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

// Package xmlmap converts XML fragments into generic map/sequence trees.
//
// The mapping rules are the ones the OCS inventory payload relies on:
// an element holding only character data becomes a string. An element with
// attributes or child elements becomes a map[string]interface{}; attributes
// merge in as keys and non-blank character data is kept under the "content"
// key. Repeated sibling names become a []interface{}, and ForceList makes
// selected names decode as a sequence even when a single instance is present,
// removing the singular-vs-plural ambiguity of collapsed XML lists.
package xmlmap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed is wrapped by all parse failures reported by this package.
var ErrMalformed = errors.New("malformed XML fragment")

type options struct {
	forceList map[string]bool
}

// Option configures a decode operation.
type Option func(*options)

// ForceList makes elements with the given names always decode as a
// []interface{}, at any depth, even when only one instance is present.
func ForceList(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.forceList[n] = true
		}
	}
}

// Decode parses a single XML fragment and returns the mapping of its root
// element's content. The root element's own name is discarded; its attributes
// merge into the returned map. A root holding only character data is returned
// as {"content": text}.
func Decode(data []byte, opts ...Option) (map[string]interface{}, error) {
	o := newOptions(opts)
	d := xml.NewDecoder(bytes.NewReader(data))

	root, err := nextStart(d)
	if err != nil {
		return nil, err
	}

	v, err := parseElement(d, root, o)
	if err != nil {
		return nil, err
	}
	return asMap(v), nil
}

// DecodeChildren parses an XML document whose root element merely wraps a
// sequence of sibling fragments. The wrapper is discarded and each child
// element is parsed independently, in document order.
func DecodeChildren(data []byte, opts ...Option) ([]map[string]interface{}, error) {
	o := newOptions(opts)
	d := xml.NewDecoder(bytes.NewReader(data))

	if _, err := nextStart(d); err != nil {
		return nil, err
	}

	children := []map[string]interface{}{}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: unexpected EOF", ErrMalformed)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformed, err.Error())
		}
		switch t := tok.(type) {
		case xml.StartElement:
			v, err := parseElement(d, t, o)
			if err != nil {
				return nil, err
			}
			children = append(children, asMap(v))
		case xml.EndElement:
			return children, nil
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{forceList: map[string]bool{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// nextStart skips prologue tokens up to the first start element.
func nextStart(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return xml.StartElement{}, fmt.Errorf("%w: no root element", ErrMalformed)
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("%w: %s", ErrMalformed, err.Error())
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// parseElement consumes the subtree opened by start and returns either a
// string (text-only element) or a map[string]interface{}.
func parseElement(d *xml.Decoder, start xml.StartElement, o *options) (interface{}, error) {
	var (
		text     strings.Builder
		children map[string]interface{}
	)

	addChild := func(name string, v interface{}) {
		if children == nil {
			children = map[string]interface{}{}
		}
		prev, seen := children[name]
		switch {
		case !seen && o.forceList[name]:
			children[name] = []interface{}{v}
		case !seen:
			children[name] = v
		default:
			if list, ok := prev.([]interface{}); ok {
				children[name] = append(list, v)
			} else {
				children[name] = []interface{}{prev, v}
			}
		}
	}

	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: unexpected EOF in <%s>", ErrMalformed, start.Name.Local)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformed, err.Error())
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			v, err := parseElement(d, t, o)
			if err != nil {
				return nil, err
			}
			addChild(t.Name.Local, v)
		case xml.EndElement:
			content := strings.TrimSpace(text.String())
			if children == nil && len(start.Attr) == 0 {
				return content, nil
			}
			m := map[string]interface{}{}
			for _, a := range start.Attr {
				m[a.Name.Local] = a.Value
			}
			for k, v := range children {
				m[k] = v
			}
			if content != "" {
				m["content"] = content
			}
			return m, nil
		}
	}
}

// asMap coerces a parsed element value to map form, for API surfaces that
// promise a mapping.
func asMap(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return t
	case string:
		if t == "" {
			return map[string]interface{}{}
		}
		return map[string]interface{}{"content": t}
	}
	return map[string]interface{}{}
}
