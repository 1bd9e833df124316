// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strings"

	"emperror.dev/emperror"
)

const envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

const envelopeHeader = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" SOAP-ENV:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
<SOAP-ENV:Body>`

const envelopeTrailer = `</SOAP-ENV:Body>
</SOAP-ENV:Envelope>
`

// encodeEnvelope serializes one rpc/encoded call carrying a single string
// argument, the way the OCS interface expects it.
func encodeEnvelope(namespace, method, arg string) []byte {
	var b bytes.Buffer
	b.WriteString(envelopeHeader)
	fmt.Fprintf(&b, `<m:%s xmlns:m=%q><request xsi:type="xsd:string">`, method, namespace)
	_ = xml.EscapeText(&b, []byte(arg)) // bytes.Buffer writes cannot fail
	fmt.Fprintf(&b, `</request></m:%s>`, method)
	b.WriteString(envelopeTrailer)
	return b.Bytes()
}

// Fault is the error form of a SOAP fault. Reason carries the fault string
// with XML character entities already decoded.
type Fault struct {
	Code   string
	Reason string
}

func (f *Fault) Error() string { return f.Reason }

// Is lets errors.Is(err, ErrFault) match any fault.
func (f *Fault) Is(target error) bool { return target == ErrFault }

// decodeEnvelope walks the response envelope. It returns the string parts of
// the method response in document order, or the fault carried by the body.
func decodeEnvelope(data []byte) (parts []string, fault *Fault, err error) {
	d := xml.NewDecoder(bytes.NewReader(data))

	if err := skipToBody(d); err != nil {
		return nil, nil, err
	}

	// First element inside Body: either Fault or the method response.
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, nil, emperror.Wrap(err, "failed decoding SOAP body")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			if _, end := tok.(xml.EndElement); end {
				return []string{}, nil, nil // empty body
			}
			continue
		}
		if start.Name.Local == "Fault" {
			fault, err := decodeFault(d, start)
			return nil, fault, err
		}
		parts, err := decodeParts(d, start)
		return parts, nil, err
	}
}

func skipToBody(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return emperror.Wrap(io.ErrUnexpectedEOF, "no SOAP Body element found")
		}
		if err != nil {
			return emperror.Wrap(err, "failed decoding SOAP envelope")
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "Body" {
			return nil
		}
	}
}

func decodeFault(d *xml.Decoder, start xml.StartElement) (*Fault, error) {
	var raw struct {
		Code   string `xml:"faultcode"`
		Reason string `xml:"faultstring"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return nil, emperror.Wrap(err, "failed decoding SOAP fault")
	}
	return &Fault{
		Code:   raw.Code,
		Reason: html.UnescapeString(raw.Reason),
	}, nil
}

// decodeParts consumes the method response element, collecting the character
// data of each direct child as one part.
func decodeParts(d *xml.Decoder, start xml.StartElement) ([]string, error) {
	parts := []string{}
	depth := 0
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, emperror.Wrap(err, "failed decoding SOAP response parts")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				text.Reset()
			}
		case xml.CharData:
			if depth >= 1 {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 0 {
				return parts, nil // closed the response element itself
			}
			if depth == 1 {
				parts = append(parts, text.String())
			}
			depth--
		}
	}
}
