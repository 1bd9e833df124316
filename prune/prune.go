// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

// Package prune reduces full OCS computer records to a compact subset that
// diffs well under version control: volatile attributes are dropped,
// sequences get a stable order, and custom account info fields are renamed
// through a caller supplied table.
//
// The whole transformation is idempotent; pruning an already pruned record
// changes nothing.
package prune

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gnustavo/ocsclient/model"
	"go.uber.org/zap"
)

var (
	customFieldRe = regexp.MustCompile(`^fields_(\d+)$`)

	// Matches descriptions whose tail is the MM-DD-YY HH:MM:SS install
	// timestamp some agents append after the first slash.
	descriptionRe = regexp.MustCompile(`^([^/]*)/.*\d{2}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
)

var hardwareDrop = []string{
	"FIDELITY", "LASTCOME", "IPADDR", "IPSRC", "LASTDATE",
	"PROCESSORS", "QUALITY", "USERID", "SWAP",
}

var driveDrop = []string{"CREATEDATE", "FREE", "LETTER", "NUMFILES", "VOLUMN"}

// Pruner applies the pruning policy to computer records.
type Pruner struct {
	fields model.FieldTable
	logger *zap.Logger
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithLogger sets the logger used to report unmapped custom fields.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pruner) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Pruner translating "fields_<N>" account info entries through
// fields. A nil table is allowed; every custom field then keeps its literal
// name.
func New(fields model.FieldTable, opts ...Option) *Pruner {
	p := &Pruner{fields: fields, logger: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Prune applies the policy with a one-off Pruner.
func Prune(c model.Computer, fields model.FieldTable) model.Computer {
	return New(fields).Prune(c)
}

// Prune transforms c in place and returns it. Sections absent from the
// record are skipped; top-level keys outside the policy are untouched.
func (p *Pruner) Prune(c model.Computer) model.Computer {
	if c == nil {
		return c
	}
	p.pruneAccountInfo(c)
	pruneDrives(c)
	pruneHardware(c)
	pruneNetworks(c)
	prunePrinters(c)
	pruneSoftwares(c)
	pruneStorages(c)
	pruneVideos(c)
	return c
}

// pruneAccountInfo flattens each {Name, content} pair sequence into a name
// to content map. Custom fields translate through the field table; an ID
// missing from the table keeps its literal fields_<N> key and is reported.
// The "UA Username" field is dropped.
func (p *Pruner) pruneAccountInfo(c model.Computer) {
	info := c.AccountInfo()
	for id, raw := range info {
		pairs, ok := raw.([]interface{})
		if !ok {
			continue // already flattened
		}
		flat := map[string]interface{}{}
		for _, pr := range pairs {
			pair, ok := pr.(map[string]interface{})
			if !ok {
				continue
			}
			content, ok := pair["content"]
			if !ok {
				continue
			}
			name, _ := pair["Name"].(string)
			if m := customFieldRe.FindStringSubmatch(name); m != nil {
				n, _ := strconv.Atoi(m[1])
				if mapped, ok := p.fields[n]; ok {
					name = mapped
				} else {
					p.logger.Warn("custom field missing from the field name table",
						zap.String("entry", id), zap.String("field", name))
				}
			}
			flat[name] = content
		}
		delete(flat, "UA Username")
		info[id] = flat
	}
}

func pruneDrives(c model.Computer) {
	drives, present := c["DRIVES"]
	if !present {
		return
	}
	list, ok := drives.([]interface{})
	if !ok {
		return
	}
	kept := make([]interface{}, 0, len(list))
	for _, d := range list {
		drive, ok := d.(map[string]interface{})
		if !ok {
			kept = append(kept, d)
			continue
		}
		if isRemovable(drive["TYPE"]) {
			continue
		}
		// ORDER is derived from VOLUMN and LETTER, so it is only computed
		// while at least one of them is still around.
		if _, hasVol := drive["VOLUMN"]; hasVol || hasKey(drive, "LETTER") {
			order := scalar(drive["VOLUMN"]) + scalar(drive["LETTER"])
			if strings.HasSuffix(order, ":/") {
				order = strings.TrimSuffix(order, "/")
			}
			drive["ORDER"] = order
		}
		for _, k := range driveDrop {
			delete(drive, k)
		}
		kept = append(kept, drive)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return orderOf(kept[i]) < orderOf(kept[j])
	})
	c["DRIVES"] = kept
}

func pruneHardware(c model.Computer) {
	hw := c.Hardware()
	if hw == nil {
		return
	}
	for _, k := range hardwareDrop {
		delete(hw, k)
	}
	if desc, ok := hw["DESCRIPTION"].(string); ok {
		if m := descriptionRe.FindStringSubmatch(desc); m != nil {
			hw["DESCRIPTION"] = m[1]
		}
	}
}

func pruneNetworks(c model.Computer) {
	for _, n := range c.Section("NETWORKS") {
		if network, ok := n.(map[string]interface{}); ok {
			delete(network, "SPEED")
			delete(network, "STATUS")
		}
	}
}

func prunePrinters(c model.Computer) {
	printers := c.Section("PRINTERS")
	if printers == nil {
		return
	}
	sort.SliceStable(printers, func(i, j int) bool {
		return nameOf(printers[i]) < nameOf(printers[j])
	})
}

// pruneSoftwares collapses the software list into a NAME to VERSION map.
// Duplicate names keep the last version seen.
func pruneSoftwares(c model.Computer) {
	list, ok := c["SOFTWARES"].([]interface{})
	if !ok {
		return // absent, or already collapsed
	}
	collapsed := map[string]interface{}{}
	for _, s := range list {
		software, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		name, ok := software["NAME"].(string)
		if !ok {
			continue
		}
		collapsed[name] = software["VERSION"]
	}
	c["SOFTWARES"] = collapsed
}

func pruneStorages(c model.Computer) {
	storages, present := c["STORAGES"]
	if !present {
		return
	}
	list, ok := storages.([]interface{})
	if !ok {
		return
	}
	kept := make([]interface{}, 0, len(list))
	for _, s := range list {
		if storage, ok := s.(map[string]interface{}); ok && isRemovable(storage["TYPE"]) {
			continue
		}
		kept = append(kept, s)
	}
	c["STORAGES"] = kept
}

func pruneVideos(c model.Computer) {
	for _, v := range c.Section("VIDEOS") {
		if video, ok := v.(map[string]interface{}); ok {
			delete(video, "RESOLUTION")
		}
	}
}

// scalar returns v when it is a plain string, "" otherwise.
func scalar(v interface{}) string {
	s, _ := v.(string)
	return s
}

func hasKey(m map[string]interface{}, k string) bool {
	_, ok := m[k]
	return ok
}

func isRemovable(v interface{}) bool {
	return strings.Contains(strings.ToLower(scalar(v)), "removable")
}

func orderOf(v interface{}) string {
	if m, ok := v.(map[string]interface{}); ok {
		return scalar(m["ORDER"])
	}
	return ""
}

func nameOf(v interface{}) string {
	if m, ok := v.(map[string]interface{}); ok {
		return scalar(m["NAME"])
	}
	return ""
}
