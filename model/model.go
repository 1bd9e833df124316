// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package model

// Names of the per-computer sections that the OCS response may collapse to a
// single element. The client always forces these to sequence form.
var ListSections = []string{"DRIVES", "NETWORKS", "PRINTERS", "SOFTWARES", "VIDEOS"}

// Computer is one inventory record as returned by the OCS server. It is a
// generic tree: values are strings, []interface{} or map[string]interface{},
// depending on the server's category bitmask configuration. Only the
// well-known sections documented on the accessors below have a guaranteed
// shape; everything else passes through untouched.
type Computer map[string]interface{}

// FieldTable maps OCS custom-field IDs to human readable names. It is used
// only to translate ACCOUNTINFO entries named "fields_<N>" while pruning.
type FieldTable map[int]string

// Section returns the named top-level section as a sequence, or nil when the
// section is absent or not in sequence form.
func (c Computer) Section(name string) []interface{} {
	s, _ := c[name].([]interface{})
	return s
}

// Hardware returns the HARDWARE section, or nil when absent.
func (c Computer) Hardware() map[string]interface{} {
	m, _ := c["HARDWARE"].(map[string]interface{})
	return m
}

// AccountInfo returns the ACCOUNTINFO section keyed by the internal entry ID,
// or nil when absent. Before pruning each value is a sequence of
// {Name, content} pairs; after pruning it is a flat name to content map.
func (c Computer) AccountInfo() map[string]interface{} {
	m, _ := c["ACCOUNTINFO"].(map[string]interface{})
	return m
}

// Tag returns the value of the TAG account info field, the label OCS
// deployments commonly key machines on. It understands both the raw pair
// shape and the pruned flat shape, and returns "" when no TAG is found.
func (c Computer) Tag() string {
	for _, entry := range c.AccountInfo() {
		switch e := entry.(type) {
		case map[string]interface{}:
			if tag, ok := e["TAG"].(string); ok {
				return tag
			}
		case []interface{}:
			for _, p := range e {
				pair, ok := p.(map[string]interface{})
				if !ok {
					continue
				}
				if name, _ := pair["Name"].(string); name == "TAG" {
					tag, _ := pair["content"].(string)
					return tag
				}
			}
		}
	}
	return ""
}
