// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Headers is an ordered collection of HTTP header name/value pairs.
//
// Names are matched case-insensitively, but the casing of the first
// occurrence of a name is preserved: setting "content-type" and later
// "Content-Type" updates one entry whose name remains "content-type".
// Iteration order is insertion order.
//
// The zero value is not usable; create Headers with NewHeaders. Headers
// is not safe for concurrent mutation; within a pipeline this is never
// required because each call owns its request exclusively.
type Headers struct {
	entries []headerEntry
}

type headerEntry struct {
	name  string
	value string
}

// NewHeaders returns an empty header collection.
func NewHeaders() *Headers {
	return &Headers{}
}

// Set adds the header if no entry matches name case-insensitively, and
// overwrites the existing entry's value otherwise. The existing entry
// keeps its original name casing and its position in iteration order.
//
// Set panics if name is not a valid HTTP header field name.
func (h *Headers) Set(name, value string) {
	if !httpguts.ValidHeaderFieldName(name) {
		panic(fmt.Sprintf("pipeline/message: invalid header name %q", name))
	}
	for i := range h.entries {
		if strings.EqualFold(h.entries[i].name, name) {
			h.entries[i].value = value
			return
		}
	}
	h.entries = append(h.entries, headerEntry{name: name, value: value})
}

// Get returns the value of the header matching name case-insensitively,
// or the empty string if the header is absent. Use Has to distinguish
// an absent header from one with an empty value.
func (h *Headers) Get(name string) string {
	v, _ := h.lookup(name)
	return v
}

// Has reports whether a header matching name case-insensitively is
// present.
func (h *Headers) Has(name string) bool {
	_, ok := h.lookup(name)
	return ok
}

// Del removes the header matching name case-insensitively, if present,
// and reports whether a header was removed.
func (h *Headers) Del(name string) bool {
	for i := range h.entries {
		if strings.EqualFold(h.entries[i].name, name) {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of headers in the collection.
func (h *Headers) Len() int {
	return len(h.entries)
}

// Names returns the header names in insertion order, with the casing of
// the first occurrence of each name.
func (h *Headers) Names() []string {
	names := make([]string, len(h.entries))
	for i := range h.entries {
		names[i] = h.entries[i].name
	}
	return names
}

// Each calls f once for each header in insertion order. Mutating h from
// within f is not allowed.
func (h *Headers) Each(f func(name, value string)) {
	for i := range h.entries {
		f(h.entries[i].name, h.entries[i].value)
	}
}

// Clone returns a structurally independent copy of h. Mutations of the
// clone never affect h and vice versa.
func (h *Headers) Clone() *Headers {
	h2 := &Headers{entries: make([]headerEntry, len(h.entries))}
	copy(h2.entries, h.entries)
	return h2
}

func (h *Headers) lookup(name string) (string, bool) {
	for i := range h.entries {
		if strings.EqualFold(h.entries[i].name, name) {
			return h.entries[i].value, true
		}
	}
	return "", false
}
