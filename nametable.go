// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"sync"
	"sync/atomic"
)

// A NameTable interns property names so that repeated names share a single
// string allocation. A NameTable may be shared by any number of readers
// running concurrently: lookups read an immutable snapshot without locking,
// and additions replace the snapshot with an updated copy.
//
// The zero value is ready for use.
type NameTable struct {
	mu    sync.Mutex // serializes writers
	names atomic.Pointer[map[string]string]
}

// NewNameTable constructs a NameTable pre-populated with the given names.
func NewNameTable(names ...string) *NameTable {
	t := new(NameTable)
	if len(names) != 0 {
		m := make(map[string]string, len(names))
		for _, name := range names {
			m[name] = name
		}
		t.names.Store(&m)
	}
	return t
}

// Get returns the interned copy of key, if one exists.
func (t *NameTable) Get(key []byte) (string, bool) {
	if p := t.names.Load(); p != nil {
		s, ok := (*p)[string(key)]
		return s, ok
	}
	return "", false
}

// Intern returns the interned copy of key, adding one if necessary.
func (t *NameTable) Intern(key []byte) string {
	if s, ok := t.Get(key); ok {
		return s
	}
	return t.Add(string(key))
}

// Add adds name to t if it is not already present, and returns the interned
// copy.
func (t *NameTable) Add(name string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	old := t.names.Load()
	if old != nil {
		if s, ok := (*old)[name]; ok {
			return s // added concurrently
		}
	}
	m := make(map[string]string, t.lenOf(old)+1)
	if old != nil {
		for k, v := range *old {
			m[k] = v
		}
	}
	m[name] = name
	t.names.Store(&m)
	return name
}

// Len reports the number of names in t.
func (t *NameTable) Len() int { return t.lenOf(t.names.Load()) }

func (t *NameTable) lenOf(p *map[string]string) int {
	if p == nil {
		return 0
	}
	return len(*p)
}
