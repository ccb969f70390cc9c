// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import "unsafe"

// An arena batches the allocation of small token strings into larger blocks.
// Bytes are only ever appended to a block, never overwritten, so a string
// that refers to a block remains valid for as long as it is reachable.
type arena struct {
	blocks [][]byte
}

const (
	minBlockSlop      = 4
	smallSizeFraction = 16
	bufBlockBytes     = 16384
)

// String returns a string with the contents of text, which the caller may
// reuse after String returns.
func (a *arena) String(text []byte) string {
	if len(text) == 0 {
		return ""
	}

	// For values bigger than smallSizeFraction of the block size, don't bother
	// batching, make an outright copy.
	if len(text) >= bufBlockBytes/smallSizeFraction {
		return string(text)
	}

	// Look for a block with space enough to hold a copy of text.
	i := 0
	for i < len(a.blocks) {
		if n := len(a.blocks[i]) + len(text); n < cap(a.blocks[i]) {
			break // there is room in this block
		} else if cap(a.blocks[i])-len(a.blocks[i]) < minBlockSlop {
			// There is no room in this block, but it is nearly-enough full.
			// Allocate a fresh block at this location and release the old one,
			// which is retained until all its strings are released.
			a.blocks[i] = make([]byte, 0, bufBlockBytes)
			break
		}
		i++
	}
	if i == len(a.blocks) {
		a.blocks = append(a.blocks, make([]byte, 0, bufBlockBytes))
	}
	p := len(a.blocks[i])
	a.blocks[i] = append(a.blocks[i], text...)
	return unsafeString(a.blocks[i][p : p+len(text)])
}

// unsafeString converts b to a string without copying. The contents of b
// must not be modified afterward.
func unsafeString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
