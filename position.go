// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"strconv"
	"strings"

	"github.com/creachadair/jtoken/internal/escape"

	"go4.org/mem"
)

// A position records the bookkeeping for one open container: its kind, the
// index of the most recently completed child (arrays and constructors), and
// the most recent member name (objects).
type position struct {
	kind  ContainerKind
	index int // -1 until the first child value completes
	name  string
}

func newPosition(kind ContainerKind) position { return position{kind: kind, index: -1} }

// hasIndex reports whether p renders as an index rather than a name.
func (p position) hasIndex() bool { return p.kind == Array || p.kind == Constructor }

// pathChars are the characters that force a property name to be rendered in
// bracket form, ['name'], rather than as .name.
const pathChars = ".[]() '\"/\\\t\n\r\f\b\u0085\u2028\u2029"

func (p position) pathLen() int {
	switch p.kind {
	case Object:
		return len(p.name) + 5
	case Array, Constructor:
		return len(strconv.Itoa(p.index)) + 2
	}
	return 0
}

func (p position) writeTo(sb *strings.Builder) {
	switch p.kind {
	case Object:
		if strings.ContainsAny(p.name, pathChars) {
			sb.WriteString("['")
			sb.Write(escape.Quote(mem.S(p.name), '\''))
			sb.WriteString("']")
		} else {
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(p.name)
		}
	case Array, Constructor:
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(p.index))
		sb.WriteByte(']')
	}
}

// buildPath renders the path described by stack followed by cur, if cur is
// not nil. It returns "" if there are no positions to render.
func buildPath(stack []position, cur *position) string {
	n := 0
	for _, p := range stack {
		n += p.pathLen()
	}
	if cur != nil {
		n += cur.pathLen()
	}
	if n == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(n)
	for _, p := range stack {
		p.writeTo(&sb)
	}
	if cur != nil {
		cur.writeTo(&sb)
	}
	return sb.String()
}

// A tracker is an ordered stack of open container positions. The innermost
// open container is held in cur, and the enclosing ones in stack.
// The zero value is ready for use and has no open containers.
type tracker struct {
	stack []position
	cur   position
}

// finishValue records the completion of a value in the current container.
func (t *tracker) finishValue() {
	if t.cur.hasIndex() {
		t.cur.index++
	}
}

// push opens a new container of the given kind. The index of the enclosing
// container, if it has one, is advanced first.
func (t *tracker) push(kind ContainerKind) {
	t.finishValue()
	if t.cur.kind != NoContainer {
		t.stack = append(t.stack, t.cur)
	}
	t.cur = newPosition(kind)
}

// pop closes the innermost container and returns its kind. If no container
// is open, pop returns NoContainer.
func (t *tracker) pop() ContainerKind {
	old := t.cur
	if n := len(t.stack); n > 0 {
		t.cur = t.stack[n-1]
		t.stack = t.stack[:n-1]
	} else {
		t.cur = position{}
	}
	return old.kind
}

// peek returns the kind of the innermost open container.
func (t *tracker) peek() ContainerKind { return t.cur.kind }

// open returns the number of open containers.
func (t *tracker) open() int {
	if t.cur.kind == NoContainer {
		return 0
	}
	return len(t.stack) + 1
}

// path renders the current path. If withCurrent is false, the innermost
// container is omitted; this is used while a container start is pending.
func (t *tracker) path(withCurrent bool) string {
	if t.cur.kind == NoContainer {
		return ""
	}
	if withCurrent {
		return buildPath(t.stack, &t.cur)
	}
	return buildPath(t.stack, nil)
}

// reset discards all open containers.
func (t *tracker) reset() {
	t.stack = t.stack[:0]
	t.cur = position{}
}
