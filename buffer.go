// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"errors"
	"io"
	"sync"
)

// bufferPool holds scan buffers of the default size for reuse by readers.
var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, defaultBufferSize)
		return &b
	},
}

func getBuffer(size int) []byte {
	if size != defaultBufferSize {
		return make([]byte, size)
	}
	p := bufferPool.Get().(*[]byte)
	return (*p)[:cap(*p)]
}

func putBuffer(buf []byte) {
	// Do not retain buffers that grew while scanning a large token.
	if cap(buf) != defaultBufferSize {
		return
	}
	bufferPool.Put(&buf)
}

// A scanBuffer is a growable window over an input stream. Bytes in
// data[mark:end] are retained while a token is scanned; bytes before mark
// have been consumed and may be discarded to make room for more input.
//
// When the scanner needs a byte beyond end, it calls fill, which reports
// false if no more input is available. A NUL byte in data is ordinary input.
type scanBuffer struct {
	src  io.Reader
	data []byte
	pos  int // next unscanned byte
	end  int // end of valid data
	mark int // start of the token being scanned
	base int // absolute input offset of data[0]

	line      int // current line, 0-based
	lineStart int // absolute input offset of the start of the current line

	eof bool  // src has reported io.EOF
	err error // error reported by src, other than io.EOF
}

func newScanBuffer(src io.Reader, size int) *scanBuffer {
	return &scanBuffer{src: src, data: getBuffer(size)}
}

// offset returns the absolute input offset of pos.
func (b *scanBuffer) offset() int { return b.base + b.pos }

// lineCol returns the line and column of the absolute offset off, which must
// be on the current line.
func (b *scanBuffer) lineCol(off int) LineCol {
	return LineCol{Line: b.line + 1, Column: off - b.lineStart}
}

// newLine records that a line break ends just before pos.
func (b *scanBuffer) newLine() {
	b.line++
	b.lineStart = b.offset()
}

// begin marks pos as the start of a new token. If less than a tenth of the
// buffer remains unscanned, the consumed prefix is discarded first.
func (b *scanBuffer) begin() {
	b.mark = b.pos
	if len(b.data)-b.pos <= len(b.data)/10 {
		b.compact()
	}
}

// compact discards data before mark.
func (b *scanBuffer) compact() {
	if b.mark == 0 {
		return
	}
	n := copy(b.data, b.data[b.mark:b.end])
	b.base += b.mark
	b.pos -= b.mark
	b.end = n
	b.mark = 0
}

// avail reports whether at least n unscanned bytes are available, reading
// more input as needed.
func (b *scanBuffer) avail(n int) bool {
	for b.end-b.pos < n {
		if !b.fill() {
			return false
		}
	}
	return true
}

// fill reads more input into the buffer, growing it if the retained token
// occupies all the available space. It reports false if no more input is
// available, either because of EOF or because of a read error.
func (b *scanBuffer) fill() bool {
	if b.eof || b.err != nil {
		return false
	}
	if b.end == len(b.data) {
		b.compact()
	}
	if b.end == len(b.data) {
		grown := make([]byte, 2*len(b.data))
		copy(grown, b.data[:b.end])
		putBuffer(b.data)
		b.data = grown
	}
	for {
		nr, err := b.src.Read(b.data[b.end:])
		b.end += nr
		if errors.Is(err, io.EOF) {
			b.eof = true
		} else if err != nil {
			b.err = err
		}
		if nr > 0 {
			return true
		} else if err != nil {
			return false
		}
	}
}

// peek returns the byte at pos without consuming it. It reports false if
// the input is exhausted.
func (b *scanBuffer) peek() (byte, bool) {
	if b.pos == b.end && !b.avail(1) {
		return 0, false
	}
	return b.data[b.pos], true
}

// peekAt returns the byte i positions after pos without consuming it.
func (b *scanBuffer) peekAt(i int) (byte, bool) {
	if !b.avail(i + 1) {
		return 0, false
	}
	return b.data[b.pos+i], true
}

// token returns the bytes from mark to pos. The result is valid only until
// the next call to fill.
func (b *scanBuffer) token() []byte { return b.data[b.mark:b.pos] }

// release returns the buffer to the pool. The scanBuffer must not be used
// afterward.
func (b *scanBuffer) release() {
	if b.data != nil {
		putBuffer(b.data)
		b.data = nil
	}
	b.pos, b.end, b.mark = 0, 0, 0
}
