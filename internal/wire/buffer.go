// Package wire implements the bounded byte buffer and the DNS name
// representation the rdata codec and zone database build on (spec §4.1–§4.2).
package wire

import (
	"encoding/binary"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
)

// Buffer is a bounded byte window over a fixed-size backing array, split into
// three sub-regions per spec §4.2:
//
//	[0, current)   - consumed:  already read by the caller
//	[current, active) - the window currently being parsed
//	[active, used)  - available: written but not yet exposed to readers
//	[used, length)  - unused backing capacity
//
// The invariant 0 ≤ current ≤ active ≤ used ≤ length holds after every
// operation. Buffer never reallocates: a write that would pass length fails
// instead of growing the backing array.
type Buffer struct {
	data    []byte
	current int
	active  int
	used    int
	length  int
}

// NewBuffer allocates a Buffer with the given fixed capacity.
func NewBuffer(length int) *Buffer {
	return &Buffer{data: make([]byte, length), length: length}
}

// NewBufferFromBytes wraps an existing byte slice as a read-only Buffer:
// used is set to len(b), active defaults to used (the whole slice is
// immediately readable).
func NewBufferFromBytes(b []byte) *Buffer {
	return &Buffer{data: b, length: len(b), used: len(b), active: len(b)}
}

// Bytes returns the written region [0, used) of the backing array (for
// callers that need to hand the final wire image to a socket or file).
func (b *Buffer) Bytes() []byte { return b.data[:b.used] }

// Len returns the number of unconsumed, active bytes remaining: active - current.
func (b *Buffer) Len() int { return b.active - b.current }

// Current returns the read cursor.
func (b *Buffer) Current() int { return b.current }

// Used returns the write cursor (end of available data).
func (b *Buffer) Used() int { return b.used }

// SetActive widens or narrows the active window's upper bound. n must lie in
// [current, used]; out-of-range requests are rejected rather than silently
// clamped, per spec §4.2's "no operation reads or writes outside length".
func (b *Buffer) SetActive(n int) error {
	if n < b.current || n > b.used {
		return &errortypes.WireFormatError{Operation: "set active region", Offset: n, Message: "active bound outside [current, used]"}
	}
	b.active = n
	return nil
}

// Seek moves the read cursor to an absolute offset within [0, active].
func (b *Buffer) Seek(offset int) error {
	if offset < 0 || offset > b.active {
		return &errortypes.WireFormatError{Operation: "seek", Offset: offset, Message: "offset outside consumed/active region"}
	}
	b.current = offset
	return nil
}

// Skip advances the read cursor by n bytes within the active region.
func (b *Buffer) Skip(n int) error {
	return b.Seek(b.current + n)
}

func (b *Buffer) requireReadable(n int) error {
	if b.current+n > b.active {
		return &errortypes.WireFormatError{Operation: "read", Offset: b.current, Message: "not enough bytes in active region"}
	}
	return nil
}

// ReadUint8 reads one byte and advances the cursor.
func (b *Buffer) ReadUint8() (uint8, error) {
	if err := b.requireReadable(1); err != nil {
		return 0, err
	}
	v := b.data[b.current]
	b.current++
	return v, nil
}

// ReadUint16 reads a big-endian 16-bit integer and advances the cursor.
func (b *Buffer) ReadUint16() (uint16, error) {
	if err := b.requireReadable(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(b.data[b.current:])
	b.current += 2
	return v, nil
}

// ReadUint32 reads a big-endian 32-bit integer and advances the cursor.
func (b *Buffer) ReadUint32() (uint32, error) {
	if err := b.requireReadable(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(b.data[b.current:])
	b.current += 4
	return v, nil
}

// ReadBytes reads n raw bytes and advances the cursor. The returned slice
// aliases the buffer's backing array; callers that retain it beyond the
// buffer's lifetime must copy it themselves.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, &errortypes.WireFormatError{Operation: "read bytes", Offset: b.current, Message: "negative length"}
	}
	if err := b.requireReadable(n); err != nil {
		return nil, err
	}
	v := b.data[b.current : b.current+n]
	b.current += n
	return v, nil
}

// PeekUint8 reads one byte without advancing the cursor.
func (b *Buffer) PeekUint8() (uint8, error) {
	if err := b.requireReadable(1); err != nil {
		return 0, err
	}
	return b.data[b.current], nil
}

func (b *Buffer) requireWritable(n int) error {
	if b.used+n > b.length {
		return &errortypes.ResourceError{Operation: "write", Kind: "space", Message: "destination buffer too small"}
	}
	return nil
}

// WriteUint8 appends one byte to the available region.
func (b *Buffer) WriteUint8(v uint8) error {
	if err := b.requireWritable(1); err != nil {
		return err
	}
	b.data[b.used] = v
	b.used++
	b.active = b.used
	return nil
}

// WriteUint16 appends a big-endian 16-bit integer.
func (b *Buffer) WriteUint16(v uint16) error {
	if err := b.requireWritable(2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b.data[b.used:], v)
	b.used += 2
	b.active = b.used
	return nil
}

// WriteUint32 appends a big-endian 32-bit integer.
func (b *Buffer) WriteUint32(v uint32) error {
	if err := b.requireWritable(4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(b.data[b.used:], v)
	b.used += 4
	b.active = b.used
	return nil
}

// WriteBytes appends raw bytes.
func (b *Buffer) WriteBytes(p []byte) error {
	if err := b.requireWritable(len(p)); err != nil {
		return err
	}
	n := copy(b.data[b.used:], p)
	b.used += n
	b.active = b.used
	return nil
}

// PutUint16At overwrites a previously written 16-bit field at an absolute
// offset, used for RDLENGTH backpatching once a variable-length rdata body
// has been emitted.
func (b *Buffer) PutUint16At(offset int, v uint16) error {
	if offset < 0 || offset+2 > b.used {
		return &errortypes.WireFormatError{Operation: "patch uint16", Offset: offset, Message: "offset outside written region"}
	}
	binary.BigEndian.PutUint16(b.data[offset:], v)
	return nil
}
