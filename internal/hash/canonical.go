// Package hash implements the deterministic content-addressing scheme for
// the persistent AST (spec §4.C): a canonical binary serialization of a
// node's kind, fields and children hashes, reduced to a 32-byte SHA-256
// digest. Two independent implementations of this package must produce
// byte-identical output for the same AST.
package hash

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer accumulates canonical bytes. It never errors — all writes are
// well-defined for any Go value passed in — so callers chain calls freely.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf }

// WriteByte appends a single raw byte (used for tag bytes and booleans).
func (w *Writer) WriteByte(b byte) { w.buf = append(w.buf, b) }

// WriteBool appends a single 0/1 byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

// WritePresence appends a presence byte; callers follow up with the value
// only when present is true.
func (w *Writer) WritePresence(present bool) { w.WriteBool(present) }

// WriteVarint appends an unsigned LEB128 varint.
func (w *Writer) WriteVarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf = append(w.buf, tmp[:n]...)
}

// WriteZigzag appends a signed integer as a zig-zag-encoded varint.
func (w *Writer) WriteZigzag(v int64) {
	zz := uint64((v << 1) ^ (v >> 63))
	w.WriteVarint(zz)
}

// WriteFloat appends an IEEE-754 double in little-endian byte order.
func (w *Writer) WriteFloat(v float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	w.buf = append(w.buf, tmp[:]...)
}

// WriteText appends varint(len) followed by the UTF-8 bytes of s.
func (w *Writer) WriteText(s string) {
	w.WriteVarint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteDigest appends a 32-byte content hash verbatim (no length prefix —
// its length is fixed).
func (w *Writer) WriteDigest(d [32]byte) {
	w.buf = append(w.buf, d[:]...)
}

// WriteCount appends varint(n) — the count prefix for a list field.
func (w *Writer) WriteCount(n int) { w.WriteVarint(uint64(n)) }

// Reader consumes canonical bytes produced by Writer, one primitive at a
// time. VerifyUnit (binary.go) does not use it: it checks container
// framing and the footer without decoding the payload.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, fmt.Errorf("hash: unexpected end of input reading byte")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (r *Reader) ReadVarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("hash: malformed varint")
	}
	r.pos += n
	return v, nil
}

func (r *Reader) ReadZigzag() (int64, error) {
	zz, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return int64(zz>>1) ^ -int64(zz&1), nil
}

func (r *Reader) ReadFloat() (float64, error) {
	if r.Remaining() < 8 {
		return 0, fmt.Errorf("hash: unexpected end of input reading float")
	}
	bits := binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

func (r *Reader) ReadText() (string, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return "", err
	}
	if uint64(r.Remaining()) < n {
		return "", fmt.Errorf("hash: unexpected end of input reading text")
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *Reader) ReadDigest() ([32]byte, error) {
	var d [32]byte
	if r.Remaining() < 32 {
		return d, fmt.Errorf("hash: unexpected end of input reading digest")
	}
	copy(d[:], r.buf[r.pos:r.pos+32])
	r.pos += 32
	return d, nil
}

func (r *Reader) ReadCount() (int, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
