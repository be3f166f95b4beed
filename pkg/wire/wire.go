// Package wire holds the low-level encodings shared by every tagwire codec:
// base-128 varints, big-endian IEEE-754 floats and length-prefixed byte runs.
//
// Streams are driven through Writer and Reader, which are io.Writer and
// io.Reader with single-byte access. NewWriter and NewReader adapt plain
// streams without buffering, so a Reader never consumes bytes past the
// value being decoded.
package wire

import (
	"errors"
	"io"
	"math"
)

var (
	// ErrUnexpectedEOF is returned when the source ends before a required
	// byte, length or payload was fully read.
	ErrUnexpectedEOF = errors.New("wire: unexpected end of stream")
	// ErrOverflow is returned when a decoded length exceeds the caller's limit.
	ErrOverflow = errors.New("wire: length exceeds limit")
)

// Writer is the sink every codec writes to.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// Reader is the source every codec reads from.
type Reader interface {
	io.Reader
	io.ByteReader
}

type byteWriter struct {
	io.Writer
	one [1]byte
}

func (b *byteWriter) WriteByte(c byte) error {
	b.one[0] = c
	_, err := b.Write(b.one[:])
	return err
}

type byteReader struct {
	io.Reader
	one [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.Reader, b.one[:]); err != nil {
		return 0, err
	}
	return b.one[0], nil
}

// NewWriter returns w itself when it already supports WriteByte.
func NewWriter(w io.Writer) Writer {
	if bw, ok := w.(Writer); ok {
		return bw
	}
	return &byteWriter{Writer: w}
}

// NewReader returns r itself when it already supports ReadByte.
func NewReader(r io.Reader) Reader {
	if br, ok := r.(Reader); ok {
		return br
	}
	return &byteReader{Reader: r}
}

func eof(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	return err
}

// ReadByte reads one byte, mapping end of stream to ErrUnexpectedEOF.
func ReadByte(r Reader) (byte, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, eof(err)
	}
	return c, nil
}

// Fill reads exactly len(buf) bytes. A source that runs dry first fails
// with ErrUnexpectedEOF.
func Fill(r Reader, buf []byte) error {
	off := 0
	for off < len(buf) {
		n, err := r.Read(buf[off:])
		off += n
		if off == len(buf) {
			return nil
		}
		if err != nil {
			return eof(err)
		}
		if n == 0 {
			// io.Reader allows (0, nil); retry through the byte path so a
			// misbehaving source cannot spin forever.
			c, err := ReadByte(r)
			if err != nil {
				return err
			}
			buf[off] = c
			off++
		}
	}
	return nil
}

// WriteVarInt writes v in 1 to 5 base-128 groups, low group first.
func WriteVarInt(w Writer, v uint32) error {
	for v >= 0x80 {
		if err := w.WriteByte(byte(v) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return w.WriteByte(byte(v))
}

// ReadVarInt is the inverse of WriteVarInt. The fifth group carries the
// top four bits and is taken as is.
func ReadVarInt(r Reader) (uint32, error) {
	var x uint32
	for s := uint(0); s < 28; s += 7 {
		c, err := ReadByte(r)
		if err != nil {
			return 0, err
		}
		x |= uint32(c&0x7f) << s
		if c&0x80 == 0 {
			return x, nil
		}
	}
	c, err := ReadByte(r)
	if err != nil {
		return 0, err
	}
	return x | uint32(c)<<28, nil
}

// WriteVarLong writes v in 1 to 9 groups. Eight 7-bit groups are followed,
// when needed, by a ninth byte holding the remaining 8 bits verbatim.
func WriteVarLong(w Writer, v uint64) error {
	for i := 0; i < 8; i++ {
		if v < 0x80 {
			return w.WriteByte(byte(v))
		}
		if err := w.WriteByte(byte(v) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return w.WriteByte(byte(v))
}

// ReadVarLong is the inverse of WriteVarLong.
func ReadVarLong(r Reader) (uint64, error) {
	var x uint64
	for s := uint(0); s < 56; s += 7 {
		c, err := ReadByte(r)
		if err != nil {
			return 0, err
		}
		x |= uint64(c&0x7f) << s
		if c&0x80 == 0 {
			return x, nil
		}
	}
	c, err := ReadByte(r)
	if err != nil {
		return 0, err
	}
	return x | uint64(c)<<56, nil
}

// SizeVarInt returns the encoded width of v.
func SizeVarInt(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// AppendVarInt appends the WriteVarInt encoding of v to dst.
func AppendVarInt(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// ConsumeVarInt decodes a varint from the front of b and returns the value
// and the number of bytes used, or n == 0 when b is truncated.
func ConsumeVarInt(b []byte) (v uint32, n int) {
	for i, c := range b {
		if i == 4 {
			return v | uint32(c)<<28, 5
		}
		v |= uint32(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			return v, i + 1
		}
	}
	return 0, 0
}

func WriteBool(w Writer, v bool) error {
	if v {
		return w.WriteByte(1)
	}
	return w.WriteByte(0)
}

func ReadBool(r Reader) (bool, error) {
	c, err := ReadByte(r)
	return c != 0, err
}

// WriteFloat32 writes the IEEE-754 bit pattern of v, big-endian.
func WriteFloat32(w Writer, v float32) error {
	bits := math.Float32bits(v)
	_, err := w.Write([]byte{byte(bits >> 24), byte(bits >> 16), byte(bits >> 8), byte(bits)})
	return err
}

func ReadFloat32(r Reader) (float32, error) {
	var b [4]byte
	if err := Fill(r, b[:]); err != nil {
		return 0, err
	}
	bits := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return math.Float32frombits(bits), nil
}

// WriteFloat64 writes the IEEE-754 bit pattern of v, big-endian.
func WriteFloat64(w Writer, v float64) error {
	bits := math.Float64bits(v)
	var b [8]byte
	for i := range b {
		b[i] = byte(bits >> (56 - 8*i))
	}
	_, err := w.Write(b[:])
	return err
}

func ReadFloat64(r Reader) (float64, error) {
	var b [8]byte
	if err := Fill(r, b[:]); err != nil {
		return 0, err
	}
	var bits uint64
	for _, c := range b {
		bits = bits<<8 | uint64(c)
	}
	return math.Float64frombits(bits), nil
}

// WriteBytes writes a varint byte count followed by b.
func WriteBytes(w Writer, b []byte) error {
	if err := WriteVarInt(w, uint32(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	_, err := w.Write(b)
	return err
}

// ReadBytes reads a WriteBytes run of at most max bytes.
func ReadBytes(r Reader, max int) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(max) {
		return nil, ErrOverflow
	}
	b := make([]byte, n)
	if err := Fill(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteString writes the UTF-8 bytes of s with a varint byte count. The
// empty string is the single byte 0.
func WriteString(w Writer, s string) error {
	if err := WriteVarInt(w, uint32(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a WriteString value of at most max bytes.
func ReadString(r Reader, max int) (string, error) {
	b, err := ReadBytes(r, max)
	return string(b), err
}
