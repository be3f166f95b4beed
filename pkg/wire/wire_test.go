package wire

import (
	"bytes"
	"io"
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarIntWidths(t *testing.T) {
	cases := []struct {
		v    uint32
		size int
	}{
		{0, 1}, {127, 1}, {128, 2}, {16383, 2}, {16384, 3},
		{2097151, 3}, {2097152, 4}, {268435455, 4}, {268435456, 5},
		{math.MaxUint32, 5},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, c.v))
		require.Equal(t, c.size, buf.Len(), "value %d", c.v)
		require.Equal(t, c.size, SizeVarInt(c.v))
		got, err := ReadVarInt(&buf)
		require.NoError(t, err)
		require.Equal(t, c.v, got)
		require.Zero(t, buf.Len())
	}
}

func TestVarIntKnownBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarInt(&buf, 300))
	require.Equal(t, []byte{0xac, 0x02}, buf.Bytes())

	buf.Reset()
	// -1 sign-extended to 32 bits takes the full five bytes.
	neg := int32(-1)
	require.NoError(t, WriteVarInt(&buf, uint32(neg)))
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, buf.Bytes())
}

func TestVarLongNineBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarLong(&buf, math.MaxUint64))
	require.Equal(t, 9, buf.Len())
	require.Equal(t, byte(0xff), buf.Bytes()[8])
	got, err := ReadVarLong(&buf)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), got)

	buf.Reset()
	require.NoError(t, WriteVarLong(&buf, 1<<56))
	require.Equal(t, 9, buf.Len())
	require.Equal(t, byte(0x01), buf.Bytes()[8])
}

func TestVarRoundTripQuick(t *testing.T) {
	condition := func(a uint32, b uint64, c int64) bool {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, a))
		require.NoError(t, WriteVarLong(&buf, b))
		require.NoError(t, WriteVarLong(&buf, uint64(c)))
		ra, err := ReadVarInt(&buf)
		require.NoError(t, err)
		rb, err := ReadVarLong(&buf)
		require.NoError(t, err)
		rc, err := ReadVarLong(&buf)
		require.NoError(t, err)
		return ra == a && rb == b && int64(rc) == c
	}
	if err := quick.Check(condition, &quick.Config{}); err != nil {
		t.Errorf("Error: %v", err)
	}
}

func TestAppendConsume(t *testing.T) {
	condition := func(v uint32) bool {
		b := AppendVarInt(nil, v)
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, v))
		got, n := ConsumeVarInt(b)
		return bytes.Equal(b, buf.Bytes()) && got == v && n == len(b)
	}
	if err := quick.Check(condition, &quick.Config{}); err != nil {
		t.Errorf("Error: %v", err)
	}
	_, n := ConsumeVarInt([]byte{0x80, 0x80})
	assert.Zero(t, n)
}

func TestFloatsBigEndian(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFloat32(&buf, 1.0))
	require.Equal(t, []byte{0x3f, 0x80, 0x00, 0x00}, buf.Bytes())
	f32, err := ReadFloat32(&buf)
	require.NoError(t, err)
	require.Equal(t, float32(1.0), f32)

	require.NoError(t, WriteFloat64(&buf, -2.5))
	require.Equal(t, []byte{0xc0, 0x04, 0, 0, 0, 0, 0, 0}, buf.Bytes())
	f64, err := ReadFloat64(&buf)
	require.NoError(t, err)
	require.Equal(t, -2.5, f64)

	require.NoError(t, WriteFloat64(&buf, math.NaN()))
	f64, err = ReadFloat64(&buf)
	require.NoError(t, err)
	require.True(t, math.IsNaN(f64))
}

func TestTruncatedInput(t *testing.T) {
	_, err := ReadVarInt(bytes.NewReader([]byte{0x80}))
	require.ErrorIs(t, err, ErrUnexpectedEOF)
	_, err = ReadVarLong(bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrUnexpectedEOF)
	_, err = ReadFloat64(bytes.NewReader([]byte{1, 2, 3}))
	require.ErrorIs(t, err, ErrUnexpectedEOF)

	buf := make([]byte, 4)
	err = Fill(bytes.NewReader([]byte{1, 2}), buf)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
	require.NoError(t, Fill(bytes.NewReader([]byte{1, 2, 3, 4}), buf))
	require.Equal(t, []byte{1, 2, 3, 4}, buf)
}

func TestStrings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, ""))
	require.Equal(t, []byte{0}, buf.Bytes())
	require.NoError(t, WriteString(&buf, "héllo"))
	s, err := ReadString(&buf, 16)
	require.NoError(t, err)
	require.Empty(t, s)
	s, err = ReadString(&buf, 16)
	require.NoError(t, err)
	require.Equal(t, "héllo", s)

	require.NoError(t, WriteString(&buf, "too long"))
	_, err = ReadString(&buf, 3)
	require.ErrorIs(t, err, ErrOverflow)
}

type plainWriter struct{ b []byte }

func (p *plainWriter) Write(b []byte) (int, error) {
	p.b = append(p.b, b...)
	return len(b), nil
}

type plainReader struct{ b []byte }

func (p *plainReader) Read(b []byte) (int, error) {
	if len(p.b) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.b)
	p.b = p.b[n:]
	return n, nil
}

func TestAdapters(t *testing.T) {
	pw := &plainWriter{}
	w := NewWriter(pw)
	require.NoError(t, WriteVarInt(w, 1000))
	require.NoError(t, WriteBytes(w, []byte("ab")))

	r := NewReader(&plainReader{b: pw.b})
	v, err := ReadVarInt(r)
	require.NoError(t, err)
	require.Equal(t, uint32(1000), v)
	b, err := ReadBytes(r, 10)
	require.NoError(t, err)
	require.Equal(t, []byte("ab"), b)
	_, err = ReadByte(r)
	require.ErrorIs(t, err, ErrUnexpectedEOF)

	var buf bytes.Buffer
	require.Same(t, &buf, NewWriter(&buf))
}

func FuzzReadVarLong(f *testing.F) {
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	f.Add([]byte{0x00})
	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := ReadVarLong(bytes.NewReader(data))
		if err != nil {
			require.ErrorIs(t, err, ErrUnexpectedEOF)
			return
		}
		var buf bytes.Buffer
		require.NoError(t, WriteVarLong(&buf, v))
		again, err := ReadVarLong(&buf)
		require.NoError(t, err)
		require.Equal(t, v, again)
	})
}

func BenchmarkWriteVarLong(b *testing.B) {
	var buf bytes.Buffer
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		_ = WriteVarLong(&buf, uint64(i)<<20)
	}
}
