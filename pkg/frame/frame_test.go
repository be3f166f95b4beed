package frame

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/tagwire/pkg/wire"
)

func TestRoundTrip(t *testing.T) {
	digest := bytes.Repeat([]byte{0xab}, 32)
	payload := bytes.Repeat([]byte("tagwire frame payload "), 64)
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		data, err := Encode(digest, payload, c)
		require.NoError(t, err)
		h, got, err := Decode(data)
		require.NoError(t, err)
		require.Equal(t, c, h.Compression, c.String())
		require.Equal(t, digest, h.Digest)
		require.Equal(t, len(payload), h.Size)
		require.Equal(t, payload, got)
		if c != CompressionNone {
			require.Less(t, len(data), len(payload))
		}
	}
}

func TestIncompressibleFallsBack(t *testing.T) {
	payload := []byte{1, 2, 3}
	data, err := Encode(nil, payload, CompressionZstd)
	require.NoError(t, err)
	h, got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, CompressionNone, h.Compression)
	require.Equal(t, payload, got)
	require.Empty(t, h.Digest)
}

func TestCorruption(t *testing.T) {
	data, err := Encode([]byte{1, 2}, []byte("hello"), CompressionNone)
	require.NoError(t, err)

	flipped := bytes.Clone(data)
	flipped[len(flipped)-6] ^= 0xff
	_, _, err = Decode(flipped)
	require.ErrorIs(t, err, ErrChecksum)

	_, _, err = Decode([]byte("XX\x01\x00\x00\x00\x00\x00"))
	require.ErrorIs(t, err, ErrNotFrame)

	_, _, err = Decode(data[:3])
	require.ErrorIs(t, err, ErrNotFrame)

	bad := bytes.Clone(data)
	bad[2] = 9
	_, _, err = Decode(bad)
	require.ErrorIs(t, err, ErrNotFrame)
}

// forge builds a frame with a valid checksum around an arbitrary header.
func forge(c Compression, size uint32, body []byte) []byte {
	out := []byte{Magic0, Magic1, Version, byte(c)}
	out = wire.AppendVarInt(out, 0)
	out = wire.AppendVarInt(out, size)
	out = wire.AppendVarInt(out, uint32(len(body)))
	out = append(out, body...)
	return binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(out[2:]))
}

func TestOversizedDeclaredSize(t *testing.T) {
	_, _, err := Decode(forge(CompressionLZ4, 1<<29, []byte{0x10, 0xaa, 0, 0}))
	require.ErrorIs(t, err, ErrTruncated)

	_, _, err = Decode(forge(CompressionZstd, 1<<29, []byte{1, 2, 3, 4}))
	require.Error(t, err)

	payload := bytes.Repeat([]byte{0}, 4096)
	data, err := Encode(nil, payload, CompressionLZ4)
	require.NoError(t, err)
	_, got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		require.Equal(t, c, got)
	}
	_, err := ParseCompression("brotli")
	require.Error(t, err)
	require.Equal(t, "unknown(7)", Compression(7).String())
}

func FuzzDecode(f *testing.F) {
	seed, _ := Encode([]byte{9}, []byte("seed"), CompressionNone)
	f.Add(seed)
	f.Fuzz(func(t *testing.T, data []byte) {
		h, payload, err := Decode(data)
		if err != nil {
			return
		}
		require.Equal(t, h.Size, len(payload))
	})
}
