// Package frame wraps an encoded value for storage or transport. A frame
// carries the schema digest of the format that wrote it, an optionally
// compressed payload and a CRC32 over everything after the magic.
//
//	magic "TW" | version | flags | digest | size | payload | crc32 (LE)
//
// digest and payload are varint length-prefixed, size is the varint
// uncompressed payload length and flags holds the Compression tag.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/rawbytedev/tagwire/pkg/wire"
)

const (
	Magic0  = 'T'
	Magic1  = 'W'
	Version = 1
)

// MaxPayload bounds the uncompressed size a frame may declare.
const MaxPayload = 1 << 30

var (
	ErrNotFrame  = errors.New("frame: bad magic or version")
	ErrChecksum  = errors.New("frame: crc mismatch")
	ErrTruncated = errors.New("frame: truncated")
)

// Header is the decoded frame prelude.
type Header struct {
	Version     byte
	Compression Compression
	Digest      []byte
	Size        int
	CRC         uint32
}

// Encode builds a frame. When the payload does not shrink under c it is
// stored uncompressed and the flags byte says so.
func Encode(digest, payload []byte, c Compression) ([]byte, error) {
	body, err := compress(payload, c)
	if errors.Is(err, errIncompressible) {
		body, c = payload, CompressionNone
	} else if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 16+len(digest)+len(body))
	out = append(out, Magic0, Magic1, Version, byte(c))
	out = wire.AppendVarInt(out, uint32(len(digest)))
	out = append(out, digest...)
	out = wire.AppendVarInt(out, uint32(len(payload)))
	out = wire.AppendVarInt(out, uint32(len(body)))
	out = append(out, body...)
	out = binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(out[2:]))
	return out, nil
}

// ReadHeader parses and checks everything but the payload body. It returns
// the header and the still-compressed body.
func ReadHeader(data []byte) (Header, []byte, error) {
	var h Header
	if len(data) < 2+2+4 || data[0] != Magic0 || data[1] != Magic1 {
		return h, nil, ErrNotFrame
	}
	if data[2] != Version {
		return h, nil, fmt.Errorf("%w: version %d", ErrNotFrame, data[2])
	}
	end := len(data) - 4
	h.Version, h.Compression = data[2], Compression(data[3])
	h.CRC = binary.LittleEndian.Uint32(data[end:])
	if crc32.ChecksumIEEE(data[2:end]) != h.CRC {
		return h, nil, ErrChecksum
	}
	rest := data[4:end]
	digest, rest, err := chunk(rest)
	if err != nil {
		return h, nil, err
	}
	size, n := wire.ConsumeVarInt(rest)
	if n == 0 {
		return h, nil, ErrTruncated
	}
	if size > MaxPayload {
		return h, nil, fmt.Errorf("%w: declared size %d", ErrTruncated, size)
	}
	body, rest, err := chunk(rest[n:])
	if err != nil {
		return h, nil, err
	}
	if len(rest) != 0 {
		return h, nil, fmt.Errorf("%w: %d stray bytes before crc", ErrTruncated, len(rest))
	}
	h.Digest, h.Size = digest, int(size)
	return h, body, nil
}

// Decode verifies a frame and returns its header and uncompressed payload.
func Decode(data []byte) (Header, []byte, error) {
	h, body, err := ReadHeader(data)
	if err != nil {
		return h, nil, err
	}
	payload, err := decompress(body, h.Compression, h.Size)
	if err != nil {
		return h, nil, err
	}
	return h, payload, nil
}

func chunk(b []byte) ([]byte, []byte, error) {
	l, n := wire.ConsumeVarInt(b)
	if n == 0 || uint64(l) > uint64(len(b)-n) {
		return nil, nil, ErrTruncated
	}
	return b[n : n+int(l)], b[n+int(l):], nil
}
