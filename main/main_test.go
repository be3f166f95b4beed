package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rawbytedev/tagwire"
	"github.com/rawbytedev/tagwire/pkg/frame"
)

type sample struct {
	Name  string
	Count int32
}

func TestInspect(t *testing.T) {
	f, err := tagwire.New().Register(sample{}).Build()
	require.NoError(t, err)
	data, err := f.MarshalFrame(sample{Name: "x", Count: 3}, frame.CompressionNone)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, inspect(&out, data, true, zap.NewNop()))
	require.Contains(t, out.String(), "compression: none")
	require.Contains(t, out.String(), "root:        type id 1")

	data[len(data)-1] ^= 0xff
	out.Reset()
	require.ErrorIs(t, inspect(&out, data, false, zap.NewNop()), frame.ErrChecksum)
	require.Contains(t, out.String(), "MISMATCH")
}

func TestRunFile(t *testing.T) {
	f, err := tagwire.New().Register(sample{}).Build()
	require.NoError(t, err)
	data, err := f.MarshalFrame(nil, frame.CompressionZstd)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "nil.tw")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	var out bytes.Buffer
	require.NoError(t, run([]string{path}, &out))
	require.Contains(t, out.String(), "root:        nil")

	out.Reset()
	require.Error(t, run(nil, &out))
	require.NoError(t, run([]string{"--help"}, &out))
	require.Contains(t, out.String(), "usage: tagwire-inspect")
}
