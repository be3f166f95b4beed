package tagwire

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/tagwire/internal/common"
	"github.com/rawbytedev/tagwire/pkg/frame"
)

// SchemaEntry describes one registered type.
type SchemaEntry struct {
	ID       uint32   `yaml:"id"`
	Type     string   `yaml:"type"`
	Strategy string   `yaml:"strategy"`
	Fields   []string `yaml:"fields,omitempty"`
}

// Schema lists the registered types in id order. Struct entries list their
// fields in wire order.
func (f *Format) Schema() []SchemaEntry {
	out := make([]SchemaEntry, 0, len(f.entries))
	for _, e := range f.entries {
		se := SchemaEntry{ID: e.id, Type: common.TypeName(e.typ), Strategy: e.strategy.String()}
		if e.layout != nil {
			se.Fields = e.layout.fieldTags()
		}
		out = append(out, se)
	}
	return out
}

// SchemaYAML renders Schema with the digest, for diffing two peers whose
// hashes disagree.
func (f *Format) SchemaYAML() ([]byte, error) {
	doc := struct {
		Digest string        `yaml:"digest"`
		Types  []SchemaEntry `yaml:"types"`
	}{fmt.Sprintf("%x", f.digest), f.Schema()}
	return yaml.Marshal(doc)
}

// MarshalFrame encodes v and wraps it in a frame stamped with the schema
// digest.
func (f *Format) MarshalFrame(v any, c frame.Compression) ([]byte, error) {
	payload, err := f.Marshal(v)
	if err != nil {
		return nil, err
	}
	return frame.Encode(f.digest, payload, c)
}

// UnmarshalFrame checks the frame and its digest before decoding the value.
func (f *Format) UnmarshalFrame(data []byte) (any, error) {
	h, payload, err := frame.Decode(data)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(h.Digest, f.digest) {
		return nil, fmt.Errorf("%w: frame %x, format %x", ErrSchemaMismatch, h.Digest, f.digest)
	}
	return f.Unmarshal(payload)
}
