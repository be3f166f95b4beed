// Package tagwire is a binary object serializer for a closed universe of Go
// types. A Builder registers root types, walks everything reachable from
// them and assigns each type a small integer id. The resulting Format
// encodes any registered value as its type id followed by a codec payload,
// and carries a digest of the registered schema so that peers can refuse
// streams written by a different type set.
//
//	f, err := tagwire.New().Register(Account{}).Build()
//	data, err := f.Marshal(acct)
//	v, err := f.Unmarshal(data)
//
// Struct fields are serialized in declaration order, with embedded structs
// after the outer fields. Unexported fields are reached through Name/SetName
// accessor pairs on the pointer type, and a field tagged `tagwire:"-"` is
// skipped. Booleans are packed into a leading flag block.
package tagwire
