package common

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// UnmarshalAndDisallowUnknownFields decodes value into v and fails on
// properties v does not declare.
func UnmarshalAndDisallowUnknownFields(value []byte, v any) error {
	dec := jsonCodec.NewDecoder(bytes.NewReader(value))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Unmarshal decodes value into v.
func Unmarshal(value []byte, v any) error {
	return jsonCodec.Unmarshal(value, v)
}

// Marshal encodes v.
func Marshal(v any) ([]byte, error) {
	return jsonCodec.Marshal(v)
}
