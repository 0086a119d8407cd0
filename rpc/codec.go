package rpc

import (
	"bytes"
	"encoding/gob"
	"io/ioutil"

	"github.com/pierrec/lz4"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype both sides of the wire select
const CodecName = "brig"

// codec serializes messages with gob and compresses the stream with
// lz4 framing
type codec struct{}

func init() {
	encoding.RegisterCodec(codec{})
}

// Name returns the registered codec name
func (codec) Name() string {
	return CodecName
}

// Marshal serializes and compresses a message
func (codec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if err := gob.NewEncoder(zw).Encode(v); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decompresses and deserializes a message
func (codec) Unmarshal(data []byte, v interface{}) error {
	decompressed, err := ioutil.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(decompressed)).Decode(v)
}
