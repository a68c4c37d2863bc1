package xstake

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// Codec encodes the values stored in the contract cells.
type Codec interface {
	Name() string
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

func NewCodec(name string) (Codec, error) {
	switch name {
	case CodecJSON, "":
		return jsonCodec{}, nil
	case CodecCBOR:
		em, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return nil, err
		}
		return cborCodec{em: em}, nil
	default:
		return nil, fmt.Errorf("unknown codec:%s", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string {
	return CodecJSON
}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

type cborCodec struct {
	em cbor.EncMode
}

func (cborCodec) Name() string {
	return CodecCBOR
}

func (c cborCodec) Marshal(v interface{}) ([]byte, error) {
	return c.em.Marshal(v)
}

func (cborCodec) Unmarshal(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}
