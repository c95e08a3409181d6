// Package codec is the gRPC wire codec for the budget API. Messages are plain Go structs encoded
// as JSON; the codec is registered under the "json" content subtype.
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the content subtype clients select with grpc.CallContentSubtype(Name).
const Name = "json"

// JSON implements encoding.Codec.
type JSON struct{}

func init() {
	encoding.RegisterCodec(JSON{})
}

func (JSON) Marshal(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal %T: %w", v, err)
	}
	return b, nil
}

func (JSON) Unmarshal(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: unmarshal %T: %w", v, err)
	}
	return nil
}

func (JSON) Name() string { return Name }
