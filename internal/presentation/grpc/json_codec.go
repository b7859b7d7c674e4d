package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// codecName is the content subtype clients select with
// grpc.CallContentSubtype to exchange JSON messages.
const codecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec encodes the service's plain Go messages with encoding/json.
// Generated proto messages, such as the health service's, go through
// protojson so they keep their canonical JSON mapping.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if m, ok := v.(proto.Message); ok {
		b, err = protojson.Marshal(m)
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	var err error
	if m, ok := v.(proto.Message); ok {
		err = protojson.Unmarshal(data, m)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return nil
}

func (jsonCodec) Name() string {
	return codecName
}
