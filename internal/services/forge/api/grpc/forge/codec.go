package forge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// decodeStruct maps a Struct onto a JSON-tagged Go value. Unknown fields are
// rejected when strict is set.
func decodeStruct(in *structpb.Struct, out any, strict bool) error {
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return fmt.Errorf("encode struct: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	return nil
}

// encodeStruct converts a JSON-tagged Go value into a Struct.
func encodeStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return out, nil
}
