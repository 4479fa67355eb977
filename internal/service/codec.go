package service

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec serializes plain Go structs for Connect. It is registered under the name
// "json", so it serves application/json and application/connect+json.
type jsonCodec struct{}

// Codec returns the codec used by BalanceService handlers and clients.
func Codec() connect.Codec { return jsonCodec{} }

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal into %T: %w", msg, err)
	}
	return nil
}
