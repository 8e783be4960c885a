// Package wire encodes notifications as protobuf messages for transports that carry
// bytes. The message is a google.protobuf.Struct so consumers need no generated code.
package wire

import (
	"encoding/json"
	"fmt"

	"burako/internal/ports"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct renders n as a protobuf Struct with the same field names as its JSON form.
func ToStruct(n ports.Notification) (*structpb.Struct, error) {
	raw, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return s, nil
}

// Marshal returns the protobuf wire bytes of n.
func Marshal(n ports.Notification) ([]byte, error) {
	s, err := ToStruct(n)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// Unmarshal decodes bytes produced by Marshal back into a Notification. Event payloads
// come back as generic maps.
func Unmarshal(data []byte) (ports.Notification, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return ports.Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	raw, err := protojson.Marshal(&s)
	if err != nil {
		return ports.Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	var n ports.Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return ports.Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	return n, nil
}

// JSON renders protobuf wire bytes as indented JSON for humans.
func JSON(data []byte) (string, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("decode notification: %w", err)
	}
	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(&s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
