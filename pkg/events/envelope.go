package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Envelope is the serialized form of a raised event, used by the replay
// command and the spool directory. JSON documents are accepted as YAML.
//
//	kind: member-roles-assigned
//	principal: 7
//	remote_addr: 10.0.0.4
//	payload:
//	  member_ids: [1, 2]
//	  roles: [editors]
type Envelope struct {
	Kind       Kind      `yaml:"kind"`
	Principal  *int      `yaml:"principal,omitempty"`
	RemoteAddr string    `yaml:"remote_addr,omitempty"`
	Payload    yaml.Node `yaml:"payload"`
}

// ReadEnvelope decodes an envelope and its payload
func ReadEnvelope(r io.Reader) (*Envelope, any, error) {
	var env Envelope
	if err := yaml.NewDecoder(r).Decode(&env); err != nil {
		return nil, nil, fmt.Errorf("failed to decode event envelope: %w", err)
	}

	payload, err := NewPayload(env.Kind)
	if err != nil {
		return nil, nil, err
	}
	if !env.Payload.IsZero() {
		if err := env.Payload.Decode(payload); err != nil {
			return nil, nil, fmt.Errorf("failed to decode %s payload: %w", env.Kind, err)
		}
	}
	return &env, payload, nil
}

// DecodeJSON decodes a JSON payload for kind
func DecodeJSON(kind Kind, data []byte) (any, error) {
	payload, err := NewPayload(kind)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return payload, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return payload, nil
}
