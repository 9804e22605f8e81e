// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// validateOpaque checks the invariants shared by all identifier
// types: non-empty, no whitespace. The identifiers are otherwise
// opaque; the server decides their shape.
func validateOpaque(kind, raw string) error {
	if raw == "" {
		return fmt.Errorf("empty %s", kind)
	}
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%s contains whitespace: %q", kind, raw)
	}
	return nil
}

// marshalIDJSON encodes an identifier as a JSON string. The zero
// value encodes as null so an unset identifier is visible on the wire
// rather than masquerading as a real (empty) one.
func marshalIDJSON(id string) ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(id)
}

// unmarshalIDJSON decodes an identifier from either a JSON string or
// a JSON number. The backend's project and task endpoints emit
// numeric identifiers while the push hub relays them as strings;
// both normalize to the same canonical string form here.
func unmarshalIDJSON(kind string, data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", nil
	}

	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return "", fmt.Errorf("invalid %s: %w", kind, err)
		}
		if raw == "" {
			return "", nil
		}
		if err := validateOpaque(kind, raw); err != nil {
			return "", err
		}
		return raw, nil
	}

	// Decode numbers through json.Number to preserve the exact
	// digits; float64 would corrupt large identifiers.
	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return "", fmt.Errorf("invalid %s: %w", kind, err)
	}
	raw := number.String()
	if err := validateOpaque(kind, raw); err != nil {
		return "", err
	}
	return raw, nil
}
