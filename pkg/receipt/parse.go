package receipt

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parse parses a payload from JSON bytes
func Parse(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}

	return &p, nil
}

// ParseFile parses a payload from a JSON file on disk
func ParseFile(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}

	return Parse(data)
}

// ToJSON converts a Payload to indented JSON bytes
func (p *Payload) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
