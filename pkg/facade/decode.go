package facade

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode binds the value stored under key into target, which must be a pointer.
// Decoding is weakly typed so values restored from JSON stores (float64 numbers,
// map[string]any objects) fit typed fields. It reports false when key is not set.
func (s *Session) Decode(key string, target any, opts ...KeyOption) (bool, error) {
	if err := s.requireOpen("Decode"); err != nil {
		return false, err
	}

	raw, ok := s.backend.Values()[s.key(key, opts)]
	if !ok {
		return false, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return true, fmt.Errorf("failed to decode session value %q: %w", key, err)
	}
	return true, nil
}
