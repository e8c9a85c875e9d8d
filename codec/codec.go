// Package codec centralizes the JSON encoding of manifests and sink payloads.
//
// Array store manifests record the codec name so an artifact is always read
// back with the codec that wrote it.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// AppendLine encodes v with c, appends it to dst and terminates it with a
// newline. A nil codec selects Default.
func AppendLine(c Codec, dst []byte, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		return dst, fmt.Errorf("codec %s: %w", c.Name(), err)
	}
	dst = append(dst, b...)
	return append(dst, '\n'), nil
}
