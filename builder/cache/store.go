package cache

import "fmt"

// pack prefixes the encoded entry with its compression type, compressing
// anything at or above RawThreshold.
func (m *Manager) pack(data []byte) []byte {
	if len(data) < RawThreshold {
		out := make([]byte, 0, len(data)+1)
		out = append(out, byte(CompressionNone))
		return append(out, data...)
	}
	out := []byte{byte(CompressionZstd)}
	return m.encoder.EncodeAll(data, out)
}

func (m *Manager) unpack(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, fmt.Errorf("empty cache entry")
	}
	switch CompressionType(stored[0]) {
	case CompressionNone:
		return append([]byte(nil), stored[1:]...), nil
	case CompressionZstd:
		return m.decoder.DecodeAll(stored[1:], nil)
	default:
		return nil, fmt.Errorf("unknown compression type %d", stored[0])
	}
}
