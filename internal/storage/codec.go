package storage

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encodeFloat64s serializes a float64 slice to little-endian bytes.
func encodeFloat64s(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// decodeFloat64s deserializes little-endian bytes into a new float64 slice.
// Returns an error if the byte slice length is not a multiple of 8
// (indicates data corruption).
func decodeFloat64s(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("byte slice length %d is not a multiple of 8", len(b))
	}
	n := len(b) / 8
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
