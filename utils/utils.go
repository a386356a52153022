package utils

import (
	"encoding/binary"
	"github.com/twmb/murmur3"
	"math"
)

// HashFloats hashes the exact bit pattern of the values, so tables that differ
// only in float rounding hash differently.
func HashFloats(vals []float64) uint64 {
	hash := murmur3.New64()
	buf := make([]byte, 8)
	for _, v := range vals {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		_, err := hash.Write(buf)
		if err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}
