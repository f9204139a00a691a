// Package cryptorand is a source of randomness for golang.org/x/exp/rand
// backed by crypto/rand, for when maps shouldn't be predictable.
package cryptorand

import (
	"crypto/rand"
	"encoding/binary"
)

func NewSource() Source {
	return Source{}
}

type Source struct{}

func (Source) Uint64() uint64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Seed does nothing, there's no state to seed.
func (Source) Seed(uint64) {}
