package oib

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"strconv"
)

// Source supplies uniformly distributed integers in [0, n).
//
// *math/rand.Rand satisfies Source. It is not safe for concurrent use, so a
// Generator built on one must not be shared across goroutines without
// external locking; give each goroutine its own Generator instead.
type Source interface {
	Intn(n int) int
}

// Generator produces random, checksum-valid identifiers for testing.
type Generator struct {
	src Source
}

// NewGenerator returns a Generator drawing digits from src.
func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// NewSeededGenerator returns a Generator backed by math/rand with a fixed seed.
func NewSeededGenerator(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed))) //nolint:gosec // test identifiers, not secrets
}

// NewRandomGenerator returns a Generator seeded from crypto/rand.
func NewRandomGenerator() *Generator {
	return NewSeededGenerator(CryptoSeed())
}

// CryptoSeed returns a seed read from crypto/rand.
func CryptoSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("oib: crypto/rand unavailable: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// Generate returns a new eleven digit identifier: ten independent uniform
// digits followed by their check digit. The result always passes Validate:
// no run of eleven identical digits satisfies the checksum, so the degenerate
// rejections can never trigger here.
func (g *Generator) Generate() string {
	payload := g.Payload()
	return payload + strconv.Itoa(CheckDigit(payload))
}

// Payload draws ten random digits.
func (g *Generator) Payload() string {
	var buf [PayloadLength]byte
	for i := range buf {
		buf[i] = byte('0' + g.src.Intn(10))
	}
	return string(buf[:])
}
