// Package random provides the buffered byte-stream generator used by the
// simulation. A fixed buffer is filled once and then read cyclically, so a
// seeded buffer replays the exact same sequence of draws.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/MichaelTJones/pcg"
)

// BufferSize is the number of bytes drawn at construction
const BufferSize = 1024

// pcgSequence selects the PCG stream; any odd constant works.
const pcgSequence = 0xda3e39cb94b95bdb

// Random reads a fixed buffer of bytes and derives bit, integer and float
// draws from it. It is not safe for concurrent use.
type Random struct {
	buf [BufferSize]byte
	pos int
}

// New fills the buffer from the platform entropy source
func New() *Random {
	r, err := NewFromReader(rand.Reader)
	if err != nil {
		// crypto/rand.Reader does not fail on supported platforms
		panic(fmt.Sprintf("random: entropy source failed: %v", err))
	}
	return r
}

// NewFromReader fills the buffer from src
func NewFromReader(src io.Reader) (*Random, error) {
	r := &Random{}
	if _, err := io.ReadFull(src, r.buf[:]); err != nil {
		return nil, fmt.Errorf("failed to fill random buffer: %w", err)
	}
	return r, nil
}

// NewSeeded fills the buffer from a PCG32 stream so that runs are reproducible
func NewSeeded(seed uint64) *Random {
	gen := pcg.NewPCG32()
	gen.Seed(seed, pcgSequence)

	r := &Random{}
	for i := 0; i < BufferSize; i += 4 {
		binary.LittleEndian.PutUint32(r.buf[i:], gen.Random())
	}
	return r
}

// NewFromBytes builds a generator whose buffer starts with data. Remaining
// bytes are zero. Mostly useful in tests.
func NewFromBytes(data []byte) *Random {
	r := &Random{}
	copy(r.buf[:], data)
	return r
}

// Next returns the next byte, wrapping to the start of the buffer
func (r *Random) Next() byte {
	b := r.buf[r.pos]
	r.pos = (r.pos + 1) % BufferSize
	return b
}

// NextBits returns the low n bits of the next byte. n == 0 returns 0 and
// does not consume a byte; n > 7 returns the whole byte.
func (r *Random) NextBits(n uint) int {
	if n == 0 {
		return 0
	}
	b := r.Next()
	if n > 7 {
		return int(b)
	}
	return int(b & (1<<n - 1))
}

// NextFloat returns a value in [0, 1] built from two bytes, low byte first
func (r *Random) NextFloat() float64 {
	lo := uint16(r.Next())
	hi := uint16(r.Next())
	return float64(lo|hi<<8) / 65535
}

// Bounded returns floor(NextFloat()*max), or 0 when max <= 0
func (r *Random) Bounded(max int) int {
	if max <= 0 {
		return 0
	}
	return int(r.NextFloat() * float64(max))
}
