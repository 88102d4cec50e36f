package minigame

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Shuffler decides the draft order when a session starts.
type Shuffler interface {
	Shuffle(players []string) []string
}

// SeededShuffler produces the same order for the same seed and input.
type SeededShuffler struct {
	Seed1 uint64
	Seed2 uint64
}

func (s SeededShuffler) Shuffle(players []string) []string {
	out := append([]string(nil), players...)
	r := rand.New(rand.NewPCG(s.Seed1, s.Seed2))
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// RandomShuffler seeds a fresh SeededShuffler from crypto randomness on
// every call.
type RandomShuffler struct{}

func (RandomShuffler) Shuffle(players []string) []string {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand never fails on supported platforms; keep input order if it does.
		return append([]string(nil), players...)
	}
	return SeededShuffler{
		Seed1: binary.LittleEndian.Uint64(seed[:8]),
		Seed2: binary.LittleEndian.Uint64(seed[8:]),
	}.Shuffle(players)
}

// ShufflerFunc adapts a function to Shuffler.
type ShufflerFunc func(players []string) []string

func (f ShufflerFunc) Shuffle(players []string) []string {
	return f(players)
}

// KeepOrder leaves the roster untouched.
var KeepOrder = ShufflerFunc(func(players []string) []string {
	return append([]string(nil), players...)
})
