// Package id issues the opaque public identifiers shared by leagues,
// weeks and bets. IDs carry no ordering or tenant information; rows are
// always scoped by explicit league and week columns instead.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// idByteLength gives 128 bits of entropy, enough that public IDs never
// need a uniqueness check before insert.
const idByteLength = 16

type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, idByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
