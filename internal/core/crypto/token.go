package crypto

import "github.com/google/uuid"

// TokenGenerator mints opaque, unpredictable identifiers for sessions and
// password resets. Stateless; every call draws fresh randomness.
type TokenGenerator struct{}

// NewTokenGenerator returns a TokenGenerator.
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// Generate returns a fresh random token. Version-4 UUIDs carry 122 random
// bits, which makes collisions within the service lifetime negligible.
func (g *TokenGenerator) Generate() string {
	return uuid.NewString()
}
