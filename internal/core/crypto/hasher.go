// Package crypto holds the two credential primitives the auth service is
// built on: a salted slow password hasher and an opaque token generator.
package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with bcrypt. Each Hash call salts
// independently, so hashing the same password twice yields different
// strings.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Costs outside the
// supported range fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a salted one-way hash of password. An error here is a
// catastrophic failure, not an authentication outcome.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A mismatch or malformed
// hash is simply false, never an error.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
