package credentials

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production wiring.
const DefaultCost = bcrypt.DefaultCost

// Hasher hashes and verifies passwords using bcrypt. The work factor
// is fixed at construction so tests can lower it.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted one-way digest of the plaintext password.
// bcrypt generates a fresh random salt per call, so hashing the same
// password twice yields different digests.
func (h *Hasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether the plaintext password matches the stored
// digest. Malformed digests verify as a plain mismatch, so callers
// cannot distinguish the two cases.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
