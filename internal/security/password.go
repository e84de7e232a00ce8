package security

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies account passwords using bcrypt.
// Each hash carries its own random salt and cost factor, and bcrypt
// compares digests in constant time.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher builds a hasher with the given bcrypt cost. Costs
// outside the supported range fall back to the bcrypt default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash produces a salted one-way hash of the plaintext password.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the stored hash. An empty
// or blank stored hash never verifies; it is not an error.
func (h *PasswordHasher) Verify(plain, storedHash string) bool {
	if strings.TrimSpace(storedHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}
