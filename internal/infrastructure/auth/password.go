package auth

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 12

// PasswordHasher hashes and checks customer passwords with bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher. A cost of 0 uses the default cost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash
func (h *PasswordHasher) Verify(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
