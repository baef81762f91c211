package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of a raw password. The salt is generated
// per call, so hashing the same password twice yields different hashes.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CheckPassword reports whether password matches hash. Any internal failure
// (including an empty or corrupt hash) reads as a mismatch; the comparison
// itself is constant-time inside bcrypt.
func CheckPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
