package model

// TokenManager issues and verifies bearer tokens.
type TokenManager interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}
