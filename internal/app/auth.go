// internal/app/auth.go
package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// TeacherAuth checks the shared teacher access code. Only a bcrypt hash of
// the code's sha256 digest is kept after startup; the digest stays under
// bcrypt's 72-byte input limit, so every byte of the code is compared.
type TeacherAuth struct {
	hash []byte
}

func NewTeacherAuth(accessCode string) (*TeacherAuth, error) {
	if accessCode == "" {
		return nil, fmt.Errorf("teacher access code is empty")
	}
	hash, err := bcrypt.GenerateFromPassword(codeDigest(accessCode), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash access code: %w", err)
	}
	return &TeacherAuth{hash: hash}, nil
}

// Check reports an exact match of code against the configured access code.
func (a *TeacherAuth) Check(code string) bool {
	if code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.hash, codeDigest(code)) == nil
}

func codeDigest(code string) []byte {
	sum := sha256.Sum256([]byte(code))
	return []byte(hex.EncodeToString(sum[:]))
}
