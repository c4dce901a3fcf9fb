package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Stored hashes use the modular crypt format, so the scheme travels with the
// hash: "$2a$10$..." for bcrypt, "$pbkdf2-sha256$rounds$salt$sum" for the
// passlib hashes imported from the previous deployment.
const (
	SchemeBcrypt       = "bcrypt"
	SchemePBKDF2SHA256 = "pbkdf2-sha256"
)

type PasswordHasher struct {
	Cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{Cost: cost}
}

// HashPassword always produces a hash in the current scheme.
func (h *PasswordHasher) HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *PasswordHasher) CheckPassword(pw, hashed string) bool {
	switch HashScheme(hashed) {
	case SchemeBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
	case SchemePBKDF2SHA256:
		return checkPBKDF2SHA256(pw, hashed)
	default:
		return false
	}
}

// NeedsRehash reports whether hashed should be replaced on the next
// successful login.
func (h *PasswordHasher) NeedsRehash(hashed string) bool {
	if HashScheme(hashed) != SchemeBcrypt {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hashed))
	return err != nil || cost != h.Cost
}

func HashScheme(hashed string) string {
	parts := strings.SplitN(hashed, "$", 3)
	if len(parts) < 3 || parts[0] != "" {
		return ""
	}
	switch parts[1] {
	case "2a", "2b", "2y":
		return SchemeBcrypt
	case SchemePBKDF2SHA256:
		return SchemePBKDF2SHA256
	}
	return ""
}

func checkPBKDF2SHA256(pw, hashed string) bool {
	parts := strings.Split(hashed, "$")
	if len(parts) != 5 {
		return false
	}
	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return false
	}
	salt, err := decodeAB64(parts[3])
	if err != nil {
		return false
	}
	want, err := decodeAB64(parts[4])
	if err != nil || len(want) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(pw), salt, rounds, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// passlib "adapted base64": '.' instead of '+', no padding.
func decodeAB64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}
