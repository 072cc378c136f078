// Package pin turns student view codes into lookup digests.
//
// Digests are unsalted per record so that a lookup can recompute them from
// the code alone. With a low-entropy code space this is brute-forceable by
// anyone holding the table; a deployment pepper keeps that attack off the
// table unless the pepper leaks too.
package pin

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

type Hasher struct {
	pepper []byte
}

func NewHasher(pepper string) *Hasher {
	return &Hasher{pepper: []byte(pepper)}
}

// Digest returns 64 lowercase hex chars: sha256(pin) without a pepper,
// HMAC-SHA256(pepper, pin) with one.
func (h *Hasher) Digest(pin string) string {
	if len(h.pepper) == 0 {
		sum := sha256.Sum256([]byte(pin))
		return hex.EncodeToString(sum[:])
	}
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(pin))
	return hex.EncodeToString(mac.Sum(nil))
}

// Hint is the last two characters of the pin, shown to the teacher only.
func Hint(pin string) string {
	r := []rune(pin)
	if len(r) <= 2 {
		return string(r)
	}
	return string(r[len(r)-2:])
}

// Normalize trims what a student is likely to paste around the code.
func Normalize(pin string) string {
	return strings.TrimSpace(pin)
}
