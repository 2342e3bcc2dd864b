package service

import (
	"crypto/rand"
	"fmt"

	"github.com/famlink/family-api/internal/core/domain"
)

// newInviteCode draws a fresh 8-character invite code from the unambiguous
// alphabet. The alphabet length divides 256, so byte-mod carries no bias.
func newInviteCode() (string, error) {
	buf := make([]byte, domain.InviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("invite code entropy: %w", err)
	}
	code := make([]byte, domain.InviteCodeLength)
	for i, b := range buf {
		code[i] = domain.InviteCodeAlphabet[int(b)%len(domain.InviteCodeAlphabet)]
	}
	return string(code), nil
}
