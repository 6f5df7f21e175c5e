package certificate

import (
	"strings"

	"github.com/google/uuid"
)

const (
	certificateNumberLength = 12
	verificationCodeLength  = 16
)

// randomCode returns n upper-case hex characters drawn from a random UUID.
// Uniqueness is enforced by the store, not here.
func randomCode(n int) string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:n]
}

// NormalizeCode canonicalizes a user supplied verification code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
