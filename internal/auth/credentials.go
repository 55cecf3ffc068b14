package auth

import (
	"crypto/subtle"
	"strings"
)

// phcPrefix marks a password stored as an Argon2id PHC hash rather than
// plaintext.
const phcPrefix = "$argon2id$"

// VerifyCredentials checks a login attempt against the configured API user.
//
// The configured password may be either an Argon2id PHC hash (recommended,
// produced by HashPassword) or plaintext for quick local setups; both are
// compared in constant time.
//
// Parameters:
//   - username, password: Credentials supplied by the client
//   - cfgUsername, cfgPassword: Credentials from the security config
//
// Returns:
//   - error: ErrInvalidCredentials on mismatch, nil on success
func VerifyCredentials(username, password, cfgUsername, cfgPassword string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfgUsername)) == 1

	var passOK bool
	if strings.HasPrefix(cfgPassword, phcPrefix) {
		ok, err := VerifyPassword(password, cfgPassword)
		passOK = err == nil && ok
	} else {
		passOK = cfgPassword != "" &&
			subtle.ConstantTimeCompare([]byte(password), []byte(cfgPassword)) == 1
	}

	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
