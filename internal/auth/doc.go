// Package auth provides authentication for the bridge's HTTP API.
//
// The API has a single configured user (security.auth in config.yaml):
//   - Argon2id password hashing (OWASP 2025 recommendation), with a
//     plaintext fallback for quick local setups
//   - Short-lived HS256 JWT access tokens, validated by signature only
//
// There is no user database or role model; the bridge serves one
// household and one operator account is enough.
package auth
