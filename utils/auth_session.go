// File: utils/auth_session.go
package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// AuthCachePrefix prefixes per-user session keys in Redis.
const AuthCachePrefix = "auth:"

// SessionTTL matches the lifetime of issued tokens; a key that outlives its
// token only wastes a few bytes.
const SessionTTL = 24 * time.Hour

// HashToken returns the hex SHA-256 of a token string. Only hashes are
// stored server-side.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SaveSession records the active token hash for a user. Issuing a new token
// displaces the previous one, so a stolen old token dies on next check.
func SaveSession(ctx context.Context, client *redis.Client, userID, tokenHash string) error {
	if err := client.Set(ctx, AuthCachePrefix+userID, tokenHash, SessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save auth session for %s: %w", userID, err)
	}
	return nil
}

// SessionValid reports whether tokenHash is the user's current session.
// A cache read error counts as valid: losing Redis must not lock everyone
// out, the JWT signature already gates authenticity.
func SessionValid(ctx context.Context, client *redis.Client, userID, tokenHash string) bool {
	stored, err := client.Get(ctx, AuthCachePrefix+userID).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		return true
	}
	return stored == tokenHash
}

// RevokeSession drops the user's session, invalidating every outstanding
// token immediately.
func RevokeSession(ctx context.Context, client *redis.Client, userID string) error {
	if err := client.Del(ctx, AuthCachePrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to revoke auth session for %s: %w", userID, err)
	}
	return nil
}
