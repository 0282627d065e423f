// Package auth is the authentication collaborator: argon2id secret
// verification, opaque session tokens, and login rate limiting.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
	"github.com/google/uuid"
	"github.com/quillmud/quill"
	"github.com/quillmud/quill/storage"
	"github.com/quillmud/quill/structs"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP recommended).
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// HashSecret creates an Argon2id hash of the secret in PHC string
// format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func HashSecret(secret string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", quill.WithStack(err)
	}
	hash := argon2.IDKey([]byte(secret), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifySecret checks the secret against a stored PHC format hash.
func VerifySecret(secret, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	hash := argon2.IDKey([]byte(secret), salt, time, memory, threads, uint32(len(expectedHash)))
	return subtle.ConstantTimeCompare(hash, expectedHash) == 1
}

const (
	attemptInterval = 10 * time.Second
	attemptCleanup  = 1 * time.Minute
	// maxAttempts failed secrets in a row start the per-username delay.
	maxAttempts = 3
	// DefaultTokenTTL bounds how long an elevation token stays valid
	// without being refreshed.
	DefaultTokenTTL = 12 * time.Hour
)

type attemptRecord struct {
	count int
	last  time.Time
}

// RateLimiter tracks failed attempts per username. Entries expire after
// attemptInterval and are swept every attemptCleanup, which bounds the
// map even when an attacker spams unique usernames.
type RateLimiter struct {
	mu       sync.RWMutex
	attempts map[string]attemptRecord
}

func NewRateLimiter(ctx context.Context) *RateLimiter {
	l := &RateLimiter{
		attempts: make(map[string]attemptRecord),
	}
	go l.runCleanupLoop(ctx)
	return l
}

func (l *RateLimiter) runCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(attemptCleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for username, rec := range l.attempts {
				if now.Sub(rec.last) > attemptInterval {
					delete(l.attempts, username)
				}
			}
			l.mu.Unlock()
		}
	}
}

// RetryAfter returns how long the username must wait before another
// attempt, or zero if it may try now. The delay only engages after
// maxAttempts consecutive failures.
func (l *RateLimiter) RetryAfter(username string) time.Duration {
	l.mu.RLock()
	rec, ok := l.attempts[username]
	l.mu.RUnlock()
	if !ok || rec.count < maxAttempts {
		return 0
	}
	if wait := attemptInterval - time.Since(rec.last); wait > 0 {
		return wait
	}
	return 0
}

func (l *RateLimiter) RecordFailure(username string) {
	l.mu.Lock()
	rec := l.attempts[username]
	rec.count++
	rec.last = time.Now()
	l.attempts[username] = rec
	l.mu.Unlock()
}

func (l *RateLimiter) ClearFailure(username string) {
	l.mu.Lock()
	delete(l.attempts, username)
	l.mu.Unlock()
}

// Authenticator validates credentials against stored user records and
// issues opaque session tokens with a TTL.
type Authenticator struct {
	storage *storage.Storage
	tokens  cache.Cache[string, string]
	limiter *RateLimiter
}

func New(ctx context.Context, s *storage.Storage, tokenTTL time.Duration) *Authenticator {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Authenticator{
		storage: s,
		tokens:  cache.NewCache[string, string]().WithTTL(tokenTTL),
		limiter: NewRateLimiter(ctx),
	}
}

// ValidateCredentials checks the secret for a user that is allowed to
// elevate and issues a session token. All failure paths are
// Unauthorized; the distinction is not leaked to the prompt.
func (a *Authenticator) ValidateCredentials(ctx context.Context, username, secret string) (string, *structs.User, error) {
	if wait := a.limiter.RetryAfter(username); wait > 0 {
		return "", nil, quill.Errorf(quill.ErrUnauthorized, "too many attempts, wait %v", wait.Round(time.Second))
	}
	user, err := a.storage.LoadUser(ctx, username)
	if err != nil {
		a.limiter.RecordFailure(username)
		return "", nil, quill.Errorf(quill.ErrUnauthorized, "invalid credentials")
	}
	if !user.Admin || !VerifySecret(secret, user.PasswordHash) {
		a.limiter.RecordFailure(username)
		return "", nil, quill.Errorf(quill.ErrUnauthorized, "invalid credentials")
	}
	a.limiter.ClearFailure(username)

	user.LastLogin = time.Now().UTC()
	if err := a.storage.StoreUser(ctx, user); err != nil {
		return "", nil, quill.WithStack(err)
	}

	token := uuid.NewString()
	a.tokens.Set(token, username, 0)
	return token, user, nil
}

// LoginUser verifies a player's secret without elevating. Failures are
// rate limited the same way elevation attempts are.
func (a *Authenticator) LoginUser(ctx context.Context, username, secret string) (*structs.User, error) {
	if wait := a.limiter.RetryAfter(username); wait > 0 {
		return nil, quill.Errorf(quill.ErrUnauthorized, "too many attempts, wait %v", wait.Round(time.Second))
	}
	user, err := a.storage.LoadUser(ctx, username)
	if err != nil || !VerifySecret(secret, user.PasswordHash) {
		a.limiter.RecordFailure(username)
		return nil, quill.Errorf(quill.ErrUnauthorized, "invalid credentials")
	}
	a.limiter.ClearFailure(username)
	user.LastLogin = time.Now().UTC()
	if err := a.storage.StoreUser(ctx, user); err != nil {
		return nil, quill.WithStack(err)
	}
	return user, nil
}

// RegisterUser creates a user with a hashed secret. The username must
// be unused.
func (a *Authenticator) RegisterUser(ctx context.Context, username, secret string, admin bool) (*structs.User, error) {
	if username == "" {
		return nil, quill.Errorf(quill.ErrInvalidInput, "username must not be empty")
	}
	if _, err := a.storage.LoadUser(ctx, username); err == nil {
		return nil, quill.Errorf(quill.ErrInvalidInput, "username %q is taken", username)
	} else if quill.Kind(err) != quill.ErrNotFound {
		return nil, quill.WithStack(err)
	}
	hash, err := HashSecret(secret)
	if err != nil {
		return nil, quill.WithStack(err)
	}
	user := &structs.User{
		Name:         username,
		PasswordHash: hash,
		Admin:        admin,
		LastLogin:    time.Now().UTC(),
	}
	if err := a.storage.StoreUser(ctx, user); err != nil {
		return nil, quill.WithStack(err)
	}
	return user, nil
}

// Validate resolves a token to its username, if still valid.
func (a *Authenticator) Validate(token string) (string, bool) {
	return a.tokens.Get(token)
}

// Logout invalidates a token. Unknown tokens are ignored.
func (a *Authenticator) Logout(token string) {
	a.tokens.Invalidate(token)
}
