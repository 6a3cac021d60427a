package cache

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sudharshini/backend/internal/domain/identity"
)

const otpKeyPrefix = "auth:otp:"

// consumeScript deletes the code only when it matches, so a wrong guess
// does not burn a valid code
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOTPStore keeps login codes in Redis with their TTL
type RedisOTPStore struct {
	client *redis.Client
}

// NewRedisOTPStore wraps an existing client
func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

func otpKey(email string) string {
	return otpKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Save replaces any pending code for email
func (s *RedisOTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

// Consume atomically checks and deletes the code
func (s *RedisOTPStore) Consume(ctx context.Context, email, code string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.client, []string{otpKey(email)}, code).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("failed to verify otp: %w", err)
	}
	return n == 1, nil
}

var _ identity.OTPStore = (*RedisOTPStore)(nil)

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// InMemoryOTPStore keeps login codes in process memory
type InMemoryOTPStore struct {
	mu      sync.Mutex
	entries map[string]otpEntry
	now     func() time.Time
}

// NewInMemoryOTPStore creates an empty store
func NewInMemoryOTPStore() *InMemoryOTPStore {
	return &InMemoryOTPStore{entries: make(map[string]otpEntry), now: time.Now}
}

// Save replaces any pending code for email
func (s *InMemoryOTPStore) Save(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[otpKey(email)] = otpEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

// Consume deletes the entry on a match or on expiry
func (s *InMemoryOTPStore) Consume(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := otpKey(email)
	e, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(e.code), []byte(code)) != 1 {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

var _ identity.OTPStore = (*InMemoryOTPStore)(nil)
