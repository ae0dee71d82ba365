package auth

import (
	"context"
	"time"
)

// TokenProvider yields an internal bearer token for an outbound call.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Minter signs internal tokens on demand, consulting the cache first when one
// is configured.
type Minter struct {
	Secret  []byte
	Service string
	TTL     time.Duration
	Cache   *RedisTokenCache
}

func NewMinter(secret []byte, service string, ttl time.Duration, cache *RedisTokenCache) *Minter {
	return &Minter{Secret: secret, Service: service, TTL: ttl, Cache: cache}
}

func (m *Minter) Token(ctx context.Context) (string, error) {
	if m.Cache != nil {
		if cached, err := m.Cache.GetToken(ctx); err == nil && cached.IsValid() {
			return cached.Token, nil
		}
	}

	token, err := EncodeInternalJWT(m.Secret, m.Service, m.TTL)
	if err != nil {
		return "", err
	}

	if m.Cache != nil {
		// Cache failures only cost a re-mint on the next call.
		_ = m.Cache.SetToken(ctx, token, int(m.TTL.Seconds()))
	}

	return token, nil
}
