package paypal

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TokenSource supplies bearer tokens for PayPal calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFetcher is implemented by *Client.
type TokenFetcher interface {
	FetchToken(ctx context.Context) (*Token, error)
}

// expiryMargin is subtracted from expires_in so a cached token is never sent
// in the last moments of its lifetime.
const expiryMargin = 60 * time.Second

// CachingTokenSource reuses a token until shortly before it expires. Tokens
// without a usable expires_in are never cached. Concurrent misses share one
// fetch, and each caller stops waiting when its own context is done.
type CachingTokenSource struct {
	fetcher TokenFetcher
	now     func() time.Time
	group   singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewCachingTokenSource(fetcher TokenFetcher) *CachingTokenSource {
	return &CachingTokenSource{fetcher: fetcher, now: time.Now}
}

func (s *CachingTokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := s.cached(); ok {
		return tok, nil
	}

	// The shared fetch outlives any single caller; the client timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("token", func() (interface{}, error) {
		return s.fetch(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *CachingTokenSource) cached() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, true
	}
	return "", false
}

func (s *CachingTokenSource) fetch(ctx context.Context) (string, error) {
	tok, err := s.fetcher.FetchToken(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lifetime := time.Duration(tok.ExpiresIn)*time.Second - expiryMargin
	if lifetime > 0 {
		s.token = tok.AccessToken
		s.expiresAt = s.now().Add(lifetime)
	} else {
		s.token = ""
	}
	return tok.AccessToken, nil
}
