package service

import (
	"context"
	"sync"
	"time"
)

type revokeCall struct {
	token string
	ttl   time.Duration
}

type fakeRevoker struct {
	mu    sync.Mutex
	calls []revokeCall
	err   error
}

func (f *fakeRevoker) Revoke(_ context.Context, token string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, revokeCall{token: token, ttl: ttl})
	return f.err
}
