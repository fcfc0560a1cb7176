package utils

import (
	"sync"
	"time"
)

// TokenBlacklist menyimpan token yang sudah logout sampai token itu kadaluarsa
type TokenBlacklist struct {
	mutex  sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{tokens: make(map[string]time.Time), now: time.Now}
}

func (b *TokenBlacklist) Add(token string, until time.Time) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.tokens[token] = until
}

// Contains -> sekalian membersihkan token yang sudah kadaluarsa
func (b *TokenBlacklist) Contains(token string) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	now := b.now()
	for t, expiry := range b.tokens {
		if now.After(expiry) {
			delete(b.tokens, t)
		}
	}
	_, ok := b.tokens[token]
	return ok
}

func (b *TokenBlacklist) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.tokens)
}
