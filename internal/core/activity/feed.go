package activity

import "sync"

// Token identifies one feed load request. Tokens increase monotonically.
type Token uint64

// Feed enforces last-request-wins between overlapping loads. A load that
// finishes after a newer one has started must drop its result.
type Feed struct {
	mu     sync.Mutex
	latest Token
}

// Begin starts a new load and supersedes every earlier one.
func (f *Feed) Begin() Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest++
	return f.latest
}

// IsCurrent reports whether tok belongs to the most recent load.
func (f *Feed) IsCurrent(tok Token) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return tok == f.latest
}

// Settle runs apply only if tok is still current, holding the lock so no
// newer load can begin in between. It reports whether apply ran.
func (f *Feed) Settle(tok Token, apply func()) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tok != f.latest {
		return false
	}
	apply()
	return true
}
