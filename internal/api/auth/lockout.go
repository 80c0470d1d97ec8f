package auth

import (
	"sync"
	"time"
)

// lockoutEntry tracks failed login attempts for one account.
type lockoutEntry struct {
	failures  int
	lockedAt  time.Time
	expiresAt time.Time
}

// LockoutTracker tracks failed login attempts and account lockouts.
//
// State lives in memory only and is lost on restart, which works as a
// natural cooldown for single-instance deployments.
type LockoutTracker struct {
	mu              sync.RWMutex
	entries         map[string]*lockoutEntry // keyed by username
	threshold       int
	lockoutDuration time.Duration
}

// NewLockoutTracker creates a new lockout tracker.
func NewLockoutTracker(threshold int, duration time.Duration) *LockoutTracker {
	tracker := &LockoutTracker{
		entries:         make(map[string]*lockoutEntry),
		threshold:       threshold,
		lockoutDuration: duration,
	}

	go tracker.cleanupLoop()

	return tracker
}

// RecordFailure records a failed login attempt.
// Returns true if the account is now locked.
func (t *LockoutTracker) RecordFailure(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.entries[key]
	if !exists {
		entry = &lockoutEntry{}
		t.entries[key] = entry
	}

	now := time.Now()

	// Already locked, do not extend the lockout.
	if !entry.lockedAt.IsZero() && now.Before(entry.expiresAt) {
		return true
	}

	// Expired lockout starts a fresh count.
	if !entry.lockedAt.IsZero() && now.After(entry.expiresAt) {
		*entry = lockoutEntry{}
	}

	entry.failures++
	if entry.failures >= t.threshold {
		entry.lockedAt = now
		entry.expiresAt = now.Add(t.lockoutDuration)
		return true
	}
	return false
}

// IsLocked returns true if the account is currently locked.
func (t *LockoutTracker) IsLocked(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, exists := t.entries[key]
	if !exists || entry.lockedAt.IsZero() {
		return false
	}
	return time.Now().Before(entry.expiresAt)
}

// RemainingLockoutTime returns how long until the lockout expires.
func (t *LockoutTracker) RemainingLockoutTime(key string) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, exists := t.entries[key]
	if !exists || entry.lockedAt.IsZero() {
		return 0
	}
	remaining := time.Until(entry.expiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ClearFailures clears failed attempts on successful login.
func (t *LockoutTracker) ClearFailures(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, key)
}

func (t *LockoutTracker) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		t.cleanup()
	}
}

func (t *LockoutTracker) cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for key, entry := range t.entries {
		if entry.failures == 0 || (!entry.lockedAt.IsZero() && now.After(entry.expiresAt)) {
			delete(t.entries, key)
		}
	}
}
