package auth

import (
	"testing"
	"time"
)

func TestLockoutTracker_LocksAfterThreshold(t *testing.T) {
	tracker := NewLockoutTracker(3, time.Minute)

	if tracker.IsLocked("byggco") {
		t.Error("fresh account should not be locked")
	}

	if locked := tracker.RecordFailure("byggco"); locked {
		t.Error("first failure should not lock")
	}
	if locked := tracker.RecordFailure("byggco"); locked {
		t.Error("second failure should not lock")
	}
	if locked := tracker.RecordFailure("byggco"); !locked {
		t.Error("third failure should lock")
	}

	if !tracker.IsLocked("byggco") {
		t.Error("account should be locked")
	}
	if tracker.RemainingLockoutTime("byggco") <= 0 {
		t.Error("remaining lockout time should be positive")
	}

	// Other accounts are unaffected.
	if tracker.IsLocked("montasje") {
		t.Error("other account should not be locked")
	}
}

func TestLockoutTracker_ClearFailures(t *testing.T) {
	tracker := NewLockoutTracker(3, time.Minute)

	tracker.RecordFailure("byggco")
	tracker.RecordFailure("byggco")
	tracker.ClearFailures("byggco")

	// The count starts over after a successful login.
	if locked := tracker.RecordFailure("byggco"); locked {
		t.Error("failure after clear should not lock")
	}
}

func TestLockoutTracker_LockoutExpires(t *testing.T) {
	tracker := NewLockoutTracker(1, 10*time.Millisecond)

	tracker.RecordFailure("byggco")
	if !tracker.IsLocked("byggco") {
		t.Fatal("account should be locked")
	}

	time.Sleep(20 * time.Millisecond)

	if tracker.IsLocked("byggco") {
		t.Error("lockout should have expired")
	}
	if tracker.RemainingLockoutTime("byggco") != 0 {
		t.Error("remaining time after expiry should be 0")
	}
}
