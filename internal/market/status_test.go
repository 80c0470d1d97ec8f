package market

import (
	"testing"
	"time"

	"github.com/viken-labs/ressurstorg/internal/models"
)

func TestStatusOf(t *testing.T) {
	now := time.Now()
	active := &models.Resource{
		PeriodFrom: now.Add(-24 * time.Hour),
		PeriodTo:   now.Add(24 * time.Hour),
	}
	expired := &models.Resource{
		PeriodFrom: now.Add(-48 * time.Hour),
		PeriodTo:   now.Add(-24 * time.Hour),
	}
	takenExpired := &models.Resource{
		PeriodFrom: now.Add(-48 * time.Hour),
		PeriodTo:   now.Add(-24 * time.Hour),
		IsTaken:    true,
	}

	tests := []struct {
		name            string
		resource        *models.Resource
		pendingRequests int
		contactVisible  bool
		wantState       ResourceStatus
		wantPending     int
	}{
		{"active", active, 0, false, StatusActive, 0},
		{"expired", expired, 0, false, StatusExpired, 0},
		{"pending requests", active, 3, false, StatusPendingRequests, 3},
		{"pending requests beat expiry", expired, 2, false, StatusPendingRequests, 2},
		{"taken without disclosure", takenExpired, 0, false, StatusAwaitingApproval, 0},
		{"taken with disclosure", takenExpired, 0, true, StatusAgreed, 0},
		{"taken beats pending", takenExpired, 5, false, StatusAwaitingApproval, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusOf(tt.resource, tt.pendingRequests, tt.contactVisible, now)
			if got.State != tt.wantState {
				t.Errorf("state = %s, want %s", got.State, tt.wantState)
			}
			if got.PendingRequests != tt.wantPending {
				t.Errorf("pending = %d, want %d", got.PendingRequests, tt.wantPending)
			}
		})
	}
}

func TestStateOfThread(t *testing.T) {
	tests := []struct {
		name         string
		messageCount int
		disclosed    bool
		taken        bool
		want         ThreadState
	}{
		{"no messages", 0, false, false, ThreadNoThread},
		{"open", 2, false, false, ThreadOpen},
		{"disclosed", 3, true, false, ThreadDisclosed},
		{"settled from open", 2, false, true, ThreadSettled},
		{"settled from disclosed", 4, true, true, ThreadSettled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateOfThread(tt.messageCount, tt.disclosed, tt.taken); got != tt.want {
				t.Errorf("StateOfThread(%d, %v, %v) = %s, want %s",
					tt.messageCount, tt.disclosed, tt.taken, got, tt.want)
			}
		})
	}
}
