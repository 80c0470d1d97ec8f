package market

import (
	"time"

	"github.com/viken-labs/ressurstorg/internal/models"
)

// ResourceStatus is the viewer-specific state of a resource listing.
type ResourceStatus string

const (
	// StatusAgreed: taken and the counterpart's contact details resolve
	// for the viewer.
	StatusAgreed ResourceStatus = "agreed"
	// StatusAwaitingApproval: taken but contact details do not yet
	// resolve for the viewer.
	StatusAwaitingApproval ResourceStatus = "awaiting_approval"
	// StatusPendingRequests: not taken, with unread inbound requests.
	StatusPendingRequests ResourceStatus = "pending_requests"
	// StatusExpired: not taken and the offer period has passed.
	StatusExpired ResourceStatus = "expired"
	// StatusActive: open for requests.
	StatusActive ResourceStatus = "active"
)

// Status pairs a ResourceStatus with its pending-request count.
type Status struct {
	State           ResourceStatus `json:"state"`
	PendingRequests int            `json:"pending_requests,omitempty"`
}

// StatusOf computes the viewer-specific status of a resource. The rules
// are evaluated top to bottom; taken-state dominates everything, pending
// requests dominate expiry, expiry dominates plain activity.
func StatusOf(r *models.Resource, pendingRequests int, contactVisible bool, now time.Time) Status {
	switch {
	case r.IsTaken && contactVisible:
		return Status{State: StatusAgreed}
	case r.IsTaken:
		return Status{State: StatusAwaitingApproval}
	case pendingRequests > 0:
		return Status{State: StatusPendingRequests, PendingRequests: pendingRequests}
	case r.IsExpired(now):
		return Status{State: StatusExpired}
	default:
		return Status{State: StatusActive}
	}
}

// ThreadState is the lifecycle state of one negotiation thread.
type ThreadState string

const (
	ThreadNoThread  ThreadState = "no_thread"
	ThreadOpen      ThreadState = "open"
	ThreadDisclosed ThreadState = "disclosed"
	// ThreadSettled is terminal: the resource is committed and the
	// reply composer is withdrawn. Reachable from Open or Disclosed.
	ThreadSettled ThreadState = "settled"
)

// StateOfThread derives the thread lifecycle state.
func StateOfThread(messageCount int, disclosed, taken bool) ThreadState {
	switch {
	case messageCount == 0:
		return ThreadNoThread
	case taken:
		return ThreadSettled
	case disclosed:
		return ThreadDisclosed
	default:
		return ThreadOpen
	}
}
