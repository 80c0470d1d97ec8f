package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viken-labs/ressurstorg/internal/metrics"
	"github.com/viken-labs/ressurstorg/internal/models"
	"github.com/viken-labs/ressurstorg/internal/storage"
)

// Announcement text for the system message written when contact details
// are disclosed.
const (
	DisclosureSubject = "Kontaktinformasjon delt"
	DisclosureContent = "Kontaktinformasjon er nå delt mellom partene."
)

// Manager arbitrates negotiation threads, contact disclosure and the
// is_taken transition. The acting company is always passed explicitly;
// there is no ambient session state.
type Manager struct {
	storage storage.Storage
	broker  *Broker
}

// NewManager creates a new Manager.
func NewManager(store storage.Storage, broker *Broker) *Manager {
	return &Manager{storage: store, broker: broker}
}

// Broker returns the event broker for subscription by transports.
func (m *Manager) Broker() *Broker {
	return m.broker
}

// Counterpart describes the other participant of a thread as visible to
// the viewer: pseudonymous until disclosure, real contact card after.
type Counterpart struct {
	CompanyID   string              `json:"company_id"`
	DisplayName string              `json:"display_name"`
	Contact     *models.ContactCard `json:"contact,omitempty"`
}

// ThreadView is the full thread as seen by one participant.
type ThreadView struct {
	ThreadID    string            `json:"thread_id"`
	Messages    []*models.Message `json:"messages"`
	Resource    *models.Resource  `json:"resource,omitempty"`
	State       ThreadState       `json:"state"`
	Disclosed   bool              `json:"disclosed"`
	Counterpart *Counterpart      `json:"counterpart"`
}

// ListThreads returns one summary per thread involving companyID, newest
// first. Threads with dangling company or resource references are
// silently dropped.
func (m *Manager) ListThreads(ctx context.Context, companyID string) ([]*models.ThreadSummary, error) {
	latest, err := m.storage.Messages().LatestPerThread(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("latest per thread: %w", err)
	}

	unread, err := m.storage.Messages().UnreadCounts(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}

	disclosed, err := m.storage.Disclosures().DisclosedThreads(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("disclosed threads: %w", err)
	}

	companies := make(map[string]*models.Company)
	resources := make(map[string]*models.Resource)

	summaries := make([]*models.ThreadSummary, 0, len(latest))
	for _, msg := range latest {
		counterpartID := msg.Counterpart(companyID)
		if counterpartID == "" {
			continue
		}

		counterpart, ok := companies[counterpartID]
		if !ok {
			counterpart, err = m.storage.Companies().GetByID(ctx, counterpartID)
			if err != nil {
				return nil, fmt.Errorf("get counterpart: %w", err)
			}
			companies[counterpartID] = counterpart
		}
		if counterpart == nil {
			continue // dangling company reference
		}

		resource, ok := resources[msg.ResourceID]
		if !ok {
			resource, err = m.storage.Resources().GetByID(ctx, msg.ResourceID)
			if err != nil {
				return nil, fmt.Errorf("get resource: %w", err)
			}
			resources[msg.ResourceID] = resource
		}
		if resource == nil {
			continue // dangling resource reference
		}

		summaries = append(summaries, &models.ThreadSummary{
			Latest:          msg,
			UnreadCount:     unread[msg.ThreadID],
			Disclosed:       disclosed[msg.ThreadID],
			CounterpartID:   counterpartID,
			CounterpartName: displayName(counterpart, disclosed[msg.ThreadID]),
			Competence:      resource.Competence,
		})
	}
	return summaries, nil
}

// LoadThread returns all messages of a thread, oldest first, and stamps
// read_at on every unread message addressed to companyID. The stamp is
// applied at most once per message; reloading changes nothing.
func (m *Manager) LoadThread(ctx context.Context, threadID, companyID string) (*ThreadView, error) {
	first, err := m.storage.Messages().GetFirst(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("get first message: %w", err)
	}
	if first == nil {
		return nil, ErrNotFound
	}

	counterpartID := first.Counterpart(companyID)
	if counterpartID == "" {
		return nil, ErrForbidden
	}

	if _, err := m.storage.Messages().MarkThreadRead(ctx, threadID, companyID, time.Now()); err != nil {
		return nil, fmt.Errorf("mark thread read: %w", err)
	}

	messages, err := m.storage.Messages().ListThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("list thread: %w", err)
	}

	disclosure, err := m.storage.Disclosures().GetByThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("get disclosure: %w", err)
	}

	counterpart, err := m.storage.Companies().GetByID(ctx, counterpartID)
	if err != nil {
		return nil, fmt.Errorf("get counterpart: %w", err)
	}
	if counterpart == nil {
		return nil, ErrNotFound
	}

	resource, err := m.storage.Resources().GetByID(ctx, first.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}

	disclosed := disclosure != nil
	taken := resource != nil && resource.IsTaken

	view := &ThreadView{
		ThreadID:  threadID,
		Messages:  messages,
		Resource:  resource,
		State:     StateOfThread(len(messages), disclosed, taken),
		Disclosed: disclosed,
		Counterpart: &Counterpart{
			CompanyID:   counterpartID,
			DisplayName: displayName(counterpart, disclosed),
		},
	}
	if disclosed {
		view.Counterpart.Contact = counterpart.ContactCard()
	}
	return view, nil
}

// StartThread opens a new negotiation thread about a resource. The first
// message is addressed to the resource owner and its id becomes the
// thread id.
func (m *Manager) StartThread(ctx context.Context, fromCompanyID, resourceID, subject, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validationErrorf("message content is required")
	}

	resource, err := m.storage.Resources().GetByID(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}
	if resource == nil {
		return nil, ErrNotFound
	}
	if resource.CompanyID == fromCompanyID {
		return nil, validationErrorf("cannot send a request for your own resource")
	}

	if strings.TrimSpace(subject) == "" {
		subject = "Forespørsel om " + resource.Competence
	}

	id := uuid.New().String()
	msg := &models.Message{
		ID:            id,
		ThreadID:      id, // first message anchors the thread
		FromCompanyID: fromCompanyID,
		ToCompanyID:   resource.CompanyID,
		ResourceID:    resourceID,
		Subject:       strings.TrimSpace(subject),
		Content:       strings.TrimSpace(content),
		CreatedAt:     time.Now(),
	}
	if err := m.storage.Messages().Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	metrics.ThreadsStartedTotal.Inc()
	metrics.MessagesSentTotal.WithLabelValues("request").Inc()
	m.broker.Publish(Event{
		Type:       EventMessageCreated,
		ThreadID:   msg.ThreadID,
		ResourceID: resourceID,
	}, resource.CompanyID)

	return msg, nil
}

// SendReply appends a message to an existing thread. The recipient is
// the participant of the thread's first message that is not the sender;
// the resource reference is inherited from the thread.
func (m *Manager) SendReply(ctx context.Context, threadID, fromCompanyID, resourceID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validationErrorf("message content is required")
	}

	first, err := m.storage.Messages().GetFirst(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("get first message: %w", err)
	}
	if first == nil {
		return nil, ErrNotFound
	}

	to := first.Counterpart(fromCompanyID)
	if to == "" {
		return nil, ErrForbidden
	}
	if resourceID != "" && resourceID != first.ResourceID {
		return nil, validationErrorf("resource does not match thread")
	}

	subject := first.Subject
	if !strings.HasPrefix(subject, "Re: ") {
		subject = "Re: " + subject
	}

	msg := &models.Message{
		ID:            uuid.New().String(),
		ThreadID:      threadID,
		FromCompanyID: fromCompanyID,
		ToCompanyID:   to,
		ResourceID:    first.ResourceID,
		Subject:       subject,
		Content:       strings.TrimSpace(content),
		CreatedAt:     time.Now(),
	}
	if err := m.storage.Messages().Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	metrics.MessagesSentTotal.WithLabelValues("reply").Inc()
	m.broker.Publish(Event{
		Type:       EventMessageCreated,
		ThreadID:   threadID,
		ResourceID: first.ResourceID,
	}, to)

	return msg, nil
}

// ShareContact discloses real contact details for a thread. Exactly one
// disclosure can exist per thread; whichever participant calls first
// wins and the loser gets ErrAlreadyDisclosed. The disclosure row and
// its announcing system message are written in one transaction.
func (m *Manager) ShareContact(ctx context.Context, threadID, companyID string) (*models.ContactDisclosure, error) {
	first, err := m.storage.Messages().GetFirst(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("get first message: %w", err)
	}
	if first == nil {
		return nil, ErrNotFound
	}

	to := first.Counterpart(companyID)
	if to == "" {
		return nil, ErrForbidden
	}

	now := time.Now()
	disclosure := &models.ContactDisclosure{
		ThreadID:      threadID,
		FromCompanyID: companyID,
		ToCompanyID:   to,
		CreatedAt:     now,
	}
	announcement := &models.Message{
		ID:            uuid.New().String(),
		ThreadID:      threadID,
		FromCompanyID: companyID,
		ToCompanyID:   to,
		ResourceID:    first.ResourceID,
		Subject:       DisclosureSubject,
		Content:       DisclosureContent,
		System:        true,
		CreatedAt:     now,
	}

	created, err := m.storage.Disclosures().Create(ctx, disclosure, announcement)
	if err != nil {
		return nil, fmt.Errorf("create disclosure: %w", err)
	}
	if !created {
		return nil, ErrAlreadyDisclosed
	}

	metrics.DisclosuresTotal.Inc()
	metrics.MessagesSentTotal.WithLabelValues("system").Inc()
	m.broker.Publish(Event{
		Type:       EventDisclosureCreated,
		ThreadID:   threadID,
		ResourceID: first.ResourceID,
	}, companyID, to)

	return disclosure, nil
}

// TakeResource performs the single guarded false->true transition of
// is_taken. Both API entry points (accept from the listing, mark-taken
// from the thread view) go through here; concurrent callers are
// serialized by the store and the loser gets ErrAlreadyTaken.
func (m *Manager) TakeResource(ctx context.Context, resourceID, companyID string) (*models.Resource, error) {
	resource, err := m.storage.Resources().GetByID(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}
	if resource == nil {
		return nil, ErrNotFound
	}

	rows, err := m.storage.Resources().Take(ctx, resourceID, companyID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("take resource: %w", err)
	}
	if rows == 0 {
		return nil, ErrAlreadyTaken
	}

	taken, err := m.storage.Resources().GetByID(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("reload resource: %w", err)
	}

	metrics.ResourcesTakenTotal.Inc()
	m.broker.Publish(Event{
		Type:       EventResourceTaken,
		ResourceID: resourceID,
	}, resource.CompanyID, companyID)

	return taken, nil
}

// ResourceStatuses computes the viewer-specific status of each resource.
// Pending-request counts only apply to resources the viewer owns;
// contact visibility is checked per taken resource.
func (m *Manager) ResourceStatuses(ctx context.Context, viewerID string, resources []*models.Resource) (map[string]Status, error) {
	pending, err := m.storage.Messages().PendingRequestCounts(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("pending request counts: %w", err)
	}

	now := time.Now()
	statuses := make(map[string]Status, len(resources))
	for _, r := range resources {
		contactVisible := false
		if r.IsTaken {
			contactVisible, err = m.storage.Disclosures().ExistsForResource(ctx, r.ID, viewerID)
			if err != nil {
				return nil, fmt.Errorf("disclosure exists: %w", err)
			}
		}
		requests := 0
		if r.CompanyID == viewerID {
			requests = pending[r.ID]
		}
		statuses[r.ID] = StatusOf(r, requests, contactVisible, now)
	}
	return statuses, nil
}

// displayName returns the name a counterpart is shown under: the real
// company name after disclosure, the pseudonym before.
func displayName(c *models.Company, disclosed bool) string {
	if disclosed && c.CompanyName != "" {
		return c.CompanyName
	}
	return c.AnonymousID
}
