package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/viken-labs/ressurstorg/internal/models"
)

func setupTestDB(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "ressurstorg-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")

	store := NewSQLiteStorage(dbPath)
	if err := store.Open(); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("open database: %v", err)
	}

	if err := store.Migrate(); err != nil {
		store.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("migrate database: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func testCompany(t *testing.T, store *SQLiteStorage, username string) *models.Company {
	t.Helper()

	company := models.NewCompany(username, username+"@example.no")
	company.ID = uuid.New().String()
	company.PasswordHash = "hash"
	company.CompanyName = username + " AS"
	company.ContactEmail = "post@" + username + ".no"
	if err := store.Companies().Create(context.Background(), company); err != nil {
		t.Fatalf("create company: %v", err)
	}
	return company
}

func testResource(t *testing.T, store *SQLiteStorage, companyID string) *models.Resource {
	t.Helper()

	now := time.Now()
	resource := models.NewResource(companyID, "Elektriker", 850, models.PriceTypeHourly,
		now, now.Add(7*24*time.Hour))
	resource.ID = uuid.New().String()
	if err := store.Resources().Create(context.Background(), resource); err != nil {
		t.Fatalf("create resource: %v", err)
	}
	return resource
}

func testMessage(t *testing.T, store *SQLiteStorage, threadID, from, to, resourceID string, at time.Time) *models.Message {
	t.Helper()

	msg := &models.Message{
		ID:            uuid.New().String(),
		FromCompanyID: from,
		ToCompanyID:   to,
		ResourceID:    resourceID,
		Subject:       "Forespørsel",
		Content:       "Hei",
		CreatedAt:     at,
	}
	if threadID == "" {
		msg.ThreadID = msg.ID
	} else {
		msg.ThreadID = threadID
	}
	if err := store.Messages().Create(context.Background(), msg); err != nil {
		t.Fatalf("create message: %v", err)
	}
	return msg
}

func TestSQLiteStorage_OpenClose(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	if store.db == nil {
		t.Fatal("database should be open")
	}
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tables := []string{"companies", "resources", "messages", "disclosures", "refresh_tokens", "schema_migrations"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
		if err != nil {
			t.Errorf("table %s should exist: %v", table, err)
		}
	}
}

func TestCompanyRepository_CRUD(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	company := testCompany(t, store, "byggco")

	got, err := store.Companies().GetByID(ctx, company.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil || got.Username != "byggco" {
		t.Fatalf("get by id = %+v", got)
	}
	if got.AnonymousID != company.AnonymousID {
		t.Errorf("anonymous id = %s, want %s", got.AnonymousID, company.AnonymousID)
	}

	got, err = store.Companies().GetByUsername(ctx, "byggco")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got == nil || got.ID != company.ID {
		t.Fatalf("get by username = %+v", got)
	}

	got, err = store.Companies().GetByEmail(ctx, "byggco@example.no")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != company.ID {
		t.Fatalf("get by email = %+v", got)
	}

	// Not found returns nil, nil
	got, err = store.Companies().GetByID(ctx, uuid.New().String())
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Errorf("missing company = %+v, want nil", got)
	}

	company.Phone = "400 00 000"
	company.Address = "Storgata 1, Oslo"
	if err := store.Companies().Update(ctx, company); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.Companies().GetByID(ctx, company.ID)
	if got.Phone != "400 00 000" || got.Address != "Storgata 1, Oslo" {
		t.Errorf("updated company = %+v", got)
	}

	count, err := store.Companies().Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	list, err := store.Companies().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list length = %d, want 1", len(list))
	}
}

func TestCompanyRepository_UniqueConstraints(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	testCompany(t, store, "byggco")

	dup := models.NewCompany("byggco", "other@example.no")
	dup.ID = uuid.New().String()
	dup.PasswordHash = "hash"
	if err := store.Companies().Create(ctx, dup); err == nil {
		t.Error("duplicate username should fail")
	}

	dup = models.NewCompany("other", "byggco@example.no")
	dup.ID = uuid.New().String()
	dup.PasswordHash = "hash"
	if err := store.Companies().Create(ctx, dup); err == nil {
		t.Error("duplicate email should fail")
	}
}

func TestResourceRepository_CRUD(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	company := testCompany(t, store, "byggco")
	resource := testResource(t, store, company.ID)

	got, err := store.Resources().GetByID(ctx, resource.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil || got.Competence != "Elektriker" {
		t.Fatalf("get by id = %+v", got)
	}
	if got.IsTaken {
		t.Error("new resource should not be taken")
	}
	if got.PriceType != models.PriceTypeHourly {
		t.Errorf("price type = %s", got.PriceType)
	}

	list, err := store.Resources().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list length = %d, want 1", len(list))
	}

	mine, err := store.Resources().ListByCompany(ctx, company.ID)
	if err != nil {
		t.Fatalf("list by company: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("list by company length = %d, want 1", len(mine))
	}

	got, err = store.Resources().GetByID(ctx, uuid.New().String())
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Errorf("missing resource = %+v, want nil", got)
	}
}

func TestResourceRepository_List_DropsDanglingOwner(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	company := testCompany(t, store, "byggco")
	testResource(t, store, company.ID)

	// Insert a resource whose owner row does not exist.
	orphan := models.NewResource(uuid.New().String(), "Tømrer", 700, models.PriceTypeFixed,
		time.Now(), time.Now().Add(24*time.Hour))
	orphan.ID = uuid.New().String()
	if _, err := store.db.ExecContext(ctx, `
		INSERT INTO resources (id, company_id, competence, price, price_type,
			period_from, period_to, comments, is_taken, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		orphan.ID, orphan.CompanyID, orphan.Competence, orphan.Price,
		string(orphan.PriceType), orphan.PeriodFrom, orphan.PeriodTo,
		orphan.Comments, orphan.CreatedAt, orphan.UpdatedAt); err != nil {
		t.Fatalf("insert orphan: %v", err)
	}

	list, err := store.Resources().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list length = %d, want dangling owner dropped", len(list))
	}
}

func TestResourceRepository_Take(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := testCompany(t, store, "byggco")
	taker := testCompany(t, store, "montasje")
	resource := testResource(t, store, owner.ID)

	rows, err := store.Resources().Take(ctx, resource.ID, taker.ID, time.Now())
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if rows != 1 {
		t.Fatalf("take rows = %d, want 1", rows)
	}

	got, _ := store.Resources().GetByID(ctx, resource.ID)
	if !got.IsTaken || got.TakenBy != taker.ID || got.TakenAt == nil {
		t.Errorf("taken resource = %+v", got)
	}

	// The conditional UPDATE makes the transition happen exactly once.
	rows, err = store.Resources().Take(ctx, resource.ID, owner.ID, time.Now())
	if err != nil {
		t.Fatalf("second take: %v", err)
	}
	if rows != 0 {
		t.Errorf("second take rows = %d, want 0", rows)
	}
	got, _ = store.Resources().GetByID(ctx, resource.ID)
	if got.TakenBy != taker.ID {
		t.Errorf("taken_by = %s, first winner must stand", got.TakenBy)
	}
}

func TestResourceRepository_Delete(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := testCompany(t, store, "byggco")
	other := testCompany(t, store, "montasje")
	resource := testResource(t, store, owner.ID)

	// Only the owner may delete.
	rows, err := store.Resources().Delete(ctx, resource.ID, other.ID)
	if err != nil {
		t.Fatalf("delete by non-owner: %v", err)
	}
	if rows != 0 {
		t.Errorf("delete by non-owner rows = %d, want 0", rows)
	}

	// A taken resource cannot be deleted.
	if _, err := store.Resources().Take(ctx, resource.ID, other.ID, time.Now()); err != nil {
		t.Fatalf("take: %v", err)
	}
	rows, err = store.Resources().Delete(ctx, resource.ID, owner.ID)
	if err != nil {
		t.Fatalf("delete taken: %v", err)
	}
	if rows != 0 {
		t.Errorf("delete taken rows = %d, want 0", rows)
	}

	// An untaken resource deletes cleanly.
	second := testResource(t, store, owner.ID)
	rows, err = store.Resources().Delete(ctx, second.ID, owner.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rows != 1 {
		t.Errorf("delete rows = %d, want 1", rows)
	}
	got, _ := store.Resources().GetByID(ctx, second.ID)
	if got != nil {
		t.Errorf("deleted resource still present: %+v", got)
	}
}

func TestMessageRepository_ThreadFlow(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := testCompany(t, store, "byggco")
	requester := testCompany(t, store, "montasje")
	resource := testResource(t, store, owner.ID)

	base := time.Now().Add(-time.Hour)
	first := testMessage(t, store, "", requester.ID, owner.ID, resource.ID, base)
	reply := testMessage(t, store, first.ThreadID, owner.ID, requester.ID, resource.ID, base.Add(time.Minute))

	got, err := store.Messages().GetFirst(ctx, first.ThreadID)
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("get first = %+v", got)
	}

	// GetFirst resolves the thread id, not arbitrary message ids.
	got, err = store.Messages().GetFirst(ctx, reply.ID)
	if err != nil {
		t.Fatalf("get first by reply id: %v", err)
	}
	if got != nil && got.ThreadID != got.ID {
		t.Errorf("get first returned a non-anchor message: %+v", got)
	}

	thread, err := store.Messages().ListThread(ctx, first.ThreadID)
	if err != nil {
		t.Fatalf("list thread: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("thread length = %d, want 2", len(thread))
	}
	if thread[0].ID != first.ID || thread[1].ID != reply.ID {
		t.Errorf("thread order = %s, %s", thread[0].ID, thread[1].ID)
	}
}

func TestMessageRepository_MarkThreadRead(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := testCompany(t, store, "byggco")
	requester := testCompany(t, store, "montasje")
	resource := testResource(t, store, owner.ID)

	base := time.Now().Add(-time.Hour)
	first := testMessage(t, store, "", requester.ID, owner.ID, resource.ID, base)
	testMessage(t, store, first.ThreadID, requester.ID, owner.ID, resource.ID, base.Add(time.Minute))
	mine := testMessage(t, store, first.ThreadID, owner.ID, requester.ID, resource.ID, base.Add(2*time.Minute))

	rows, err := store.Messages().MarkThreadRead(ctx, first.ThreadID, owner.ID, time.Now())
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if rows != 2 {
		t.Errorf("marked rows = %d, want the 2 inbound messages", rows)
	}

	// Second pass stamps nothing.
	rows, err = store.Messages().MarkThreadRead(ctx, first.ThreadID, owner.ID, time.Now())
	if err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if rows != 0 {
		t.Errorf("second pass rows = %d, want 0", rows)
	}

	thread, _ := store.Messages().ListThread(ctx, first.ThreadID)
	for _, msg := range thread {
		if msg.ToCompanyID == owner.ID && msg.ReadAt == nil {
			t.Errorf("inbound message %s not stamped", msg.ID)
		}
		if msg.ID == mine.ID && msg.ReadAt != nil {
			t.Errorf("outbound message %s stamped by its sender", msg.ID)
		}
	}
}

func TestMessageRepository_LatestPerThread(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := testCompany(t, store, "byggco")
	requester := testCompany(t, store, "montasje")
	resourceA := testResource(t, store, owner.ID)
	resourceB := testResource(t, store, owner.ID)

	base := time.Now().Add(-time.Hour)
	threadA := testMessage(t, store, "", requester.ID, owner.ID, resourceA.ID, base)
	testMessage(t, store, "", requester.ID, owner.ID, resourceB.ID, base.Add(time.Minute))
	latestA := testMessage(t, store, threadA.ThreadID, owner.ID, requester.ID, resourceA.ID, base.Add(2*time.Minute))

	latest, err := store.Messages().LatestPerThread(ctx, owner.ID)
	if err != nil {
		t.Fatalf("latest per thread: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("latest length = %d, want 2", len(latest))
	}
	if latest[0].ID != latestA.ID {
		t.Errorf("first latest = %s, want the most recent message %s", latest[0].ID, latestA.ID)
	}

	// Threads with a dangling resource disappear from the listing.
	if _, err := store.db.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", resourceB.ID); err != nil {
		t.Fatalf("delete resource: %v", err)
	}
	latest, err = store.Messages().LatestPerThread(ctx, owner.ID)
	if err != nil {
		t.Fatalf("latest after delete: %v", err)
	}
	if len(latest) != 1 || latest[0].ThreadID != threadA.ThreadID {
		t.Errorf("latest after delete = %d threads", len(latest))
	}
}

func TestMessageRepository_Counts(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := testCompany(t, store, "byggco")
	requesterA := testCompany(t, store, "montasje")
	requesterB := testCompany(t, store, "roer")
	resource := testResource(t, store, owner.ID)

	base := time.Now().Add(-time.Hour)
	threadA := testMessage(t, store, "", requesterA.ID, owner.ID, resource.ID, base)
	testMessage(t, store, threadA.ThreadID, requesterA.ID, owner.ID, resource.ID, base.Add(time.Minute))
	threadB := testMessage(t, store, "", requesterB.ID, owner.ID, resource.ID, base.Add(2*time.Minute))

	unread, err := store.Messages().UnreadCounts(ctx, owner.ID)
	if err != nil {
		t.Fatalf("unread counts: %v", err)
	}
	if unread[threadA.ThreadID] != 2 || unread[threadB.ThreadID] != 1 {
		t.Errorf("unread = %v", unread)
	}

	// Pending requests count distinct threads, not messages.
	pending, err := store.Messages().PendingRequestCounts(ctx, owner.ID)
	if err != nil {
		t.Fatalf("pending counts: %v", err)
	}
	if pending[resource.ID] != 2 {
		t.Errorf("pending = %v, want 2 threads for the resource", pending)
	}

	// System messages never count as requests.
	system := &models.Message{
		ID:            uuid.New().String(),
		ThreadID:      threadA.ThreadID,
		FromCompanyID: requesterA.ID,
		ToCompanyID:   owner.ID,
		ResourceID:    resource.ID,
		Subject:       "Kontaktinformasjon delt",
		Content:       "Kontaktinformasjon er nå delt mellom partene.",
		System:        true,
		CreatedAt:     base.Add(3 * time.Minute),
	}
	if err := store.Messages().Create(ctx, system); err != nil {
		t.Fatalf("create system message: %v", err)
	}

	if _, err := store.Messages().MarkThreadRead(ctx, threadB.ThreadID, owner.ID, time.Now()); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	pending, err = store.Messages().PendingRequestCounts(ctx, owner.ID)
	if err != nil {
		t.Fatalf("pending after read: %v", err)
	}
	if pending[resource.ID] != 1 {
		t.Errorf("pending after read = %v, want 1", pending)
	}
}

func TestDisclosureRepository_CreateOnce(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := testCompany(t, store, "byggco")
	requester := testCompany(t, store, "montasje")
	resource := testResource(t, store, owner.ID)
	first := testMessage(t, store, "", requester.ID, owner.ID, resource.ID, time.Now().Add(-time.Hour))

	disclosure := &models.ContactDisclosure{
		ThreadID:      first.ThreadID,
		FromCompanyID: owner.ID,
		ToCompanyID:   requester.ID,
		CreatedAt:     time.Now(),
	}
	announcement := &models.Message{
		ID:            uuid.New().String(),
		ThreadID:      first.ThreadID,
		FromCompanyID: owner.ID,
		ToCompanyID:   requester.ID,
		ResourceID:    resource.ID,
		Subject:       "Kontaktinformasjon delt",
		Content:       "Kontaktinformasjon er nå delt mellom partene.",
		System:        true,
		CreatedAt:     time.Now(),
	}

	created, err := store.Disclosures().Create(ctx, disclosure, announcement)
	if err != nil {
		t.Fatalf("create disclosure: %v", err)
	}
	if !created {
		t.Fatal("first disclosure should win")
	}

	// The losing side: no disclosure row changed, no announcement written.
	losing := &models.ContactDisclosure{
		ThreadID:      first.ThreadID,
		FromCompanyID: requester.ID,
		ToCompanyID:   owner.ID,
		CreatedAt:     time.Now(),
	}
	losingAnn := *announcement
	losingAnn.ID = uuid.New().String()
	created, err = store.Disclosures().Create(ctx, losing, &losingAnn)
	if err != nil {
		t.Fatalf("losing create: %v", err)
	}
	if created {
		t.Error("second disclosure must lose")
	}

	got, err := store.Disclosures().GetByThread(ctx, first.ThreadID)
	if err != nil {
		t.Fatalf("get by thread: %v", err)
	}
	if got == nil || got.FromCompanyID != owner.ID {
		t.Errorf("disclosure = %+v, first writer must stand", got)
	}

	thread, _ := store.Messages().ListThread(ctx, first.ThreadID)
	if len(thread) != 2 {
		t.Errorf("thread length = %d, want request + one announcement", len(thread))
	}
}

func TestDisclosureRepository_Create_Concurrent(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := testCompany(t, store, "byggco")
	requester := testCompany(t, store, "montasje")
	resource := testResource(t, store, owner.ID)
	first := testMessage(t, store, "", requester.ID, owner.ID, resource.ID, time.Now().Add(-time.Hour))

	// Both participants race the disclosure from several goroutines.
	const racers = 8
	results := make([]bool, racers)
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := owner.ID, requester.ID
			if i%2 == 1 {
				from, to = requester.ID, owner.ID
			}
			disclosure := &models.ContactDisclosure{
				ThreadID:      first.ThreadID,
				FromCompanyID: from,
				ToCompanyID:   to,
				CreatedAt:     time.Now(),
			}
			announcement := &models.Message{
				ID:            uuid.New().String(),
				ThreadID:      first.ThreadID,
				FromCompanyID: from,
				ToCompanyID:   to,
				ResourceID:    resource.ID,
				Subject:       "Kontaktinformasjon delt",
				Content:       "Kontaktinformasjon er nå delt mellom partene.",
				System:        true,
				CreatedAt:     time.Now(),
			}
			results[i], errs[i] = store.Disclosures().Create(ctx, disclosure, announcement)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < racers; i++ {
		if errs[i] != nil {
			t.Errorf("racer %d: %v", i, errs[i])
		}
		if results[i] {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	// Exactly one announcement made it into the thread.
	thread, err := store.Messages().ListThread(ctx, first.ThreadID)
	if err != nil {
		t.Fatalf("list thread: %v", err)
	}
	if len(thread) != 2 {
		t.Errorf("thread length = %d, want request + one announcement", len(thread))
	}
}

func TestDisclosureRepository_Lookups(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := testCompany(t, store, "byggco")
	requester := testCompany(t, store, "montasje")
	outsider := testCompany(t, store, "annen")
	resource := testResource(t, store, owner.ID)
	first := testMessage(t, store, "", requester.ID, owner.ID, resource.ID, time.Now().Add(-time.Hour))

	got, err := store.Disclosures().GetByThread(ctx, first.ThreadID)
	if err != nil {
		t.Fatalf("get by thread: %v", err)
	}
	if got != nil {
		t.Errorf("disclosure before create = %+v, want nil", got)
	}

	disclosure := &models.ContactDisclosure{
		ThreadID:      first.ThreadID,
		FromCompanyID: owner.ID,
		ToCompanyID:   requester.ID,
		CreatedAt:     time.Now(),
	}
	announcement := &models.Message{
		ID:            uuid.New().String(),
		ThreadID:      first.ThreadID,
		FromCompanyID: owner.ID,
		ToCompanyID:   requester.ID,
		ResourceID:    resource.ID,
		Subject:       "Kontaktinformasjon delt",
		Content:       "Kontaktinformasjon er nå delt mellom partene.",
		System:        true,
		CreatedAt:     time.Now(),
	}
	if _, err := store.Disclosures().Create(ctx, disclosure, announcement); err != nil {
		t.Fatalf("create disclosure: %v", err)
	}

	threads, err := store.Disclosures().DisclosedThreads(ctx, requester.ID)
	if err != nil {
		t.Fatalf("disclosed threads: %v", err)
	}
	if !threads[first.ThreadID] {
		t.Error("thread should be marked disclosed for the recipient")
	}

	// Contact visibility is scoped to the thread's participants.
	for companyID, want := range map[string]bool{
		owner.ID:     true,
		requester.ID: true,
		outsider.ID:  false,
	} {
		exists, err := store.Disclosures().ExistsForResource(ctx, resource.ID, companyID)
		if err != nil {
			t.Fatalf("exists for resource: %v", err)
		}
		if exists != want {
			t.Errorf("exists for %s = %v, want %v", companyID, exists, want)
		}
	}
}

func TestTokenRepository_Lifecycle(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	company := testCompany(t, store, "byggco")

	token, plain, err := models.NewRefreshToken(company.ID, time.Hour)
	if err != nil {
		t.Fatalf("new refresh token: %v", err)
	}
	if err := store.Tokens().Create(ctx, token); err != nil {
		t.Fatalf("create token: %v", err)
	}

	got, err := store.Tokens().GetByTokenHash(ctx, models.HashToken(plain))
	if err != nil {
		t.Fatalf("get by hash: %v", err)
	}
	if got == nil || got.CompanyID != company.ID {
		t.Fatalf("get by hash = %+v", got)
	}
	if !got.IsValid() {
		t.Error("fresh token should be valid")
	}

	if err := store.Tokens().RevokeByTokenHash(ctx, got.TokenHash); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	got, _ = store.Tokens().GetByTokenHash(ctx, models.HashToken(plain))
	if got.IsValid() {
		t.Error("revoked token should be invalid")
	}

	expired, _, err := models.NewRefreshToken(company.ID, -time.Hour)
	if err != nil {
		t.Fatalf("new expired token: %v", err)
	}
	if err := store.Tokens().Create(ctx, expired); err != nil {
		t.Fatalf("create expired token: %v", err)
	}
	deleted, err := store.Tokens().DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if err := store.Tokens().RevokeAllForCompany(ctx, company.ID); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
}
