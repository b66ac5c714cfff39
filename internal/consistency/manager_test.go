package consistency

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/similigh/gh-dedupe/internal/retry"
	"github.com/similigh/gh-dedupe/internal/vectordb"
	"github.com/similigh/gh-dedupe/pkg/models"
)

// fakeStore is an in-memory Store with togglable failure modes
type fakeStore struct {
	records map[string]vectordb.Record
	ops     []string

	filterBroken bool // filtered query always errors
	filterEmpty  bool // filtered query returns nothing regardless of state
	scrollBroken bool
	deleteErr    error
	upsertErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]vectordb.Record)}
}

func (f *fakeStore) QueryByIssue(ctx context.Context, collection string, issueID, limit, dimensions int) ([]vectordb.Record, error) {
	f.ops = append(f.ops, "query")
	if f.filterBroken {
		return nil, errors.New("filter unsupported")
	}
	if f.filterEmpty {
		return nil, nil
	}
	var out []vectordb.Record
	for _, rec := range f.records {
		if rec.IssueID == issueID && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) ScrollPage(ctx context.Context, collection, cursor string, limit int) ([]vectordb.Record, string, error) {
	f.ops = append(f.ops, "scroll")
	if f.scrollBroken {
		return nil, "", errors.New("scroll failed")
	}
	var out []vectordb.Record
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, "", nil // single page
}

func (f *fakeStore) DeleteBatch(ctx context.Context, collection string, ids []string) error {
	f.ops = append(f.ops, fmt.Sprintf("delete:%d", len(ids)))
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, id := range ids {
		delete(f.records, id)
	}
	return nil
}

func (f *fakeStore) UpsertRecord(ctx context.Context, collection string, rec *vectordb.Record) error {
	f.ops = append(f.ops, "upsert")
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records[rec.ID] = *rec
	return nil
}

func (f *fakeStore) countForIssue(issueID int) int {
	n := 0
	for _, rec := range f.records {
		if rec.IssueID == issueID {
			n++
		}
	}
	return n
}

func newTestManager(store *fakeStore) *Manager {
	m := NewManager(store, "test_issues", 4, 100)
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	m.now = func() time.Time {
		calls++
		return t0.Add(time.Duration(calls) * time.Second)
	}
	return m
}

func testIssue(number int) *models.Issue {
	return &models.Issue{
		Org:    "acme",
		Repo:   "widgets",
		Number: number,
		Title:  fmt.Sprintf("issue %d", number),
		Body:   "some body text",
		URL:    fmt.Sprintf("https://example.com/%d", number),
	}
}

func TestFindExistingPrimaryPath(t *testing.T) {
	store := newFakeStore()
	store.records["aa"] = vectordb.Record{ID: "aa", IssueID: 7}
	store.records["bb"] = vectordb.Record{ID: "bb", IssueID: 8}

	m := newTestManager(store)
	ids, err := m.FindExisting(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindExisting() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "aa" {
		t.Errorf("ids = %v, want [aa]", ids)
	}
}

func TestFindExistingFallsBackToScan(t *testing.T) {
	store := newFakeStore()
	store.records["aa"] = vectordb.Record{ID: "aa", IssueID: 7}
	store.filterBroken = true

	m := newTestManager(store)
	ids, err := m.FindExisting(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindExisting() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "aa" {
		t.Errorf("ids = %v, want [aa] via scan fallback", ids)
	}
}

func TestFindExistingScanOnZeroMatches(t *testing.T) {
	// Filter reports nothing even though a record exists (backend without
	// server-side filtering); the scan must find it.
	store := newFakeStore()
	store.records["aa"] = vectordb.Record{ID: "aa", IssueID: 7}
	store.filterEmpty = true

	m := newTestManager(store)
	ids, err := m.FindExisting(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindExisting() error = %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("ids = %v, want one id from scan", ids)
	}
}

func TestFindExistingBothPathsBroken(t *testing.T) {
	store := newFakeStore()
	store.filterBroken = true
	store.scrollBroken = true

	m := newTestManager(store)
	if _, err := m.FindExisting(context.Background(), 7); err == nil {
		t.Fatal("FindExisting() = nil error, want failure when both paths break")
	}
}

func TestReconcileNoPersistIsNoOp(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)

	err := m.Reconcile(context.Background(), testIssue(7), []float32{1, 0, 0, 0}, nil, false)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(store.ops) != 0 {
		t.Errorf("ops = %v, want no index mutation", store.ops)
	}
}

func TestReconcileInsertsWhenNoExisting(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)

	err := m.Reconcile(context.Background(), testIssue(7), []float32{1, 0, 0, 0}, nil, true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if store.countForIssue(7) != 1 {
		t.Errorf("records for issue = %d, want 1", store.countForIssue(7))
	}
	if len(store.ops) != 1 || store.ops[0] != "upsert" {
		t.Errorf("ops = %v, want [upsert] only", store.ops)
	}
}

func TestReconcileDeletesBeforeInsert(t *testing.T) {
	store := newFakeStore()
	store.records["old"] = vectordb.Record{ID: "old", IssueID: 7}
	m := newTestManager(store)

	err := m.Reconcile(context.Background(), testIssue(7), []float32{1, 0, 0, 0}, []string{"old"}, true)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := []string{"delete:1", "upsert"}
	if len(store.ops) != 2 || store.ops[0] != want[0] || store.ops[1] != want[1] {
		t.Errorf("ops = %v, want %v", store.ops, want)
	}
	if store.countForIssue(7) != 1 {
		t.Errorf("records for issue = %d, want 1", store.countForIssue(7))
	}
}

func TestReconcileAbortsOnDeleteFailure(t *testing.T) {
	store := newFakeStore()
	store.records["old"] = vectordb.Record{ID: "old", IssueID: 7}
	store.deleteErr = errors.New("delete refused")
	m := newTestManager(store)

	err := m.Reconcile(context.Background(), testIssue(7), []float32{1, 0, 0, 0}, []string{"old"}, true)
	if err == nil {
		t.Fatal("Reconcile() = nil, want error")
	}
	for _, op := range store.ops {
		if op == "upsert" {
			t.Fatal("insert attempted after delete failure")
		}
	}
}

func TestReconcileRetriesTransientUpsert(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = retry.NewStatusError(503, errors.New("service unavailable"))
	m := newTestManager(store)
	m.policy = retry.Policy{MaxAttempts: 3, Retryable: retry.RetryableStatus}

	err := m.Reconcile(context.Background(), testIssue(7), []float32{1, 0, 0, 0}, nil, true)
	if err == nil {
		t.Fatal("Reconcile() = nil, want error when every attempt fails")
	}
	upserts := 0
	for _, op := range store.ops {
		if op == "upsert" {
			upserts++
		}
	}
	if upserts != 3 {
		t.Errorf("upsert attempts = %d, want 3", upserts)
	}
}

func TestRemoveIssueDoesNotRetryPermanentDeleteFailure(t *testing.T) {
	store := newFakeStore()
	store.records["aa"] = vectordb.Record{ID: "aa", IssueID: 7}
	store.deleteErr = retry.NewStatusError(403, errors.New("forbidden"))
	m := newTestManager(store)
	m.policy = retry.Policy{MaxAttempts: 3, Retryable: retry.RetryableStatus}

	if _, err := m.RemoveIssue(context.Background(), 7); err == nil {
		t.Fatal("RemoveIssue() = nil, want error")
	}
	deletes := 0
	for _, op := range store.ops {
		if op == "delete:1" {
			deletes++
		}
	}
	if deletes != 1 {
		t.Errorf("delete attempts = %d, want 1 for a client error", deletes)
	}
}

// At-most-one invariant across a create/edit/close lifecycle
func TestLifecycleKeepsAtMostOneRecord(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)
	ctx := context.Background()
	issue := testIssue(7)

	// create
	if err := m.Reconcile(ctx, issue, []float32{1, 0, 0, 0}, nil, true); err != nil {
		t.Fatalf("create: %v", err)
	}
	if store.countForIssue(7) != 1 {
		t.Fatalf("after create: %d records, want 1", store.countForIssue(7))
	}

	// edit
	existing, err := m.FindExisting(ctx, 7)
	if err != nil {
		t.Fatalf("FindExisting: %v", err)
	}
	issue.Body = "edited body"
	if err := m.Reconcile(ctx, issue, []float32{0, 1, 0, 0}, existing, true); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if store.countForIssue(7) != 1 {
		t.Fatalf("after edit: %d records, want 1", store.countForIssue(7))
	}

	// close
	removed, err := m.RemoveIssue(ctx, 7)
	if err != nil {
		t.Fatalf("RemoveIssue: %v", err)
	}
	if removed != 1 || store.countForIssue(7) != 0 {
		t.Fatalf("after close: removed=%d remaining=%d, want 1/0", removed, store.countForIssue(7))
	}
}

func TestDedupeCollapsesToNewest(t *testing.T) {
	store := newFakeStore()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.records["a1"] = vectordb.Record{ID: "a1", IssueID: 7, CreatedAt: t0}
	store.records["a2"] = vectordb.Record{ID: "a2", IssueID: 7, CreatedAt: t0.Add(time.Hour)}
	store.records["a3"] = vectordb.Record{ID: "a3", IssueID: 7, CreatedAt: t0.Add(2 * time.Hour)}
	store.records["b1"] = vectordb.Record{ID: "b1", IssueID: 8, CreatedAt: t0}

	m := newTestManager(store)
	removed, err := m.Dedupe(context.Background())
	if err != nil {
		t.Fatalf("Dedupe() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if store.countForIssue(7) != 1 {
		t.Errorf("records for issue 7 = %d, want 1", store.countForIssue(7))
	}
	if _, ok := store.records["a3"]; !ok {
		t.Errorf("newest record a3 was removed")
	}
	if store.countForIssue(8) != 1 {
		t.Errorf("records for issue 8 = %d, want 1", store.countForIssue(8))
	}
}
