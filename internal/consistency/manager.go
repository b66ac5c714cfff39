// Package consistency keeps the vector index aligned with the true state of
// the issue tracker. It is the only component permitted to create, update, or
// delete vector records; converged target state is at most one live record
// per issue id.
package consistency

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/similigh/gh-dedupe/internal/retry"
	"github.com/similigh/gh-dedupe/internal/vectordb"
	"github.com/similigh/gh-dedupe/pkg/models"
)

const scrollPageSize = 256

// Store is the subset of index operations the manager needs
type Store interface {
	QueryByIssue(ctx context.Context, collection string, issueID int, limit int, dimensions int) ([]vectordb.Record, error)
	ScrollPage(ctx context.Context, collection string, cursor string, limit int) ([]vectordb.Record, string, error)
	DeleteBatch(ctx context.Context, collection string, ids []string) error
	UpsertRecord(ctx context.Context, collection string, rec *vectordb.Record) error
}

// Manager reconciles vector records for issues
type Manager struct {
	store      Store
	collection string
	dimensions int
	// bound caps the filtered existing-vectors query (the fallback scroll
	// has no such cap; it pages until exhausted)
	bound int

	// every store call runs under the bounded-retry policy
	policy retry.Policy

	// now is swappable for tests
	now func() time.Time
}

// NewManager creates a consistency manager bound to one collection
func NewManager(store Store, collection string, dimensions, bound int) *Manager {
	return &Manager{
		store:      store,
		collection: collection,
		dimensions: dimensions,
		bound:      bound,
		policy:     retry.DefaultPolicy(),
		now:        time.Now,
	}
}

// FindExisting returns the ids of every record already representing issueID.
// A non-empty result means the issue was previously indexed. The primary
// method is a metadata-filtered query with a neutral vector; if it errors or
// reports zero matches (index backends without server-side filtering,
// transient filter failures), the full listing is paged exhaustively instead.
func (m *Manager) FindExisting(ctx context.Context, issueID int) ([]string, error) {
	var records []vectordb.Record
	err := retry.Do(ctx, m.policy, "filtered vector query", func(ctx context.Context) error {
		var qErr error
		records, qErr = m.store.QueryByIssue(ctx, m.collection, issueID, m.bound, m.dimensions)
		return qErr
	})
	if err != nil {
		log.Printf("Warning: filtered vector query failed for issue #%d, falling back to scan: %v", issueID, err)
	} else if len(records) > 0 {
		return recordIDs(records, issueID), nil
	}

	ids, scanErr := m.scanForIssue(ctx, issueID)
	if scanErr != nil {
		if err != nil {
			return nil, fmt.Errorf("existing-vector lookup failed: %w", scanErr)
		}
		// The filtered query succeeded with zero matches; trust it over a
		// broken scan.
		log.Printf("Warning: full scan failed for issue #%d: %v", issueID, scanErr)
		return nil, nil
	}
	return ids, nil
}

// scanForIssue pages the full record listing and selects by issue_id payload.
// O(index size); only used when the filtered query cannot be trusted.
func (m *Manager) scanForIssue(ctx context.Context, issueID int) ([]string, error) {
	var ids []string
	cursor := ""
	for {
		var records []vectordb.Record
		var next string
		err := retry.Do(ctx, m.policy, "index scroll", func(ctx context.Context) error {
			var sErr error
			records, next, sErr = m.store.ScrollPage(ctx, m.collection, cursor, scrollPageSize)
			return sErr
		})
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if rec.IssueID == issueID {
				ids = append(ids, rec.ID)
			}
		}
		if next == "" {
			break
		}
		cursor = next
	}
	return ids, nil
}

// Reconcile replaces an issue's stale records with one fresh record. Delete
// completes before insert so the index never holds two live records for one
// issue; a brief window with zero records is acceptable, a window with two is
// not. A delete failure aborts reconciliation rather than inserting alongside
// defunct records. When shouldPersist is false no mutation occurs at all.
func (m *Manager) Reconcile(ctx context.Context, issue *models.Issue, vector []float32, existingIDs []string, shouldPersist bool) error {
	if !shouldPersist {
		return nil
	}

	if len(existingIDs) > 0 {
		err := retry.Do(ctx, m.policy, "stale vector delete", func(ctx context.Context) error {
			return m.store.DeleteBatch(ctx, m.collection, existingIDs)
		})
		if err != nil {
			return fmt.Errorf("failed to delete stale vectors for issue #%d: %w", issue.Number, err)
		}
	}

	createdAt := m.now().UTC()
	rec := &vectordb.Record{
		ID:        models.VectorID(issue.Number, createdAt),
		IssueID:   issue.Number,
		Title:     issue.Title,
		Content:   issue.Body,
		URL:       issue.URL,
		CreatedAt: createdAt,
		UpdatedAt: issue.UpdatedAt,
		Vector:    vector,
	}

	err := retry.Do(ctx, m.policy, "vector insert", func(ctx context.Context) error {
		return m.store.UpsertRecord(ctx, m.collection, rec)
	})
	if err != nil {
		return fmt.Errorf("failed to insert vector for issue #%d: %w", issue.Number, err)
	}
	return nil
}

// RemoveIssue deletes every record for an issue (close/delete lifecycle).
// Returns the number of records removed.
func (m *Manager) RemoveIssue(ctx context.Context, issueID int) (int, error) {
	ids, err := m.FindExisting(ctx, issueID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	err = retry.Do(ctx, m.policy, "vector delete", func(ctx context.Context) error {
		return m.store.DeleteBatch(ctx, m.collection, ids)
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Dedupe is the operator maintenance pass: scan the whole collection and,
// for every issue holding more than one record, keep only the newest.
func (m *Manager) Dedupe(ctx context.Context) (int, error) {
	type keeper struct {
		id        string
		createdAt time.Time
	}

	newest := make(map[int]keeper)
	var stale []string

	cursor := ""
	for {
		var records []vectordb.Record
		var next string
		err := retry.Do(ctx, m.policy, "maintenance scroll", func(ctx context.Context) error {
			var sErr error
			records, next, sErr = m.store.ScrollPage(ctx, m.collection, cursor, scrollPageSize)
			return sErr
		})
		if err != nil {
			return 0, fmt.Errorf("maintenance scan failed: %w", err)
		}
		for _, rec := range records {
			if rec.IssueID == 0 {
				continue
			}
			current, seen := newest[rec.IssueID]
			if !seen {
				newest[rec.IssueID] = keeper{rec.ID, rec.CreatedAt}
				continue
			}
			if rec.CreatedAt.After(current.createdAt) {
				stale = append(stale, current.id)
				newest[rec.IssueID] = keeper{rec.ID, rec.CreatedAt}
			} else {
				stale = append(stale, rec.ID)
			}
		}
		if next == "" {
			break
		}
		cursor = next
	}

	if len(stale) == 0 {
		return 0, nil
	}
	err := retry.Do(ctx, m.policy, "maintenance delete", func(ctx context.Context) error {
		return m.store.DeleteBatch(ctx, m.collection, stale)
	})
	if err != nil {
		return 0, fmt.Errorf("maintenance delete failed: %w", err)
	}
	return len(stale), nil
}

func recordIDs(records []vectordb.Record, issueID int) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		// The filter should already guarantee this; check anyway since the
		// ids feed a batch delete.
		if rec.IssueID == issueID {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}
