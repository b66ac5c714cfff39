package vectordb

import (
	"context"
	"sort"

	"github.com/qdrant/go-client/qdrant"
	"github.com/similigh/gh-dedupe/pkg/models"
)

// Search finds the nearest candidate matches for a vector, excluding any
// record belonging to excludeIssueID (self-matches are also re-checked by the
// classifier).
func (c *Client) Search(ctx context.Context, collection string, vector []float32, topK int, excludeIssueID int) ([]models.CandidateMatch, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var filter *qdrant.Filter
	if excludeIssueID > 0 {
		filter = &qdrant.Filter{
			MustNot: []*qdrant.Condition{
				qdrant.NewMatchInt("issue_id", int64(excludeIssueID)),
			},
		}
	}

	points, err := c.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, wrapErr("search failed", err)
	}

	results := make([]models.CandidateMatch, 0, len(points))
	for _, point := range points {
		rec := payloadToRecord(pointIDString(point.Id), point.Payload)
		if rec.IssueID == 0 {
			continue
		}
		results = append(results, models.CandidateMatch{
			IssueID: rec.IssueID,
			Score:   float64(point.Score),
			Title:   rec.Title,
			URL:     rec.URL,
			Content: rec.Content,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

// QueryByIssue runs a metadata-filtered query for all records whose issue_id
// payload matches. The query vector is a neutral zero vector since only the
// filter matters.
func (c *Client) QueryByIssue(ctx context.Context, collection string, issueID int, limit int, dimensions int) ([]Record, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	neutral := make([]float32, dimensions)

	points, err := c.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(neutral...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchInt("issue_id", int64(issueID)),
			},
		},
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, wrapErr("filtered query failed", err)
	}

	records := make([]Record, 0, len(points))
	for _, point := range points {
		records = append(records, payloadToRecord(pointIDString(point.Id), point.Payload))
	}

	return records, nil
}
