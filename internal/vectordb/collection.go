package vectordb

import (
	"context"
	"log"

	"github.com/qdrant/go-client/qdrant"
)

// EnsureCollection creates the collection if it doesn't exist
func (c *Client) EnsureCollection(ctx context.Context, name string, dimensions int) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	exists, err := c.qdrant.CollectionExists(ctx, name)
	if err != nil {
		return wrapErr("failed to check collection", err)
	}

	if exists {
		return nil
	}

	err = c.qdrant.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return wrapErr("failed to create collection", err)
	}

	// issue_id is the only field the consistency manager filters on
	_, err = c.qdrant.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: name,
		FieldName:      "issue_id",
		FieldType:      qdrant.PtrOf(qdrant.FieldType_FieldTypeInteger),
	})
	if err != nil {
		// Index creation failure is not fatal; the scroll fallback covers it
		log.Printf("Warning: failed to create issue_id index: %v", err)
	}

	return nil
}

// CollectionExists checks if a collection exists
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	if err := c.wait(ctx); err != nil {
		return false, err
	}
	exists, err := c.qdrant.CollectionExists(ctx, name)
	if err != nil {
		return false, wrapErr("failed to check collection", err)
	}
	return exists, nil
}

// Stats describes the collection: live record count and configured dimension
type Stats struct {
	RecordCount uint64
	Dimension   uint64
}

// DescribeStats fetches collection statistics
func (c *Client) DescribeStats(ctx context.Context, name string) (*Stats, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	info, err := c.qdrant.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, wrapErr("failed to describe collection", err)
	}

	stats := &Stats{}
	if info.PointsCount != nil {
		stats.RecordCount = *info.PointsCount
	}
	if params := info.GetConfig().GetParams().GetVectorsConfig().GetParams(); params != nil {
		stats.Dimension = params.Size
	}

	return stats, nil
}
