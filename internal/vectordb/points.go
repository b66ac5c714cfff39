package vectordb

import (
	"context"

	"github.com/qdrant/go-client/qdrant"
)

// UpsertRecord inserts a single vector record
func (c *Client) UpsertRecord(ctx context.Context, collection string, rec *Record) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	_, err := c.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         []*qdrant.PointStruct{toPoint(rec)},
	})
	if err != nil {
		return wrapErr("upsert failed", err)
	}
	return nil
}

// DeleteBatch removes multiple points by id
func (c *Client) DeleteBatch(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	pointIds := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIds[i] = qdrant.NewIDUUID(id)
	}

	_, err := c.qdrant.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: pointIds,
				},
			},
		},
	})
	if err != nil {
		return wrapErr("batch delete failed", err)
	}
	return nil
}
