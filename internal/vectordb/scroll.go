package vectordb

import (
	"context"

	"github.com/qdrant/go-client/qdrant"
)

// ScrollPage fetches one page of the full record listing. An empty cursor
// starts from the beginning; an empty next cursor means the listing is
// exhausted. The convenience Scroll on the high-level client drops the
// next-page offset, so this goes through the points client directly.
func (c *Client) ScrollPage(ctx context.Context, collection string, cursor string, limit int) ([]Record, string, error) {
	if err := c.wait(ctx); err != nil {
		return nil, "", err
	}

	req := &qdrant.ScrollPoints{
		CollectionName: collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if cursor != "" {
		req.Offset = qdrant.NewIDUUID(cursor)
	}

	resp, err := c.qdrant.GetPointsClient().Scroll(ctx, req)
	if err != nil {
		return nil, "", wrapErr("scroll failed", err)
	}

	records := make([]Record, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		records = append(records, payloadToRecord(pointIDString(point.Id), point.Payload))
	}

	return records, pointIDString(resp.GetNextPageOffset()), nil
}
