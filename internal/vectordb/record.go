package vectordb

import (
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// Record is a persisted vector record. The id is an address-only token; every
// lookup uses the issue_id payload field.
type Record struct {
	ID        string
	IssueID   int
	Title     string
	Content   string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
	Vector    []float32
}

// toPoint converts a Record to a Qdrant point
func toPoint(rec *Record) *qdrant.PointStruct {
	payload := map[string]*qdrant.Value{
		"issue_id":   qdrant.NewValueInt(int64(rec.IssueID)),
		"title":      qdrant.NewValueString(rec.Title),
		"content":    qdrant.NewValueString(rec.Content),
		"url":        qdrant.NewValueString(rec.URL),
		"created_at": qdrant.NewValueString(rec.CreatedAt.Format(time.RFC3339)),
	}
	if !rec.UpdatedAt.IsZero() {
		payload["updated_at"] = qdrant.NewValueString(rec.UpdatedAt.Format(time.RFC3339))
	}

	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(rec.ID),
		Vectors: qdrant.NewVectors(rec.Vector...),
		Payload: payload,
	}
}

// payloadToRecord converts a Qdrant payload to a Record. Fields are extracted
// defensively; a record missing issue_id gets IssueID 0 and is skipped by
// callers.
func payloadToRecord(id string, payload map[string]*qdrant.Value) Record {
	rec := Record{ID: id}

	if v := payload["issue_id"]; v != nil {
		rec.IssueID = int(v.GetIntegerValue())
	}
	if v := payload["title"]; v != nil {
		rec.Title = v.GetStringValue()
	}
	if v := payload["content"]; v != nil {
		rec.Content = v.GetStringValue()
	}
	if v := payload["url"]; v != nil {
		rec.URL = v.GetStringValue()
	}
	if v := payload["created_at"]; v != nil {
		rec.CreatedAt, _ = time.Parse(time.RFC3339, v.GetStringValue())
	}
	if v := payload["updated_at"]; v != nil {
		rec.UpdatedAt, _ = time.Parse(time.RFC3339, v.GetStringValue())
	}

	return rec
}

// pointIDString renders a point id back to its string form
func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	return id.GetUuid()
}
