package verifier

import (
	"encoding/json"
	"strings"

	"github.com/similigh/gh-dedupe/pkg/models"
)

const maxReasonChars = 240

// verdictPayload mirrors the JSON the model is asked to emit. Pointer fields
// distinguish "absent" from zero values so a malformed answer never counts
// as a real verdict.
type verdictPayload struct {
	IsDuplicate *bool    `json:"is_duplicate"`
	Confidence  *float64 `json:"confidence"`
	Reason      string   `json:"reason"`
}

// ParseVerdict extracts a verdict from a raw model response. The response is
// tried as-is after fence stripping, then again on the substring between the
// first "{" and the last "}". Anything that fails both, or parses without
// both required fields, comes back with Valid set to false.
func ParseVerdict(response string) models.VerificationVerdict {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if v, ok := tryParse(cleaned); ok {
		return v
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if v, ok := tryParse(cleaned[start : end+1]); ok {
			return v
		}
	}

	return models.VerificationVerdict{Valid: false}
}

func tryParse(text string) (models.VerificationVerdict, bool) {
	var payload verdictPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return models.VerificationVerdict{}, false
	}

	if payload.IsDuplicate == nil || payload.Confidence == nil {
		return models.VerificationVerdict{}, false
	}

	reason := truncate(strings.TrimSpace(payload.Reason), maxReasonChars)

	return models.VerificationVerdict{
		IsDuplicate: *payload.IsDuplicate,
		Confidence:  *payload.Confidence,
		Reason:      reason,
		Valid:       true,
	}, true
}
