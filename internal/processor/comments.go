package processor

import (
	"fmt"
	"strings"

	"github.com/similigh/gh-dedupe/internal/github"
	"github.com/similigh/gh-dedupe/pkg/models"
)

func commentFooter() string {
	return "---\n<sub>🤖 " + github.BotSignature + "</sub>"
}

// formatAutoCloseComment announces a confirmed duplicate
func formatAutoCloseComment(match *models.CandidateMatch, closing bool) string {
	var sb strings.Builder

	if closing {
		sb.WriteString("🔒 This issue has been automatically closed as a duplicate.\n\n")
	} else {
		sb.WriteString("⚠️ This issue now appears to be a duplicate.\n\n")
	}

	sb.WriteString(fmt.Sprintf("**Original issue:** [#%d - %s](%s)\n", match.IssueID, match.Title, match.URL))
	sb.WriteString(fmt.Sprintf("**Similarity:** %.0f%%\n\n", match.Score*100))

	if closing {
		sb.WriteString("If you believe this is not a duplicate, please comment and a maintainer will reopen it.\n\n")
	} else {
		sb.WriteString("Please review the linked issue. If it covers your report, consider closing this one and following the original.\n\n")
	}

	sb.WriteString(commentFooter())
	return sb.String()
}

// formatRelatedComment points at a possibly related existing issue
func formatRelatedComment(match *models.CandidateMatch) string {
	var sb strings.Builder

	sb.WriteString("🔍 This issue may be related to an existing one.\n\n")
	sb.WriteString(fmt.Sprintf("**Possibly related:** [#%d - %s](%s)\n", match.IssueID, match.Title, match.URL))
	sb.WriteString(fmt.Sprintf("**Similarity:** %.0f%%\n\n", match.Score*100))
	sb.WriteString("Please check whether the linked issue already covers your report. ")
	sb.WriteString("This issue stays open either way.\n\n")
	sb.WriteString(commentFooter())

	return sb.String()
}

// formatUniqueComment confirms no existing report matched
func formatUniqueComment() string {
	var sb strings.Builder

	sb.WriteString("✅ No similar existing issues found.\n\n")
	sb.WriteString("This issue has been indexed and will be suggested if similar reports arrive later.\n\n")
	sb.WriteString(commentFooter())

	return sb.String()
}

// formatNeedsDetailComment asks the author to expand a too-short report
func formatNeedsDetailComment(minChars int) string {
	var sb strings.Builder

	sb.WriteString("📝 This issue is too short to check against existing reports.\n\n")
	sb.WriteString(fmt.Sprintf("Please edit the issue to add more detail (at least %d characters of title and description). ", minChars))
	sb.WriteString("What happened, what you expected, and steps to reproduce all help.\n\n")
	sb.WriteString(commentFooter())

	return sb.String()
}

// formatDegradedComment reports that duplicate detection could not run
func formatDegradedComment() string {
	var sb strings.Builder

	sb.WriteString("⚠️ Duplicate detection could not run on this issue due to a temporary service problem.\n\n")
	sb.WriteString("A maintainer may manually check for existing reports. No action is needed from you.\n\n")
	sb.WriteString(commentFooter())

	return sb.String()
}

// formatCloseFailureComment reports a failed auto-close
func formatCloseFailureComment() string {
	var sb strings.Builder

	sb.WriteString("⚠️ This issue was identified as a duplicate but could not be closed automatically.\n\n")
	sb.WriteString("A maintainer will close it manually.\n\n")
	sb.WriteString(commentFooter())

	return sb.String()
}
