package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/harrisonrobin/trackersync/pkg/model"
)

var markerRegex = regexp.MustCompile(`<!-- tracker-id: (.+?) -->`)

// Marker returns the comment that ties an issue body to a tracker id.
func Marker(id string) string {
	return fmt.Sprintf("<!-- tracker-id: %s -->", id)
}

// TrackerIDFromBody returns the id of the first marker in an issue body.
func TrackerIDFromBody(body string) (string, bool) {
	matches := markerRegex.FindStringSubmatch(body)
	if len(matches) > 1 {
		id := strings.TrimSpace(matches[1])
		return id, id != ""
	}
	return "", false
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// IssueBody renders the body of a newly created issue.
func IssueBody(task *model.Task) string {
	var b strings.Builder

	b.WriteString(Marker(task.ID()))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("**Epic**: %s\n", orDefault(task.Field(model.FieldEpic), "N/A")))
	b.WriteString(fmt.Sprintf("**Type**: %s\n", orDefault(task.Field(model.FieldType), "task")))
	b.WriteString(fmt.Sprintf("**Priority**: %s\n", orDefault(task.Field(model.FieldPriority), "p2")))
	b.WriteString("\n")
	b.WriteString(task.Field(model.FieldDescription))

	return b.String()
}
