package model

import (
	"sort"
	"strconv"
	"strings"
)

// Metadata keys understood by the sync. Any other key is kept verbatim.
const (
	FieldID          = "id"
	FieldGithub      = "github"
	FieldEpic        = "epic"
	FieldType        = "type"
	FieldPriority    = "priority"
	FieldLabels      = "labels"
	FieldMilestone   = "milestone"
	FieldDescription = "description"
)

// Task represents one checkbox item from the tracker file.
type Task struct {
	Section    string
	HasSection bool
	Checked    bool
	Title      string
	Metadata   map[string]string
	// Lines backing this task, starting with the checkbox line.
	Lines []string
	// StartLine and EndLine delimit Lines in the file, 0-based, end exclusive.
	StartLine int
	EndLine   int
}

// Field returns a metadata value, or "" when absent.
func (t *Task) Field(key string) string {
	if t.Metadata == nil {
		return ""
	}
	return t.Metadata[key]
}

// ID returns the tracker identifier. An empty ID means the task is unmanaged.
func (t *Task) ID() string {
	return strings.TrimSpace(t.Field(FieldID))
}

// Linked reports whether the task has a github number recorded.
func (t *Task) Linked() bool {
	return strings.TrimSpace(t.Field(FieldGithub)) != ""
}

// GithubNumber returns the cached remote issue number, if it parses.
func (t *Task) GithubNumber() (int, bool) {
	raw := strings.TrimSpace(t.Field(FieldGithub))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(raw, "#"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Labels returns the comma separated labels field as a list, trimmed,
// without empties and duplicates, in first-seen order.
func (t *Task) Labels() []string {
	return SplitLabels(t.Field(FieldLabels))
}

// InSection reports whether the task sits under one of the given headings.
// Headings compare case-insensitively.
func (t *Task) InSection(sections []string) bool {
	if !t.HasSection {
		return false
	}
	for _, s := range sections {
		if strings.EqualFold(strings.TrimSpace(s), t.Section) {
			return true
		}
	}
	return false
}

// Managed reports whether the task takes part in sync.
func (t *Task) Managed(excluded []string) bool {
	return t.ID() != "" && !t.InSection(excluded)
}

// SplitLabels parses a comma separated label list.
func SplitLabels(raw string) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		l := strings.TrimSpace(part)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		labels = append(labels, l)
	}
	return labels
}

// SameLabels compares two label lists as sets, ignoring case like GitHub.
func SameLabels(a, b []string) bool {
	as := make(map[string]bool, len(a))
	for _, l := range a {
		as[strings.ToLower(l)] = true
	}
	bs := make(map[string]bool, len(b))
	for _, l := range b {
		bs[strings.ToLower(l)] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for l := range as {
		if !bs[l] {
			return false
		}
	}
	return true
}

// SortedLabels returns a sorted copy of labels.
func SortedLabels(labels []string) []string {
	out := append([]string(nil), labels...)
	sort.Strings(out)
	return out
}
