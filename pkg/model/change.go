package model

import "fmt"

const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// StateFor maps a checkbox to the remote issue state it should have.
func StateFor(checked bool) string {
	if checked {
		return StateClosed
	}
	return StateOpen
}

// RemoteIssue is the part of a remote issue the sync cares about.
type RemoteIssue struct {
	Number       int
	Title        string
	State        string
	Labels       []string
	Milestone    string
	HasMilestone bool
	NodeID       string
	TrackerID    string
}

// MilestoneTitle returns the milestone title, "" when none is set.
func (i RemoteIssue) MilestoneTitle() string {
	if !i.HasMilestone {
		return ""
	}
	return i.Milestone
}

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// FieldSet holds the fields an update changes. Nil means unchanged.
type FieldSet struct {
	Title     *string
	Labels    []string
	Milestone *string
	State     *string
}

// Empty reports whether no field is set.
func (f FieldSet) Empty() bool {
	return f.Title == nil && f.Labels == nil && f.Milestone == nil && f.State == nil
}

// Names lists the changed fields in a fixed order.
func (f FieldSet) Names() []string {
	var names []string
	if f.Title != nil {
		names = append(names, "title")
	}
	if f.Labels != nil {
		names = append(names, "labels")
	}
	if f.Milestone != nil {
		names = append(names, "milestone")
	}
	if f.State != nil {
		names = append(names, "state")
	}
	return names
}

// Change is one remote mutation computed by the diff.
type Change struct {
	Action    Action
	TrackerID string
	Task      *Task
	// Number is the remote issue to update. Zero for creates.
	Number int
	Fields FieldSet
}

func (c Change) String() string {
	if c.Action == ActionCreate {
		return fmt.Sprintf("create %s", c.TrackerID)
	}
	return fmt.Sprintf("update %s (#%d) %v", c.TrackerID, c.Number, c.Fields.Names())
}

type PullKind string

const (
	MarkDone PullKind = "mark_done"
	MarkTodo PullKind = "mark_todo"
)

// PullAction is a remote state transition not yet reflected locally.
type PullAction struct {
	TrackerID string
	Title     string
	Action    PullKind
}

// Checked returns the checkbox value the action writes.
func (p PullAction) Checked() bool {
	return p.Action == MarkDone
}

type WarningKind string

const (
	WarnMissingID        WarningKind = "missing_id"
	WarnMissingRemote    WarningKind = "missing_remote"
	WarnNumberMismatch   WarningKind = "number_mismatch"
	WarnDuplicateID      WarningKind = "duplicate_id"
	WarnUnknownMilestone WarningKind = "unknown_milestone"
)

// Warning is a consistency fault. The affected task is skipped or
// partially synced and the run continues.
type Warning struct {
	Kind      WarningKind
	TrackerID string
	Title     string
	Message   string
}

func (w Warning) String() string {
	if w.TrackerID == "" {
		return fmt.Sprintf("%q: %s", w.Title, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.TrackerID, w.Message)
}
