package markdown

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/harrisonrobin/trackersync/pkg/model"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrAmbiguousID  = errors.New("tracker id is not unique")
)

const defaultIndent = "  "

// locate finds the task owning id in lines.
func locate(lines []string, id string) (model.Task, error) {
	var found []model.Task
	for _, task := range parseLines(lines) {
		if task.ID() == id {
			found = append(found, task)
		}
	}
	switch len(found) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	case 1:
		return found[0], nil
	default:
		return model.Task{}, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// ApplyChecked sets the checkbox of the task owning id.
func ApplyChecked(lines []string, id string, checked bool) ([]string, error) {
	task, err := locate(lines, id)
	if err != nil {
		return nil, err
	}
	mark := " "
	if checked {
		mark = "x"
	}
	out := append([]string(nil), lines...)
	line := out[task.StartLine]
	// taskRegex guarantees "- [" then the mark at index 3.
	out[task.StartLine] = line[:3] + mark + line[4:]
	return out, nil
}

// ApplyField sets a metadata field of the task owning id. An existing
// field line in the task's range is overwritten in place, otherwise a new
// line is inserted right after the id line.
func ApplyField(lines []string, id, key, value string) ([]string, error) {
	task, err := locate(lines, id)
	if err != nil {
		return nil, err
	}

	out := append([]string(nil), lines...)
	idLine := -1
	for i := task.StartLine + 1; i < task.EndLine; i++ {
		matches := fieldRegex.FindStringSubmatch(strings.TrimSuffix(out[i], "\r"))
		if matches == nil {
			continue
		}
		if matches[2] == key {
			out[i] = formatField(matches[1], key, value) + crOf(out[i])
			return out, nil
		}
		if matches[2] == model.FieldID {
			idLine = i
		}
	}
	if idLine < 0 {
		return nil, fmt.Errorf("%w: %s has no id line", ErrTaskNotFound, id)
	}

	indent := fieldRegex.FindStringSubmatch(strings.TrimSuffix(out[idLine], "\r"))[1]
	newLine := formatField(indent, key, value) + crOf(out[idLine])
	out = append(out[:idLine+1], append([]string{newLine}, out[idLine+1:]...)...)
	return out, nil
}

// ApplyIDs gives every unmanaged task outside the excluded sections a
// fresh id from gen. Assignments are returned in document order.
func ApplyIDs(lines []string, excluded []string, gen func() string) ([]string, []Assignment) {
	var targets []model.Task
	var assigned []Assignment
	for _, task := range parseLines(lines) {
		if task.ID() != "" || task.InSection(excluded) {
			continue
		}
		targets = append(targets, task)
		assigned = append(assigned, Assignment{Title: task.Title, ID: gen()})
	}

	// Edit bottom-up so earlier line numbers stay valid.
	out := append([]string(nil), lines...)
	for i := len(targets) - 1; i >= 0; i-- {
		out = insertID(out, targets[i], assigned[i].ID)
	}
	return out, assigned
}

func insertID(lines []string, task model.Task, id string) []string {
	indent, seen := defaultIndent, false
	for j := task.StartLine + 1; j < task.EndLine; j++ {
		m := fieldRegex.FindStringSubmatch(strings.TrimSuffix(lines[j], "\r"))
		if m == nil {
			continue
		}
		// An existing empty "id:" line is filled rather than duplicated.
		if m[2] == model.FieldID {
			lines[j] = formatField(m[1], model.FieldID, id) + crOf(lines[j])
			return lines
		}
		if !seen {
			indent, seen = m[1], true
		}
	}
	at := task.StartLine + 1
	newLine := formatField(indent, model.FieldID, id) + crOf(lines[task.StartLine])
	return append(lines[:at], append([]string{newLine}, lines[at:]...)...)
}

// Assignment records an id given to a previously unmanaged task.
type Assignment struct {
	Title string
	ID    string
}

func formatField(indent, key, value string) string {
	if value == "" {
		return indent + key + ":"
	}
	return indent + key + ": " + value
}

func crOf(line string) string {
	if strings.HasSuffix(line, "\r") {
		return "\r"
	}
	return ""
}

// rewriteFile reads path, applies fn to its lines and writes the result
// back through a temporary file and rename.
func rewriteFile(path string, fn func(lines []string) ([]string, error)) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	lines, err := fn(splitLines(string(content)))
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(path, strings.NewReader(joinLines(lines))); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SetChecked flips the checkbox of the task owning id in the file at path.
func SetChecked(path, id string, checked bool) error {
	return rewriteFile(path, func(lines []string) ([]string, error) {
		return ApplyChecked(lines, id, checked)
	})
}

// SetField writes key: value into the task owning id in the file at path.
func SetField(path, id, key, value string) error {
	return rewriteFile(path, func(lines []string) ([]string, error) {
		return ApplyField(lines, id, key, value)
	})
}

// SetGithub records the remote issue number for the task owning id.
func SetGithub(path, id string, number int) error {
	return SetField(path, id, model.FieldGithub, strconv.Itoa(number))
}

// AssignIDs gives unmanaged tasks in the file at path generated ids.
func AssignIDs(path string, excluded []string, gen func() string) ([]Assignment, error) {
	var assigned []Assignment
	err := rewriteFile(path, func(lines []string) ([]string, error) {
		var out []string
		out, assigned = ApplyIDs(lines, excluded, gen)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return assigned, nil
}
