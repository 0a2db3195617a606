package markdown

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/harrisonrobin/trackersync/pkg/model"
)

var (
	taskRegex    = regexp.MustCompile(`^- \[([ x])\] (.+?)$`)
	sectionRegex = regexp.MustCompile(`^## (.+)$`)
	fieldRegex   = regexp.MustCompile(`^(\s+)(\w+):\s*(.*)$`)
)

// ParseFile reads and parses a tracker file.
func ParseFile(path string) ([]model.Task, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(b)), nil
}

// Parse turns tracker file contents into tasks in document order.
// It never fails: lines it does not understand are left out of every task.
func Parse(content string) []model.Task {
	return parseLines(splitLines(content))
}

func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func parseLines(lines []string) []model.Task {
	var tasks []model.Task
	var currentTask *model.Task
	var section string
	var hasSection bool

	flush := func() {
		if currentTask != nil {
			tasks = append(tasks, *currentTask)
			currentTask = nil
		}
	}

	for i, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")

		if matches := sectionRegex.FindStringSubmatch(line); matches != nil {
			flush()
			section = strings.TrimSpace(matches[1])
			hasSection = true
			continue
		}

		if matches := taskRegex.FindStringSubmatch(line); matches != nil {
			flush()
			currentTask = &model.Task{
				Section:    section,
				HasSection: hasSection,
				Checked:    matches[1] == "x",
				Title:      strings.TrimSpace(matches[2]),
				Metadata:   make(map[string]string),
				Lines:      []string{raw},
				StartLine:  i,
				EndLine:    i + 1,
			}
			continue
		}

		if currentTask == nil {
			continue
		}

		if matches := fieldRegex.FindStringSubmatch(line); matches != nil {
			currentTask.Metadata[matches[2]] = strings.TrimSpace(matches[3])
			currentTask.Lines = append(currentTask.Lines, raw)
			currentTask.EndLine = i + 1
			continue
		}

		if strings.TrimSpace(line) == "" {
			currentTask.Lines = append(currentTask.Lines, raw)
			currentTask.EndLine = i + 1
		}
	}
	flush()

	return tasks
}

// Validate reports tracker ids shared by more than one task.
func Validate(tasks []model.Task) []model.Warning {
	var warnings []model.Warning
	for _, id := range DuplicateIDs(tasks) {
		var titles []string
		for i := range tasks {
			if tasks[i].ID() == id {
				titles = append(titles, fmt.Sprintf("%q", tasks[i].Title))
			}
		}
		warnings = append(warnings, model.Warning{
			Kind:      model.WarnDuplicateID,
			TrackerID: id,
			Message:   fmt.Sprintf("id used by %d tasks (%s), all skipped", len(titles), strings.Join(titles, ", ")),
		})
	}
	return warnings
}

// DuplicateIDs returns ids used by more than one task, in first-seen order.
func DuplicateIDs(tasks []model.Task) []string {
	counts := make(map[string]int)
	var order []string
	for i := range tasks {
		id := tasks[i].ID()
		if id == "" {
			continue
		}
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}
	var dups []string
	for _, id := range order {
		if counts[id] > 1 {
			dups = append(dups, id)
		}
	}
	return dups
}
