package config

import (
	"fmt"

	"git.home.luguber.info/inful/linklocal/internal/foundation/normalization"
)

// Task is one stage of the pipeline.
type Task string

const (
	TaskExtract  Task = "extract"
	TaskDownload Task = "download"
	TaskReplace  Task = "replace"
)

// Tasks lists the stages in execution order. Each stage requires the one before it.
var Tasks = []Task{TaskExtract, TaskDownload, TaskReplace}

var taskEnum = normalization.NewEnum("task", Tasks...)

// ParseTask returns the task named by raw, ignoring case.
func ParseTask(raw string) (Task, error) { return taskEnum.Parse(raw) }

// Valid reports whether t is a known stage.
func (t Task) Valid() bool {
	switch t {
	case TaskExtract, TaskDownload, TaskReplace:
		return true
	}
	return false
}

// prerequisite returns the stage t depends on, or "" for extract.
func (t Task) prerequisite() Task {
	switch t {
	case TaskDownload:
		return TaskExtract
	case TaskReplace:
		return TaskDownload
	}
	return ""
}

// TaskSet is the set of enabled stages. The zero value has nothing enabled.
//
// Enabling a stage enables its prerequisites. Disabling a stage that another
// enabled stage depends on is rejected.
type TaskSet struct {
	extract  bool
	download bool
	replace  bool
}

// NewTaskSet enables each task in turn.
func NewTaskSet(tasks ...Task) (TaskSet, error) {
	var ts TaskSet
	for _, t := range tasks {
		if err := ts.Enable(t); err != nil {
			return TaskSet{}, err
		}
	}
	return ts, nil
}

func (ts *TaskSet) set(t Task, on bool) {
	switch t {
	case TaskExtract:
		ts.extract = on
	case TaskDownload:
		ts.download = on
	case TaskReplace:
		ts.replace = on
	}
}

// Has reports whether t is enabled.
func (ts TaskSet) Has(t Task) bool {
	switch t {
	case TaskExtract:
		return ts.extract
	case TaskDownload:
		return ts.download
	case TaskReplace:
		return ts.replace
	}
	return false
}

// Empty reports whether no stage is enabled.
func (ts TaskSet) Empty() bool { return !ts.extract && !ts.download && !ts.replace }

// Enable turns on t and everything it depends on.
func (ts *TaskSet) Enable(t Task) error {
	if !t.Valid() {
		return fmt.Errorf("unknown task %q", t)
	}
	for cur := t; cur != ""; cur = cur.prerequisite() {
		ts.set(cur, true)
	}
	return nil
}

// Disable turns off t unless an enabled stage depends on it.
func (ts *TaskSet) Disable(t Task) error {
	if !t.Valid() {
		return fmt.Errorf("unknown task %q", t)
	}
	for _, other := range Tasks {
		if other.prerequisite() == t && ts.Has(other) {
			return fmt.Errorf("cannot disable %q while %q is enabled", t, other)
		}
	}
	ts.set(t, false)
	return nil
}

// List returns the enabled stages in execution order.
func (ts TaskSet) List() []Task {
	out := make([]Task, 0, len(Tasks))
	for _, t := range Tasks {
		if ts.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// ValidateTasks checks an arbitrary task list: every name must be known and
// every stage's prerequisite must be present.
func ValidateTasks(tasks []Task) []string {
	var problems []string
	present := make(map[Task]bool, len(tasks))
	for _, t := range tasks {
		if !t.Valid() {
			problems = append(problems, fmt.Sprintf("unknown task %q", t))
			continue
		}
		present[t] = true
	}
	for _, t := range Tasks {
		if !present[t] {
			continue
		}
		if pre := t.prerequisite(); pre != "" && !present[pre] {
			problems = append(problems, fmt.Sprintf("task %q requires %q", t, pre))
		}
	}
	return problems
}
