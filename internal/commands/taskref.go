package commands

import (
	"strconv"
	"unicode"

	"taskdesk/internal/service"
	"taskdesk/internal/taskview"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Tab service.Status // tab the number refers to
	Num int            // 1-based position in the tab, 0 for an id reference
	ID  string         // task id, set when Num is 0
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired error = &userError{msg: "task reference required"}

var tabLetters = map[byte]service.Status{
	't': service.StatusToDo,
	'p': service.StatusInProgress,
	'c': service.StatusComplete,
}

// ParseTaskRef parses a task reference from args and returns the number of
// args it consumed.
//
// Parsing rules:
//  1. all digits: position in the To Do tab (3)
//  2. tab letter and digits: position in that tab (t3, p1, c12)
//  3. single tab letter followed by a digits arg: same as 2 (p 1)
//  4. anything else: a task id
func ParseTaskRef(args []string) (TaskRef, int, error) {
	if len(args) == 0 || args[0] == "" {
		return TaskRef{}, 0, ErrTaskRefRequired
	}
	first := args[0]

	if isAllDigits(first) {
		return numberRef(service.StatusToDo, first)
	}

	if tab, ok := tabLetters[first[0]]; ok {
		if len(first) > 1 && isAllDigits(first[1:]) {
			return numberRef(tab, first[1:])
		}
		if len(first) == 1 && len(args) > 1 && isAllDigits(args[1]) {
			ref, _, err := numberRef(tab, args[1])
			return ref, 2, err
		}
	}

	return TaskRef{ID: first}, 1, nil
}

func numberRef(tab service.Status, digits string) (TaskRef, int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return TaskRef{}, 0, userErrorf("invalid task reference: %s", digits)
	}
	return TaskRef{Tab: tab, Num: n}, 1, nil
}

// String returns the reference in its short form.
func (r TaskRef) String() string {
	if r.Num == 0 {
		return r.ID
	}
	for letter, tab := range tabLetters {
		if tab == r.Tab {
			return string(letter) + strconv.Itoa(r.Num)
		}
	}
	return strconv.Itoa(r.Num)
}

// Resolve finds the referenced task in the controller's fetched tasks.
// Positions count within the tab in the controller's sort order.
func (r TaskRef) Resolve(ctrl *taskview.Controller) (service.Task, error) {
	if r.Num == 0 {
		task, ok := ctrl.Task(r.ID)
		if !ok {
			return service.Task{}, userErrorf("task not found: %s", r.ID)
		}
		return task, nil
	}

	tasks := ctrl.Tab(r.Tab)
	if r.Num < 1 || r.Num > len(tasks) {
		return service.Task{}, userErrorf("task number out of range: %s", r)
	}
	return tasks[r.Num-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
