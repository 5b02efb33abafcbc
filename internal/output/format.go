// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdesk/internal/service"
	"taskdesk/internal/session"
)

const (
	// TabSeparator is the separator line for tab sections.
	TabSeparator = "------------"

	dateLayout = "2006-01-02"
)

// FormatTask formats a task line for a single tab.
// Format: "{N:>4}  {DUE}  {TITLE}\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s  %s\n", num, FormatDueDate(task.DueDate), normalizeTitle(task.Title))
}

// FormatTaskWithRef formats a task line in the all-tabs listing, numbered
// with its tab letter.
// Format: "{REF:>5}  {DUE}  {TITLE}\n"
func FormatTaskWithRef(w io.Writer, ref string, task service.Task) {
	fmt.Fprintf(w, "%5s  %s  %s\n", ref, FormatDueDate(task.DueDate), normalizeTitle(task.Title))
}

// FormatTabHeader formats a tab section header.
func FormatTabHeader(w io.Writer, status service.Status, count int) {
	fmt.Fprintln(w, TabSeparator)
	fmt.Fprintf(w, "%s (%d)\n", status.Title(), count)
	fmt.Fprintln(w, TabSeparator)
}

// FormatTaskDetail formats every field of a task.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "status:      %s\n", task.Status.Title())
	fmt.Fprintf(w, "due:         %s\n", FormatDueDate(task.DueDate))
	desc := strings.TrimSpace(task.Description)
	if desc == "" {
		desc = "-"
	}
	fmt.Fprintf(w, "description: %s\n", desc)
}

// FormatIdentity formats the user carried by a session token.
func FormatIdentity(w io.Writer, id session.Identity) {
	name := id.UserName
	if name == "" {
		name = "(unknown)"
	}
	fmt.Fprintln(w, name)
	if id.Email != "" {
		fmt.Fprintf(w, "email:   %s\n", id.Email)
	}
	if id.UserID != "" {
		fmt.Fprintf(w, "id:      %s\n", id.UserID)
	}
	if !id.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "expires: %s\n", id.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"))
	}
}

// FormatDueDate renders a due date as YYYY-MM-DD. Unparseable values are
// shown as they are.
func FormatDueDate(s string) string {
	t, err := service.ParseDueDate(s)
	if err != nil {
		if strings.TrimSpace(s) == "" {
			return strings.Repeat(" ", len(dateLayout))
		}
		return s
	}
	return t.Format(dateLayout)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
