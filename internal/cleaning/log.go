package cleaning

import (
	"fmt"
	"strings"
	"time"

	"eventpulse/pkg/contracts/domain"
)

// Log accumulates the cleaning actions of one run. Every transformation
// appends an entry; the rendered artifact becomes cleaning_log.txt.
type Log struct {
	actions []domain.CleaningAction
	now     func() time.Time
}

// NewLog creates an empty cleaning log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Add records a cleaning action for a dataset. Messages are sanitized to
// ASCII before they reach the artifact.
func (l *Log) Add(dataset domain.Dataset, format string, args ...any) {
	l.actions = append(l.actions, domain.CleaningAction{
		Timestamp: l.now(),
		Dataset:   dataset,
		Message:   SanitizeASCII(fmt.Sprintf(format, args...)),
	})
}

// AddGlobal records an action that is not tied to a single dataset, such
// as loading the workbook or saving artifacts.
func (l *Log) AddGlobal(format string, args ...any) {
	l.Add("", format, args...)
}

// Actions returns everything recorded so far.
func (l *Log) Actions() []domain.CleaningAction {
	return l.actions
}

// CountFor returns how many actions were recorded for a dataset.
func (l *Log) CountFor(dataset domain.Dataset) int {
	count := 0
	for _, action := range l.actions {
		if action.Dataset == dataset {
			count++
		}
	}
	return count
}

// Render produces the cleaning_log.txt artifact: one timestamped line per
// action.
func (l *Log) Render() string {
	var b strings.Builder
	for _, action := range l.actions {
		b.WriteString("[")
		b.WriteString(action.Timestamp.Format("2006-01-02 15:04:05"))
		b.WriteString("] ")
		if action.Dataset != "" {
			b.WriteString(string(action.Dataset))
			b.WriteString(": ")
		}
		b.WriteString(action.Message)
		b.WriteString("\n")
	}
	return b.String()
}
