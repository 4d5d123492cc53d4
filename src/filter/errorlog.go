package filter

import (
	"sync"

	"github.com/google/uuid"
)

// ErrorLog accumulates per-file reports and the running finding count of one
// build. It is the only state shared between files and is safe for
// concurrent use.
type ErrorLog struct {
	ID string

	mu       sync.Mutex
	reports  []string
	findings int
	sink     func(string)
}

// NewErrorLog returns an empty log. A non-nil sink receives each report
// instead of the log keeping it; calls to sink are serialized.
func NewErrorLog(sink func(string)) *ErrorLog {
	return &ErrorLog{ID: uuid.NewString(), sink: sink}
}

// Append records one formatted report.
func (l *ErrorLog) Append(report string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink != nil {
		l.sink(report)
		return
	}
	l.reports = append(l.reports, report)
}

// AddFindings adds n to the running finding count.
func (l *ErrorLog) AddFindings(n int) {
	l.mu.Lock()
	l.findings += n
	l.mu.Unlock()
}

// Reports returns a copy of the recorded reports.
func (l *ErrorLog) Reports() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.reports...)
}

// Len returns the number of recorded reports.
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.reports)
}

// Findings returns the total number of findings across all files.
func (l *ErrorLog) Findings() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.findings
}
