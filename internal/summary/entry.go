package summary

import "fmt"

const entryTemplateConstant = "[%s] %s"

// Status tags a summary entry.
type Status string

// Supported statuses.
const (
	StatusOK    Status = "OK"
	StatusWarn  Status = "WARN"
	StatusInfo  Status = "INFO"
	StatusError Status = "ERROR"
)

// Entry is one human-readable outcome line for a processed manifest.
type Entry struct {
	Status Status `yaml:"status"`
	Detail string `yaml:"detail"`
}

// NewEntry formats detail with the supplied arguments.
func NewEntry(status Status, detailFormat string, arguments ...any) Entry {
	return Entry{Status: status, Detail: fmt.Sprintf(detailFormat, arguments...)}
}

// String renders the entry as "[STATUS] detail".
func (entry Entry) String() string {
	return fmt.Sprintf(entryTemplateConstant, entry.Status, entry.Detail)
}

// Counts tallies entries per status.
func Counts(entries []Entry) map[Status]int {
	counts := make(map[Status]int, 4)
	for _, entry := range entries {
		counts[entry.Status]++
	}
	return counts
}
