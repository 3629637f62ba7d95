package health

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Entry pairs a check with the result it produced in one cycle.
type Entry struct {
	CheckID   string
	CheckName string
	Result    Result
}

// Report is the ordered outcome of one cycle of checks. Entries keep the
// order the checks were run in. A Report is read-only once built; accessors
// return copies so no consumer can alter what another consumer sees.
type Report struct {
	ID        uuid.UUID
	CreatedAt time.Time
	entries   []Entry
}

// NewReport builds a Report from entries, stamping a fresh ID and creation time.
func NewReport(entries ...Entry) Report {
	return Report{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		entries:   cloneEntries(entries),
	}
}

// Entries returns a copy of the report entries, Details maps included.
func (r Report) Entries() []Entry {
	return cloneEntries(r.entries)
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Result.Details = maps.Clone(e.Result.Details)
		out[i] = e
	}
	return out
}

// Len returns the number of entries.
func (r Report) Len() int { return len(r.entries) }

// Counts returns the number of entries per status.
func (r Report) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, e := range r.entries {
		counts[e.Result.Status]++
	}
	return counts
}

// AllSuccessful reports whether every entry is a success. An empty report
// counts as successful.
func (r Report) AllSuccessful() bool {
	for _, e := range r.entries {
		if e.Result.Status != StatusSuccess {
			return false
		}
	}
	return true
}

// HasFailures reports whether any entry is not a success. Warning, Error and
// Info entries all count.
func (r Report) HasFailures() bool { return !r.AllSuccessful() }

// Overall returns the worst status in the report.
func (r Report) Overall() Status {
	overall := StatusSuccess
	for _, e := range r.entries {
		if e.Result.Status.severity() > overall.severity() {
			overall = e.Result.Status
		}
	}
	return overall
}

// Document is the serialized form of a Report used by HTTP and notification
// transports.
type Document struct {
	ID        string          `json:"id" bson:"report_id"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Overall   string          `json:"overall" bson:"overall"`
	Counts    map[string]int  `json:"counts" bson:"counts"`
	Checks    []EntryDocument `json:"checks" bson:"checks"`
}

// EntryDocument is the serialized form of one report entry.
type EntryDocument struct {
	ID          string         `json:"id" bson:"id"`
	Name        string         `json:"name" bson:"name"`
	Status      string         `json:"status" bson:"status"`
	Message     string         `json:"message,omitempty" bson:"message,omitempty"`
	Remediation string         `json:"remediation,omitempty" bson:"remediation,omitempty"`
	Duration    string         `json:"duration,omitempty" bson:"duration,omitempty"`
	Details     map[string]any `json:"details,omitempty" bson:"details,omitempty"`
	Error       string         `json:"error,omitempty" bson:"error,omitempty"`
}

// Document converts the report into its serialized form.
func (r Report) Document() Document {
	counts := make(map[string]int, 4)
	for status, n := range r.Counts() {
		counts[status.String()] = n
	}

	doc := Document{
		ID:        r.ID.String(),
		CreatedAt: r.CreatedAt.UTC(),
		Overall:   r.Overall().String(),
		Counts:    counts,
		Checks:    make([]EntryDocument, 0, len(r.entries)),
	}
	for _, e := range r.entries {
		ed := EntryDocument{
			ID:          e.CheckID,
			Name:        e.CheckName,
			Status:      e.Result.Status.String(),
			Message:     e.Result.Message,
			Remediation: e.Result.Remediation,
			Details:     maps.Clone(e.Result.Details),
		}
		if e.Result.Duration > 0 {
			ed.Duration = e.Result.Duration.String()
		}
		if e.Result.Error != nil {
			ed.Error = e.Result.Error.Error()
		}
		doc.Checks = append(doc.Checks, ed)
	}
	return doc
}
