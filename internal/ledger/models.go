package ledger

import "time"

// Kind is the source type of a run. Collections do not get a run of their
// own; each contained item does.
type Kind string

const (
	KindVideo   Kind = "video"
	KindPodcast Kind = "podcast"
	KindLocal   Kind = "local"
)

// Status is the lifecycle state of a run. Drivers move runs forward along
// start -> working -> done|failed; terminal states are never left.
type Status string

const (
	StatusStart   Status = "start"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Run is one persisted processing attempt.
type Run struct {
	ID           int64
	Kind         Kind
	SourceRef    string
	Identifier   string
	Status       Status
	StartedAt    time.Time
	UpdatedAt    time.Time
	ErrorMessage string
}

// Stats aggregates run counts across the whole ledger.
type Stats struct {
	ByStatus map[Status]int
	ByKind   map[Kind]int
	Total    int
}
