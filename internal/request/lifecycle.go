package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/core/textfold"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusSuspended  Status = "suspended"
	StatusDelegated  Status = "delegated"
	StatusClosed     Status = "closed"
	StatusRejected   Status = "rejected"
)

var statusLabels = map[Status]string{
	StatusNew:        "جديد",
	StatusInProgress: "جاري التنفيذ",
	StatusSuspended:  "معلق",
	StatusDelegated:  "موكل",
	StatusClosed:     "مغلق",
	StatusRejected:   "مرفوض",
}

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusSuspended, StatusDelegated, StatusClosed, StatusRejected}
}

func (s Status) Label() string {
	return statusLabels[s]
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusRejected
}

// ParseStatus accepts a status code or its Arabic label.
func ParseStatus(raw string) (Status, error) {
	cleaned := textfold.Clean(raw)
	if s := Status(strings.ToLower(cleaned)); s.Valid() {
		return s, nil
	}
	folded := textfold.Fold(cleaned)
	for s, label := range statusLabels {
		if folded == textfold.Fold(label) {
			return s, nil
		}
	}
	return "", internal.ErrInvalidStatus.WithDetails(map[string]string{"status": raw})
}

var transitions = map[Status][]Status{
	StatusNew:        {StatusInProgress, StatusRejected, StatusDelegated},
	StatusInProgress: {StatusSuspended, StatusClosed, StatusDelegated, StatusRejected},
	StatusSuspended:  {StatusInProgress, StatusClosed, StatusDelegated},
	StatusDelegated:  {StatusInProgress, StatusSuspended, StatusClosed, StatusDelegated},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition describes one status change.
type Transition struct {
	To    Status
	Actor string
	// Delegate receives the request when To is StatusDelegated.
	Delegate string
	// Duration overrides the computed elapsed time when closing.
	Duration string
}

// Lifecycle applies transitions and their side effects to requests.
type Lifecycle struct {
	enforce bool
	now     func() time.Time
}

func NewLifecycle(enforce bool, now func() time.Time) *Lifecycle {
	if now == nil {
		now = time.Now
	}
	return &Lifecycle{enforce: enforce, now: now}
}

func (l *Lifecycle) Enforced() bool {
	return l.enforce
}

// Apply moves r to t.To. When transitions are enforced an illegal move
// returns ErrInvalidTransition and leaves r untouched.
func (l *Lifecycle) Apply(r *Request, t Transition) error {
	if !t.To.Valid() {
		return internal.ErrInvalidStatus
	}
	if l.enforce && !CanTransition(r.Status, t.To) {
		return internal.ErrInvalidTransition.WithDetails(map[string]string{
			"from": string(r.Status),
			"to":   string(t.To),
		})
	}

	now := l.now()
	actor := strings.TrimSpace(t.Actor)

	switch t.To {
	case StatusInProgress:
		if r.StartedAt == nil {
			r.StartedBy = actor
			r.StartedAt = &now
		}
		r.PausedAt = nil
	case StatusSuspended:
		r.PausedAt = &now
		if r.StartedAt != nil {
			r.Duration = FormatDuration(now.Sub(*r.StartedAt))
		}
	case StatusClosed:
		r.ClosedBy = actor
		r.ClosedAt = &now
		if d := strings.TrimSpace(t.Duration); d != "" {
			r.Duration = d
		} else if r.StartedAt != nil {
			r.Duration = FormatDuration(now.Sub(*r.StartedAt))
		}
	case StatusDelegated:
		r.Assignee = strings.TrimSpace(t.Delegate)
	}

	r.Status = t.To
	r.LastUpdatedBy = actor
	if r.Assignee == "" {
		r.Assignee = actor
	}
	return nil
}

// FormatDuration renders d in whole seconds as "H:MM:SS", or
// "N day(s), H:MM:SS" from one day on.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	rest := total % 86400
	clock := fmt.Sprintf("%d:%02d:%02d", rest/3600, rest%3600/60, rest%60)

	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}
