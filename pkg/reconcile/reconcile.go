// Package reconcile holds the create / update / skip bookkeeping shared by
// every resource kind mlpad manages. Each kind decides what to do for one
// desired entry given what the workspace already has; this package records
// those decisions and turns them into a run summary.
package reconcile

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type Action int

const (
	Skip Action = iota
	Create
	Update
)

func (a Action) String() string {
	switch a {
	case Create:
		return "create"
	case Update:
		return "update"
	default:
		return "skip"
	}
}

// Decision is the planned action for one desired entry.
type Decision struct {
	Action  Action
	Version string
	Reason  string
}

func SkipBecause(format string, a ...any) Decision {
	return Decision{Action: Skip, Reason: fmt.Sprintf(format, a...)}
}

// Outcome is what happened to one entry. Err is set when the entry failed,
// in which case Action is what was attempted.
type Outcome struct {
	Kind    string
	Name    string
	Version string
	Action  Action
	Reason  string
	Err     error
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

func (o Outcome) String() string {
	id := o.Name
	if o.Version != "" {
		id += ":" + o.Version
	}
	if o.Err != nil && o.Action == Skip {
		// Nothing was attempted, the entry itself is invalid.
		return fmt.Sprintf("%s %s: %v", o.Kind, id, o.Err)
	}
	if o.Err != nil {
		return fmt.Sprintf("%s %s: failed to %s: %v", o.Kind, id, o.Action, o.Err)
	}
	if o.Reason != "" {
		return fmt.Sprintf("%s %s: %s (%s)", o.Kind, id, o.Action, o.Reason)
	}
	return fmt.Sprintf("%s %s: %s", o.Kind, id, o.Action)
}

// Report collects the outcomes of a run. It is safe for concurrent use.
type Report struct {
	mu       sync.Mutex
	outcomes []Outcome
	duration time.Duration
}

func NewReport() *Report {
	return &Report{}
}

func (r *Report) Add(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *Report) SetDuration(d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duration = d
}

func (r *Report) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

// Merge appends all outcomes of other to r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	for _, o := range other.Outcomes() {
		r.Add(o)
	}
}

func (r *Report) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.outcomes...)
}

type Counts struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

func (c Counts) String() string {
	return fmt.Sprintf(
		"%d created, %d updated, %d unchanged, %d failed",
		c.Created, c.Updated, c.Skipped, c.Failed,
	)
}

func (r *Report) Counts() Counts {
	c := Counts{}
	for _, o := range r.Outcomes() {
		switch {
		case o.Failed():
			c.Failed++
		case o.Action == Create:
			c.Created++
		case o.Action == Update:
			c.Updated++
		default:
			c.Skipped++
		}
	}
	return c
}

// Err returns nil when every entry succeeded, otherwise an error listing the
// failed entries.
func (r *Report) Err() error {
	failed := []string{}
	for _, o := range r.Outcomes() {
		if o.Failed() {
			failed = append(failed, o.String())
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return errors.Errorf(
		"%d of %d entries failed:\n\t%s",
		len(failed),
		len(r.Outcomes()),
		strings.Join(failed, "\n\t"),
	)
}
