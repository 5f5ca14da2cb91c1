// Package conflict plans what happens when incoming bundle artifacts
// collide with artifacts already present at a destination. Planning is
// two-phase so the core never performs interactive I/O: ask-mode
// conflicts surface as pending decisions the caller resolves with a
// pre-supplied mapping before (or instead of) writing anything.
package conflict

import (
	"fmt"

	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/types"
)

// Policy selects how name collisions are handled.
type Policy string

const (
	// PolicyAsk defers each collision to an external decision source.
	PolicyAsk Policy = "ask"

	// PolicyOverwrite replaces the existing artifact.
	PolicyOverwrite Policy = "overwrite"

	// PolicySkip keeps the existing artifact; the incoming one is not written.
	PolicySkip Policy = "skip"

	// PolicyRename writes the incoming artifact under a suffixed alias.
	PolicyRename Policy = "rename"
)

// ParsePolicy validates a user-supplied policy string.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAsk, PolicyOverwrite, PolicySkip, PolicyRename:
		return Policy(s), nil
	case "":
		return PolicyAsk, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "invalid conflict policy %q, expected ask, overwrite, skip or rename", s)
}

// Action is the planned outcome for one incoming artifact.
type Action string

const (
	// ActionWrite writes an artifact that had no collision.
	ActionWrite Action = "write"

	// ActionReplace overwrites the existing artifact.
	ActionReplace Action = "replace"

	// ActionKeep keeps the existing artifact and drops the incoming one.
	ActionKeep Action = "keep"

	// ActionRename writes the incoming artifact under FinalName.
	ActionRename Action = "rename"
)

// Incoming identifies one artifact about to be written.
type Incoming struct {
	Category types.Category
	Name     string
}

// Decision is the stable, per-run outcome for one incoming artifact.
type Decision struct {
	Category  types.Category
	Name      string
	Action    Action
	FinalName string
}

// Pending is an ask-mode collision with no supplied resolution.
type Pending struct {
	Category types.Category
	Name     string
}

// Plan is the full outcome of one planning run.
type Plan struct {
	Decisions []Decision
	Pending   []Pending
}

// Key renders the resolution-map key for an artifact identity.
func Key(category types.Category, name string) string {
	return fmt.Sprintf("%s/%s", category, name)
}

// Resolver plans conflict outcomes against a fixed snapshot of existing
// names. Names claimed during a run (writes and renames) are reserved so
// later decisions can never collide with earlier ones, and an
// already-made decision is never re-derived.
type Resolver struct {
	existing map[types.Category]map[string]bool
	claimed  map[types.Category]map[string]bool
}

// NewResolver snapshots the artifact names already present at the
// destination, per category.
func NewResolver(existing map[types.Category][]string) *Resolver {
	r := &Resolver{
		existing: make(map[types.Category]map[string]bool),
		claimed:  make(map[types.Category]map[string]bool),
	}
	for category, names := range existing {
		set := make(map[string]bool, len(names))
		for _, name := range names {
			set[name] = true
		}
		r.existing[category] = set
	}
	return r
}

// Plan walks the incoming artifacts in order and decides each one under
// the policy. Ask-mode collisions consult resolutions (keyed by
// Key(category, name)); entries without a resolution become Pending and
// produce no decision. Plan never performs I/O and is safe to call for
// a dry run: the caller simply reports Decisions and Pending without
// executing them.
func (r *Resolver) Plan(incoming []Incoming, policy Policy, resolutions map[string]Policy) (*Plan, error) {
	switch policy {
	case PolicyAsk, PolicyOverwrite, PolicySkip, PolicyRename:
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "invalid conflict policy %q", policy)
	}

	plan := &Plan{}
	for _, in := range incoming {
		if !r.taken(in.Category, in.Name) {
			r.claim(in.Category, in.Name)
			plan.Decisions = append(plan.Decisions, Decision{
				Category:  in.Category,
				Name:      in.Name,
				Action:    ActionWrite,
				FinalName: in.Name,
			})
			continue
		}

		effective := policy
		if policy == PolicyAsk {
			resolved, ok := resolutions[Key(in.Category, in.Name)]
			if !ok {
				plan.Pending = append(plan.Pending, Pending{Category: in.Category, Name: in.Name})
				continue
			}
			if resolved == PolicyAsk {
				return nil, errors.Newf(errors.ErrInvalidInput, "resolution for %s cannot be ask", Key(in.Category, in.Name))
			}
			effective = resolved
		}

		switch effective {
		case PolicyOverwrite:
			r.claim(in.Category, in.Name)
			plan.Decisions = append(plan.Decisions, Decision{
				Category:  in.Category,
				Name:      in.Name,
				Action:    ActionReplace,
				FinalName: in.Name,
			})
		case PolicySkip:
			plan.Decisions = append(plan.Decisions, Decision{
				Category:  in.Category,
				Name:      in.Name,
				Action:    ActionKeep,
				FinalName: in.Name,
			})
		case PolicyRename:
			alias := r.nextAlias(in.Category, in.Name)
			r.claim(in.Category, alias)
			plan.Decisions = append(plan.Decisions, Decision{
				Category:  in.Category,
				Name:      in.Name,
				Action:    ActionRename,
				FinalName: alias,
			})
		}
	}
	return plan, nil
}

// nextAlias finds the smallest positive suffix that collides with
// neither an existing name nor one claimed earlier in this run.
func (r *Resolver) nextAlias(category types.Category, name string) string {
	for i := 1; ; i++ {
		alias := fmt.Sprintf("%s_%d", name, i)
		if !r.taken(category, alias) {
			return alias
		}
	}
}

func (r *Resolver) taken(category types.Category, name string) bool {
	return r.existing[category][name] || r.claimed[category][name]
}

func (r *Resolver) claim(category types.Category, name string) {
	if r.claimed[category] == nil {
		r.claimed[category] = make(map[string]bool)
	}
	r.claimed[category][name] = true
}
