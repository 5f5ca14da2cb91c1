// Package hookmerge combines an existing event-to-handler mapping with
// an incoming one under a selectable strategy. Each merge is a pure
// function of (existing, incoming, mode); smart mode never removes a
// pre-existing entry and never duplicates a structurally identical one.
package hookmerge

import (
	"encoding/json"

	"github.com/confshare/confshare/pkg/errors"
)

// Mode selects the merge strategy.
type Mode string

const (
	// ModeSmart keeps every existing entry and appends only incoming
	// entries not already present. The default.
	ModeSmart Mode = "smart"

	// ModeReplace discards the existing mapping in favor of the incoming one.
	ModeReplace Mode = "replace"

	// ModeSkip leaves the existing mapping untouched.
	ModeSkip Mode = "skip"
)

// ParseMode validates a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSmart, ModeReplace, ModeSkip:
		return Mode(s), nil
	case "":
		return ModeSmart, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "invalid hooks mode %q, expected smart, replace or skip", s)
}

// Entry is one handler bound to a lifecycle event. Entries carry no
// identifier; identity for merge purposes is structural equality over
// all fields.
type Entry struct {
	Type        string `json:"type"`
	ToolName    string `json:"tool_name,omitempty"`
	When        string `json:"when,omitempty"`
	Description string `json:"description,omitempty"`
}

// Mapping is an event name to ordered handler list mapping, the parsed
// form of hooks.json.
type Mapping map[string][]Entry

// Report records, per event, what a merge added and removed.
type Report struct {
	Added   map[string][]Entry `json:"added,omitempty"`
	Removed map[string][]Entry `json:"removed,omitempty"`
}

// AddedCount returns the total number of entries the merge added.
func (r *Report) AddedCount() int {
	n := 0
	for _, entries := range r.Added {
		n += len(entries)
	}
	return n
}

// RemovedCount returns the total number of entries the merge removed.
func (r *Report) RemovedCount() int {
	n := 0
	for _, entries := range r.Removed {
		n += len(entries)
	}
	return n
}

// Merge combines existing and incoming under the given mode. Neither
// input is mutated; the returned mapping is always a fresh copy. Merge
// is total over well-formed mappings in every mode.
func Merge(existing, incoming Mapping, mode Mode) (Mapping, *Report, error) {
	report := &Report{
		Added:   make(map[string][]Entry),
		Removed: make(map[string][]Entry),
	}

	switch mode {
	case ModeSkip:
		return existing.clone(), report, nil

	case ModeReplace:
		for event, entries := range existing {
			if _, ok := incoming[event]; !ok {
				report.Removed[event] = cloneEntries(entries)
			}
		}
		for event, entries := range incoming {
			report.Added[event] = cloneEntries(entries)
		}
		return incoming.clone(), report, nil

	case ModeSmart:
		merged := existing.clone()
		for event, entries := range incoming {
			seen := make(map[string]struct{}, len(merged[event]))
			for _, entry := range merged[event] {
				seen[entry.key()] = struct{}{}
			}
			for _, entry := range entries {
				k := entry.key()
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				merged[event] = append(merged[event], entry)
				report.Added[event] = append(report.Added[event], entry)
			}
		}
		return merged, report, nil
	}

	return nil, nil, errors.Newf(errors.ErrInvalidInput, "invalid hooks mode %q", mode)
}

// Decode parses hooks.json content into a Mapping.
func Decode(data []byte) (Mapping, error) {
	var m Mapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "malformed hook mapping")
	}
	if m == nil {
		m = Mapping{}
	}
	return m, nil
}

// Encode renders a Mapping as indented JSON for hooks.json.
func Encode(m Mapping) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode hook mapping")
	}
	return append(data, '\n'), nil
}

// key is the canonical dedup key for an entry: a deterministic
// serialization of all fields, independent of source field order.
func (e Entry) key() string {
	data, _ := json.Marshal(e)
	return string(data)
}

func (m Mapping) clone() Mapping {
	out := make(Mapping, len(m))
	for event, entries := range m {
		out[event] = cloneEntries(entries)
	}
	return out
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
