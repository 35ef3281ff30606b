package reconcile

import (
	"encoding/json"
	"strings"
)

// StatusKind is the reconciler's view of a requisition status.
type StatusKind int

const (
	// StatusUnknown is the zero value: the requisition carries no status,
	// which is the case for a freshly created one.
	StatusUnknown StatusKind = iota
	StatusCreated
	StatusExpired
	StatusLinked
	// StatusOther covers every upstream status the reconciler does not
	// act on specially (given access, rejected, suspended, ...).
	StatusOther
)

var statusKindNames = map[StatusKind]string{
	StatusUnknown: "unknown",
	StatusCreated: "created",
	StatusExpired: "expired",
	StatusLinked:  "linked",
	StatusOther:   "other",
}

// String implements fmt.Stringer.
func (k StatusKind) String() string {
	if s, ok := statusKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Status is a parsed requisition status. Raw keeps the upstream value so
// it can be displayed even when Kind is StatusOther.
type Status struct {
	Kind StatusKind
	Raw  string
}

// ParseStatus accepts both the short codes (CR, EX, LN) and the long names
// (CREATED, EXPIRED, LINKED) the API has used over time.
func ParseStatus(raw string) Status {
	s := Status{Raw: raw}
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		s.Kind = StatusUnknown
	case "CR", "CREATED":
		s.Kind = StatusCreated
	case "EX", "EXPIRED":
		s.Kind = StatusExpired
	case "LN", "LINKED":
		s.Kind = StatusLinked
	default:
		s.Kind = StatusOther
	}
	return s
}

// IsLinked reports whether the end user completed authentication.
func (s Status) IsLinked() bool { return s.Kind == StatusLinked }

// IsExpired reports whether the requisition must be removed and recreated.
func (s Status) IsExpired() bool { return s.Kind == StatusExpired }

// IsZero reports whether no status was set.
func (s Status) IsZero() bool { return s.Kind == StatusUnknown && s.Raw == "" }

// String returns the raw upstream value.
func (s Status) String() string { return s.Raw }

// MarshalJSON encodes the raw value, or null when unset.
func (s Status) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(s.Raw)
}

// UnmarshalJSON parses a raw status string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = Status{}
		return nil
	}
	*s = ParseStatus(*raw)
	return nil
}

// MarshalYAML encodes the raw value.
func (s Status) MarshalYAML() (any, error) {
	if s.IsZero() {
		return nil, nil
	}
	return s.Raw, nil
}
