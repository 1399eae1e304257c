package ir

import (
	"fmt"

	vine "github.com/reoring/vine"
)

// RefID indexes an entry of a RefsStore.
type RefID int

// Ptr returns a pointer to a copy of id, for optional IR fields.
func (id RefID) Ptr() *RefID { return &id }

// RefKind tells which callback an entry holds.
type RefKind int

const (
	RefParser RefKind = iota
	RefValidation
	RefGuard
	RefOtherwise
)

var refKindNames = [...]string{"parser", "validation", "guard", "otherwise"}

func (k RefKind) String() string {
	if int(k) < len(refKindNames) {
		return refKindNames[k]
	}
	return "unknown"
}

// Ref is one entry of the store. Only the field matching Kind is set.
type Ref struct {
	Kind       RefKind
	Name       string
	Parser     vine.Parser
	Validation vine.Validation
	Guard      vine.Guard
	Otherwise  vine.NoMatchFunc
}

// RefInfo is the serializable description of an entry.
type RefInfo struct {
	ID   RefID  `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// RefsStore is an append-only arena of callbacks referenced by the IR.
// IDs are assigned sequentially in tracking order. The store never
// deduplicates: tracking the same callback twice yields two ids.
// Once sealed it is read-only and safe for concurrent readers.
type RefsStore struct {
	entries []Ref
	sealed  bool
}

// NewRefsStore returns an empty, writable store.
func NewRefsStore() *RefsStore { return &RefsStore{} }

func (s *RefsStore) add(r Ref) (RefID, error) {
	if s.sealed {
		return 0, vine.ErrStoreSealed
	}
	s.entries = append(s.entries, r)
	return RefID(len(s.entries) - 1), nil
}

// TrackParser registers a parse transform.
func (s *RefsStore) TrackParser(p vine.Parser) (RefID, error) {
	if p == nil {
		return 0, fmt.Errorf("parser: %w", vine.ErrNilCallback)
	}
	return s.add(Ref{Kind: RefParser, Parser: p})
}

// TrackValidation registers a rule invocation with its options.
func (s *RefsStore) TrackValidation(v vine.Validation) (RefID, error) {
	if v.IsZero() {
		return 0, fmt.Errorf("validation: %w", vine.ErrNilCallback)
	}
	return s.add(Ref{Kind: RefValidation, Name: v.Rule.Name, Validation: v})
}

// TrackGuard registers a union/group guard predicate.
func (s *RefsStore) TrackGuard(name string, g vine.Guard) (RefID, error) {
	if g == nil {
		return 0, fmt.Errorf("guard: %w", vine.ErrNilCallback)
	}
	return s.add(Ref{Kind: RefGuard, Name: name, Guard: g})
}

// TrackOtherwise registers a no-match handler.
func (s *RefsStore) TrackOtherwise(fn vine.NoMatchFunc) (RefID, error) {
	if fn == nil {
		return 0, fmt.Errorf("otherwise: %w", vine.ErrNilCallback)
	}
	return s.add(Ref{Kind: RefOtherwise, Otherwise: fn})
}

// Seal makes the store read-only.
func (s *RefsStore) Seal() { s.sealed = true }

// Sealed reports whether Seal was called.
func (s *RefsStore) Sealed() bool { return s.sealed }

// Len returns the number of entries.
func (s *RefsStore) Len() int { return len(s.entries) }

func (s *RefsStore) get(id RefID, kind RefKind) (Ref, error) {
	if id < 0 || int(id) >= len(s.entries) {
		return Ref{}, fmt.Errorf("ref %d: %w", id, vine.ErrUnknownRef)
	}
	r := s.entries[id]
	if r.Kind != kind {
		return Ref{}, fmt.Errorf("ref %d is a %s, not a %s: %w", id, r.Kind, kind, vine.ErrUnknownRef)
	}
	return r, nil
}

// Parser returns the parse transform stored at id.
func (s *RefsStore) Parser(id RefID) (vine.Parser, error) {
	r, err := s.get(id, RefParser)
	return r.Parser, err
}

// Validation returns the rule invocation stored at id.
func (s *RefsStore) Validation(id RefID) (vine.Validation, error) {
	r, err := s.get(id, RefValidation)
	return r.Validation, err
}

// Guard returns the guard stored at id.
func (s *RefsStore) Guard(id RefID) (vine.Guard, error) {
	r, err := s.get(id, RefGuard)
	return r.Guard, err
}

// Otherwise returns the no-match handler stored at id.
func (s *RefsStore) Otherwise(id RefID) (vine.NoMatchFunc, error) {
	r, err := s.get(id, RefOtherwise)
	return r.Otherwise, err
}

// Entries describes every entry in id order.
func (s *RefsStore) Entries() []RefInfo {
	out := make([]RefInfo, len(s.entries))
	for i, r := range s.entries {
		out[i] = RefInfo{ID: RefID(i), Kind: r.Kind.String(), Name: r.Name}
	}
	return out
}
