package graph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Unset is the reserved identifier. A node submitted with it gets a fresh id.
var Unset = uuid.Nil

// allocate resolves the identifier a new record will be stored under.
func allocate(index map[uuid.UUID]int, id uuid.UUID) (uuid.UUID, error) {
	if id != Unset {
		if _, ok := index[id]; ok {
			return Unset, fmt.Errorf("%w: %s", ErrDuplicateIdentifier, id)
		}
		return id, nil
	}
	for {
		fresh := uuid.New()
		if _, ok := index[fresh]; !ok {
			return fresh, nil
		}
	}
}

// ParseID parses a textual identifier. Blank input yields Unset.
func ParseID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unset, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return Unset, fmt.Errorf("parse id %q: %w", s, err)
	}
	return id, nil
}

// ParseIDs parses every entry of ids, stopping at the first bad one.
func ParseIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, s := range ids {
		id, err := ParseID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
