package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// BadgeSet holds unlocked badge ids. Adding an id twice is a no-op.
// It is stored as a JSON array.
type BadgeSet map[string]struct{}

func NewBadgeSet(ids ...string) BadgeSet {
	s := BadgeSet{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add reports whether id was newly added.
func (s BadgeSet) Add(id string) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s BadgeSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s BadgeSet) Clone() BadgeSet {
	c := make(BadgeSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// IDs returns the ids sorted.
func (s BadgeSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s BadgeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s *BadgeSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewBadgeSet(ids...)
	return nil
}

func (s BadgeSet) Value() (driver.Value, error) {
	b, err := json.Marshal(s.IDs())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *BadgeSet) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = BadgeSet{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("badge set: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*s = BadgeSet{}
		return nil
	}
	return s.UnmarshalJSON(raw)
}
