package moc

import "fmt"

// refTable records decoded values in decode order so that backreferences
// can address them by position. Index 0 holds a nil sentinel.
type refTable struct {
	entries []value
	max     int
}

func newRefTable(max int) *refTable {
	return &refTable{entries: []value{nil}, max: max}
}

func (t *refTable) len() int {
	return len(t.entries)
}

func (t *refTable) add(v value) error {
	if len(t.entries) > t.max {
		return fmt.Errorf("%w: reference table exceeds %d entries", ErrLimitExceeded, t.max)
	}
	t.entries = append(t.entries, v)
	return nil
}

func (t *refTable) at(i int32) (value, error) {
	if i < 0 || int(i) >= len(t.entries) {
		return nil, fmt.Errorf("%w: index %d, table holds %d entries", ErrInvalidReference, i, len(t.entries))
	}
	return t.entries[i], nil
}
