package disasm

import (
	"errors"
	"fmt"
)

var (
	ErrSectionIndex  = errors.New("section index out of range")
	ErrFunctionIndex = errors.New("function index out of range")
)

// SectionSummary is one row of ListSections.
type SectionSummary struct {
	Name          string
	FunctionCount int
}

// FunctionSummary is one row of ListFunctions.
type FunctionSummary struct {
	Name    string
	Address uint64
}

// Stats counts the contents of a tree.
type Stats struct {
	Sections     int
	Functions    int
	Instructions int
	TextLines    int
}

// ListSections returns every section in order with its function count.
func (t *Tree) ListSections() []SectionSummary {
	out := make([]SectionSummary, len(t.Sections))
	for i, s := range t.Sections {
		out[i] = SectionSummary{Name: s.Name, FunctionCount: len(s.Functions)}
	}
	return out
}

// ListFunctions returns the functions of section i in order.
func (t *Tree) ListFunctions(section int) ([]FunctionSummary, error) {
	s, err := t.section(section)
	if err != nil {
		return nil, err
	}
	out := make([]FunctionSummary, len(s.Functions))
	for i, f := range s.Functions {
		out[i] = FunctionSummary{Name: f.Name, Address: f.Address}
	}
	return out, nil
}

// EntriesOf returns a copy of the body of function fn in section.
func (t *Tree) EntriesOf(section, fn int) ([]Entry, error) {
	s, err := t.section(section)
	if err != nil {
		return nil, err
	}
	if fn < 0 || fn >= len(s.Functions) {
		return nil, fmt.Errorf("%w: %d in section %q", ErrFunctionIndex, fn, s.Name)
	}
	entries := s.Functions[fn].Entries
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Lookup finds the first function named fn. An empty section name searches
// every section. The returned indices are usable with EntriesOf.
func (t *Tree) Lookup(section, fn string) (si, fi int, ok bool) {
	for si, s := range t.Sections {
		if section != "" && s.Name != section {
			continue
		}
		for fi, f := range s.Functions {
			if f.Name == fn {
				return si, fi, true
			}
		}
	}
	return -1, -1, false
}

// Stats walks the tree and counts its contents.
func (t *Tree) Stats() Stats {
	st := Stats{Sections: len(t.Sections)}
	for _, s := range t.Sections {
		st.Functions += len(s.Functions)
		for _, f := range s.Functions {
			for _, e := range f.Entries {
				Visit(e,
					func(Instruction) { st.Instructions++ },
					func(Text) { st.TextLines++ })
			}
		}
	}
	return st
}

func (t *Tree) section(i int) (*Section, error) {
	if i < 0 || i >= len(t.Sections) {
		return nil, fmt.Errorf("%w: %d of %d", ErrSectionIndex, i, len(t.Sections))
	}
	return &t.Sections[i], nil
}
