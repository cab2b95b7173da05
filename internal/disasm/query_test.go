package disasm

import (
	"errors"
	"testing"
)

func TestQueryIndexErrors(t *testing.T) {
	tree := ParseLines([]string{
		"Disassembly of section .text:",
		"0000000000000000 <f>:",
	})

	if _, err := tree.ListFunctions(1); !errors.Is(err, ErrSectionIndex) {
		t.Errorf("ListFunctions(1) err = %v", err)
	}
	if _, err := tree.ListFunctions(-1); !errors.Is(err, ErrSectionIndex) {
		t.Errorf("ListFunctions(-1) err = %v", err)
	}
	if _, err := tree.EntriesOf(0, 1); !errors.Is(err, ErrFunctionIndex) {
		t.Errorf("EntriesOf(0, 1) err = %v", err)
	}
	if _, err := tree.EntriesOf(2, 0); !errors.Is(err, ErrSectionIndex) {
		t.Errorf("EntriesOf(2, 0) err = %v", err)
	}
}

func TestEntriesOfReturnsCopy(t *testing.T) {
	tree := ParseLines([]string{
		"Disassembly of section .text:",
		"0000000000000000 <f>:",
		"   0:\tc3\tret",
	})
	entries, err := tree.EntriesOf(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	entries[0] = Text{Line: "clobbered"}
	if _, ok := tree.Sections[0].Functions[0].Entries[0].(Instruction); !ok {
		t.Error("mutating the result changed the tree")
	}
}

func TestLookup(t *testing.T) {
	tree := ParseLines([]string{
		"Disassembly of section .a:",
		"0000000000000000 <f>:",
		"Disassembly of section .b:",
		"0000000000000010 <f>:",
		"0000000000000020 <g>:",
	})

	tests := []struct {
		section, fn string
		si, fi      int
		ok          bool
	}{
		{"", "f", 0, 0, true},
		{".b", "f", 1, 0, true},
		{"", "g", 1, 1, true},
		{".a", "g", -1, -1, false},
		{"", "missing", -1, -1, false},
	}
	for _, tt := range tests {
		si, fi, ok := tree.Lookup(tt.section, tt.fn)
		if si != tt.si || fi != tt.fi || ok != tt.ok {
			t.Errorf("Lookup(%q, %q) = %d, %d, %v; want %d, %d, %v",
				tt.section, tt.fn, si, fi, ok, tt.si, tt.fi, tt.ok)
		}
	}
}

func TestVisit(t *testing.T) {
	var ins, txt int
	for _, e := range []Entry{Instruction{}, Text{}, Text{}} {
		Visit(e, func(Instruction) { ins++ }, func(Text) { txt++ })
	}
	if ins != 1 || txt != 2 {
		t.Errorf("visited %d instructions and %d texts", ins, txt)
	}
}
