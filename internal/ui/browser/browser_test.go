package browser

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"asmexplorer/internal/disasm"
	"asmexplorer/internal/listing"
)

func testTree() *disasm.Tree {
	return disasm.ParseLines([]string{
		"Disassembly of section .plt:",
		"Disassembly of section .text:",
		"0000000000401000 <main>:",
		"int main() {",
		"  401000:\t55\tpush   %rbp",
		"  401001:\t48 89 e5",
		"0000000000401010 <_Z3addii>:",
		"  401010:\tc3\tret",
	})
}

func TestNewStartsAtFirstNonEmptySection(t *testing.T) {
	m := New(testTree(), Options{})
	if m.section != 1 {
		t.Errorf("section = %d, want 1", m.section)
	}
	if n := len(m.list.Items()); n != 2 {
		t.Errorf("list has %d items, want 2", n)
	}
	if !strings.HasPrefix(m.list.Title, ".text (2 of 2)") {
		t.Errorf("title = %q", m.list.Title)
	}
}

func TestSelectSectionWraps(t *testing.T) {
	m := New(testTree(), Options{})
	m.selectSection(2)
	if m.section != 0 {
		t.Errorf("section = %d, want 0", m.section)
	}
	if n := len(m.list.Items()); n != 0 {
		t.Errorf("list has %d items, want 0", n)
	}
	m.selectSection(-1)
	if m.section != 1 {
		t.Errorf("section = %d, want 1", m.section)
	}
}

func TestDemangledItems(t *testing.T) {
	m := New(testTree(), Options{Listing: listing.Options{Demangle: true}})
	item := m.list.Items()[1].(functionItem)
	if item.name != "add(int, int)" {
		t.Errorf("name = %q", item.name)
	}
	if !strings.Contains(item.FilterValue(), "401010") {
		t.Errorf("filter value = %q", item.FilterValue())
	}
}

func TestOpenSelected(t *testing.T) {
	m := New(testTree(), Options{})
	if !m.openSelected() {
		t.Fatal("openSelected failed")
	}
	if m.mode != viewListing {
		t.Error("mode not switched to listing")
	}
	if !strings.Contains(m.status, "main") {
		t.Errorf("status = %q", m.status)
	}
}

func TestEmptyTree(t *testing.T) {
	m := New(&disasm.Tree{}, Options{})
	if m.list.Title != "No sections" {
		t.Errorf("title = %q", m.list.Title)
	}
	if m.openSelected() {
		t.Error("opened a function in an empty tree")
	}
	if v := m.View(); !strings.Contains(v, "Q: quit") {
		t.Errorf("view lacks menu: %q", v)
	}
}

func TestRenderListing(t *testing.T) {
	tree := testTree()
	entries, err := tree.EntriesOf(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	item := functionItem{index: 0, name: "main", address: 0x401000}
	out := ansi.Strip(renderListing(item, entries, listing.Options{Bytes: true}))
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "0000000000401000 <main>:" {
		t.Errorf("header = %q", lines[0])
	}
	if strings.TrimSpace(lines[1]) != "int main() {" {
		t.Errorf("text row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "00401000  55") || !strings.HasSuffix(lines[2], "push   %rbp") {
		t.Errorf("instruction row = %q", lines[2])
	}
	// Undecoded instructions fall back to their raw bytes.
	if !strings.HasSuffix(lines[3], "48 89 e5") {
		t.Errorf("undecoded row = %q", lines[3])
	}
}

func TestWindowSize(t *testing.T) {
	m := New(testTree(), Options{})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	mm := updated.(Model)
	if mm.width != 120 || mm.height != 40 {
		t.Errorf("size = %dx%d", mm.width, mm.height)
	}
}
