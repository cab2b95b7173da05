// Package listing renders a parsed disassembly for people and programs:
// instruction rows, text dumps, markdown summaries and JSON.
package listing

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"asmexplorer/internal/disasm"
	"asmexplorer/internal/symbols"
	"asmexplorer/internal/ui/colorize"
)

// Row is one displayed line of a function body.
type Row struct {
	Address       string // zero-padded lowercase hex; empty for text rows
	Raw           string // encoding bytes; empty for text rows
	Text          string // decoded instruction, raw bytes if undecoded, or the text line
	IsInstruction bool
}

// FormatAddress renders an instruction address the way the listing shows it.
func FormatAddress(addr uint64) string {
	return fmt.Sprintf("%08x", addr)
}

// Rows converts entries to display rows in order.
func Rows(entries []disasm.Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		disasm.Visit(e,
			func(in disasm.Instruction) {
				raw := strings.TrimRight(in.Raw, " ")
				text := raw
				if in.HasDecoded {
					text = in.Decoded
				}
				rows = append(rows, Row{
					Address:       FormatAddress(in.Address),
					Raw:           raw,
					Text:          text,
					IsInstruction: true,
				})
			},
			func(t disasm.Text) {
				rows = append(rows, Row{Text: t.Line})
			})
	}
	return rows
}

// Options controls text output.
type Options struct {
	Bytes    bool // include the raw encoding column
	Demangle bool // demangle names the disassembler left mangled
	Color    bool // highlight decoded instructions
}

// Name returns fn's display name under opts.
func (o Options) Name(name string) string {
	if o.Demangle {
		return symbols.Demangle(name)
	}
	return name
}

// WriteFunction writes a header line and the body of fn.
func WriteFunction(w io.Writer, fn disasm.Function, opts Options) error {
	if _, err := fmt.Fprintf(w, "%016x <%s>:\n", fn.Address, opts.Name(fn.Name)); err != nil {
		return err
	}

	hl := colorize.Highlighter{Off: !opts.Color}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range Rows(fn.Entries) {
		if !r.IsInstruction {
			// Text lines are copied as they are; a tab in a source line is
			// not a column break.
			if err := tw.Flush(); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w, r.Text); err != nil {
				return err
			}
			continue
		}
		text := r.Text
		if opts.Color {
			text = hl.Instruction(text)
		}
		if opts.Bytes {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Address, r.Raw, text)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", r.Address, text)
		}
	}
	return tw.Flush()
}

// WriteTree writes every section and function of t.
func WriteTree(w io.Writer, t *disasm.Tree, opts Options) error {
	for i, s := range t.Sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if _, err := fmt.Fprintf(w, "Disassembly of section %s:\n", s.Name); err != nil {
			return err
		}
		for _, fn := range s.Functions {
			fmt.Fprintln(w)
			if err := WriteFunction(w, fn, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteSections writes one line per section: name and function count.
func WriteSections(w io.Writer, t *disasm.Tree) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range t.ListSections() {
		fmt.Fprintf(tw, "%s\t%d\n", s.Name, s.FunctionCount)
	}
	return tw.Flush()
}
