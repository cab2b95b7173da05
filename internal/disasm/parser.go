package disasm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	// maxLineSize bounds a single input line. Demangled template names can
	// run to tens of kilobytes.
	maxLineSize = 1 << 20

	// cancelCheckInterval is how many lines are scanned between context checks.
	cancelCheckInterval = 4096
)

// parseState is the accumulator threaded through step. section and function
// are the open cursors; entries belong to function.
type parseState struct {
	tree     Tree
	section  *Section
	function *Function
	entries  []Entry
}

// step folds one line into the state. A trailing carriage return is not
// part of the line.
func step(s parseState, line string) parseState {
	l := Classify(strings.TrimSuffix(line, "\r"))
	switch l.Kind {
	case KindSection:
		s = s.sealFunction()
		s = s.sealSection()
		s.section = &Section{Name: l.SectionName}

	case KindFunction:
		if s.section == nil {
			// No section to attach to.
			return s
		}
		s = s.sealFunction()
		s.function = &Function{Name: l.FunctionName, Address: l.Address}
		s.entries = nil

	case KindInstruction:
		if s.function == nil {
			return s
		}
		s.entries = append(s.entries, Instruction{
			Address:    l.Address,
			Raw:        l.Raw,
			Decoded:    l.Decoded,
			HasDecoded: l.HasDecoded,
		})

	default:
		if s.function == nil {
			return s
		}
		s.entries = append(s.entries, Text{Line: l.Text})
	}
	return s
}

func (s parseState) sealFunction() parseState {
	if s.function == nil {
		return s
	}
	s.function.Entries = s.entries
	s.section.Functions = append(s.section.Functions, *s.function)
	s.function = nil
	s.entries = nil
	return s
}

func (s parseState) sealSection() parseState {
	if s.section == nil {
		return s
	}
	s.tree.Sections = append(s.tree.Sections, *s.section)
	s.section = nil
	return s
}

// finish seals whatever is still open at end of input.
func (s parseState) finish() *Tree {
	s = s.sealFunction()
	s = s.sealSection()
	t := s.tree
	return &t
}

// ParseLines builds a tree from lines that carry no trailing newline.
func ParseLines(lines []string) *Tree {
	var s parseState
	for _, line := range lines {
		s = step(s, line)
	}
	return s.finish()
}

// Parse reads objdump output from r and builds its tree. Lines that cannot
// be attached to an open section or function are dropped, never reported.
// The only errors are read failures and cancellation of ctx, in which case
// no tree is returned.
func Parse(ctx context.Context, r io.Reader) (*Tree, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var s parseState
	n := 0
	for sc.Scan() {
		n++
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s = step(s, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read disassembly: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.finish(), nil
}
