package disasm

import (
	"regexp"
	"strconv"
)

var (
	reSection     = regexp.MustCompile(`^Disassembly of section\s+(.*):$`)
	reFunction    = regexp.MustCompile(`^([0-9a-fA-F]+)\s+<(.*)>:$`)
	reInstruction = regexp.MustCompile(`^\s*([0-9a-fA-F]+):\s+([0-9a-fA-F ]+)(\t(.*))?$`)
)

// Kind is the classification of a single input line.
type Kind int

const (
	KindText Kind = iota
	KindSection
	KindFunction
	KindInstruction
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindFunction:
		return "function"
	case KindInstruction:
		return "instruction"
	default:
		return "text"
	}
}

// Line is a classified input line. Only the fields relevant to Kind are set.
type Line struct {
	Kind Kind

	SectionName  string // KindSection
	FunctionName string // KindFunction
	Address      uint64 // KindFunction, KindInstruction
	Raw          string // KindInstruction
	Decoded      string // KindInstruction, when HasDecoded
	HasDecoded   bool
	Text         string // KindText: the line as given
}

// Classify determines what a line of objdump output is. The patterns are
// tried in order (section, function, instruction) and the first match wins;
// anything else is text.
func Classify(line string) Line {
	if m := reSection.FindStringSubmatch(line); m != nil {
		return Line{Kind: KindSection, SectionName: m[1]}
	}
	if m := reFunction.FindStringSubmatch(line); m != nil {
		return Line{Kind: KindFunction, Address: parseHex(m[1]), FunctionName: m[2]}
	}
	if idx := reInstruction.FindStringSubmatchIndex(line); idx != nil {
		l := Line{
			Kind:    KindInstruction,
			Address: parseHex(line[idx[2]:idx[3]]),
			Raw:     line[idx[4]:idx[5]],
		}
		// Group 4 only participates when a tab followed the byte column.
		if idx[8] >= 0 {
			l.Decoded = line[idx[8]:idx[9]]
			l.HasDecoded = true
		}
		return l
	}
	return Line{Kind: KindText, Text: line}
}

// parseHex converts an address capture. The grammar only admits hex digits,
// so the sole failure is overflow past 64 bits, which yields 0.
func parseHex(s string) uint64 {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0
	}
	return v
}
