// Package disasm models objdump output as a tree of sections, functions
// and per-line entries, and parses the textual disassembly into it.
package disasm

// Tree is the parsed form of one disassembly listing.
type Tree struct {
	Sections []Section
}

// Section is a named region reported by the disassembler, e.g. ".text".
type Section struct {
	Name      string
	Functions []Function
}

// Function is one symbol header and the body lines that follow it.
type Function struct {
	Name    string // demangled symbol name
	Address uint64 // entry address
	Entries []Entry
}

// Entry is one line of a function body. It is either an Instruction or a
// Text; no other implementations exist.
type Entry interface {
	isEntry()
}

// Instruction is a line with an address and raw encoding.
type Instruction struct {
	Address uint64
	Raw     string // hex bytes as printed, spaces included
	Decoded string // mnemonic and operands, valid only if HasDecoded
	// HasDecoded is false when the line had no tab-delimited mnemonic
	// column, e.g. the continuation of a long encoding or .byte filler.
	HasDecoded bool
}

// Text is any other line inside a function body: blank lines,
// interleaved source, compiler comments.
type Text struct {
	Line string
}

func (Instruction) isEntry() {}
func (Text) isEntry()        {}

// Visit dispatches e to the callback for its variant.
func Visit(e Entry, onInstruction func(Instruction), onText func(Text)) {
	switch v := e.(type) {
	case Instruction:
		onInstruction(v)
	case Text:
		onText(v)
	}
}
