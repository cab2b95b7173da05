package listing

import (
	"fmt"
	"path/filepath"
	"strings"

	"asmexplorer/internal/disasm"
	"asmexplorer/internal/elfx"
)

// Summary describes the input file and the parsed tree as markdown. info
// may be nil when the tree came from a captured dump.
func Summary(source string, info *elfx.Info, t *disasm.Tree) string {
	var b strings.Builder
	b.WriteString("# asmexplorer\n\n```\n")
	fmt.Fprintf(&b, "; %s\n", source)
	if info != nil {
		kind := info.Kind
		if info.Machine != "" {
			kind += ", " + info.Machine
		}
		fmt.Fprintf(&b, "; %s (%s)\n", filepath.Base(info.Path), kind)
		fmt.Fprintf(&b, "; %s\n", info.Digest)
	}
	b.WriteString("```\n\n")

	st := t.Stats()
	fmt.Fprintf(&b, "%d sections, %d functions, %d instructions, %d text lines\n\n",
		st.Sections, st.Functions, st.Instructions, st.TextLines)

	if len(t.Sections) == 0 {
		b.WriteString("No sections.\n")
	} else {
		writeSectionTable(&b, t)
	}
	if info != nil {
		writeExecSections(&b, info, t)
	}
	return b.String()
}

func writeSectionTable(b *strings.Builder, t *disasm.Tree) {
	b.WriteString("## Sections\n\n| Section | Functions | Instructions |\n|---|---:|---:|\n")
	for _, s := range t.Sections {
		n := 0
		for _, fn := range s.Functions {
			for _, e := range fn.Entries {
				if _, ok := e.(disasm.Instruction); ok {
					n++
				}
			}
		}
		fmt.Fprintf(b, "| %s | %d | %d |\n", escapeCell(s.Name), len(s.Functions), n)
	}
}

// writeExecSections lists the executable ELF sections and marks the ones the
// disassembler output has no section for.
func writeExecSections(b *strings.Builder, info *elfx.Info, t *disasm.Tree) {
	listed := make(map[string]bool, len(t.Sections))
	for _, s := range t.Sections {
		listed[s.Name] = true
	}

	exec := info.ExecSections()
	if len(exec) == 0 {
		return
	}
	b.WriteString("\n## Executable sections\n\n| Section | Address | Size | Listed |\n|---|---:|---:|---|\n")

	missing := 0
	for _, s := range exec {
		mark := "yes"
		if !listed[s.Name] {
			mark = "**no**"
			missing++
		}
		fmt.Fprintf(b, "| %s | 0x%x | %d | %s |\n", escapeCell(s.Name), s.Addr, s.Size, mark)
	}
	if missing > 0 {
		fmt.Fprintf(b, "\n%d executable sections missing from the disassembly.\n", missing)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
