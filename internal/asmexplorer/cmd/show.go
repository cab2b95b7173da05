package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"asmexplorer/internal/disasm"
	"asmexplorer/internal/listing"
	"asmexplorer/internal/symbols"
)

func (a *app) showCmd() *cobra.Command {
	var section string

	c := &cobra.Command{
		Use:   "show <file> <function>",
		Short: "Print the listing of one function",
		Long: `Print the listing of one function. The function is given by its name as
the disassembler printed it, by its demangled name, or by its address
as 0x-prefixed hex.`,
		Example: `
asmexplorer show ./a.out main
asmexplorer show ./a.out 0x401000 --bytes
asmexplorer show --input dump.txt _start --section .text
  `,
		Args: cobra.ExactArgs(2),
		RunE: a.withTree(func(cmd *cobra.Command, args []string, res *loaded) error {
			si, fi, ok := findFunction(res.tree, section, args[1])
			if !ok {
				if section != "" {
					return fmt.Errorf("function %q not found in section %q", args[1], section)
				}
				return fmt.Errorf("function %q not found", args[1])
			}

			entries, err := res.tree.EntriesOf(si, fi)
			if err != nil {
				return err
			}
			fn := res.tree.Sections[si].Functions[fi]
			fn.Entries = entries
			return listing.WriteFunction(cmd.OutOrStdout(), fn, a.listingOptions(cmd.OutOrStdout()))
		}),
	}
	c.Flags().StringVarP(&section, "section", "s", "", "Only look in this section")
	return c
}

// findFunction resolves a function by exact name, then by demangled name,
// then by 0x-prefixed address.
func findFunction(t *disasm.Tree, section, name string) (si, fi int, ok bool) {
	if si, fi, ok := t.Lookup(section, name); ok {
		return si, fi, true
	}

	var addr uint64
	hasAddr := false
	if hex, found := strings.CutPrefix(strings.ToLower(name), "0x"); found {
		if v, err := strconv.ParseUint(hex, 16, 64); err == nil {
			addr, hasAddr = v, true
		}
	}

	for si, s := range t.Sections {
		if section != "" && s.Name != section {
			continue
		}
		for fi, f := range s.Functions {
			if symbols.Demangle(f.Name) == name || (hasAddr && f.Address == addr) {
				return si, fi, true
			}
		}
	}
	return -1, -1, false
}
