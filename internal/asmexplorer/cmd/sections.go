package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"asmexplorer/internal/listing"
	"asmexplorer/internal/symbols"
)

func (a *app) sectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sections <file>",
		Short: "List sections and their function counts",
		Args:  cobra.ExactArgs(1),
		RunE: a.withTree(func(cmd *cobra.Command, args []string, res *loaded) error {
			return listing.WriteSections(cmd.OutOrStdout(), res.tree)
		}),
	}
}

func (a *app) functionsCmd() *cobra.Command {
	var sectionGlob, functionGlob string
	var sections, functions *symbols.Matcher

	c := &cobra.Command{
		Use:   "functions <file>",
		Short: "List functions with their addresses",
		Example: `
# Functions in .text only
asmexplorer functions ./a.out --section .text

# Everything in the std namespace
asmexplorer functions ./a.out --function 'std::*'
  `,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if sections, err = symbols.NewMatcher(sectionGlob); err != nil {
				return fmt.Errorf("--section: %w", err)
			}
			if functions, err = symbols.NewMatcher(functionGlob); err != nil {
				return fmt.Errorf("--function: %w", err)
			}
			return nil
		},
		RunE: a.withTree(func(cmd *cobra.Command, args []string, res *loaded) error {
			opts := a.listingOptions(cmd.OutOrStdout())
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for si, s := range res.tree.ListSections() {
				if !sections.Match(s.Name) {
					continue
				}
				fns, err := res.tree.ListFunctions(si)
				if err != nil {
					return err
				}
				for _, fn := range fns {
					name := opts.Name(fn.Name)
					if !functions.Match(name) && !functions.Match(fn.Name) {
						continue
					}
					fmt.Fprintf(tw, "%s\t%016x\t%s\n", s.Name, fn.Address, name)
				}
			}
			return tw.Flush()
		}),
	}
	c.Flags().StringVarP(&sectionGlob, "section", "s", "", "Only sections matching this glob")
	c.Flags().StringVarP(&functionGlob, "function", "f", "", "Only functions matching this glob; * also matches / in operator names")
	return c
}
