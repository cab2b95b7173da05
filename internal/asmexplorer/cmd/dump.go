package cmd

import (
	"github.com/spf13/cobra"

	"asmexplorer/internal/listing"
)

func (a *app) dumpCmd() *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the whole parsed tree",
		Long: `Print every section and function of the parsed listing, as aligned text
or as JSON.`,
		Example: `
# Regrouped text listing
asmexplorer dump ./a.out

# JSON for scripting
asmexplorer dump ./a.out --json | jq '.sections[].name'
  `,
		Args: cobra.ExactArgs(1),
		RunE: a.withTree(func(cmd *cobra.Command, args []string, res *loaded) error {
			out := cmd.OutOrStdout()
			opts := a.listingOptions(out)
			if asJSON {
				return listing.WriteJSON(out, res.tree, opts)
			}
			return listing.WriteTree(out, res.tree, opts)
		}),
	}
	c.Flags().BoolVarP(&asJSON, "json", "j", false, "Output the tree as JSON")
	return c
}
