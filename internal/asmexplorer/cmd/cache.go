package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"asmexplorer/internal/cache"
	"asmexplorer/internal/elfx"
)

func (a *app) cacheCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the disassembly cache",
	}
	c.AddCommand(a.cacheInfoCmd(), a.cacheClearCmd())
	return c
}

func (a *app) cacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Show the cache location and size, or whether file is cached",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cache.Open(a.cfg.CachePath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			n, err := store.Len()
			if err != nil {
				return fmt.Errorf("count cache entries: %w", err)
			}
			fmt.Fprintf(out, "%s: %d cached dumps\n", a.cfg.CachePath(), n)
			if len(args) == 0 {
				return nil
			}

			digest, err := elfx.Digest(args[0])
			if err != nil {
				return err
			}
			meta, ok, err := store.Meta(cache.Key(digest, a.cfg.Runner().Key()))
			if err != nil {
				return fmt.Errorf("read cache entry: %w", err)
			}
			if !ok {
				fmt.Fprintf(out, "%s: not cached\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "%s: cached %s, %d bytes\n", args[0], meta.Created.Format(time.RFC3339), meta.Size)
			return nil
		},
	}
}

func (a *app) cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached dump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cache.Open(a.cfg.CachePath())
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Len()
			if err != nil {
				return fmt.Errorf("count cache entries: %w", err)
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached dumps\n", n)
			return nil
		},
	}
}
