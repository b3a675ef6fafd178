// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// UnusedKeysError occurs when --fail is set and unused keys were found.
type UnusedKeysError struct {
	Count int
}

// Error implements the error interface.
func (e UnusedKeysError) Error() string {
	return fmt.Sprintf("found %d unused configuration keys", e.Count)
}

type unusedFlags struct {
	read []string
	fail bool
}

func newUnusedCmd(a *app) *cobra.Command {
	var flags unusedFlags

	cmd := &cobra.Command{
		Use:   "unused FILE...",
		Short: "List configuration keys which are not read",
		Long: `List configuration keys which are not read.

Each --read PATH marks the value at PATH, and everything below it, as
read. Every remaining key of each FILE is printed as FILE: KEY.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.unused(cmd, args, flags)
		},
	}

	fs := cmd.Flags()
	fs.StringArrayVar(&flags.read, "read", nil, "path which is read by the application")
	fs.BoolVar(&flags.fail, "fail", false, "exit with an error if any keys are unused")
	return cmd
}

func (a *app) unused(cmd *cobra.Command, files []string, flags unusedFlags) error {
	results := make([][]string, len(files))

	g, gctx := errgroup.WithContext(cmd.Context())
	for i, file := range files {
		g.Go(func() error {
			root, err := a.load(gctx, file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			for _, path := range flags.read {
				n, err := at(root, path)
				if err != nil {
					return err
				}
				_, err = n.ValueOr(nil)
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
			}
			results[i] = root.UnusedKeys(false)
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return err
	}

	var count int
	for i, keys := range results {
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", files[i], k)
		}
		count += len(keys)
	}
	slog.New(a.log).InfoContext(cmd.Context(), "checked configuration files", slog.Int("files", len(files)), slog.Int("unused", count))

	if flags.fail && count > 0 {
		return UnusedKeysError{Count: count}
	}
	return nil
}
