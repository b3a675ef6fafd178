// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"io"

	"github.com/z5labs/cfgtree"
	"github.com/z5labs/cfgtree/interactive"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type getFlags struct {
	configure   bool
	interactive string
	unused      bool
}

func newGetCmd(a *app) *cobra.Command {
	var flags getFlags

	cmd := &cobra.Command{
		Use:   "get FILE [PATH]",
		Short: "Print the configuration value at PATH as YAML",
		Long: `Print the configuration value at PATH as YAML.

PATH is a dotted key path with optional sequence indexes, e.g.
server.listeners[0].addr. The whole file is printed if PATH is omitted.

With --configure the value is constructed before printing it. Nested
mappings may then select a registered constructor with a class key:

  mapping   returns the mapping as is
  resolve   resolves class keys in all nested mappings (the default)`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.get(cmd, args, flags)
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&flags.configure, "configure", false, "construct the value before printing it")
	fs.StringVar(&flags.interactive, "interactive", "none", "offer values for editing before reading them: none, all or missing")
	fs.BoolVar(&flags.unused, "unused", false, "warn about configuration keys which were not read")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit FILE [PATH]",
		Short: "Edit the configuration value at PATH and print the result",
		Long: `Edit the configuration value at PATH and print the result.

The value is opened as a YAML document in $VISUAL or $EDITOR. The file
itself is never modified.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.get(cmd, args, getFlags{interactive: cfgtree.ModeAll.String()})
		},
	}
}

func (a *app) get(cmd *cobra.Command, args []string, flags getFlags) error {
	mode, err := cfgtree.ParseMode(flags.interactive)
	if err != nil {
		return err
	}

	var opts []cfgtree.Option
	if mode != cfgtree.ModeNone {
		editor := interactive.New(
			interactive.Input(cmd.InOrStdin()),
			interactive.Output(cmd.ErrOrStderr()),
			interactive.LogHandler(a.log),
		)
		opts = append(opts, cfgtree.Interactive(mode, editor))
	}

	root, err := a.load(cmd.Context(), args[0], opts...)
	if err != nil {
		return err
	}

	var path string
	if len(args) > 1 {
		path = args[1]
	}
	n, err := at(root, path)
	if err != nil {
		return err
	}

	var v any
	if flags.configure {
		ctor, _ := a.registry.Lookup("resolve")
		v, err = n.Configure(cmd.Context(), ctor, nil)
	} else {
		v, err = n.Value()
	}
	if err != nil {
		return err
	}

	if flags.unused {
		root.UnusedKeys(true)
	}
	return writeYaml(cmd.OutOrStdout(), v)
}

func writeYaml(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(v)
	if err != nil {
		return err
	}
	return enc.Close()
}
