// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/z5labs/cfgtree"
	"github.com/z5labs/cfgtree/internal/logging"
	"github.com/z5labs/cfgtree/internal/tracing"
	"github.com/z5labs/cfgtree/source"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type app struct {
	v        *viper.Viper
	registry *cfgtree.Registry

	log *logging.Handler
	tp  *sdktrace.TracerProvider
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:        viper.New(),
		registry: newRegistry(),
	}

	cmd := &cobra.Command{
		Use:                "cfgtree",
		Short:              "Inspect hierarchical configuration files",
		SilenceUsage:       true,
		PersistentPreRunE:  a.init,
		PersistentPostRunE: a.shutdown,
	}

	fs := cmd.PersistentFlags()
	fs.String("log-level", "warn", "minimum level of logs written to stderr")
	fs.String("log-format", "text", "format of logs, text or json")
	fs.StringSlice("mask", nil, "keys whose values are masked in logs")
	fs.Bool("template", false, "render config files as Go templates before parsing them")
	fs.Bool("trace", false, "write constructor spans to stderr")

	a.v.SetEnvPrefix("CFGTREE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	cobra.CheckErr(a.v.BindPFlags(fs))

	cmd.AddCommand(
		newGetCmd(a),
		newEditCmd(a),
		newUnusedCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	lvl, err := logging.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}

	a.log, err = logging.NewHandler(
		cmd.ErrOrStderr(),
		logging.Level(lvl),
		logging.Format(a.v.GetString("log-format")),
		logging.Mask(a.v.GetStringSlice("mask")...),
	)
	if err != nil {
		return err
	}

	if !a.v.GetBool("trace") {
		return nil
	}
	a.tp, err = tracing.NewProvider(cmd.Context(), tracing.Config{
		ServiceName: cmd.Root().Name(),
		Out:         cmd.ErrOrStderr(),
	})
	return err
}

func (a *app) shutdown(cmd *cobra.Command, _ []string) error {
	if a.tp == nil {
		return nil
	}
	return a.tp.Shutdown(context.WithoutCancel(cmd.Context()))
}

func (a *app) options(opts ...cfgtree.Option) []cfgtree.Option {
	base := []cfgtree.Option{
		cfgtree.LogHandler(a.log),
		cfgtree.Constructors(a.registry),
	}
	if a.tp != nil {
		base = append(base, cfgtree.TracerProvider(a.tp))
	}
	return append(base, opts...)
}

// load reads the config file at path into a new tree.
func (a *app) load(ctx context.Context, path string, opts ...cfgtree.Option) (*cfgtree.Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	var fopts []source.FileOption
	if a.v.GetBool("template") {
		fopts = append(fopts, source.RenderTemplate())
	}
	src := source.FromFile(os.DirFS(filepath.Dir(abs)), filepath.Base(abs), fopts...)

	n, err := cfgtree.Load(ctx, src, a.options(opts...)...)
	if err != nil {
		return nil, err
	}
	slog.New(a.log).DebugContext(ctx, "loaded config", slog.String("path", path))
	return n, nil
}

// at returns the node at path, or n if path is empty.
func at(n *cfgtree.Node, path string) (*cfgtree.Node, error) {
	if path == "" {
		return n, nil
	}
	return n.At(path)
}
