// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package interactive provides a terminal based [cfgtree.Editor] which
// lets a user review and edit configuration values in their text editor
// right before they are read.
package interactive

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/z5labs/cfgtree"
	"github.com/z5labs/cfgtree/internal/try"

	"gopkg.in/yaml.v3"
)

// ErrEditAborted is returned when the user declines to edit a value
// or gives up after a failed edit.
var ErrEditAborted = errors.New("edit aborted")

// Editor prompts on its input and output before opening the
// configuration value as a YAML document in a text editor.
type Editor struct {
	in      *bufio.Reader
	out     io.Writer
	command string
	tempDir string
	log     *slog.Logger

	getenv   func(string) string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

var _ cfgtree.Editor = (*Editor)(nil)

// Option configures an [Editor].
type Option func(*Editor)

// Input sets where answers to prompts are read from. Defaults to [os.Stdin].
func Input(r io.Reader) Option {
	return func(e *Editor) {
		e.in = bufio.NewReader(r)
	}
}

// Output sets where prompts are written to. Defaults to [os.Stdout].
func Output(w io.Writer) Option {
	return func(e *Editor) {
		e.out = w
	}
}

// Command sets the editor command, e.g. "code --wait". By default it is
// taken from $VISUAL or $EDITOR, falling back to the first of
// sensible-editor, nano and vim found on the PATH and finally vi.
func Command(cmd string) Option {
	return func(e *Editor) {
		e.command = cmd
	}
}

// TempDir sets the directory edited documents are written to.
func TempDir(dir string) Option {
	return func(e *Editor) {
		e.tempDir = dir
	}
}

// LogHandler sets the [slog.Handler] used for diagnostics.
func LogHandler(h slog.Handler) Option {
	return func(e *Editor) {
		e.log = slog.New(h)
	}
}

// New returns an [Editor] which is ready to be given to [cfgtree.Interactive].
func New(opts ...Option) *Editor {
	e := &Editor{
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		log:      slog.Default(),
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Edit implements the [cfgtree.Editor] interface.
func (e *Editor) Edit(ctx context.Context, req cfgtree.EditRequest) (any, error) {
	fmt.Fprintln(e.out)
	fmt.Fprintln(e.out, "Configuration key", req.Name)
	for _, note := range req.Notes {
		fmt.Fprintln(e.out, note)
	}

	missing := req.Value == cfgtree.Missing
	if missing {
		fmt.Fprintln(e.out, "Configuration missing")
	} else {
		b, err := marshal(req.Value)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(e.out, "Configuration: %s", b)
	}

	ok, err := e.confirm("Edit configuration [y/N]? ")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEditAborted
	}

	content, err := document(req, missing)
	if err != nil {
		return nil, err
	}
	return e.editYaml(ctx, content)
}

func document(req cfgtree.EditRequest, missing bool) ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Editing %s\n", req.Name)
	for _, note := range req.Notes {
		fmt.Fprintf(&sb, "# %s\n", note)
	}

	v := req.Value
	if missing {
		sb.WriteString("# Please enter a YAML expression below\n\n")
		if req.Default == cfgtree.NoDefault {
			return []byte(sb.String()), nil
		}
		v = req.Default
	} else {
		sb.WriteString("# Please edit the YAML expression below\n\n")
	}

	b, err := marshal(v)
	if err != nil {
		return nil, err
	}
	sb.Write(b)
	return []byte(sb.String()), nil
}

// UnmarshalableValueError occurs when a configuration value, such as
// a constructor given under the class key, can not be written as YAML.
type UnmarshalableValueError struct {
	Cause error
}

// Error implements the error interface.
func (e UnmarshalableValueError) Error() string {
	return fmt.Sprintf("configuration value can not be edited as yaml: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e UnmarshalableValueError) Unwrap() error {
	return e.Cause
}

func marshal(v any) (b []byte, err error) {
	defer func() {
		if err != nil {
			err = UnmarshalableValueError{Cause: err}
		}
	}()
	defer try.Recover(&err)

	return yaml.Marshal(v)
}

func (e *Editor) editYaml(ctx context.Context, content []byte) (any, error) {
	dir, err := os.MkdirTemp(e.tempDir, "cfgtree-edit-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	for {
		v, edited, err := e.editOnce(ctx, path, content)
		if err == nil {
			return v, nil
		}
		if edited != nil {
			content = edited
		}
		e.log.ErrorContext(ctx, "failed to edit configuration", slog.Any("error", err))
		fmt.Fprintln(e.out, err)

		ok, err := e.confirm("Editing failed; retry [y/N]? ")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrEditAborted
		}
	}
}

func (e *Editor) editOnce(ctx context.Context, path string, content []byte) (v any, edited []byte, err error) {
	err = os.WriteFile(path, content, 0o600)
	if err != nil {
		return nil, nil, err
	}

	args := e.editorCommand()
	e.log.DebugContext(ctx, "launching editor", slog.String("command", strings.Join(args, " ")), slog.String("path", path))

	err = e.run(ctx, args[0], append(args[1:], path)...)
	if err != nil {
		return nil, nil, err
	}

	edited, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	err = yaml.Unmarshal(edited, &v)
	if err != nil {
		return nil, edited, err
	}
	return v, edited, nil
}

func (e *Editor) editorCommand() []string {
	if fields := strings.Fields(e.command); len(fields) > 0 {
		return fields
	}
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(e.getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	if runtime.GOOS == "windows" {
		return []string{"notepad"}
	}
	for _, name := range []string{"sensible-editor", "nano", "vim"} {
		if _, err := e.lookPath(name); err == nil {
			return []string{name}
		}
	}
	return []string{"vi"}
}

func (e *Editor) confirm(prompt string) (bool, error) {
	fmt.Fprint(e.out, prompt)

	line, err := e.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
