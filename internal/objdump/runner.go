// Package objdump runs an external disassembler and captures its listing.
package objdump

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// DefaultPath is the disassembler used when none is configured.
const DefaultPath = "objdump"

// DefaultArgs requests disassembly (-d) interleaved with source (-S) and
// demangled names (-C). The input file is appended after them.
var DefaultArgs = []string{"-d", "-S", "-C"}

// waitDelay bounds how long Run waits for output pipes after the tool was
// killed, in case it left children holding them open.
const waitDelay = 2 * time.Second

// Runner invokes the disassembler. The zero value runs DefaultPath with
// DefaultArgs.
type Runner struct {
	Path string
	Args []string

	// Progress, if set, receives a copy of stdout as it is produced.
	Progress io.Writer
}

func (r *Runner) path() string {
	if r == nil || r.Path == "" {
		return DefaultPath
	}
	return r.Path
}

func (r *Runner) args(file string) []string {
	base := DefaultArgs
	if r != nil && len(r.Args) > 0 {
		base = r.Args
	}
	out := make([]string, 0, len(base)+1)
	out = append(out, base...)
	return append(out, file)
}

// Key identifies the tool invocation independent of the input file. Two
// runners with equal keys produce the same output for the same input.
func (r *Runner) Key() string {
	return r.path() + "\x00" + strings.Join(r.args(""), "\x00")
}

// CommandLine renders the command that Run would execute for file.
func (r *Runner) CommandLine(file string) string {
	return shellquote.Join(append([]string{r.path()}, r.args(file)...)...)
}

// Resolve reports the executable that Run would start.
func (r *Runner) Resolve() (string, error) {
	p, err := exec.LookPath(r.path())
	if err != nil {
		return "", &ToolError{Path: r.path(), ExitCode: -1, Err: err}
	}
	return p, nil
}

// Run disassembles file and returns the complete standard output. Output
// is only returned when the tool exited with status 0; every failure is a
// *ToolError.
func (r *Runner) Run(ctx context.Context, file string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.path(), r.args(file)...)
	cmd.Stdout = &stdout
	if r != nil && r.Progress != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.Progress)
	}
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		te := &ToolError{
			Path:     r.path(),
			File:     file,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			te.Err = ctxErr
			return nil, te
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// ExitCode is -1 when the process was terminated by a signal.
			te.ExitCode = exitErr.ExitCode()
		}
		return nil, te
	}
	return stdout.Bytes(), nil
}

// ToolError describes a failed disassembler run.
type ToolError struct {
	Path     string
	File     string
	ExitCode int    // -1 if the tool did not exit normally or never started
	Stderr   string // diagnostic text written by the tool
	Err      error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, "%s exited with status %d", e.Path, e.ExitCode)
	} else {
		fmt.Fprintf(&b, "run %s: %v", e.Path, e.Err)
	}
	if e.Stderr != "" {
		b.WriteString(": ")
		b.WriteString(e.Stderr)
	}
	return b.String()
}

func (e *ToolError) Unwrap() error { return e.Err }

// Abnormal reports whether the tool was killed rather than exiting.
func (e *ToolError) Abnormal() bool {
	var exitErr *exec.ExitError
	return e.ExitCode < 0 && errors.As(e.Err, &exitErr)
}
