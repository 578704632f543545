// SPDX-License-Identifier: MPL-2.0

// Package pyenv probes a Python interpreter for its version and module search
// path, so requirement checks can run against the environment it would use.
package pyenv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/zetup/zetup/pkg/requires"
)

// probeScript prints the interpreter version and the directories distributions
// are installed into. Only sys is imported so a broken site setup still probes.
const probeScript = `import json, sys
paths = [p for p in sys.path if p and (p.endswith("site-packages") or p.endswith("dist-packages"))]
print(json.dumps({"version": "%d.%d.%d" % sys.version_info[:3], "site_paths": paths}))
`

var (
	// ErrInterpreterNotFound is returned when the interpreter cannot be executed.
	ErrInterpreterNotFound = errors.New("python interpreter not found")
	// ErrProbeFailed is returned when the interpreter runs but its answer is unusable.
	ErrProbeFailed = errors.New("python interpreter probe failed")
)

type (
	// Info describes a probed interpreter.
	Info struct {
		// Executable is the resolved interpreter path.
		Executable string `json:"executable"`
		// FullVersion is the "major.minor.micro" version string.
		FullVersion string           `json:"version"`
		Runtime     requires.Runtime `json:"-"`
		SitePaths   []string         `json:"site_paths"`
	}

	// ProbeError carries the interpreter's stderr when a probe fails.
	ProbeError struct {
		Interpreter string
		Stderr      string
		Err         error
	}
)

func (e *ProbeError) Error() string {
	msg := fmt.Sprintf("probe %s: %v", e.Interpreter, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ProbeError) Unwrap() []error { return []error{ErrProbeFailed, e.Err} }

// Probe runs interpreter and reports its version and site-packages directories.
func Probe(ctx context.Context, interpreter string) (*Info, error) {
	exe, err := exec.LookPath(interpreter)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInterpreterNotFound, interpreter, err)
	}

	cmd := exec.CommandContext(ctx, exe, "-c", probeScript)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &ProbeError{Interpreter: exe, Stderr: stderr.String(), Err: err}
	}

	info, err := parseProbeOutput(out)
	if err != nil {
		return nil, &ProbeError{Interpreter: exe, Stderr: stderr.String(), Err: err}
	}
	info.Executable = exe
	return info, nil
}

func parseProbeOutput(out []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("decode probe output: %w", err)
	}
	rt, err := requires.ParseRuntime(info.FullVersion)
	if err != nil {
		return nil, err
	}
	info.Runtime = rt
	return &info, nil
}
