// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.fired <- struct{}{}
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

// start runs w until the test ends and returns a stop function reporting
// Run's result.
func start(t *testing.T, w *Watcher) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(cancel)
	return func() error {
		cancel()
		return <-errCh
	}
}

func write(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Config{BaseDir: dir, Debounce: 100 * time.Millisecond, OnChange: rec.onChange})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)

	for _, name := range []string{"zetup.cue", "VERSION", "requirements.txt"} {
		write(t, filepath.Join(dir, name), "data")
		time.Sleep(10 * time.Millisecond)
	}
	rec.wait(t)
	time.Sleep(200 * time.Millisecond)

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("got %d callbacks, want 1 debounced callback", len(calls))
	}
	want := []string{"VERSION", "requirements.txt", "zetup.cue"}
	if !slices.Equal(calls[0], want) {
		t.Errorf("changed = %v, want %v", calls[0], want)
	}
}

func TestWatcherProjectPatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Config{BaseDir: dir, Debounce: 50 * time.Millisecond, OnChange: rec.onChange})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)

	write(t, filepath.Join(dir, "setup.py"), "x")
	write(t, filepath.Join(dir, "notes.txt"), "x")
	write(t, filepath.Join(dir, "requirements.test.txt"), "pytest")
	rec.wait(t)

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	calls := rec.snapshot()
	if len(calls) != 1 || !slices.Equal(calls[0], []string{"requirements.test.txt"}) {
		t.Errorf("callbacks = %v, want only the extra requirements file", calls)
	}
}

func TestWatcherIgnorePatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"**/*.txt"},
		Ignore:   []string{"**/scratch.txt"},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)

	write(t, filepath.Join(dir, "scratch.txt"), "x")
	write(t, filepath.Join(dir, "keep.txt"), "x")
	rec.wait(t)

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for _, call := range rec.snapshot() {
		if slices.Contains(call, "scratch.txt") {
			t.Errorf("ignored file reported: %v", call)
		}
	}
}

func TestWatcherRecursesIntoNewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"**/__init__.py"},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)

	if err := os.Mkdir(filepath.Join(dir, "demo"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(dir, "demo", "__init__.py"), "")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-rec.fired:
		case <-deadline:
			t.Fatalf("callbacks = %v, want demo/__init__.py", rec.snapshot())
		}
		if slices.ContainsFunc(rec.snapshot(), func(c []string) bool {
			return slices.Contains(c, "demo/__init__.py")
		}) {
			break
		}
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestWatcherContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)

	done := make(chan error, 1)
	go func() { done <- stop() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() after cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		active  atomic.Int32
		overlap atomic.Bool
		mu      sync.Mutex
		seen    []string
	)
	firstDone := make(chan struct{})
	secondSeen := make(chan struct{})
	var calls atomic.Int32

	var logBuf bytes.Buffer
	logger := log.NewWithOptions(&logBuf, log.Options{Level: log.DebugLevel})

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		Logger:   logger,
		OnChange: func(_ context.Context, changed []string) error {
			if active.Add(1) > 1 {
				overlap.Store(true)
			}
			defer active.Add(-1)

			mu.Lock()
			seen = append(seen, changed...)
			hasSecond := slices.Contains(seen, "VERSION")
			mu.Unlock()

			if calls.Add(1) == 1 {
				time.Sleep(300 * time.Millisecond)
				close(firstDone)
			}
			if hasSecond {
				select {
				case <-secondSeen:
				default:
					close(secondSeen)
				}
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)

	write(t, filepath.Join(dir, "zetup.cue"), "1")
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(dir, "VERSION"), "0.1.0")

	for _, ch := range []chan struct{}{firstDone, secondSeen} {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for callbacks")
		}
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if overlap.Load() {
		t.Error("callbacks ran concurrently")
	}
}

func TestWatcherCallbackErrorIsLogged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var logBuf syncBuffer
	called := make(chan struct{}, 4)
	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		Logger:   log.New(&logBuf),
		OnChange: func(context.Context, []string) error {
			called <- struct{}{}
			return errors.New("requirement check failed")
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)

	write(t, filepath.Join(dir, "zetup.ini"), "[demo]")
	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() = %v, callback errors must not stop the watcher", err)
	}
	if !bytes.Contains(logBuf.Bytes(), []byte("requirement check failed")) {
		t.Errorf("log output = %q, want callback error", logBuf.String())
	}
}

func TestWatcherInvalidPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "watch pattern", cfg: Config{Patterns: []string{"[invalid"}}},
		{name: "ignore pattern", cfg: Config{Ignore: []string{"[invalid"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.cfg.BaseDir = t.TempDir()
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() with invalid pattern succeeded")
			}
		})
	}
}

func TestWatcherDoubleRunError(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: DefaultIgnores()}
	tests := []struct {
		rel  string
		want bool
	}{
		{rel: ".git/HEAD", want: true},
		{rel: "demo/__pycache__/mod.cpython-311.pyc", want: true},
		{rel: ".tox/py311/log", want: true},
		{rel: ".conda/meta.yaml", want: true},
		{rel: "demo.egg-info/PKG-INFO", want: true},
		{rel: "build/lib/demo/__init__.py", want: true},
		{rel: "zetup.cue.swp", want: true},
		{rel: "zetup.cue", want: false},
		{rel: "requirements.txt", want: false},
		{rel: "demo/__init__.py", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()
			if got := w.isIgnored(tt.rel); got != tt.want {
				t.Errorf("isIgnored(%q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}

	first := DefaultIgnores()
	first[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() exposes the internal slice")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.buf.Bytes())
}

func (b *syncBuffer) String() string { return string(b.Bytes()) }
