package explorer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"asmexplorer/internal/cache"
)

const dumpA = `Disassembly of section .text:

0000000000401000 <main>:
  401000:	c3	ret
`

const dumpB = `Disassembly of section .text:

0000000000402000 <other>:
  402000:	90	nop
Disassembly of section .fini:
`

type fakeRunner struct {
	mu    sync.Mutex
	calls int
	out   string
	err   error
	gate  chan struct{} // if set, Run waits for it
}

func (r *fakeRunner) Run(ctx context.Context, file string) ([]byte, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.out), nil
}

func (r *fakeRunner) Key() string { return "fake" }

func (r *fakeRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type mapCache map[string][]byte

func (c mapCache) Get(key []byte) ([]byte, bool, error) {
	v, ok := c[string(key)]
	return v, ok, nil
}

func (c mapCache) Put(key, data []byte, _ cache.Meta) error {
	c[string(key)] = data
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tempBinary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.out")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPublishes(t *testing.T) {
	s := New(Options{Runner: &fakeRunner{out: dumpA}, Logger: quietLogger()})
	if _, _, err := s.Current(); !errors.Is(err, ErrNoTree) {
		t.Fatalf("Current before load err = %v", err)
	}

	if err := s.Load(context.Background(), "a.out"); err != nil {
		t.Fatal(err)
	}
	tree, source, err := s.Current()
	if err != nil {
		t.Fatal(err)
	}
	if source != "a.out" {
		t.Errorf("source = %q", source)
	}
	if _, _, ok := tree.Lookup(".text", "main"); !ok {
		t.Error("main missing from published tree")
	}
}

func TestLoadFailureKeepsPreviousTree(t *testing.T) {
	r := &fakeRunner{out: dumpA}
	s := New(Options{Runner: r, Logger: quietLogger()})
	if err := s.Load(context.Background(), "a.out"); err != nil {
		t.Fatal(err)
	}
	before := s.Tree()

	boom := errors.New("objdump exited with status 1")
	r.err = boom
	if err := s.Load(context.Background(), "b.out"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if s.Tree() != before {
		t.Error("failed load replaced the tree")
	}
	if _, source, _ := s.Current(); source != "a.out" {
		t.Errorf("source = %q, want a.out", source)
	}
}

func TestLoadReaderCancelled(t *testing.T) {
	s := New(Options{Logger: quietLogger()})
	if err := s.LoadReader(context.Background(), "a.dis", strings.NewReader(dumpA)); err != nil {
		t.Fatal(err)
	}
	before := s.Tree()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.LoadReader(ctx, "b.dis", strings.NewReader(dumpB))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if s.Tree() != before {
		t.Error("cancelled load replaced the tree")
	}
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	r := &fakeRunner{out: dumpA, gate: make(chan struct{})}
	s := New(Options{Runner: r, Logger: quietLogger()})

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background(), "slow.out") }()

	// Wait until the slow load has taken its generation.
	for r.Calls() == 0 {
		runtime.Gosched()
	}
	if err := s.LoadReader(context.Background(), "fast.dis", strings.NewReader(dumpB)); err != nil {
		t.Fatal(err)
	}
	close(r.gate)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("slow load err = %v, want ErrSuperseded", err)
	}
	if _, source, _ := s.Current(); source != "fast.dis" {
		t.Errorf("source = %q, want fast.dis", source)
	}
}

func TestLoadUsesCache(t *testing.T) {
	r := &fakeRunner{out: dumpA}
	c := mapCache{}
	s := New(Options{Runner: r, Cache: c, Logger: quietLogger()})
	bin := tempBinary(t, "binary contents")

	for i := 0; i < 2; i++ {
		if err := s.Load(context.Background(), bin); err != nil {
			t.Fatal(err)
		}
	}
	if r.Calls() != 1 {
		t.Errorf("runner called %d times, want 1", r.Calls())
	}
	if len(c) != 1 {
		t.Errorf("cache has %d entries, want 1", len(c))
	}

	// A changed binary has a new digest and misses.
	if err := os.WriteFile(bin, []byte("rebuilt"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Load(context.Background(), bin); err != nil {
		t.Fatal(err)
	}
	if r.Calls() != 2 {
		t.Errorf("runner called %d times after rebuild, want 2", r.Calls())
	}
}

func TestLoadWithCacheMissingFile(t *testing.T) {
	s := New(Options{Runner: &fakeRunner{out: dumpA}, Cache: mapCache{}, Logger: quietLogger()})
	if err := s.Load(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error")
	}
	if s.Tree() != nil {
		t.Error("tree published despite error")
	}
}

func TestLoadWithoutRunner(t *testing.T) {
	s := New(Options{Logger: quietLogger()})
	if err := s.Load(context.Background(), "a.out"); err == nil {
		t.Fatal("expected error")
	}
}
