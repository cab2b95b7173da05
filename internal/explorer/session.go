// Package explorer owns the currently loaded disassembly. A load runs the
// disassembler (or reuses cached output), parses the listing, and only then
// replaces the published tree; failed or superseded loads leave it as it was.
package explorer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"asmexplorer/internal/cache"
	"asmexplorer/internal/disasm"
	"asmexplorer/internal/elfx"
)

var (
	ErrNoTree     = errors.New("no disassembly loaded")
	ErrSuperseded = errors.New("load superseded by a newer one")
)

// Runner produces disassembler output for a file.
type Runner interface {
	Run(ctx context.Context, file string) ([]byte, error)
	// Key identifies the invocation for caching.
	Key() string
}

// Cache stores disassembler output between sessions.
type Cache interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key, data []byte, meta cache.Meta) error
}

type Options struct {
	Runner Runner
	Cache  Cache // optional
	Logger *slog.Logger
}

// Session holds the published tree. It is safe for concurrent use.
type Session struct {
	runner Runner
	cache  Cache
	log    *slog.Logger

	gen atomic.Uint64

	mu     sync.RWMutex
	tree   *disasm.Tree
	source string
}

func New(opts Options) *Session {
	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}
	return &Session{runner: opts.Runner, cache: opts.Cache, log: lg}
}

// Load disassembles file and publishes the result.
func (s *Session) Load(ctx context.Context, file string) error {
	gen := s.gen.Add(1)
	out, err := s.capture(ctx, file)
	if err != nil {
		return err
	}
	return s.publish(ctx, gen, file, bytes.NewReader(out))
}

// LoadReader parses already captured disassembler output from r. name is
// recorded as the source of the tree.
func (s *Session) LoadReader(ctx context.Context, name string, r io.Reader) error {
	gen := s.gen.Add(1)
	return s.publish(ctx, gen, name, r)
}

// Tree returns the published tree, or nil before the first successful load.
// The tree must not be modified.
func (s *Session) Tree() *disasm.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// Current returns the published tree and the file it came from.
func (s *Session) Current() (*disasm.Tree, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		return nil, "", ErrNoTree
	}
	return s.tree, s.source, nil
}

func (s *Session) capture(ctx context.Context, file string) ([]byte, error) {
	if s.runner == nil {
		return nil, errors.New("no disassembler configured")
	}

	var key []byte
	if s.cache != nil {
		digest, err := elfx.Digest(file)
		if err != nil {
			return nil, err
		}
		key = cache.Key(digest, s.runner.Key())
		data, ok, err := s.cache.Get(key)
		switch {
		case err != nil:
			s.log.Warn("Cache lookup failed", "file", file, "error", err)
		case ok:
			s.log.Debug("Using cached disassembly", "file", file, "bytes", len(data))
			return data, nil
		}
	}

	start := time.Now()
	out, err := s.runner.Run(ctx, file)
	if err != nil {
		return nil, err
	}
	s.log.Info("Disassembled", "file", file, "bytes", len(out), "duration", time.Since(start))

	if key != nil {
		if err := s.cache.Put(key, out, cache.Meta{File: file}); err != nil {
			s.log.Warn("Cache store failed", "file", file, "error", err)
		}
	}
	return out, nil
}

func (s *Session) publish(ctx context.Context, gen uint64, source string, r io.Reader) error {
	tree, err := disasm.Parse(ctx, r)
	if err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen.Load() != gen {
		s.log.Debug("Discarding superseded load", "source", source)
		return ErrSuperseded
	}
	s.tree = tree
	s.source = source

	st := tree.Stats()
	s.log.Debug("Published disassembly",
		"source", source,
		"sections", st.Sections,
		"functions", st.Functions,
		"instructions", st.Instructions)
	return nil
}
