package main

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-docstyle"
	"github.com/alnah/go-docstyle/internal/review"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake converter, pool and environment
// ---------------------------------------------------------------------------

// fakeConverter records inputs and returns canned results.
type fakeConverter struct {
	mu         sync.Mutex
	inputs     []docstyle.Input
	maxPages   int
	convertErr error
	pages      [][]byte
	captureErr error
}

func (f *fakeConverter) Convert(_ context.Context, input docstyle.Input) (*docstyle.ConvertResult, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	if f.convertErr != nil {
		return nil, f.convertErr
	}
	return &docstyle.ConvertResult{
		Data:     []byte("converted " + input.Filename),
		Filename: "quarterly-report.pdf",
		Format:   docstyle.FormatPDF,
		Document: &docstyle.DocumentStructure{Title: "Quarterly Report"},
	}, nil
}

func (f *fakeConverter) CapturePages(_ context.Context, input docstyle.Input, maxPages int) ([][]byte, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.maxPages = maxPages
	f.mu.Unlock()
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return f.pages, nil
}

func (f *fakeConverter) recorded() []docstyle.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]docstyle.Input(nil), f.inputs...)
}

// fakePool hands out a single shared fakeConverter.
type fakePool struct {
	conv       *fakeConverter
	size       int
	acquireErr error

	mu        sync.Mutex
	requested int
	opts      int
	closed    bool
}

func (p *fakePool) Acquire(_ context.Context) (CLIConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conv, nil
}

func (p *fakePool) Release(CLIConverter) {}

func (p *fakePool) Size() int {
	return p.size
}

func (p *fakePool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// fakeModel replies with a fixed text or error.
type fakeModel struct {
	reply string
	err   error
	calls int
}

func (m *fakeModel) Evaluate(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	m.calls++
	return m.reply, m.err
}

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	pool   *fakePool
	vars   map[string]string
}

// newTestEnv returns an Environment backed by fakes. vars are the only
// visible environment variables.
func newTestEnv(t *testing.T, vars map[string]string) *testEnv {
	t.Helper()
	if vars == nil {
		vars = map[string]string{}
	}
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		pool:   &fakePool{conv: &fakeConverter{}, size: 1},
		vars:   vars,
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return te.vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(te.vars))
			for k, v := range te.vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		NewPool: func(size int, opts ...docstyle.Option) Pool {
			te.pool.mu.Lock()
			te.pool.requested = size
			te.pool.opts = len(opts)
			te.pool.mu.Unlock()
			return te.pool
		},
		NewModel: func(context.Context, string, string) (review.Model, error) {
			return nil, errors.New("no model in tests")
		},
	}
	return te
}
