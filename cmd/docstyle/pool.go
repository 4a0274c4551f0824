package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-docstyle"
)

// CLIConverter is the part of docstyle.Converter the commands use.
type CLIConverter interface {
	Convert(ctx context.Context, input docstyle.Input) (*docstyle.ConvertResult, error)
	CapturePages(ctx context.Context, input docstyle.Input, maxPages int) ([][]byte, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*docstyle.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (CLIConverter, error)
	Release(CLIConverter)
	Size() int
	Close() error
}

// converterPool adapts docstyle.ConverterPool to Pool.
type converterPool struct {
	pool *docstyle.ConverterPool
}

// Compile-time check that converterPool implements Pool.
var _ Pool = (*converterPool)(nil)

// newConverterPool creates a lazily filled pool of size converters.
func newConverterPool(size int, opts ...docstyle.Option) Pool {
	return &converterPool{pool: docstyle.NewConverterPool(size, opts...)}
}

func (p *converterPool) Acquire(ctx context.Context) (CLIConverter, error) {
	conv, err := p.pool.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrConverterInit, err)
	}
	return conv, nil
}

func (p *converterPool) Release(c CLIConverter) {
	if conv, ok := c.(*docstyle.Converter); ok {
		p.pool.Release(conv)
	}
}

func (p *converterPool) Size() int {
	return p.pool.Size()
}

func (p *converterPool) Close() error {
	return p.pool.Close()
}
