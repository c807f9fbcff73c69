package domain

import (
	"context"
)

// Engine is one extraction backend. Attempt never panics across the
// boundary and never returns both a result and a failure.
type Engine interface {
	Name() string
	Init(ctx context.Context) error
	Attempt(ctx context.Context, req *Request, format Format) (*Attempt, *Failure)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

type Cache interface {
	Has(key string) bool
	GetPath(key string) string
	Store(key, src string) (string, error)
	Size() (int64, error)
	Clear() error
}

type History interface {
	Add(rec *Record) error
	List(limit int) ([]*Record, error)
	Clear() error
	Close() error
}
