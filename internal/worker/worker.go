package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crateful/unbox/internal/domain"
	"github.com/crateful/unbox/internal/orchestrator"
)

// Worker is the external surface of the extraction core. Requests are
// handled strictly sequentially; a new extraction supersedes any still-open
// session even when the caller never released it.
type Worker struct {
	mu       sync.Mutex
	orc      *orchestrator.Orchestrator
	engines  []domain.Engine
	history  domain.History
	warmOnce sync.Once
}

// New wires the orchestrator and the engines it runs. history may be nil.
func New(orc *orchestrator.Orchestrator, history domain.History, engines ...domain.Engine) *Worker {
	return &Worker{orc: orc, engines: engines, history: history}
}

func (w *Worker) Extract(ctx context.Context, req *domain.Request) (*domain.Result, *domain.Failure) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	result, failure := w.orc.Extract(ctx, req)
	w.record(req, result, failure, time.Since(start))
	return result, failure
}

func (w *Worker) FetchEntry(sessionID, path string) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.orc.Sessions().FetchEntry(sessionID, path)
}

func (w *Worker) Release(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.orc.Sessions().Release(sessionID)
}

// Warmup pre-initializes both engines ahead of the first request. It is
// memoized for the life of the worker and advisory: failures are swallowed,
// the failing engine will just report again when actually used.
func (w *Worker) Warmup(ctx context.Context) {
	w.warmOnce.Do(func() {
		g, gctx := errgroup.WithContext(ctx)
		for _, eng := range w.engines {
			eng := eng
			g.Go(func() error {
				_ = eng.Init(gctx)
				return nil
			})
		}
		_ = g.Wait()
	})
}

func (w *Worker) record(req *domain.Request, result *domain.Result, failure *domain.Failure, took time.Duration) {
	if w.history == nil {
		return
	}

	rec := &domain.Record{
		Duration:  took,
		CreatedAt: time.Now(),
	}
	if req != nil {
		rec.FileName = req.FileName
	}
	if result != nil {
		rec.Format = result.Format.ID
		rec.Engine = result.Engine
		rec.Entries = len(result.Entries)
		rec.Encrypted = result.Encrypted
		rec.Outcome = "ok"
	} else {
		rec.Outcome = string(failure.Code)
		rec.Engine = failure.Engine
		if failure.Format != nil {
			rec.Format = failure.Format.ID
		}
	}
	_ = w.history.Add(rec)
}
