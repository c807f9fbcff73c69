package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/klauspost/compress/gzip"

	"github.com/crateful/unbox/internal/detect"
	"github.com/crateful/unbox/internal/domain"
	"github.com/crateful/unbox/internal/session"
)

// nativeEngine tags results produced by the built-in gzip fast path, which
// involves neither adapter.
const nativeEngine = "native"

// Orchestrator owns the fallback policy between the two engines and the
// gzip fast path, and hands successful attempts to the session manager.
type Orchestrator struct {
	streamer domain.Engine
	command  domain.Engine
	policy   Policy
	sessions *session.Manager
}

func New(streamer, command domain.Engine, policy Policy, sessions *session.Manager) *Orchestrator {
	return &Orchestrator{
		streamer: streamer,
		command:  command,
		policy:   policy,
		sessions: sessions,
	}
}

func (o *Orchestrator) Sessions() *session.Manager {
	return o.sessions
}

// Extract opens an archive and returns either entries or a classified
// failure. Engine errors never escape as raw errors or panics.
func (o *Orchestrator) Extract(ctx context.Context, req *domain.Request) (*domain.Result, *domain.Failure) {
	if req == nil || req.Empty() {
		return nil, domain.NewFailure(domain.ExtractionFailed,
			"No archive data was provided.", false, nil)
	}

	// Peek the leading bytes without consuming the stream, then work on a
	// shallow copy so the caller's request is never mutated.
	work := *req
	head := work.Data
	if head == nil {
		peeked, rest, err := detect.Peek(work.Stream, detect.SniffLen)
		if err != nil {
			return nil, domain.NewFailure(domain.ExtractionFailed,
				"Could not read the archive.", true, err)
		}
		head, work.Stream = peeked, rest
	} else if len(head) > detect.SniffLen {
		head = head[:detect.SniffLen]
	}

	format := detect.Detect(head, work.FileName)

	if format.SingleStream {
		if format.ID == domain.FormatGz {
			return o.extractGzip(&work, format)
		}
		return o.extractSingleStream(ctx, &work, format)
	}
	return o.extractContainer(ctx, &work, format)
}

// extractGzip is the fast path for the one single-stream format with a
// cheap built-in decompressor. No adapter is involved.
func (o *Orchestrator) extractGzip(req *domain.Request, format domain.Format) (*domain.Result, *domain.Failure) {
	var src io.Reader = req.Stream
	if req.Data != nil {
		src = bytes.NewReader(req.Data)
	}

	gzr, err := gzip.NewReader(src)
	if err != nil {
		f := domain.NewFailure(domain.UnsupportedFormat,
			"This file does not look like a valid gzip stream.", true, err)
		f.Format, f.Engine = &format, nativeEngine
		return nil, f
	}
	defer gzr.Close()

	payload, err := io.ReadAll(gzr)
	if err != nil {
		f := domain.NewFailure(domain.ExtractionFailed,
			"The gzip stream is damaged or truncated.", true, err)
		f.Format, f.Engine = &format, nativeEngine
		return nil, f
	}

	attempt := &domain.Attempt{
		Entries: []domain.Entry{{
			Path: singleStreamName(req.FileName),
			Size: int64(len(payload)),
			Data: payload,
		}},
		Cleanup: func() {},
	}
	return o.finish(attempt, nativeEngine, format), nil
}

// extractSingleStream handles the non-gz single-stream formats through the
// command engine, which has the broader raw-format support. A single-entry
// result is renamed to the suffix-stripped file name.
func (o *Orchestrator) extractSingleStream(ctx context.Context, req *domain.Request, format domain.Format) (*domain.Result, *domain.Failure) {
	attempt, failure := safeAttempt(ctx, o.command, req, format)
	if failure != nil {
		failure.Format = &format
		return nil, failure
	}

	if len(attempt.Entries) == 1 && !attempt.Entries[0].IsDir {
		attempt.Entries[0].Path = singleStreamName(req.FileName)
	}
	return o.finish(attempt, o.command.Name(), format), nil
}

func (o *Orchestrator) extractContainer(ctx context.Context, req *domain.Request, format domain.Format) (*domain.Result, *domain.Failure) {
	// Both engines may need the bytes, and a stream cannot be rewound for
	// a second attempt.
	if req.Data == nil {
		data, err := io.ReadAll(req.Stream)
		if err != nil {
			return nil, domain.NewFailure(domain.ExtractionFailed,
				"Could not read the archive.", true, err)
		}
		req.Data, req.Stream = data, nil
	}

	order := []domain.Engine{o.command, o.streamer}
	if o.policy.StreamerFirst(format.ID) {
		order = []domain.Engine{o.streamer, o.command}
	}

	var failures []*domain.Failure
	for _, eng := range order {
		attempt, failure := safeAttempt(ctx, eng, req, format)
		if failure == nil {
			return o.finish(attempt, eng.Name(), format), nil
		}
		failure.Format = &format

		// A wrong password will not become correct by switching engines.
		if failure.Code == domain.PasswordRequired {
			return nil, failure
		}
		failures = append(failures, failure)
	}

	return nil, pickFailure(failures)
}

// pickFailure prefers the most specific failure over a generic
// EXTRACTION_FAILED; if every attempt was generic, the first wins.
func pickFailure(failures []*domain.Failure) *domain.Failure {
	for _, f := range failures {
		if f.Code != domain.ExtractionFailed {
			return f
		}
	}
	return failures[0]
}

// finish hands the authoritative attempt to the session manager, which
// releases any prior session, and assembles the result.
func (o *Orchestrator) finish(attempt *domain.Attempt, engine string, format domain.Format) *domain.Result {
	sessionID := o.sessions.Open(attempt, engine)
	return &domain.Result{
		Entries:   attempt.Entries,
		Engine:    engine,
		Format:    format,
		Warnings:  attempt.Warnings,
		Encrypted: attempt.Encrypted,
		SessionID: sessionID,
	}
}

// safeAttempt converts adapter panics into generic failures so no engine
// condition ever escapes the orchestrator as a panic.
func safeAttempt(ctx context.Context, eng domain.Engine, req *domain.Request, format domain.Format) (attempt *domain.Attempt, failure *domain.Failure) {
	defer func() {
		if r := recover(); r != nil {
			attempt = nil
			failure = domain.NewFailure(domain.ExtractionFailed,
				"Could not extract the archive.", true, fmt.Errorf("engine panic: %v", r))
			failure.Engine = eng.Name()
		}
	}()
	return eng.Attempt(ctx, req, format)
}

func singleStreamName(fileName string) string {
	base := path.Base(fileName)
	if base == "." || base == "/" || base == "" {
		return "extracted"
	}
	return domain.StripCompressionSuffix(base)
}
