package streamer

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"

	"github.com/crateful/unbox/internal/domain"
)

// Engine reads archives straight out of an in-memory byte buffer. Every
// payload is held resident; there is no lazy fetch path for this engine.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string {
	return "streamer"
}

func (e *Engine) Init(ctx context.Context) error {
	return nil
}

func (e *Engine) Attempt(ctx context.Context, req *domain.Request, format domain.Format) (*domain.Attempt, *domain.Failure) {
	data := req.Data
	if data == nil && req.Stream != nil {
		var err error
		data, err = io.ReadAll(req.Stream)
		if err != nil {
			return nil, e.fail(classify("reading archive stream", err))
		}
	}
	if len(data) == 0 {
		return nil, e.fail(domain.NewFailure(domain.ExtractionFailed,
			"The archive is empty.", true, nil))
	}

	var (
		attempt *domain.Attempt
		failure *domain.Failure
	)

	switch format.ID {
	case domain.FormatZip:
		attempt, failure = e.readZip(data, req.Password)
	case domain.Format7z:
		attempt, failure = e.read7z(data, req.Password)
	case domain.FormatRar:
		attempt, failure = e.readRar(data, req.Password)
	case domain.FormatTar, domain.FormatTarGz, domain.FormatTarBz2,
		domain.FormatTarXz, domain.FormatTarZst:
		attempt, failure = e.readTar(data)
	default:
		failure = domain.NewFailure(domain.UnsupportedFormat,
			fmt.Sprintf("The in-memory reader cannot open %s archives.", format.ID), true, nil)
	}

	if failure != nil {
		return nil, e.fail(failure)
	}
	return attempt, nil
}

func (e *Engine) fail(f *domain.Failure) *domain.Failure {
	f.Engine = e.Name()
	return f
}

func (e *Engine) readZip(data []byte, password string) (*domain.Attempt, *domain.Failure) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, classify("opening zip", err)
	}

	col := newCollector()
	for _, f := range zr.File {
		if f.Flags&0x1 != 0 {
			// Encrypted entries are out of reach for archive/zip. Report
			// unsupported rather than a password failure so the command
			// engine still gets a shot with the caller's password.
			return nil, domain.NewFailure(domain.UnsupportedFormat,
				"This zip archive is encrypted and needs the command engine.", true, nil)
		}

		isDir := f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/")
		if isDir {
			col.addDir(f.Name, f.Modified)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, classify("reading zip entry "+f.Name, err)
		}
		payload, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, classify("reading zip entry "+f.Name, err)
		}
		col.addFile(f.Name, payload, f.Modified)
	}

	return col.attempt(password != ""), nil
}

func (e *Engine) read7z(data []byte, password string) (*domain.Attempt, *domain.Failure) {
	var (
		zr  *sevenzip.Reader
		err error
	)
	if password != "" {
		zr, err = sevenzip.NewReaderWithPassword(bytes.NewReader(data), int64(len(data)), password)
	} else {
		zr, err = sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	}
	if err != nil {
		return nil, classify("opening 7z", err)
	}

	col := newCollector()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			col.addDir(f.Name, f.Modified)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, classify("reading 7z entry "+f.Name, err)
		}
		payload, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, classify("reading 7z entry "+f.Name, err)
		}
		col.addFile(f.Name, payload, f.Modified)
	}

	return col.attempt(password != ""), nil
}

func (e *Engine) readRar(data []byte, password string) (*domain.Attempt, *domain.Failure) {
	var opts []rardecode.Option
	if password != "" {
		opts = append(opts, rardecode.Password(password))
	}

	rr, err := rardecode.NewReader(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, classify("opening rar", err)
	}

	col := newCollector()
	encrypted := password != ""
	for {
		hdr, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, classify("reading rar", err)
		}

		if hdr.IsDir {
			col.addDir(hdr.Name, hdr.ModificationTime)
			continue
		}

		payload, err := io.ReadAll(rr)
		if err != nil {
			return nil, classify("reading rar entry "+hdr.Name, err)
		}
		col.addFile(hdr.Name, payload, hdr.ModificationTime)
	}

	return col.attempt(encrypted), nil
}

func (e *Engine) readTar(data []byte) (*domain.Attempt, *domain.Failure) {
	reader, cleanup, err := decompressor(data)
	if err != nil {
		return nil, classify("decompressing tar", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	tr := tar.NewReader(reader)
	col := newCollector()
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, classify("reading tar", err)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			col.addDir(header.Name, header.ModTime)
		case tar.TypeReg:
			payload, err := io.ReadAll(tr)
			if err != nil {
				return nil, classify("reading tar entry "+header.Name, err)
			}
			col.addFile(header.Name, payload, header.ModTime)
		}
	}

	return col.attempt(false), nil
}
