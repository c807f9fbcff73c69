package sevenzip

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/crateful/unbox/internal/domain"
)

// DefaultInlineLimit is the largest payload kept inline in an entry.
// Bigger files stay in the workspace and are fetched through the session.
const DefaultInlineLimit = 4 << 20

// Engine extracts by staging the archive into a per-request workspace and
// running the system 7-Zip binary against it. It covers the long tail of
// formats (iso, cab, ar, cpio, raw bz2/xz/lzma) that the in-memory reader
// cannot parse.
type Engine struct {
	binary      string
	tempRoot    string
	inlineLimit int64

	initOnce sync.Once
	initErr  error
}

func New(tempRoot string, inlineLimit int64, binary string) *Engine {
	if inlineLimit <= 0 {
		inlineLimit = DefaultInlineLimit
	}
	return &Engine{binary: binary, tempRoot: tempRoot, inlineLimit: inlineLimit}
}

func (e *Engine) Name() string {
	return "sevenzip"
}

// Init resolves the 7z binary once; the resolved handle is shared by all
// later requests.
func (e *Engine) Init(ctx context.Context) error {
	e.initOnce.Do(func() {
		if e.binary != "" {
			if _, err := os.Stat(e.binary); err != nil {
				e.initErr = fmt.Errorf("7z binary %s: %w", e.binary, err)
			}
			return
		}
		for _, name := range []string{"7z", "7zz", "7za"} {
			if path, err := exec.LookPath(name); err == nil {
				e.binary = path
				return
			}
		}
		e.initErr = fmt.Errorf("7z binary not found in PATH")
	})
	return e.initErr
}

func (e *Engine) Attempt(ctx context.Context, req *domain.Request, format domain.Format) (*domain.Attempt, *domain.Failure) {
	if err := e.Init(ctx); err != nil {
		return nil, e.fail(domain.NewFailure(domain.ExtractionFailed,
			"The command extraction engine is not available.", true, err))
	}

	ws, err := newWorkspace(e.tempRoot, req.FileName)
	if err != nil {
		return nil, e.fail(domain.NewFailure(domain.ExtractionFailed,
			"Could not prepare a workspace for extraction.", true, err))
	}

	if err := ws.stage(req); err != nil {
		ws.removeAll()
		return nil, e.fail(domain.NewFailure(domain.ExtractionFailed,
			"Could not stage the archive for extraction.", true, err))
	}

	// "-p" with an empty password keeps 7z from prompting on a terminal.
	cmd := exec.CommandContext(ctx, e.binary,
		"x", "-bd", "-y", "-o"+ws.outDir, "-p"+req.Password, ws.input)
	out, runErr := cmd.CombinedOutput()
	diag := string(out)

	// The staged copy is never needed again. The output tree survives only
	// on success, owned by the session from then on.
	ws.removeInput()

	// Some failure modes exit zero and write nothing, so the diagnostic
	// text is scanned regardless of the exit status.
	if failure := classifyOutput(diag, runErr); failure != nil {
		ws.removeAll()
		return nil, e.fail(failure)
	}

	entries, warnings, err := collectTree(ws.outDir, e.inlineLimit)
	if err != nil {
		ws.removeAll()
		return nil, e.fail(domain.NewFailure(domain.ExtractionFailed,
			"Could not read the extracted files.", true, err))
	}

	if runErr != nil {
		ws.removeAll()
		return nil, e.fail(domain.NewFailure(domain.ExtractionFailed,
			"The extraction command failed.", true, runErr))
	}
	if len(entries) == 0 && strings.TrimSpace(diag) != "" && !strings.Contains(diag, "Everything is Ok") {
		ws.removeAll()
		return nil, e.fail(domain.NewFailure(domain.ExtractionFailed,
			"The extraction command produced no files.", true, nil))
	}

	return &domain.Attempt{
		Entries:   entries,
		Encrypted: req.Password != "",
		Warnings:  warnings,
		Fetch:     ws.read,
		Cleanup:   ws.removeAll,
	}, nil
}

func (e *Engine) fail(f *domain.Failure) *domain.Failure {
	f.Engine = e.Name()
	return f
}

// workspace is the per-request staging area: a uniquely named root with an
// input copy of the archive and an isolated output directory.
type workspace struct {
	root   string
	input  string
	outDir string
}

func newWorkspace(tempRoot, fileName string) (*workspace, error) {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	root := filepath.Join(tempRoot, "unbox-"+uuid.NewString())

	name := filepath.Base(fileName)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "archive"
	}

	ws := &workspace{
		root:   root,
		input:  filepath.Join(root, "in", name),
		outDir: filepath.Join(root, "out"),
	}
	for _, dir := range []string{filepath.Dir(ws.input), ws.outDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// stage copies the request bytes into the workspace. Streams are copied
// through, so the archive is never held twice in memory.
func (w *workspace) stage(req *domain.Request) error {
	f, err := os.OpenFile(w.input, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if req.Data != nil {
		_, err = f.Write(req.Data)
		return err
	}
	_, err = io.Copy(f, req.Stream)
	return err
}

func (w *workspace) removeInput() {
	os.RemoveAll(filepath.Dir(w.input))
}

func (w *workspace) removeAll() {
	os.RemoveAll(w.root)
}

// read resolves a non-inline payload from the output tree by entry path.
func (w *workspace) read(path string) ([]byte, error) {
	full := filepath.Join(w.outDir, filepath.FromSlash(strings.TrimSuffix(path, "/")))
	if !strings.HasPrefix(full, w.outDir+string(filepath.Separator)) {
		return nil, fmt.Errorf("entry path %s escapes the output tree", path)
	}
	return os.ReadFile(full)
}

// collectTree walks the output directory into result entries, attaching
// payloads at or below inlineLimit.
func collectTree(outDir string, inlineLimit int64) ([]domain.Entry, []string, error) {
	var entries []domain.Entry
	var warnings []string

	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(outDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		if d.IsDir() {
			entries = append(entries, domain.Entry{
				Path:    domain.NormalizeEntryPath(rel, true),
				IsDir:   true,
				ModTime: info.ModTime(),
			})
			return nil
		}

		entry := domain.Entry{
			Path:    domain.NormalizeEntryPath(rel, false),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if info.Size() <= inlineLimit {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			entry.Data = data
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return entries, warnings, nil
}
