package domain

import (
	"fmt"
	"io"
	"time"
)

type FormatID string

const (
	FormatZip     FormatID = "zip"
	FormatRar     FormatID = "rar"
	Format7z      FormatID = "7z"
	FormatTar     FormatID = "tar"
	FormatTarGz   FormatID = "tar.gz"
	FormatTarBz2  FormatID = "tar.bz2"
	FormatTarXz   FormatID = "tar.xz"
	FormatTarZst  FormatID = "tar.zst"
	FormatGz      FormatID = "gz"
	FormatBz2     FormatID = "bz2"
	FormatXz      FormatID = "xz"
	FormatLzma    FormatID = "lzma"
	FormatIso     FormatID = "iso"
	FormatCab     FormatID = "cab"
	FormatAr      FormatID = "ar"
	FormatCpio    FormatID = "cpio"
	FormatUnknown FormatID = "unknown"
)

func (f FormatID) String() string {
	return string(f)
}

// Format is the detector's verdict for one request. SingleStream marks
// formats that wrap exactly one compressed stream (gz, bz2, xz, lzma)
// as opposed to multi-entry containers.
type Format struct {
	ID           FormatID
	SingleStream bool
}

// Request carries the archive input. One of Data or Stream is set; the
// core reads from it but never mutates it.
type Request struct {
	Data     []byte
	Stream   io.Reader
	FileName string
	Size     int64
	Password string
}

func (r *Request) Empty() bool {
	return len(r.Data) == 0 && r.Stream == nil
}

// Entry is one file or directory inside an archive. Directory paths end in
// "/" and have Size 0. Data is nil when the payload was not retained inline
// and must be fetched through the session.
type Entry struct {
	Path    string
	Size    int64
	IsDir   bool
	ModTime time.Time
	Data    []byte
}

// Attempt is one engine's raw output before session handoff. Fetch resolves
// a non-inline payload from the engine's backing store and is nil when every
// payload is inline. Cleanup releases the backing store; calling it twice
// must be safe.
type Attempt struct {
	Entries   []Entry
	Encrypted bool
	Warnings  []string
	Fetch     func(path string) ([]byte, error)
	Cleanup   func()
}

type Result struct {
	Entries   []Entry
	Engine    string
	Format    Format
	Warnings  []string
	Encrypted bool
	SessionID string
}

type FailureCode string

const (
	PasswordRequired  FailureCode = "PASSWORD_REQUIRED"
	UnsupportedFormat FailureCode = "UNSUPPORTED_FORMAT"
	ExtractionFailed  FailureCode = "EXTRACTION_FAILED"
)

// Failure is the classified outcome of an attempt that produced no entries.
// Messages are written for end users. Recoverable means retrying with a
// different password, engine or format assumption could plausibly succeed.
type Failure struct {
	Code        FailureCode
	Message     string
	Recoverable bool
	Format      *Format
	Engine      string
	Cause       error
}

func (f *Failure) Error() string {
	if f.Engine != "" {
		return fmt.Sprintf("%s (%s): %s", f.Code, f.Engine, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

func NewFailure(code FailureCode, message string, recoverable bool, cause error) *Failure {
	return &Failure{Code: code, Message: message, Recoverable: recoverable, Cause: cause}
}

// Record is one row of extraction history: metadata about an attempt,
// never payload bytes.
type Record struct {
	FileName  string
	Format    FormatID
	Engine    string
	Entries   int
	Encrypted bool
	Outcome   string
	Duration  time.Duration
	CreatedAt time.Time
}

type FetchResult struct {
	URL   string
	Path  string
	Error error
}
