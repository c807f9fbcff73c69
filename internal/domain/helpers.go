package domain

import (
	"path"
	"strings"
)

// Longer suffixes come first so ".tgz" wins over its ".gz" tail.
var suffixReplacements = []struct {
	suffix string
	repl   string
}{
	{".lzma", ""},
	{".tbz2", ".tar"},
	{".tzst", ".tar"},
	{".tgz", ".tar"},
	{".txz", ".tar"},
	{".bz2", ""},
	{".zst", ""},
	{".gz", ""},
	{".xz", ""},
}

// StripCompressionSuffix removes the trailing compression extension from a
// file name, so "notes.txt.gz" becomes "notes.txt" and "src.tgz" becomes
// "src.tar". Names without a known suffix are returned unchanged.
func StripCompressionSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, sr := range suffixReplacements {
		if strings.HasSuffix(lower, sr.suffix) {
			stripped := name[:len(name)-len(sr.suffix)] + sr.repl
			if stripped == "" || stripped == "." {
				return name
			}
			return stripped
		}
	}
	return name
}

// NormalizeEntryPath rewrites an archive entry path into the canonical
// form used everywhere in results: forward slashes, no leading "./" or
// "/", and a single trailing slash on directories.
func NormalizeEntryPath(p string, isDir bool) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	p = path.Clean(p)
	if p == "." || p == "/" {
		p = ""
	}
	if isDir && p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
