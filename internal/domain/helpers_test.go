package domain

import "testing"

func TestStripCompressionSuffix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"notes.txt.gz", "notes.txt"},
		{"dump.sql.bz2", "dump.sql"},
		{"logs.xz", "logs"},
		{"blob.lzma", "blob"},
		{"src.tgz", "src.tar"},
		{"src.txz", "src.tar"},
		{"NOTES.TXT.GZ", "NOTES.TXT"},
		{"plain.txt", "plain.txt"},
		{".gz", ".gz"},
	}

	for _, tt := range tests {
		if got := StripCompressionSuffix(tt.name); got != tt.want {
			t.Errorf("StripCompressionSuffix(%q) = %q, expected %q", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeEntryPath(t *testing.T) {
	tests := []struct {
		path  string
		isDir bool
		want  string
	}{
		{"docs/readme.md", false, "docs/readme.md"},
		{"./docs/readme.md", false, "docs/readme.md"},
		{"/docs/readme.md", false, "docs/readme.md"},
		{"docs\\readme.md", false, "docs/readme.md"},
		{"docs", true, "docs/"},
		{"docs/", true, "docs/"},
		{".", true, ""},
		{"a//b", false, "a/b"},
	}

	for _, tt := range tests {
		if got := NormalizeEntryPath(tt.path, tt.isDir); got != tt.want {
			t.Errorf("NormalizeEntryPath(%q, %v) = %q, expected %q", tt.path, tt.isDir, got, tt.want)
		}
	}
}
