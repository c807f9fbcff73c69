package detect

import (
	"bytes"
	"io"
	"testing"

	"github.com/crateful/unbox/internal/domain"
)

func isoImage(offset int) []byte {
	buf := make([]byte, offset+5)
	copy(buf[offset:], "CD001")
	return buf
}

func tarHeader() []byte {
	buf := make([]byte, 512)
	copy(buf[257:], "ustar")
	return buf
}

func TestDetectBySignature(t *testing.T) {
	tests := []struct {
		name         string
		initial      []byte
		fileName     string
		want         domain.FormatID
		singleStream bool
	}{
		{"zip magic", []byte{0x50, 0x4B, 0x03, 0x04, 0x00}, "", domain.FormatZip, false},
		{"rar v4 magic", []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}, "", domain.FormatRar, false},
		{"rar v5 magic", []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}, "", domain.FormatRar, false},
		{"7z magic", []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, "", domain.Format7z, false},
		{"gz magic", []byte{0x1F, 0x8B, 0x08}, "notes.txt.gz", domain.FormatGz, true},
		{"bz2 magic", []byte("BZh91AY"), "x.bz2", domain.FormatBz2, true},
		{"xz magic", []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, "", domain.FormatXz, true},
		{"lzma magic", []byte{0x5D, 0x00, 0x00, 0x80}, "", domain.FormatLzma, true},
		{"cab magic", []byte("MSCF\x00\x00"), "", domain.FormatCab, false},
		{"ar magic", []byte("!<arch>\n"), "", domain.FormatAr, false},
		{"cpio ascii magic", []byte("070701rest"), "", domain.FormatCpio, false},
		{"tar ustar at 257", tarHeader(), "", domain.FormatTar, false},
		{"iso at 0x8001", isoImage(0x8001), "", domain.FormatIso, false},
		{"iso at 0x8801", isoImage(0x8801), "", domain.FormatIso, false},
		{"iso at 0x9001", isoImage(0x9001), "", domain.FormatIso, false},
		{"zstd defaults to tar.zst", []byte{0x28, 0xB5, 0x2F, 0xFD}, "", domain.FormatTarZst, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.initial, tt.fileName)
			if got.ID != tt.want {
				t.Errorf("Detect() = %s, expected %s", got.ID, tt.want)
			}
			if got.SingleStream != tt.singleStream {
				t.Errorf("SingleStream = %v, expected %v", got.SingleStream, tt.singleStream)
			}
		})
	}
}

func TestDetectSignatureWinsOverExtension(t *testing.T) {
	// gzip bytes with a lying .zip name: signature must win.
	got := Detect([]byte{0x1F, 0x8B, 0x08}, "archive.zip")
	if got.ID != domain.FormatGz {
		t.Errorf("Detect() = %s, expected %s", got.ID, domain.FormatGz)
	}
}

func TestDetectTarRefinement(t *testing.T) {
	tests := []struct {
		initial  []byte
		fileName string
		want     domain.FormatID
	}{
		{[]byte{0x1F, 0x8B, 0x08}, "src.tar.gz", domain.FormatTarGz},
		{[]byte{0x1F, 0x8B, 0x08}, "src.tgz", domain.FormatTarGz},
		{[]byte("BZh9"), "src.tar.bz2", domain.FormatTarBz2},
		{[]byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, "src.tar.xz", domain.FormatTarXz},
	}

	for _, tt := range tests {
		got := Detect(tt.initial, tt.fileName)
		if got.ID != tt.want {
			t.Errorf("Detect(%s) = %s, expected %s", tt.fileName, got.ID, tt.want)
		}
		if got.SingleStream {
			t.Errorf("Detect(%s) flagged single-stream, expected container", tt.fileName)
		}
	}
}

func TestDetectExtensionFallback(t *testing.T) {
	tests := []struct {
		fileName string
		want     domain.FormatID
	}{
		{"a.rar", domain.FormatRar},
		{"a.7z", domain.Format7z},
		{"a.tar", domain.FormatTar},
		{"a.iso", domain.FormatIso},
		{"a.deb", domain.FormatAr},
		{"a.cpio", domain.FormatCpio},
		{"a.lzma", domain.FormatLzma},
		{"readme.txt", domain.FormatUnknown},
		{"", domain.FormatUnknown},
	}

	garbage := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01, 0x02, 0x03}
	for _, tt := range tests {
		got := Detect(garbage, tt.fileName)
		if got.ID != tt.want {
			t.Errorf("Detect(%q) = %s, expected %s", tt.fileName, got.ID, tt.want)
		}
	}
}

func TestPeekPreservesStream(t *testing.T) {
	original := []byte("0123456789abcdef")

	head, rest, err := Peek(bytes.NewReader(original), 4)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if !bytes.Equal(head, original[:4]) {
		t.Errorf("head = %q, expected %q", head, original[:4])
	}

	all, err := io.ReadAll(rest)
	if err != nil {
		t.Fatalf("reading rest failed: %v", err)
	}
	if !bytes.Equal(all, original) {
		t.Errorf("rest = %q, expected full original %q", all, original)
	}
}

func TestPeekShortStream(t *testing.T) {
	head, rest, err := Peek(bytes.NewReader([]byte("ab")), 16)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if string(head) != "ab" {
		t.Errorf("head = %q, expected %q", head, "ab")
	}
	all, _ := io.ReadAll(rest)
	if string(all) != "ab" {
		t.Errorf("rest = %q, expected %q", all, "ab")
	}
}
