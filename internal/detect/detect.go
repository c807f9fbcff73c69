package detect

import (
	"bytes"
	"io"
	"strings"

	"github.com/crateful/unbox/internal/domain"
)

// SniffLen is how many leading bytes Detect wants to see. ISO9660 keeps its
// "CD001" marker as deep as offset 0x9001, everything else sits at the
// front of the file.
const SniffLen = 0x9006

// signature maps a byte pattern at a fixed offset to a format. Longer
// patterns are listed before shorter prefixes of themselves so the most
// specific match wins.
type signature struct {
	offset int
	magic  []byte
	id     domain.FormatID
}

var signatures = []signature{
	// RAR v5, then v4.
	{0, []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}, domain.FormatRar},
	{0, []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}, domain.FormatRar},
	// AR ("!<arch>\n"), also the outer container of .deb.
	{0, []byte("!<arch>\n"), domain.FormatAr},
	// 7-Zip.
	{0, []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, domain.Format7z},
	// XZ.
	{0, []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, domain.FormatXz},
	// cpio, new ASCII formats then portable ASCII.
	{0, []byte("070701"), domain.FormatCpio},
	{0, []byte("070702"), domain.FormatCpio},
	{0, []byte("070707"), domain.FormatCpio},
	// ZIP local file header, plus the empty-archive end record.
	{0, []byte{0x50, 0x4B, 0x03, 0x04}, domain.FormatZip},
	{0, []byte{0x50, 0x4B, 0x05, 0x06}, domain.FormatZip},
	// Zstandard. Bare zstd streams are overwhelmingly tarballs in this
	// domain, so the refinement below settles the exact variant.
	{0, []byte{0x28, 0xB5, 0x2F, 0xFD}, domain.FormatTarZst},
	// CAB ("MSCF").
	{0, []byte{0x4D, 0x53, 0x43, 0x46}, domain.FormatCab},
	// Bzip2 ("BZh").
	{0, []byte{0x42, 0x5A, 0x68}, domain.FormatBz2},
	// Gzip.
	{0, []byte{0x1F, 0x8B}, domain.FormatGz},
	// LZMA alone (raw lzma_alone header).
	{0, []byte{0x5D, 0x00, 0x00}, domain.FormatLzma},
	// POSIX tar keeps "ustar" at offset 257.
	{257, []byte("ustar"), domain.FormatTar},
	// ISO9660 volume descriptors at the three known sector offsets.
	{0x8001, []byte("CD001"), domain.FormatIso},
	{0x8801, []byte("CD001"), domain.FormatIso},
	{0x9001, []byte("CD001"), domain.FormatIso},
}

var extensions = []struct {
	suffix string
	id     domain.FormatID
}{
	{".tar.gz", domain.FormatTarGz},
	{".tgz", domain.FormatTarGz},
	{".tar.bz2", domain.FormatTarBz2},
	{".tbz2", domain.FormatTarBz2},
	{".tar.xz", domain.FormatTarXz},
	{".txz", domain.FormatTarXz},
	{".tar.zst", domain.FormatTarZst},
	{".tzst", domain.FormatTarZst},
	{".tar", domain.FormatTar},
	{".zip", domain.FormatZip},
	{".rar", domain.FormatRar},
	{".7z", domain.Format7z},
	{".gz", domain.FormatGz},
	{".bz2", domain.FormatBz2},
	{".xz", domain.FormatXz},
	{".lzma", domain.FormatLzma},
	{".iso", domain.FormatIso},
	{".cab", domain.FormatCab},
	{".deb", domain.FormatAr},
	{".ar", domain.FormatAr},
	{".a", domain.FormatAr},
	{".cpio", domain.FormatCpio},
}

// Detect classifies raw archive bytes, falling back to the filename
// extension when no signature matches. A signature match always wins over
// a disagreeing extension; the compression signatures gz/bz2/xz/zstd are
// refined into their tar.* variants when the filename says the compressed
// payload is a tar, which is a refinement rather than a disagreement.
func Detect(initial []byte, fileName string) domain.Format {
	id := bySignature(initial)
	if id == domain.FormatUnknown {
		id = byExtension(fileName)
	} else {
		id = refineCompressed(id, fileName)
	}
	return domain.Format{ID: id, SingleStream: isSingleStream(id)}
}

func bySignature(buf []byte) domain.FormatID {
	for _, sig := range signatures {
		end := sig.offset + len(sig.magic)
		if end > len(buf) {
			continue
		}
		if bytes.Equal(buf[sig.offset:end], sig.magic) {
			return sig.id
		}
	}
	return domain.FormatUnknown
}

func byExtension(fileName string) domain.FormatID {
	lower := strings.ToLower(fileName)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext.suffix) {
			return ext.id
		}
	}
	return domain.FormatUnknown
}

func refineCompressed(id domain.FormatID, fileName string) domain.FormatID {
	lower := strings.ToLower(fileName)
	tarName := func(suffixes ...string) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(lower, s) {
				return true
			}
		}
		return false
	}

	switch id {
	case domain.FormatGz:
		if tarName(".tar.gz", ".tgz") {
			return domain.FormatTarGz
		}
	case domain.FormatBz2:
		if tarName(".tar.bz2", ".tbz2") {
			return domain.FormatTarBz2
		}
	case domain.FormatXz:
		if tarName(".tar.xz", ".txz") {
			return domain.FormatTarXz
		}
	}
	return id
}

func isSingleStream(id domain.FormatID) bool {
	switch id {
	case domain.FormatGz, domain.FormatBz2, domain.FormatXz, domain.FormatLzma:
		return true
	default:
		return false
	}
}

// Peek reads up to n bytes from r for sniffing and returns them together
// with a reader that yields the full original sequence, so detection never
// consumes stream data.
func Peek(r io.Reader, n int) ([]byte, io.Reader, error) {
	head := make([]byte, n)
	m, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, nil, err
	}
	head = head[:m]
	return head, io.MultiReader(bytes.NewReader(head), r), nil
}
