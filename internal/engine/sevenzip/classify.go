package sevenzip

import (
	"strings"

	"github.com/crateful/unbox/internal/domain"
)

var passwordPhrases = []string{
	"wrong password",
	"enter password",
	"cannot open encrypted",
	"encrypted archive",
}

var unsupportedPhrases = []string{
	"cannot open the file as archive",
	"cannot open the file as [",
	"is not archive",
	"unsupported method",
	"unsupported archive",
}

var corruptPhrases = []string{
	"headers error",
	"unexpected end of archive",
	"unexpected end of data",
	"data error",
	"crc failed",
}

// classifyOutput scans the 7z diagnostic text for known failure
// signatures. 7z sometimes exits zero after refusing to extract, so the
// text is authoritative over the exit status. A nil return means the
// output carried no failure signal.
func classifyOutput(diag string, runErr error) *domain.Failure {
	lower := strings.ToLower(diag)

	for _, phrase := range passwordPhrases {
		if strings.Contains(lower, phrase) {
			return domain.NewFailure(domain.PasswordRequired,
				"The password you entered is incorrect. Try again.", true, runErr)
		}
	}
	for _, phrase := range unsupportedPhrases {
		if strings.Contains(lower, phrase) {
			return domain.NewFailure(domain.UnsupportedFormat,
				"This file does not look like a readable archive.", true, runErr)
		}
	}
	for _, phrase := range corruptPhrases {
		if strings.Contains(lower, phrase) {
			return domain.NewFailure(domain.ExtractionFailed,
				"The archive appears to be damaged or truncated.", true, runErr)
		}
	}
	return nil
}
