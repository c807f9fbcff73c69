package streamer

import (
	"archive/zip"
	"errors"
	"strings"

	"github.com/crateful/unbox/internal/domain"
)

var passwordPhrases = []string{
	"password",
	"decrypt",
	"encrypted",
}

var unsupportedPhrases = []string{
	"not a valid",
	"bad header",
	"bad magic",
	"invalid header",
	"malformed",
	"unsupported",
	"signature",
}

// classify maps the native error vocabulary of the in-memory readers onto
// the shared failure taxonomy. Anything unrecognized becomes a generic
// recoverable failure so the other engine still gets a try.
func classify(op string, err error) *domain.Failure {
	msg := strings.ToLower(err.Error())

	for _, phrase := range passwordPhrases {
		if strings.Contains(msg, phrase) {
			return domain.NewFailure(domain.PasswordRequired,
				"The password you entered is incorrect. Try again.", true, err)
		}
	}

	if errors.Is(err, zip.ErrFormat) {
		return domain.NewFailure(domain.UnsupportedFormat,
			"This file does not look like a readable archive.", true, err)
	}
	for _, phrase := range unsupportedPhrases {
		if strings.Contains(msg, phrase) {
			return domain.NewFailure(domain.UnsupportedFormat,
				"This file does not look like a readable archive.", true, err)
		}
	}

	return domain.NewFailure(domain.ExtractionFailed,
		"Could not extract the archive ("+op+").", true, err)
}
