package orchestrator

import (
	"github.com/crateful/unbox/internal/domain"
)

// Policy decides which engine runs first for a container format. The
// defaults put the in-memory reader first for everything it can parse and
// the command engine first for the long-tail formats; both can be
// overridden from the config file.
type Policy struct {
	streamerFirst map[domain.FormatID]bool
}

func DefaultPolicy() Policy {
	return Policy{streamerFirst: map[domain.FormatID]bool{
		domain.FormatZip:    true,
		domain.Format7z:     true,
		domain.FormatRar:    true,
		domain.FormatTar:    true,
		domain.FormatTarGz:  true,
		domain.FormatTarBz2: true,
		domain.FormatTarXz:  true,
		domain.FormatTarZst: true,
		domain.FormatIso:    false,
		domain.FormatCab:    false,
		domain.FormatAr:     false,
		domain.FormatCpio:   false,
	}}
}

// NewPolicy applies config overrides ("streamer-first" / "command-first")
// on top of the defaults. Unknown values are ignored.
func NewPolicy(overrides map[string]string) Policy {
	p := DefaultPolicy()
	for format, order := range overrides {
		switch order {
		case "streamer-first":
			p.streamerFirst[domain.FormatID(format)] = true
		case "command-first":
			p.streamerFirst[domain.FormatID(format)] = false
		}
	}
	return p
}

func (p Policy) StreamerFirst(id domain.FormatID) bool {
	return p.streamerFirst[id]
}
