package combiner

import (
	"strings"

	"github.com/yourorg/pdf-combine-kit/pkg/logging"
)

// OutputMode selects where Save delivers the combined document.
type OutputMode int

const (
	// ModeBrowser streams the document to the inline writer for
	// in-place viewing.
	ModeBrowser OutputMode = iota
	// ModeDownload streams the document to the inline writer for
	// delivery as an attachment.
	ModeDownload
	// ModeFile writes the document to the path given to Save.
	ModeFile
	// ModeString returns the document bytes to the caller.
	ModeString
)

func (m OutputMode) String() string {
	switch m {
	case ModeDownload:
		return "download"
	case ModeFile:
		return "file"
	case ModeString:
		return "string"
	default:
		return "browser"
	}
}

// ParseOutputMode maps user-facing mode names onto the enum,
// case-insensitively. Unknown names deliberately fall back to browser
// delivery rather than erroring.
func ParseOutputMode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "download":
		return ModeDownload
	case "file":
		return ModeFile
	case "string":
		return ModeString
	case "browser":
		return ModeBrowser
	default:
		return ModeBrowser
	}
}

// Save delivers the merged document. path is the destination for
// ModeFile and only a suggested name for the other modes. ModeString
// returns the document bytes; every other mode returns nil bytes.
func (s *Session) Save(path string, mode OutputMode) ([]byte, error) {
	if !s.merged {
		return nil, ErrNotMerged
	}

	switch mode {
	case ModeString:
		b, err := s.asm.Bytes()
		if err != nil {
			return nil, &OutputError{Path: path, Mode: mode, Err: err}
		}
		return b, nil
	case ModeFile:
		if err := s.asm.OutputFile(path); err != nil {
			return nil, &OutputError{Path: path, Mode: mode, Err: err}
		}
		s.log.Info("combined document written",
			logging.NewField("path", path),
			logging.NewField("pages", s.asm.PageCount()))
		return nil, nil
	default: // ModeDownload and ModeBrowser stream inline
		if err := s.asm.Output(s.inline); err != nil {
			return nil, &OutputError{Path: path, Mode: mode, Err: err}
		}
		return nil, nil
	}
}
