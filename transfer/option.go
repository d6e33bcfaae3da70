package transfer

import (
	"strings"

	"github.com/caseif/fs2sbc/transfer/dir"
	"github.com/pkg/errors"
)

// DefaultBufferSize is the chunk size used to copy the staged container to
// its destination. It is a multiple of 3 so base64 chunks never pad.
const DefaultBufferSize = 3 * 32 * 1024

// ErrInvalidOption is returned for options that cannot describe a run.
var ErrInvalidOption = errors.New("invalid option")

// Encoding is the transport encoding applied to the container when publishing it.
type Encoding int

const (
	EncodingRaw Encoding = iota
	EncodingBase64
	EncodingBase91
)

var encodingNames = map[Encoding]string{
	EncodingRaw:    "raw",
	EncodingBase64: "base64",
	EncodingBase91: "base91",
}

func (e Encoding) String() string {
	if name, ok := encodingNames[e]; ok {
		return name
	}
	return "unknown"
}

// ParseEncoding parses an encoding name, case insensitive. An empty name is raw.
func ParseEncoding(name string) (Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return EncodingRaw, nil
	}

	for encoding, encodingName := range encodingNames {
		if encodingName == name {
			return encoding, nil
		}
	}

	return EncodingRaw, errors.WithMessagef(ErrInvalidOption, "unknown encoding %q", name)
}

// PackOption is resolved once per run and never modified afterwards.
type PackOption struct {
	Encoding    Encoding // transport encoding of the published container
	Verbose     bool     // log every processed file and directory at info level
	SortEntries bool     // order siblings by name, making output reproducible
	MaxDepth    int      // directory nesting limit, dir.DefaultMaxDepth if not positive
	TempDir     string   // directory for the staged container, os.TempDir() if empty
	BufferSize  int      // copy chunk size, rounded down to a multiple of 3
	Root        string   // if set, symbolic links may not lead outside this directory
}

func (opt PackOption) validate() error {
	if _, ok := encodingNames[opt.Encoding]; !ok {
		return errors.WithMessagef(ErrInvalidOption, "unknown encoding %d", opt.Encoding)
	}

	if opt.MaxDepth < 0 {
		return errors.WithMessagef(ErrInvalidOption, "negative max depth %d", opt.MaxDepth)
	}

	if opt.BufferSize < 0 {
		return errors.WithMessagef(ErrInvalidOption, "negative buffer size %d", opt.BufferSize)
	}

	return nil
}

func (opt PackOption) bufferSize() int {
	size := opt.BufferSize
	if size == 0 {
		size = DefaultBufferSize
	}

	size -= size % 3
	if size < 3 {
		size = 3
	}

	return size
}

func (opt PackOption) buildOption() dir.BuildOption {
	return dir.BuildOption{
		SortEntries: opt.SortEntries,
		MaxDepth:    opt.MaxDepth,
		Root:        opt.Root,
	}
}
