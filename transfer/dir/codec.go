package dir

import (
	"bytes"
	"context"
	"encoding"
	"io"
	"unicode/utf8"

	"github.com/caseif/fs2sbc/common"
	"github.com/caseif/fs2sbc/core"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Tag is the single byte discriminator preceding a structural element.
type Tag byte

const (
	TagEnd   Tag = 0x00 // closes a group
	TagGroup Tag = 0x01 // opens a directory
	TagBlob  Tag = 0x02 // a file's length-prefixed contents
)

const (
	// MaxNameLength is the longest name, in UTF-8 bytes, a 1-byte length field describes.
	MaxNameLength = 255

	// MaxBlobSize is the largest file the unsigned 4-byte length field describes.
	MaxBlobSize = int64(core.MaxUint32Length)

	defaultCopyBufferSize = 32 * 1024
)

var (
	// Assert that FsNode implements the encoding interface.
	_ encoding.BinaryMarshaler = (*FsNode)(nil)

	// MagicBytes identifies a container and is always its first 4 bytes.
	MagicBytes = []byte{0xB1, 0x0B, 0xFE, 0x57}

	// ErrSizeLimitExceeded is returned for files too large for the blob length field.
	ErrSizeLimitExceeded = errors.New("file size exceeds container length field")

	// ErrFileChanged is returned when a file yields fewer bytes than its length field announced.
	ErrFileChanged = errors.New("file changed while being packaged")
)

// WriteMagic writes the container magic number.
func WriteMagic(w io.Writer) error {
	_, err := w.Write(MagicBytes)
	return err
}

// EncodeName returns the length-prefixed UTF-8 form of name. Names longer
// than MaxNameLength bytes are cut at the last rune boundary that fits, so
// the length byte always matches the number of name bytes that follow.
func EncodeName(name string) []byte {
	raw := []byte(name)
	if len(raw) > MaxNameLength {
		cut := MaxNameLength
		for cut > 0 && !utf8.RuneStart(raw[cut]) {
			cut--
		}
		raw = raw[:cut]
	}

	data := make([]byte, 0, len(raw)+1)
	data = append(data, core.LowByte(uint16(len(raw))))
	return append(data, raw...)
}

// Encoder serializes an FsNode tree into the tagged container stream,
// reading file contents from disk as it goes.
type Encoder struct {
	w       io.Writer
	buf     []byte
	verbose bool
	logger  *logrus.Logger
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer, opts ...common.LogOption) *Encoder {
	return &Encoder{
		w:      w,
		buf:    make([]byte, defaultCopyBufferSize),
		logger: common.NewLogger(opts...),
	}
}

// WithVerbose logs every processed file and directory at info level instead of debug.
func (encoder *Encoder) WithVerbose(verbose bool) *Encoder {
	encoder.verbose = verbose
	return encoder
}

// Encode writes node to the stream. A file root is written as a bare blob
// with no name; a directory root as a named group. The magic number is not
// written, see WriteMagic.
func (encoder *Encoder) Encode(ctx context.Context, node *FsNode) error {
	switch node.Type {
	case FileTypeFile:
		return encoder.writeFile(ctx, node)
	case FileTypeDirectory:
		return encoder.writeDirectory(ctx, node)
	default:
		return errors.WithMessagef(ErrUnsupportedFileType, "%s (%s)", node.Path, node.Type)
	}
}

func (encoder *Encoder) processing(kind, path string) {
	entry := encoder.logger.WithField("path", path)
	if encoder.verbose {
		entry.Info("Processing " + kind)
	} else {
		entry.Debug("Processing " + kind)
	}
}

func (encoder *Encoder) writeTag(tag Tag) error {
	_, err := encoder.w.Write([]byte{byte(tag)})
	return err
}

func (encoder *Encoder) writeName(node *FsNode) error {
	_, err := encoder.w.Write(EncodeName(node.Name))
	return err
}

func (encoder *Encoder) writeDirectory(ctx context.Context, node *FsNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoder.processing("directory", node.Path)

	if err := encoder.writeTag(TagGroup); err != nil {
		return errors.WithMessagef(err, "failed to write group tag for %s", node.Path)
	}

	if err := encoder.writeName(node); err != nil {
		return errors.WithMessagef(err, "failed to write name of %s", node.Path)
	}

	for _, entry := range node.Entries {
		if err := encoder.Encode(ctx, entry); err != nil {
			return err
		}
	}

	if err := encoder.writeTag(TagEnd); err != nil {
		return errors.WithMessagef(err, "failed to write end tag for %s", node.Path)
	}

	return nil
}

func (encoder *Encoder) writeFile(ctx context.Context, node *FsNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoder.processing("file", node.Path)

	file, err := core.Open(node.Path)
	if err != nil {
		return errors.WithMessagef(err, "failed to open file %s", node.Path)
	}
	defer file.Close()

	// Size is taken when opening so the length field matches what is copied.
	size := file.Size()
	if size > MaxBlobSize {
		return errors.WithMessagef(ErrSizeLimitExceeded, "%s is %d bytes, limit %d", node.Path, size, MaxBlobSize)
	}

	if err := encoder.writeTag(TagBlob); err != nil {
		return errors.WithMessagef(err, "failed to write blob tag for %s", node.Path)
	}

	if _, err := encoder.w.Write(core.Uint32Bytes(uint32(size))); err != nil {
		return errors.WithMessagef(err, "failed to write blob length for %s", node.Path)
	}

	n, err := io.CopyBuffer(encoder.w, io.LimitReader(file, size), encoder.buf)
	if err != nil {
		return errors.WithMessagef(err, "failed to write contents of %s", node.Path)
	}

	if n != size {
		return errors.WithMessagef(ErrFileChanged, "%s: expected %d bytes, read %d", node.Path, size, n)
	}

	return nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface. It returns
// the complete container, magic number included, for the tree rooted at node.
func (node *FsNode) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	if err := WriteMagic(&buf); err != nil {
		return nil, err
	}

	if err := NewEncoder(&buf).Encode(context.Background(), node); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
