package transfer

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/caseif/fs2sbc/common"
	"github.com/caseif/fs2sbc/core"
	"github.com/caseif/fs2sbc/transfer/dir"
	eth_common "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Summary describes a packaged container.
type Summary struct {
	Input         string          `json:"input"`
	Output        string          `json:"output,omitempty"`
	Encoding      string          `json:"encoding"`
	Files         int             `json:"files"`
	Directories   int             `json:"directories"`
	ContainerSize int64           `json:"containerSize"` // raw container bytes, magic included
	OutputSize    int64           `json:"outputSize"`    // bytes after transport encoding
	Digest        eth_common.Hash `json:"digest"`        // keccak256 of the raw container
}

// Packer serializes a file or directory into a container. A Packer runs one
// pipeline at a time and is not safe for concurrent use.
type Packer struct {
	option PackOption
	logger *logrus.Logger
	state  State
}

// NewPacker validates option and creates a Packer.
func NewPacker(option PackOption, opts ...common.LogOption) (*Packer, error) {
	if err := option.validate(); err != nil {
		return nil, err
	}

	return &Packer{
		option: option,
		logger: common.NewLogger(opts...),
	}, nil
}

// State returns the pipeline step the packer is in, or ended in. Any failed
// run ends in StateFailed, rejected paths included.
func (packer *Packer) State() State {
	return packer.state
}

func (packer *Packer) setState(state State) {
	packer.state = state
}

func (packer *Packer) fail(err error) error {
	packer.setState(StateFailed)
	return err
}

// Pack packages input into the file at output. The container is staged in a
// temporary file first, so output is only touched once encoding succeeded.
func (packer *Packer) Pack(ctx context.Context, input, output string) (*Summary, error) {
	packer.setState(StateIdle)

	if err := validatePaths(input, output); err != nil {
		return nil, packer.fail(err)
	}

	staged, root, err := packer.stage(ctx, input)
	if err != nil {
		return nil, packer.fail(err)
	}
	defer packer.removeStaged(staged.path)

	packer.setState(StateFinalizing)

	written, err := packer.publish(staged, output)
	if err != nil {
		return nil, packer.fail(err)
	}

	packer.setState(StateDone)

	return packer.summarize(input, output, root, staged, written), nil
}

// PackTo packages input and streams the encoded container into w.
func (packer *Packer) PackTo(ctx context.Context, input string, w io.Writer) (*Summary, error) {
	packer.setState(StateIdle)

	if err := validateInput(input); err != nil {
		return nil, packer.fail(err)
	}

	staged, root, err := packer.stage(ctx, input)
	if err != nil {
		return nil, packer.fail(err)
	}
	defer packer.removeStaged(staged.path)

	packer.setState(StateFinalizing)

	written, err := packer.finalizeTo(w, staged)
	if err != nil {
		return nil, packer.fail(err)
	}

	packer.setState(StateDone)

	return packer.summarize(input, "", root, staged, written), nil
}

func (packer *Packer) summarize(input, output string, root *dir.FsNode, staged *stagedFile, written int64) *Summary {
	files, dirs := root.Count()
	return &Summary{
		Input:         input,
		Output:        output,
		Encoding:      packer.option.Encoding.String(),
		Files:         files,
		Directories:   dirs,
		ContainerSize: staged.size,
		OutputSize:    written,
		Digest:        staged.digest,
	}
}

func validateInput(input string) error {
	if input == "" {
		return errors.WithMessage(ErrInvalidOption, "input path required")
	}

	exists, err := core.Exists(input)
	if err != nil {
		return errors.WithMessagef(err, "failed to check input %s", input)
	}

	if !exists {
		return errors.WithMessagef(core.ErrInputNotFound, "%s", input)
	}

	return nil
}

func validatePaths(input, output string) error {
	if err := validateInput(input); err != nil {
		return err
	}

	if output == "" {
		return errors.WithMessage(ErrInvalidOption, "output path required")
	}

	inputAbs, err := filepath.Abs(input)
	if err != nil {
		return errors.WithMessagef(err, "failed to resolve input %s", input)
	}

	outputAbs, err := filepath.Abs(output)
	if err != nil {
		return errors.WithMessagef(err, "failed to resolve output %s", output)
	}

	if inputAbs == outputAbs {
		return errors.WithMessage(ErrInvalidOption, "output would overwrite input")
	}

	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return errors.WithMessagef(ErrInvalidOption, "output %s is a directory", output)
	}

	return nil
}
