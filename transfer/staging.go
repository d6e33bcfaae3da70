package transfer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/caseif/fs2sbc/common"
	"github.com/caseif/fs2sbc/transfer/dir"
	eth_common "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
)

const stagingBufferSize = 64 * 1024

// stagedFile is a complete container waiting in a temporary file.
type stagedFile struct {
	path   string
	size   int64
	digest eth_common.Hash
}

func tempPattern() string {
	return fmt.Sprintf("fs2sbc-%d-*.sbc", os.Getpid())
}

// stage walks input and writes its container, magic number first, to a new
// temporary file. The tree is built before the temporary file exists, so a
// staging directory inside input never ends up in its own container. The
// temporary file is removed again on any failure.
func (packer *Packer) stage(ctx context.Context, input string) (staged *stagedFile, root *dir.FsNode, err error) {
	packer.setState(StateStaging)

	if root, err = dir.BuildFileTree(input, packer.option.buildOption()); err != nil {
		return nil, nil, &StageError{StateStaging, input, err}
	}

	// CreateTemp opens with O_EXCL, so the name is never shared with another run.
	file, err := os.CreateTemp(packer.option.TempDir, tempPattern())
	if err != nil {
		return nil, nil, &StageError{StateStaging, packer.option.TempDir, err}
	}
	path := file.Name()

	defer func() {
		if err == nil {
			return
		}
		file.Close()
		packer.removeStaged(path)
	}()

	hasher := crypto.NewKeccakState()
	buffered := bufio.NewWriterSize(file, stagingBufferSize)
	counter := &countingWriter{w: io.MultiWriter(buffered, hasher)}

	if err = dir.WriteMagic(counter); err != nil {
		return nil, nil, &StageError{StateStaging, path, err}
	}

	packer.setState(StateEncoding)

	encoder := dir.NewEncoder(counter, common.LogOption{Logger: packer.logger}).
		WithVerbose(packer.option.Verbose)
	if err = encoder.Encode(ctx, root); err != nil {
		return nil, nil, &StageError{StateEncoding, input, err}
	}

	if err = buffered.Flush(); err != nil {
		return nil, nil, &StageError{StateEncoding, path, err}
	}

	if err = file.Close(); err != nil {
		return nil, nil, &StageError{StateEncoding, path, err}
	}

	staged = &stagedFile{
		path:   path,
		size:   counter.n,
		digest: eth_common.BytesToHash(hasher.Sum(nil)),
	}

	packer.logger.WithFields(logrus.Fields{
		"path":   staged.path,
		"size":   staged.size,
		"digest": staged.digest,
	}).Debug("Container staged")

	return staged, root, nil
}

// removeStaged deletes a staged container. Failing to do so never fails a run.
func (packer *Packer) removeStaged(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		packer.logger.WithError(err).WithField("path", path).Warn("Failed to delete staged container")
	}
}
