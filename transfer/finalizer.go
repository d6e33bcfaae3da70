package transfer

import (
	"io"
	"os"
)

// finalizeTo copies the staged container into w with the configured encoding.
func (packer *Packer) finalizeTo(w io.Writer, staged *stagedFile) (int64, error) {
	in, err := os.Open(staged.path)
	if err != nil {
		return 0, &StageError{StateFinalizing, staged.path, err}
	}
	defer in.Close()

	buf := make([]byte, packer.option.bufferSize())
	written, err := copyEncoded(w, in, packer.option.Encoding, buf)
	if err != nil {
		return written, &StageError{StateFinalizing, staged.path, err}
	}

	return written, nil
}

// publish replaces output with the staged container. Any file already at
// output is deleted first; the last run wins and no backup is kept.
func (packer *Packer) publish(staged *stagedFile, output string) (int64, error) {
	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return 0, &StageError{StateFinalizing, output, err}
	}

	out, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, &StageError{StateFinalizing, output, err}
	}

	written, err := packer.finalizeTo(out, staged)
	if err == nil {
		if err = out.Close(); err != nil {
			err = &StageError{StateFinalizing, output, err}
		}
	} else {
		out.Close()
	}

	if err != nil {
		// Never leave a partial destination behind.
		if rerr := os.Remove(output); rerr != nil && !os.IsNotExist(rerr) {
			packer.logger.WithError(rerr).WithField("path", output).Warn("Failed to delete partial output")
		}
		return written, err
	}

	return written, nil
}
