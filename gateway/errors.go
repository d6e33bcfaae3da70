package gateway

import (
	"github.com/caseif/fs2sbc/common/api"
	"github.com/caseif/fs2sbc/core"
	"github.com/caseif/fs2sbc/transfer"
	"github.com/caseif/fs2sbc/transfer/dir"
	"github.com/pkg/errors"
)

// Gateway errors
var (
	ErrPathOutsideRepo = api.NewBusinessError(101, "Path outside of local repository")
	ErrNotPacked       = api.NewBusinessError(102, "Path not packed recently")
	ErrPackFailed      = api.NewBusinessError(103, "Failed to pack path")
)

// businessError maps a packaging failure to the error reported to clients.
func businessError(err error) error {
	var be *api.BusinessError
	if errors.As(err, &be) {
		return be
	}

	if errors.Is(err, dir.ErrOutsideRoot) {
		return ErrPathOutsideRepo.WithData(err.Error())
	}

	if errors.Is(err, core.ErrInputNotFound) || errors.Is(err, transfer.ErrInvalidOption) {
		return api.ErrValidation.WithData(err.Error())
	}

	var stageErr *transfer.StageError
	if errors.As(err, &stageErr) && stageErr.Stage != transfer.StateFinalizing {
		return ErrPackFailed.WithData(err.Error())
	}

	if errors.Is(err, dir.ErrDepthExceeded) || errors.Is(err, dir.ErrUnsupportedFileType) {
		return ErrPackFailed.WithData(err.Error())
	}

	return err
}
