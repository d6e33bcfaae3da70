package gateway

import (
	"os"
	"path/filepath"

	"github.com/caseif/fs2sbc/common"
	"github.com/caseif/fs2sbc/common/api"
	"github.com/caseif/fs2sbc/transfer"
	"github.com/caseif/fs2sbc/transfer/dir"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const recentPackCacheSize = 128

var (
	LocalFileRepo string = "."

	recentPacks = mustNewRecentPacks()
)

func mustNewRecentPacks() *lru.Cache[string, transfer.Summary] {
	cache, err := lru.New[string, transfer.Summary](recentPackCacheSize)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create recent pack cache")
	}
	return cache
}

// localRepo returns LocalFileRepo as an absolute path with symbolic links resolved.
func localRepo() (string, error) {
	repo, err := filepath.Abs(LocalFileRepo)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(repo)
}

// getFilePath resolves path against the local repository and rejects paths
// leaving it, either lexically or through a symbolic link.
func getFilePath(path string) (filename, repo string, err error) {
	if repo, err = localRepo(); err != nil {
		return "", "", err
	}

	filename = filepath.Join(repo, path)
	if !dir.IsWithin(repo, filename) {
		return "", "", ErrPathOutsideRepo.WithData(path)
	}

	resolved, err := filepath.EvalSymlinks(filename)
	if os.IsNotExist(err) {
		// Reported as a missing input once packing starts.
		return filename, repo, nil
	}
	if err != nil {
		return "", "", err
	}

	if !dir.IsWithin(repo, resolved) {
		return "", "", ErrPathOutsideRepo.WithData(path)
	}

	return filename, repo, nil
}

func recentKey(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

func getLocalTree(c *gin.Context) (interface{}, error) {
	var input struct {
		Path   string `form:"path" json:"path" binding:"required"`
		Sub    string `form:"sub" json:"sub"`
		Sorted bool   `form:"sorted" json:"sorted"`
	}

	if err := c.ShouldBind(&input); err != nil {
		return nil, err
	}

	filename, repo, err := getFilePath(input.Path)
	if err != nil {
		return nil, err
	}

	root, err := dir.BuildFileTree(filename, dir.BuildOption{SortEntries: input.Sorted, Root: repo})
	if errors.Is(err, dir.ErrOutsideRoot) {
		return nil, ErrPathOutsideRepo.WithData(err.Error())
	}
	if err != nil {
		return nil, api.ErrValidation.WithData(err.Error())
	}

	if input.Sub != "" {
		if root, err = root.Locate(filepath.FromSlash(input.Sub)); err != nil {
			return nil, api.ErrValidation.WithData(err.Error())
		}
	}

	files, dirs := root.Count()

	return map[string]interface{}{
		"tree":        root,
		"files":       files,
		"directories": dirs,
	}, nil
}

func getRecentPack(c *gin.Context) (interface{}, error) {
	var input struct {
		Path string `form:"path" json:"path" binding:"required"`
	}

	if err := c.ShouldBind(&input); err != nil {
		return nil, err
	}

	summary, ok := recentPacks.Get(recentKey(input.Path))
	if !ok {
		return nil, ErrNotPacked.WithData(input.Path)
	}

	return summary, nil
}

// packLocalPath streams the container of a path under LocalFileRepo. Errors
// are reported as JSON as long as no container bytes have been sent.
func packLocalPath(c *gin.Context) {
	var input struct {
		Path     string `form:"path" json:"path" binding:"required"`
		Encoding string `form:"encoding" json:"encoding" binding:"omitempty,oneof=raw base64 base91"`
		Sorted   bool   `form:"sorted" json:"sorted"`
	}

	if err := c.ShouldBind(&input); err != nil {
		api.ResponseError(c, err)
		return
	}

	filename, repo, err := getFilePath(input.Path)
	if err != nil {
		api.ResponseError(c, err)
		return
	}

	encoding, err := transfer.ParseEncoding(input.Encoding)
	if err != nil {
		api.ResponseError(c, businessError(err))
		return
	}

	packer, err := transfer.NewPacker(transfer.PackOption{
		Encoding:    encoding,
		SortEntries: input.Sorted,
		Root:        repo,
	}, common.LogOption{Logger: logrus.StandardLogger()})
	if err != nil {
		api.ResponseError(c, businessError(err))
		return
	}

	if encoding == transfer.EncodingRaw {
		c.Header("Content-Type", "application/octet-stream")
	} else {
		c.Header("Content-Type", "text/plain; charset=us-ascii")
	}

	summary, err := packer.PackTo(c.Request.Context(), filename, c.Writer)
	if err != nil {
		if c.Writer.Written() {
			logrus.WithError(err).WithField("path", input.Path).Warn("Failed to stream container")
			c.Abort()
			return
		}

		c.Header("Content-Type", "")
		api.ResponseError(c, businessError(err))
		return
	}

	// Report the repository path rather than where the repository lives on disk.
	summary.Input = input.Path
	recentPacks.Add(recentKey(input.Path), *summary)

	logrus.WithFields(logrus.Fields{
		"path":     input.Path,
		"encoding": summary.Encoding,
		"size":     summary.OutputSize,
		"digest":   summary.Digest,
	}).Debug("Container served")
}
