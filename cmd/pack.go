package cmd

import (
	"context"

	"github.com/caseif/fs2sbc/common"
	"github.com/caseif/fs2sbc/transfer"
	"github.com/caseif/fs2sbc/transfer/dir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	packArgs struct {
		input  string
		output string

		base64 bool
		base91 bool

		verbose  bool
		sorted   bool
		maxDepth int
		tempDir  string
	}

	packCmd = &cobra.Command{
		Use:   "pack",
		Short: "Package a file or directory into a container file",
		Args:  cobra.NoArgs,
		Run:   pack,
	}
)

func init() {
	packCmd.Flags().StringVarP(&packArgs.input, "input", "i", "", "File or directory to package")
	packCmd.MarkFlagRequired("input")
	packCmd.Flags().StringVarP(&packArgs.output, "output", "o", "", "Container file to write, replaced if it exists")
	packCmd.MarkFlagRequired("output")

	packCmd.Flags().BoolVar(&packArgs.base64, "base64", false, "Write the container as base64 text")
	packCmd.Flags().BoolVar(&packArgs.base91, "base91", false, "Write the container as basE91 text")
	packCmd.MarkFlagsMutuallyExclusive("base64", "base91")

	packCmd.Flags().BoolVarP(&packArgs.verbose, "verbose", "v", false, "Log every processed file and directory")
	packCmd.Flags().BoolVar(&packArgs.sorted, "sorted", false, "Order directory entries by name for reproducible output")
	packCmd.Flags().IntVar(&packArgs.maxDepth, "max-depth", dir.DefaultMaxDepth, "Maximum directory nesting, guards against symbolic link loops")
	packCmd.Flags().StringVar(&packArgs.tempDir, "temp-dir", "", "Directory to stage the container in, system temp directory by default")

	rootCmd.AddCommand(packCmd)
}

func packOption() transfer.PackOption {
	encoding := transfer.EncodingRaw
	if packArgs.base64 {
		encoding = transfer.EncodingBase64
	} else if packArgs.base91 {
		encoding = transfer.EncodingBase91
	}

	return transfer.PackOption{
		Encoding:    encoding,
		Verbose:     packArgs.verbose,
		SortEntries: packArgs.sorted,
		MaxDepth:    packArgs.maxDepth,
		TempDir:     packArgs.tempDir,
	}
}

func pack(*cobra.Command, []string) {
	packer, err := transfer.NewPacker(packOption(), common.LogOption{Logger: logrus.StandardLogger()})
	if err != nil {
		logrus.WithError(err).Fatal("Invalid pack options")
	}

	summary, err := packer.Pack(context.Background(), packArgs.input, packArgs.output)
	if err != nil {
		logrus.WithError(err).WithField("state", packer.State()).Fatal("Failed to package")
	}

	logrus.WithFields(logrus.Fields{
		"output":      summary.Output,
		"encoding":    summary.Encoding,
		"files":       summary.Files,
		"directories": summary.Directories,
		"size":        summary.OutputSize,
		"digest":      summary.Digest,
	}).Info("Container written")
}
