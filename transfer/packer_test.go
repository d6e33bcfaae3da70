package transfer

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/caseif/fs2sbc/core"
	"github.com/caseif/fs2sbc/transfer/dir"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
}

// exampleTree creates root/a.txt ("Hello") and the empty directory root/sub.
func exampleTree(t *testing.T) string {
	root := filepath.Join(t.TempDir(), "root")
	writeTestFile(t, filepath.Join(root, "a.txt"), []byte("Hello"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))
	return root
}

var exampleContainer = []byte{
	0xB1, 0x0B, 0xFE, 0x57,
	0x01, 4, 'r', 'o', 'o', 't',
	0x02, 0, 0, 0, 5, 'H', 'e', 'l', 'l', 'o',
	0x01, 3, 's', 'u', 'b', 0x00,
	0x00,
}

func newTestPacker(t *testing.T, option PackOption) (*Packer, string) {
	t.Helper()
	stagingDir := t.TempDir()
	option.TempDir = stagingDir
	option.SortEntries = true

	packer, err := NewPacker(option)
	require.NoError(t, err)
	return packer, stagingDir
}

func assertNoStagedFiles(t *testing.T, stagingDir string) {
	t.Helper()
	entries, err := os.ReadDir(stagingDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged containers left behind")
}

func TestPackDirectory(t *testing.T) {
	input := exampleTree(t)
	output := filepath.Join(t.TempDir(), "out.sbc")

	packer, stagingDir := newTestPacker(t, PackOption{})
	summary, err := packer.Pack(context.Background(), input, output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, exampleContainer, data)

	assert.Equal(t, StateDone, packer.State())
	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, 2, summary.Directories)
	assert.Equal(t, int64(len(exampleContainer)), summary.ContainerSize)
	assert.Equal(t, int64(len(exampleContainer)), summary.OutputSize)
	assert.Equal(t, crypto.Keccak256Hash(exampleContainer), summary.Digest)
	assert.Equal(t, "raw", summary.Encoding)
	assert.Equal(t, output, summary.Output)

	assertNoStagedFiles(t, stagingDir)
}

func TestPackSingleFile(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		expected []byte
	}{
		{"empty", nil, []byte{0xB1, 0x0B, 0xFE, 0x57, 0x02, 0, 0, 0, 0}},
		{"hello", []byte("Hello"), []byte{0xB1, 0x0B, 0xFE, 0x57, 0x02, 0, 0, 0, 5, 'H', 'e', 'l', 'l', 'o'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := filepath.Join(t.TempDir(), "input.bin")
			writeTestFile(t, input, tt.content)
			output := filepath.Join(t.TempDir(), "out.sbc")

			packer, _ := newTestPacker(t, PackOption{})
			summary, err := packer.Pack(context.Background(), input, output)
			require.NoError(t, err)

			data, err := os.ReadFile(output)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, data)
			assert.Equal(t, 1, summary.Files)
			assert.Equal(t, 0, summary.Directories)
		})
	}
}

func TestPackTextEncodingsCarrySameContainer(t *testing.T) {
	input := filepath.Join(t.TempDir(), "mixed")
	writeTestFile(t, filepath.Join(input, "one"), randomBytes(1000))
	writeTestFile(t, filepath.Join(input, "two", "three"), randomBytes(4097))
	writeTestFile(t, filepath.Join(input, "two", "four"), nil)

	outDir := t.TempDir()
	pack := func(encoding Encoding) ([]byte, *Summary) {
		output := filepath.Join(outDir, encoding.String())
		packer, stagingDir := newTestPacker(t, PackOption{Encoding: encoding, BufferSize: 300})
		summary, err := packer.Pack(context.Background(), input, output)
		require.NoError(t, err)
		assertNoStagedFiles(t, stagingDir)

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), summary.OutputSize)
		return data, summary
	}

	raw, rawSummary := pack(EncodingRaw)
	assert.Equal(t, dir.MagicBytes, raw[:4])

	b64, b64Summary := pack(EncodingBase64)
	decoded, err := base64.StdEncoding.DecodeString(string(b64))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
	assert.Equal(t, rawSummary.Digest, b64Summary.Digest)

	b91, b91Summary := pack(EncodingBase91)
	assert.Equal(t, raw, decodeBase91(t, string(b91)))
	assert.Equal(t, rawSummary.Digest, b91Summary.Digest)
}

func TestPackOverwritesOutput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.sbc")
	writeTestFile(t, output, bytes.Repeat([]byte("previous run "), 100))

	first := filepath.Join(t.TempDir(), "first")
	writeTestFile(t, first, []byte("first"))
	second := filepath.Join(t.TempDir(), "second")
	writeTestFile(t, second, []byte("2nd"))

	packer, _ := newTestPacker(t, PackOption{})
	_, err := packer.Pack(context.Background(), first, output)
	require.NoError(t, err)
	_, err = packer.Pack(context.Background(), second, output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xB1, 0x0B, 0xFE, 0x57, 0x02, 0, 0, 0, 3, '2', 'n', 'd'}, data)
}

func TestPackFailureKeepsPreviousOutput(t *testing.T) {
	input := filepath.Join(t.TempDir(), "deep")
	writeTestFile(t, filepath.Join(input, "a", "b", "file"), []byte("x"))

	output := filepath.Join(t.TempDir(), "out.sbc")
	writeTestFile(t, output, []byte("valid container"))

	packer, stagingDir := newTestPacker(t, PackOption{MaxDepth: 2})
	_, err := packer.Pack(context.Background(), input, output)
	require.Error(t, err)

	assert.True(t, errors.Is(err, dir.ErrDepthExceeded))
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StateStaging, stageErr.Stage)
	assert.Equal(t, StateFailed, packer.State())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []byte("valid container"), data)
	assertNoStagedFiles(t, stagingDir)
}

func TestPackValidation(t *testing.T) {
	input := exampleTree(t)
	outDir := t.TempDir()

	tests := []struct {
		name   string
		input  string
		output string
		target error
	}{
		{"missing input", filepath.Join(outDir, "missing"), filepath.Join(outDir, "out"), core.ErrInputNotFound},
		{"empty input", "", filepath.Join(outDir, "out"), ErrInvalidOption},
		{"empty output", input, "", ErrInvalidOption},
		{"output is input", filepath.Join(input, "a.txt"), filepath.Join(input, "a.txt"), ErrInvalidOption},
		{"output is directory", input, outDir, ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packer, stagingDir := newTestPacker(t, PackOption{})
			_, err := packer.Pack(context.Background(), tt.input, tt.output)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.Equal(t, StateFailed, packer.State())
			assertNoStagedFiles(t, stagingDir)
		})
	}

	// The input file must survive the rejected run.
	data, err := os.ReadFile(filepath.Join(input, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), data)
}

func TestNewPackerRejectsInvalidOptions(t *testing.T) {
	for _, option := range []PackOption{
		{Encoding: Encoding(42)},
		{MaxDepth: -1},
		{BufferSize: -3},
	} {
		_, err := NewPacker(option)
		assert.True(t, errors.Is(err, ErrInvalidOption), "%+v", option)
	}
}

func TestPackStagingFailure(t *testing.T) {
	input := exampleTree(t)
	output := filepath.Join(t.TempDir(), "out.sbc")

	packer, err := NewPacker(PackOption{TempDir: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	_, err = packer.Pack(context.Background(), input, output)
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StateStaging, stageErr.Stage)
	assert.Equal(t, StateFailed, packer.State())

	_, err = os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}

func TestPackStagingDirInsideInput(t *testing.T) {
	input := exampleTree(t)
	output := filepath.Join(t.TempDir(), "out.sbc")

	packer, err := NewPacker(PackOption{TempDir: input, SortEntries: true})
	require.NoError(t, err)

	summary, err := packer.Pack(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, 2, summary.Directories)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, exampleContainer, data)

	entries, err := os.ReadDir(input)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "staged container left in input")
}

func TestPackTo(t *testing.T) {
	input := exampleTree(t)

	packer, stagingDir := newTestPacker(t, PackOption{Encoding: EncodingBase64})
	var buf bytes.Buffer
	summary, err := packer.PackTo(context.Background(), input, &buf)
	require.NoError(t, err)

	assert.Equal(t, base64.StdEncoding.EncodeToString(exampleContainer), buf.String())
	assert.Equal(t, int64(buf.Len()), summary.OutputSize)
	assert.Empty(t, summary.Output)
	assertNoStagedFiles(t, stagingDir)
}
