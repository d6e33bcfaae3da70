package dir

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// DefaultMaxDepth bounds the directory nesting BuildFileTree descends into.
// Symbolic links are followed, so a link pointing at one of its ancestors
// would otherwise recurse forever.
const DefaultMaxDepth = 256

var (
	// ErrDepthExceeded is returned when the tree is nested deeper than the configured limit.
	ErrDepthExceeded = errors.New("directory nesting exceeds depth limit")

	// ErrUnsupportedFileType is returned for sockets, devices, named pipes and similar.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrOutsideRoot is returned when a path, once symbolic links are resolved,
	// lies outside BuildOption.Root.
	ErrOutsideRoot = errors.New("path outside of root directory")
)

// FileType represents the file type in the FsNode structure.
type FileType string

const (
	FileTypeFile      FileType = "file"
	FileTypeDirectory FileType = "directory"
)

// FsNode represents a node in the filesystem hierarchy.
type FsNode struct {
	Name    string    `json:"name"`              // File or directory name
	Type    FileType  `json:"type"`              // File type of the node
	Size    int64     `json:"size,omitempty"`    // File size in bytes (only for regular files)
	Path    string    `json:"-"`                 // Location on disk the node was built from
	Entries []*FsNode `json:"entries,omitempty"` // Directory entries (only for directories)
}

// NewDirFsNode creates a new FsNode representing a directory. Entries keep
// the order they are given in.
func NewDirFsNode(name, path string, entryNodes []*FsNode) *FsNode {
	return &FsNode{
		Name:    name,
		Type:    FileTypeDirectory,
		Path:    path,
		Entries: entryNodes,
	}
}

// NewFileFsNode creates a new FsNode representing a regular file.
func NewFileFsNode(name, path string, size int64) *FsNode {
	return &FsNode{
		Name: name,
		Type: FileTypeFile,
		Path: path,
		Size: size,
	}
}

// SortEntries recursively orders directory entries by name.
func (node *FsNode) SortEntries() {
	if node.Type != FileTypeDirectory {
		return
	}

	sort.SliceStable(node.Entries, func(i, j int) bool {
		return node.Entries[i].Name < node.Entries[j].Name
	})

	for _, entry := range node.Entries {
		entry.SortEntries()
	}
}

// Search looks for a file by name in the current directory node's entries.
func (node *FsNode) Search(fileName string) (*FsNode, bool) {
	for _, entry := range node.Entries {
		if entry.Name == fileName {
			return entry, true
		}
	}
	return nil, false
}

// Count returns the number of regular files and directories in the tree,
// the node itself included.
func (node *FsNode) Count() (files, dirs int) {
	node.Traverse(func(n *FsNode, _ string) error {
		if n.Type == FileTypeDirectory {
			dirs++
		} else {
			files++
		}
		return nil
	})
	return files, dirs
}

// Locate finds a sub-node within the FsNode tree based on the given path.
// The path can be a file or directory, and it should be relative to the current node.
func (node *FsNode) Locate(path string) (*FsNode, error) {
	parts := strings.Split(filepath.Clean(path), string(os.PathSeparator))

	var filteredParts []string
	for _, part := range parts {
		if len(part) > 0 {
			filteredParts = append(filteredParts, part)
		}
	}

	return node.locate(filteredParts)
}

func (node *FsNode) locate(parts []string) (*FsNode, error) {
	if len(parts) == 0 || (len(parts) == 1 && parts[0] == ".") {
		return node, nil
	}

	currentPart := parts[0]

	if node.Type != FileTypeDirectory {
		return nil, errors.Errorf("cannot locate '%s': '%s' is not a directory", currentPart, node.Name)
	}

	if entry, found := node.Search(currentPart); found {
		if len(parts) == 1 {
			return entry, nil
		}
		return entry.locate(parts[1:])
	}

	return nil, errors.Errorf("path not found: '%s'", currentPart)
}

// Traverse walks the tree depth-first in entry order and applies actionFunc
// to each node together with its path relative to the parent of the root.
// The walk stops at the first error returned by actionFunc.
func (node *FsNode) Traverse(actionFunc func(node *FsNode, relativePath string) error) error {
	return node.traverse("", actionFunc)
}

func (node *FsNode) traverse(baseDir string, actionFunc func(node *FsNode, relativePath string) error) error {
	relative := filepath.Join(baseDir, node.Name)

	if err := actionFunc(node, relative); err != nil {
		return err
	}

	if node.Type != FileTypeDirectory {
		return nil
	}

	for _, entry := range node.Entries {
		if err := entry.traverse(relative, actionFunc); err != nil {
			return err
		}
	}

	return nil
}

// BuildOption controls how BuildFileTree walks the filesystem.
type BuildOption struct {
	SortEntries bool   // order siblings by name instead of directory enumeration order
	MaxDepth    int    // nesting limit, DefaultMaxDepth if not positive
	Root        string // if set, every node must resolve to a location inside Root
}

// IsWithin reports whether path is root itself or lies below it. Both paths
// are compared lexically and should be absolute and clean.
func IsWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// BuildFileTree recursively builds a file tree for the specified path, which
// may be a regular file or a directory. Symbolic links are followed.
//
// Sibling order is the order the operating system enumerates the directory
// in, which is not guaranteed to be stable across platforms or runs, unless
// SortEntries is set.
func BuildFileTree(path string, opt ...BuildOption) (*FsNode, error) {
	var option BuildOption
	if len(opt) > 0 {
		option = opt[0]
	}
	if option.MaxDepth <= 0 {
		option.MaxDepth = DefaultMaxDepth
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to resolve path %s", path)
	}

	if option.Root != "" {
		if option.Root, err = resolve(option.Root); err != nil {
			return nil, err
		}
	}

	root, err := build(abs, 0, option)
	if err != nil {
		return nil, err
	}

	if option.SortEntries {
		root.SortEntries()
	}

	return root, nil
}

func build(path string, depth int, option BuildOption) (*FsNode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to stat file %s", path)
	}

	if option.Root != "" {
		if err := confine(path, option.Root); err != nil {
			return nil, err
		}
	}

	switch {
	case info.IsDir():
		if depth >= option.MaxDepth {
			return nil, errors.WithMessagef(ErrDepthExceeded, "limit %d reached at %s", option.MaxDepth, path)
		}
		return buildDirectoryNode(path, info, depth, option)
	case info.Mode().IsRegular():
		return NewFileFsNode(info.Name(), path, info.Size()), nil
	default:
		return nil, errors.WithMessagef(ErrUnsupportedFileType, "%s (%s)", path, info.Mode().Type())
	}
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.WithMessagef(err, "failed to resolve path %s", path)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.WithMessagef(err, "failed to resolve links of %s", path)
	}

	return resolved, nil
}

// confine fails unless path, with all symbolic links resolved, is inside root.
func confine(path, root string) error {
	resolved, err := resolve(path)
	if err != nil {
		return err
	}

	if !IsWithin(root, resolved) {
		return errors.WithMessagef(ErrOutsideRoot, "%s resolves to %s", path, resolved)
	}

	return nil
}

// buildDirectoryNode creates an FsNode for a directory, including its contents.
func buildDirectoryNode(path string, info os.FileInfo, depth int, option BuildOption) (*FsNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to open directory %s", path)
	}
	// os.ReadDir sorts by name; reading from the handle keeps enumeration order.
	entries, err := f.ReadDir(-1)
	f.Close()
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read directory %s", path)
	}

	entryNodes := make([]*FsNode, 0, len(entries))
	for _, entry := range entries {
		entryNode, err := build(filepath.Join(path, entry.Name()), depth+1, option)
		if err != nil {
			return nil, err
		}
		entryNodes = append(entryNodes, entryNode)
	}

	return NewDirFsNode(info.Name(), path, entryNodes), nil
}
