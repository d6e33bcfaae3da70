// Package dir models a filesystem subtree and serializes it into a single flat container.
// A file or directory is first walked into an FsNode tree, which is then written as a tagged,
// length-prefixed byte stream:
//
//	MAGIC        : 0xB1 0x0B 0xFE 0x57
//	ROOT-ENTRY   : BLOB-ENTRY | GROUP-ENTRY
//	GROUP-ENTRY  : 0x01 NAME ENTRY* 0x00
//	BLOB-ENTRY   : 0x02 LEN(4 bytes, big-endian) BYTES(LEN)
//	NAME         : LEN(1 byte) UTF8-BYTES(LEN)
//	ENTRY        : BLOB-ENTRY | GROUP-ENTRY
//
// Only directories carry a name; files are stored as bare blobs. Siblings appear in the order the
// operating system enumerates them unless the tree was built with sorted entries, so the same
// input may produce different bytes on different platforms.
//
// The container holds no permissions, timestamps or index, and nothing is compressed.
package dir
