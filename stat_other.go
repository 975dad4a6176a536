//go:build !unix

package main

import "io/fs"

// Without a device/inode pair duplicate suppression degrades to the
// path-level uniqueness the single traversal already guarantees.
func fileID(info fs.FileInfo) (devIno, bool) {
	return devIno{}, false
}
