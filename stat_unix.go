//go:build unix

package main

import (
	"io/fs"
	"syscall"
)

// fileID extracts the (device, inode) identity of a stat result. ok is false
// when the platform stat carries no such identity.
func fileID(info fs.FileInfo) (devIno, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return devIno{}, false
	}
	return devIno{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}
