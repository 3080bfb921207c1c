// Package xattrio is the filesystem collaborator richacl's CLI and
// Walk driver use to read, write, and remove the system.richacl
// xattr, and to build the evaluation Context a path's ownership and
// the caller's credentials require.
package xattrio

import (
	"errors"
	"syscall"

	"github.com/pkg/xattr"
	"golang.org/x/sys/unix"

	"github.com/richacl/richacl"
)

// AttrName is the xattr key richacl values are stored under, matching
// the kernel's system.richacl namespace.
const AttrName = "system.richacl"

// Get reads and decodes the richacl xattr on path. It reports
// richacl.NotFound (via richacl.Kind.Is) when the attribute is absent
// or the filesystem does not support xattrs at all, mirroring
// richacl_get_file's fallback-to-mode behavior at the call site.
func Get(path string) (*richacl.ACL, error) {
	data, err := xattr.Get(path, AttrName)
	if err != nil {
		if isNotFound(err) {
			return nil, &richacl.Error{Kind: richacl.NotFound, Msg: path, Err: err}
		}
		return nil, err
	}
	return richacl.FromXattr(data)
}

// Set encodes acl and writes it to path's richacl xattr.
func Set(path string, acl *richacl.ACL) error {
	data, err := richacl.ToXattr(acl)
	if err != nil {
		return err
	}
	return xattr.Set(path, AttrName, data)
}

// Remove deletes path's richacl xattr, if any.
func Remove(path string) error {
	err := xattr.Remove(path, AttrName)
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

func isNotFound(err error) bool {
	var xerr *xattr.Error
	if errors.As(err, &xerr) {
		err = xerr.Err
	}
	return errors.Is(err, syscall.ENODATA) ||
		errors.Is(err, syscall.ENOTSUP) ||
		errors.Is(err, syscall.ENOSYS) ||
		errors.Is(err, syscall.ENOENT)
}

// Context builds the evaluation context for the calling process
// against the file at path: its owning uid/gid from stat(2), and the
// caller's own uid and supplementary gids.
func Context(path string) (richacl.Context, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return richacl.Context{}, err
	}

	gids, err := unix.Getgroups()
	if err != nil {
		return richacl.Context{}, err
	}
	u32 := make([]uint32, len(gids))
	for i, g := range gids {
		u32[i] = uint32(g)
	}

	return richacl.Context{
		UID:         uint32(unix.Getuid()),
		GIDs:        u32,
		Owner:       st.Uid,
		OwningGroup: st.Gid,
	}, nil
}

// Mode returns path's current POSIX mode, file-type bits included.
func Mode(path string) (richacl.Mode, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, err
	}
	return richacl.Mode(st.Mode), nil
}
