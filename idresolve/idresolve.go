// Package idresolve provides an os/user-backed richacl.Resolver, the
// identity-name lookup the text codec needs in place of the original
// library's direct getpwnam/getgrnam/getpwuid/getgrgid calls.
package idresolve

import (
	"os/user"
	"strconv"
)

// OS resolves unix identities against the local system's user and
// group databases via os/user, which itself uses nsswitch-aware cgo
// lookups when available and falls back to parsing /etc/passwd and
// /etc/group otherwise.
type OS struct{}

// New returns an identity resolver backed by the local system.
func New() OS { return OS{} }

func (OS) UserName(uid uint32) (string, bool) {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return "", false
	}
	return u.Username, true
}

func (OS) GroupName(gid uint32) (string, bool) {
	g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
	if err != nil {
		return "", false
	}
	return g.Name, true
}

func (OS) LookupUser(name string) (uint32, bool) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, false
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(uid), true
}

func (OS) LookupGroup(name string) (uint32, bool) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, false
	}
	gid, err := strconv.ParseUint(g.Gid, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(gid), true
}
