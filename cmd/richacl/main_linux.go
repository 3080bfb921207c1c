//go:build linux

package main

import (
	"github.com/richacl/richacl"
	"github.com/richacl/richacl/xattrio"
)

func getACL(path string) (*richacl.ACL, error) {
	acl, err := xattrio.Get(path)
	if err != nil {
		if richacl.NotFound.Is(err) {
			mode, statErr := xattrio.Mode(path)
			if statErr != nil {
				return nil, statErr
			}
			return richacl.FromMode(mode), nil
		}
		return nil, err
	}
	return acl, nil
}

func setACL(path string, acl *richacl.ACL) error {
	return xattrio.Set(path, acl)
}

func removeACL(path string) error {
	return xattrio.Remove(path)
}

func checkAccess(path string, uid uint32, gids []uint32, mask richacl.Mask) (bool, error) {
	acl, err := getACL(path)
	if err != nil {
		return false, err
	}
	ctx, err := xattrio.Context(path)
	if err != nil {
		return false, err
	}
	ctx.UID = uid
	ctx.GIDs = gids
	return richacl.Permission(acl, ctx, mask), nil
}
