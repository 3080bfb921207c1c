//go:build !linux

package main

import (
	"errors"

	"github.com/richacl/richacl"
)

var errUnsupported = errors.New("richacl xattrs are only supported on linux")

func getACL(path string) (*richacl.ACL, error) {
	return nil, errUnsupported
}

func setACL(path string, acl *richacl.ACL) error {
	return errUnsupported
}

func removeACL(path string) error {
	return errUnsupported
}

func checkAccess(path string, uid uint32, gids []uint32, mask richacl.Mask) (bool, error) {
	return false, errUnsupported
}
