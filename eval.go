package richacl

// Context identifies the caller and file ownership needed to evaluate
// an ACL: the requesting principal's uid and supplementary gids, and
// the file's owning uid/gid.
type Context struct {
	UID         uint32
	GIDs        []uint32
	Owner       uint32
	OwningGroup uint32
}

func inGroups(id uint32, gids []uint32) bool {
	for _, g := range gids {
		if g == id {
			return true
		}
	}
	return false
}

// Permission reports whether ctx's principal is granted every bit set
// in requested. It mirrors richacl_permission's single forward pass.
func Permission(acl *ACL, ctx Context, requested Mask) bool {
	if acl.IsMasked() && acl.IsWriteThrough() && ctx.UID == ctx.Owner {
		return requested&^acl.OwnerMask == 0
	}

	mask := requested
	inOwningGroup := inGroups(ctx.OwningGroup, ctx.GIDs)
	inOwnerOrGroupClass := inOwningGroup
	if !acl.IsMasked() {
		inOwnerOrGroupClass = true
	}

	for i := range acl.Entries {
		e := &acl.Entries[i]
		if e.IsInheritOnly() {
			continue
		}

		aceMask := e.Mask
		switch {
		case e.IsOwner():
			if ctx.UID != ctx.Owner {
				continue
			}
			inOwnerOrGroupClass = true
		case e.IsGroup():
			if !inOwningGroup {
				continue
			}
			if acl.IsMasked() && e.IsAllow() {
				aceMask &= acl.GroupMask
			}
			inOwnerOrGroupClass = true
		case e.IsUnixUser():
			if ctx.UID != uint32(e.Who.(UID)) {
				continue
			}
			// A unix-user entry naming the file owner follows the same
			// path as owner@; any other one is narrowed by the group
			// mask like group@.
			if ctx.UID != ctx.Owner && acl.IsMasked() && e.IsAllow() {
				aceMask &= acl.GroupMask
			}
			inOwnerOrGroupClass = true
		case e.IsUnixGroup():
			if !inGroups(uint32(e.Who.(GID)), ctx.GIDs) {
				continue
			}
			if acl.IsMasked() && e.IsAllow() {
				aceMask &= acl.GroupMask
			}
			inOwnerOrGroupClass = true
		case e.IsEveryone():
			// everyone@ is never narrowed by the group mask and never
			// marks the caller as owner/group class on its own.
		default:
			continue
		}

		if e.IsDeny() && aceMask&mask != 0 {
			return false
		}
		mask &^= aceMask

		if mask == 0 && inOwnerOrGroupClass {
			break
		}
	}

	if acl.IsMasked() {
		switch {
		case ctx.UID == ctx.Owner:
			if requested&^acl.OwnerMask != 0 {
				return false
			}
		case inOwnerOrGroupClass:
			if requested&^acl.GroupMask != 0 {
				return false
			}
		case acl.IsWriteThrough():
			return requested&^acl.OtherMask == 0
		default:
			if requested&^acl.OtherMask != 0 {
				return false
			}
		}
	}

	return mask == 0
}

// Access returns the maximum mask ctx's principal is allowed, as
// richacl_access computes it. isDir controls whether DeleteChild is
// meaningful in the result.
func Access(acl *ACL, ctx Context, isDir bool) Mask {
	if acl.IsMasked() && acl.IsWriteThrough() && ctx.UID == ctx.Owner {
		allowed := acl.OwnerMask
		if !isDir {
			allowed &^= DeleteChild
		}
		return allowed
	}

	var allowed Mask
	mask := Mask(ValidMask)
	inOwningGroup := inGroups(ctx.OwningGroup, ctx.GIDs)
	inOwnerOrGroupClass := inOwningGroup
	if !acl.IsMasked() {
		inOwnerOrGroupClass = true
	}

	for i := range acl.Entries {
		e := &acl.Entries[i]
		if e.IsInheritOnly() {
			continue
		}

		aceMask := e.Mask
		switch {
		case e.IsOwner():
			if ctx.UID != ctx.Owner {
				continue
			}
			inOwnerOrGroupClass = true
		case e.IsGroup():
			if !inOwningGroup {
				continue
			}
			if acl.IsMasked() && e.IsAllow() {
				aceMask &= acl.GroupMask
			}
			inOwnerOrGroupClass = true
		case e.IsUnixUser():
			if ctx.UID != uint32(e.Who.(UID)) {
				continue
			}
			// A unix-user entry naming the file owner follows the same
			// path as owner@; any other one is narrowed by the group
			// mask like group@.
			if ctx.UID != ctx.Owner && acl.IsMasked() && e.IsAllow() {
				aceMask &= acl.GroupMask
			}
			inOwnerOrGroupClass = true
		case e.IsUnixGroup():
			if !inGroups(uint32(e.Who.(GID)), ctx.GIDs) {
				continue
			}
			if acl.IsMasked() && e.IsAllow() {
				aceMask &= acl.GroupMask
			}
			inOwnerOrGroupClass = true
		case e.IsEveryone():
			// never narrowed by the group mask, never sets
			// inOwnerOrGroupClass on its own.
		default:
			continue
		}

		if e.IsAllow() {
			allowed |= aceMask & mask
		}
		mask &^= aceMask

		if mask == 0 && inOwnerOrGroupClass {
			break
		}
	}

	if acl.IsMasked() {
		switch {
		case ctx.UID == ctx.Owner:
			allowed &= acl.OwnerMask
		case inOwnerOrGroupClass:
			allowed &= acl.GroupMask
		case acl.IsWriteThrough():
			allowed = acl.OtherMask
		default:
			allowed &= acl.OtherMask
		}
	}

	if !isDir {
		allowed &^= DeleteChild
	}
	return allowed
}
