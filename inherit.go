package richacl

import "github.com/richacl/richacl/internal/alloc"

// aceInheritsToDirectory reports whether a directory's entry should be
// copied into a child directory's inherited acl: either it carries
// DIR_INHERIT, or it carries FILE_INHERIT without
// NO_PROPAGATE_INHERIT (in which case it survives as a template for
// the child directory's own descendants).
func aceInheritsToDirectory(e *Entry) bool {
	if e.Flags&FlagDirectoryInherit != 0 {
		return true
	}
	return e.Flags&FlagFileInherit != 0 && e.Flags&FlagNoPropagateInherit == 0
}

// Inherit computes the acl a new child should start with, given the
// acl of the directory it is being created in. isDir selects whether
// the child is itself a directory.
//
// For a directory child, every entry that inherits to a directory is
// copied; NO_PROPAGATE_INHERIT entries lose all inheritance flags
// (they become purely effective at the child), entries with
// DIR_INHERIT remain effective there too, and FILE_INHERIT-only
// entries become INHERIT_ONLY templates. For a non-directory child,
// only FILE_INHERIT entries are copied, with every inheritance flag
// cleared and DELETE_CHILD stripped (it is meaningless on a file).
//
// If the parent is AUTO_INHERIT, the child inherits that flag and
// every copied entry is marked INHERITED.
func Inherit(dirACL *ACL, isDir bool) *ACL {
	acl := New(0)

	if isDir {
		for i := range dirACL.Entries {
			dirAce := &dirACL.Entries[i]
			if !aceInheritsToDirectory(dirAce) {
				continue
			}
			ace := *dirAce
			switch {
			case ace.Flags&FlagNoPropagateInherit != 0:
				ace.Flags &^= InheritanceFlags
			case ace.Flags&FlagDirectoryInherit != 0:
				ace.Flags &^= FlagInheritOnly
			default:
				ace.Flags |= FlagInheritOnly
			}
			acl.Entries = append(acl.Entries, ace)
		}
	} else {
		for i := range dirACL.Entries {
			dirAce := &dirACL.Entries[i]
			if dirAce.Flags&FlagFileInherit == 0 {
				continue
			}
			ace := *dirAce
			ace.clearInheritanceFlags()
			ace.Mask &^= DeleteChild
			acl.Entries = append(acl.Entries, ace)
		}
	}

	if dirACL.IsAutoInherit() {
		acl.Flags |= FlagAutoInherit
		for i := range acl.Entries {
			acl.Entries[i].Flags |= FlagInherited
		}
	} else {
		for i := range acl.Entries {
			acl.Entries[i].Flags &^= FlagInherited
		}
	}

	return acl
}

// UmaskFunc returns the caller's current umask, used to fold it into
// the create mode when a directory's acl has nothing inheritable.
type UmaskFunc func() Mode

// InheritInode computes the acl (if any) and adjusts the mode a new
// inode should be created with, given the directory it is being
// created in.
//
// If the directory's acl has nothing inheritable to this kind of
// child (Inherit returns no entries), no acl is produced and mode is
// reduced by the umask, exactly as plain POSIX inode creation would.
//
// Otherwise, if the inherited acl happens to be equivalent to some
// mode (EquivMode succeeds), that mode is folded into *mode and again
// no acl is produced — the inherited permissions are fully expressed
// by the mode bits alone. Otherwise the inherited acl is kept: it is
// marked MASKED (and PROTECTED, if it is also AUTO_INHERIT, since the
// implicit chmod that follows inode creation must not itself be
// undone by a later auto-inherit pass) and its class masks are
// narrowed to what the create mode allows.
func InheritInode(dirACL *ACL, mode *Mode, umask UmaskFunc) *ACL {
	acl := Inherit(dirACL, mode.IsDir())

	if len(acl.Entries) == 0 {
		*mode &^= umask()
		return nil
	}

	m := *mode
	if EquivMode(acl, &m) {
		*mode &= m
		return nil
	}

	if acl.IsAutoInherit() {
		acl.Flags |= FlagProtected
	}
	ComputeMaxMasks(acl)
	acl.Flags |= FlagMasked
	acl.OwnerMask &= ModeToMask((*mode >> 6) & 0o7)
	acl.GroupMask &= ModeToMask((*mode >> 3) & 0o7)
	acl.OtherMask &= ModeToMask(*mode & 0o7)
	return acl
}

// AutoInherit recomputes a child's inherited entries from a fresh
// inheritance pass over an ancestor's acl: every entry the child
// holds with INHERITED is dropped, and a deep copy of each entry in
// inherited (already computed via Inherit against the ancestor) is
// appended and marked INHERITED in turn. The child's own,
// non-inherited entries are left untouched and keep their original
// position relative to each other, but end up ahead of the refreshed
// inherited block.
//
// The walk that applies this to every descendant of a changed
// directory, skipping PROTECTED children, lives in Walk.
func AutoInherit(child, inherited *ACL) *ACL {
	acl := child.Clone()
	l := alloc.NewList(acl.Entries)

	for i := 0; i < l.Len(); i++ {
		if l.Items[i].IsInherited() {
			i = l.Delete(i)
		}
	}

	for _, ace := range inherited.Entries {
		pos := l.Append()
		cp := ace
		cp.Flags |= FlagInherited
		l.Items[pos] = cp
	}

	acl.Entries = l.Items
	return acl
}
