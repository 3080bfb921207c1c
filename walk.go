package richacl

// WalkFS is the small filesystem seam auto-inherit propagation walks
// over. The spec marks the directory walk itself as trivial and out
// of scope for the core; this interface is the concrete shape that
// lets the walk be unit tested against an in-memory fake rather than
// a real filesystem, the same injection pattern §9 asks for with the
// text codec's name-resolution callbacks.
type WalkFS interface {
	// ReadDir returns the immediate children of path, with whether
	// each child is itself a directory.
	ReadDir(path string) ([]DirEntry, error)
	// GetACL returns the acl stored at path, or nil if none is set.
	GetACL(path string) (*ACL, error)
	// SetACL replaces the acl stored at path.
	SetACL(path string, acl *ACL) error
}

// DirEntry names one child of a directory being walked.
type DirEntry struct {
	Path  string
	IsDir bool
}

// Walk re-propagates inherited entries through the subtree rooted at
// root, given the already-updated acl of root's parent. It recomputes
// root's own inherited block via AutoInherit (root is always visited:
// its acl just changed), then updates every child that is not
// PROTECTED with the inheritable acl computed from root's
// just-updated acl, and recurses into those children that are
// directories. PROTECTED children are left alone — by definition,
// they opt out of having their inherited entries refreshed by an
// ancestor's change — and the walk does not descend into them.
func Walk(fs WalkFS, root string, parent *ACL) error {
	acl, err := fs.GetACL(root)
	if err != nil {
		return err
	}
	if acl == nil {
		acl = New(0)
	}

	inherited := Inherit(parent, true)
	updated := AutoInherit(acl, inherited)
	if err := fs.SetACL(root, updated); err != nil {
		return err
	}

	children, err := fs.ReadDir(root)
	if err != nil {
		return err
	}
	for _, child := range children {
		childACL, err := fs.GetACL(child.Path)
		if err != nil {
			return err
		}
		if childACL != nil && childACL.IsProtected() {
			continue
		}

		childInherited := Inherit(updated, child.IsDir)
		var newACL *ACL
		if childACL != nil {
			newACL = AutoInherit(childACL, childInherited)
		} else {
			newACL = childInherited
		}
		if err := fs.SetACL(child.Path, newACL); err != nil {
			return err
		}

		if child.IsDir {
			if err := Walk(fs, child.Path, updated); err != nil {
				return err
			}
		}
	}
	return nil
}
