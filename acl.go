package richacl

// ACL is a Rich Access Control List: an ordered list of entries plus
// the three class masks and the flags that govern how they interact
// with a POSIX file mode.
type ACL struct {
	Flags      ACLFlags
	OwnerMask  Mask
	GroupMask  Mask
	OtherMask  Mask
	Entries    []Entry
}

// New returns an empty ACL with capacity for n entries preallocated.
func New(n int) *ACL {
	return &ACL{Entries: make([]Entry, 0, n)}
}

// Clone returns a deep copy of acl. Entry identities are immutable
// values, so copying the Entries slice is sufficient; the C original's
// string-table duplication (and its partial-failure cleanup path) has
// no equivalent here because Go entries never alias a shared buffer.
func (acl *ACL) Clone() *ACL {
	if acl == nil {
		return nil
	}
	cp := &ACL{
		Flags:     acl.Flags,
		OwnerMask: acl.OwnerMask,
		GroupMask: acl.GroupMask,
		OtherMask: acl.OtherMask,
		Entries:   make([]Entry, len(acl.Entries)),
	}
	copy(cp.Entries, acl.Entries)
	return cp
}

// IsAutoInherit reports whether the acl propagates automatically to
// new children rather than requiring an explicit inheritance pass.
func (acl *ACL) IsAutoInherit() bool { return acl.Flags&FlagAutoInherit != 0 }

// IsProtected reports whether the acl refuses to be overwritten by an
// ancestor's auto-inheritance pass.
func (acl *ACL) IsProtected() bool { return acl.Flags&FlagProtected != 0 }

// IsMasked reports whether the three class masks constrain the
// effective permissions granted by the entries.
func (acl *ACL) IsMasked() bool { return acl.Flags&FlagMasked != 0 }

// IsWriteThrough reports whether the class masks replace, rather than
// merely bound, the computed class permissions.
func (acl *ACL) IsWriteThrough() bool { return acl.Flags&FlagWriteThrough != 0 }
