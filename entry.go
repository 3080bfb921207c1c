package richacl

// Entry is a single access control entry (richace in the original).
type Entry struct {
	Type  EntryType
	Flags EntryFlags
	Mask  Mask
	Who   Identity
}

// IsAllow reports whether the entry grants access.
func (e *Entry) IsAllow() bool { return e.Type == TypeAllow }

// IsDeny reports whether the entry denies access.
func (e *Entry) IsDeny() bool { return e.Type == TypeDeny }

// IsInheritable reports whether the entry propagates to new children,
// i.e. carries FlagFileInherit or FlagDirectoryInherit.
func (e *Entry) IsInheritable() bool {
	return e.Flags&(FlagFileInherit|FlagDirectoryInherit) != 0
}

// IsInheritOnly reports whether the entry exists only to be inherited
// and grants no access at this node.
func (e *Entry) IsInheritOnly() bool { return e.Flags&FlagInheritOnly != 0 }

// IsInherited reports whether the entry was produced by inheritance
// from a parent directory's ACL.
func (e *Entry) IsInherited() bool { return e.Flags&FlagInherited != 0 }

// IsOwner reports whether the entry is the owner@ special identity.
func (e *Entry) IsOwner() bool {
	w, ok := e.Who.(SpecialWho)
	return ok && w.ID == OwnerSpecialID
}

// IsGroup reports whether the entry is the group@ special identity.
func (e *Entry) IsGroup() bool {
	w, ok := e.Who.(SpecialWho)
	return ok && w.ID == GroupSpecialID
}

// IsEveryone reports whether the entry is the everyone@ special identity.
func (e *Entry) IsEveryone() bool {
	w, ok := e.Who.(SpecialWho)
	return ok && w.ID == EveryoneSpecialID
}

// IsUnixUser reports whether the entry names an ordinary mapped user.
func (e *Entry) IsUnixUser() bool {
	_, ok := e.Who.(UID)
	return ok
}

// IsUnixGroup reports whether the entry names an ordinary mapped group.
func (e *Entry) IsUnixGroup() bool {
	_, ok := e.Who.(GID)
	return ok
}

// clearInheritanceFlags strips the propagation bits from the entry,
// leaving it live only at the node it sits on. It mirrors
// richace_clear_inheritance_flags, which does not touch INHERITED:
// an entry split or copied this way keeps whatever INHERITED marking
// it already carried.
func (e *Entry) clearInheritanceFlags() {
	e.Flags &^= FlagFileInherit | FlagDirectoryInherit | FlagNoPropagateInherit | FlagInheritOnly
}

// IsSameIdentifier reports whether a and b name the same principal,
// independent of type, flags or mask.
func IsSameIdentifier(a, b *Entry) bool {
	switch wa := a.Who.(type) {
	case SpecialWho:
		wb, ok := b.Who.(SpecialWho)
		return ok && wa.ID == wb.ID
	case UID:
		wb, ok := b.Who.(UID)
		return ok && wa == wb
	case GID:
		wb, ok := b.Who.(GID)
		return ok && wa == wb
	case UnmappedWho:
		wb, ok := b.Who.(UnmappedWho)
		return ok && wa.Group == wb.Group && wa.Who == wb.Who
	default:
		return false
	}
}

// copyEntry returns a deep copy of e. Identity values are immutable,
// so no further duplication is required beyond the struct copy itself
// (the C original's richace_copy has to strdup e_who; Go's garbage
// collector and value semantics make that step unnecessary here).
func copyEntry(e *Entry) *Entry {
	cp := *e
	return &cp
}
