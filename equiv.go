package richacl

// modeClass accumulates the permissions a single mode class (owner,
// group, or everyone) has been allowed or denied while scanning an
// acl left to right, the same running state richacl_equiv_mode keeps
// per class.
type modeClass struct {
	allowed Mask
	defined Mask
}

// EquivMode reports whether acl grants exactly the permissions some
// POSIX mode would grant, and if so rewrites the owner/group/other
// bits of *mode to that mode (the high bits of *mode are left alone).
// It fails on anything a plain mode cannot express: unrecognized acl
// or entry flags, an identity other than owner@/group@/everyone@, or
// permissions that don't collapse into three class masks without
// contradiction.
func EquivMode(acl *ACL, mode *Mode) bool {
	x := Mask(0)
	if !mode.IsDir() {
		x = DeleteChild
	}

	owner := modeClass{defined: PosixAlwaysAllowed | PosixOwnerAllowed | x}
	group := modeClass{defined: PosixAlwaysAllowed | x}
	everyone := modeClass{defined: PosixAlwaysAllowed | x}

	if acl.Flags&^(FlagWriteThrough|FlagMasked) != 0 {
		return false
	}

	for i := range acl.Entries {
		e := &acl.Entries[i]
		if e.Flags&^FlagSpecialWho != 0 {
			return false
		}

		switch {
		case e.IsOwner() || e.IsEveryone():
			d := e.Mask &^ owner.defined
			if e.IsAllow() {
				groupDenied := group.defined &^ group.allowed
				if d&groupDenied != 0 {
					return false
				}
				owner.allowed |= d
			} else {
				if d&group.allowed != 0 {
					return false
				}
			}
			owner.defined |= d

			if e.IsEveryone() {
				full := e.Mask
				if e.IsAllow() {
					group.allowed |= full &^ group.defined
					everyone.allowed |= full &^ everyone.defined
				}
				group.defined |= full
				everyone.defined |= full
			}
		case e.IsGroup():
			d := e.Mask &^ group.defined
			if e.IsAllow() {
				group.allowed |= d
			}
			group.defined |= d
		default:
			return false
		}
	}

	if group.allowed&^owner.defined != 0 {
		return false
	}

	if acl.IsMasked() {
		if acl.IsWriteThrough() {
			owner.allowed = acl.OwnerMask
			everyone.allowed = acl.OtherMask
		} else {
			owner.allowed &= acl.OwnerMask
			everyone.allowed &= acl.OtherMask
		}
		group.allowed &= acl.GroupMask
	}

	m := (*mode &^ 0o777) |
		MaskToMode(owner.allowed)<<6 |
		MaskToMode(group.allowed)<<3 |
		MaskToMode(everyone.allowed)

	x = 0
	if !m.IsDir() {
		x = DeleteChild
	}
	if (ModeToMask((m>>6)&0o7)^owner.allowed)&^x != 0 ||
		(ModeToMask((m>>3)&0o7)^group.allowed)&^x != 0 ||
		(ModeToMask(m&0o7)^everyone.allowed)&^x != 0 {
		return false
	}

	*mode = m
	return true
}

// Compare reports whether a and b are structurally identical: same
// flags, same class masks, and entries that match one-for-one in
// type, flags, mask, and identity. Identity comparison goes through
// IsSameIdentifier rather than a raw numeric id, so two acls that
// differ only in an UnmappedWho's string are correctly reported as
// different — binary and text round trips must preserve that string,
// and this is what the round trip is checked against.
func Compare(a, b *ACL) bool {
	if a.Flags != b.Flags || len(a.Entries) != len(b.Entries) {
		return false
	}
	if a.OwnerMask != b.OwnerMask || a.GroupMask != b.GroupMask || a.OtherMask != b.OtherMask {
		return false
	}
	for i := range a.Entries {
		ea, eb := &a.Entries[i], &b.Entries[i]
		if ea.Type != eb.Type || ea.Flags != eb.Flags || ea.Mask != eb.Mask {
			return false
		}
		if !IsSameIdentifier(ea, eb) {
			return false
		}
	}
	return true
}
