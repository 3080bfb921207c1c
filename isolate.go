package richacl

import "github.com/richacl/richacl/internal/alloc"

// changeMask sets the effective mask of the entry at index i to mask,
// splitting an inheritable entry into a template (inherit-only) half
// and an effective half when necessary, or dropping the entry entirely
// when mask collapses to nothing worth keeping. It returns the index
// the caller's forward iteration should continue from, mirroring the
// pointer adjustment richace_change_mask performs in the C original.
func changeMask(l *alloc.List[Entry], i int, mask Mask) int {
	switch {
	case mask != 0 && l.Items[i].Mask == mask:
		l.Items[i].Flags &^= FlagInheritOnly
		return i
	case mask&^PosixAlwaysAllowed != 0:
		if l.Items[i].IsInheritable() {
			l.InsertBefore(i)
			l.Items[i] = l.Items[i+1]
			l.Items[i].Flags |= FlagInheritOnly
			i++
			l.Items[i].clearInheritanceFlags()
		}
		l.Items[i].Mask = mask
		return i
	default:
		if l.Items[i].IsInheritable() {
			l.Items[i].Flags |= FlagInheritOnly
			return i
		}
		return l.Delete(i)
	}
}

// moveEveryoneAcesDown moves every everyone@ entry to the bottom of the
// acl, folding its contribution into the masks of the entries it
// passes over, so that at most one everyone@ allow entry remains, at
// the end. This does not change what the acl grants; it only
// simplifies the entries that follow.
func moveEveryoneAcesDown(l *alloc.List[Entry]) {
	var allowed, denied Mask

	for i := 0; i < l.Len(); i++ {
		e := l.Items[i]
		if e.IsInheritOnly() {
			continue
		}
		if e.IsEveryone() {
			switch {
			case e.IsAllow():
				allowed |= e.Mask &^ denied
			case e.IsDeny():
				denied |= e.Mask &^ allowed
			default:
				continue
			}
			i = changeMask(l, i, 0)
		} else if e.IsAllow() {
			i = changeMask(l, i, allowed|(e.Mask&^denied))
		} else if e.IsDeny() {
			i = changeMask(l, i, denied|(e.Mask&^allowed))
		}
	}

	if allowed&^PosixAlwaysAllowed == 0 {
		return
	}
	if n := l.Len(); n > 0 {
		last := &l.Items[n-1]
		if last.IsEveryone() && last.IsAllow() && last.IsInheritOnly() && last.Mask == allowed {
			last.Flags &^= FlagInheritOnly
			return
		}
	}
	i := l.Append()
	l.Items[i] = Entry{Type: TypeAllow, Who: SpecialEveryone(), Mask: allowed}
}

// propagateEveryoneFor propagates allow permissions from the trailing
// everyone@ allow entry up to who, widening an existing allow entry
// for who if one is reachable without crossing an intervening deny,
// or inserting a fresh one just before the trailing everyone@ entry.
func propagateEveryoneFor(l *alloc.List[Entry], otherMask Mask, who Entry, allow Mask) {
	allowLast := -1
	n := l.Len()

	for i := 0; i < n; i++ {
		e := l.Items[i]
		if e.IsInheritOnly() {
			continue
		}
		if e.IsAllow() {
			if IsSameIdentifier(&e, &who) {
				allow &^= e.Mask
				allowLast = i
			}
		} else if e.IsDeny() {
			if IsSameIdentifier(&e, &who) {
				allow &^= e.Mask
			} else if allow&e.Mask != 0 {
				allowLast = -1
			}
		}
	}

	if n > 0 {
		last := l.Items[n-1]
		if !who.IsOwner() && last.IsEveryone() && allow&^(last.Mask&otherMask) == 0 {
			allow = 0
		}
	}

	if allow == 0 {
		return
	}
	if allowLast != -1 {
		changeMask(l, allowLast, l.Items[allowLast].Mask|allow)
		return
	}

	pos := l.Len() - 1
	l.InsertBefore(pos)
	cp := who
	cp.Type = TypeAllow
	cp.clearInheritanceFlags()
	cp.Mask = allow
	l.Items[pos] = cp
}

// propagateEveryone ensures group@ and every other identity named in
// the acl keep the permissions the trailing everyone@ allow entry
// grants them today, before that entry gets narrowed to the other
// mask and before isolateGroupClass denies the group class down to
// the group mask.
func propagateEveryone(l *alloc.List[Entry], acl *ACL) {
	n := l.Len()
	if n == 0 {
		return
	}
	last := l.Items[n-1]
	if last.IsInheritOnly() || !last.IsEveryone() {
		return
	}

	ownerAllow := last.Mask & acl.OwnerMask
	groupAllow := last.Mask & acl.GroupMask

	if ownerAllow&^(acl.GroupMask&acl.OtherMask) != 0 {
		propagateEveryoneFor(l, acl.OtherMask, Entry{Who: SpecialOwner()}, ownerAllow)
	}

	if groupAllow&^acl.OtherMask != 0 {
		propagateEveryoneFor(l, acl.OtherMask, Entry{Who: SpecialGroup()}, groupAllow)

		for n := l.Len() - 2; n >= 0; n-- {
			e := l.Items[n]
			if e.IsInheritOnly() || e.IsOwner() || e.IsGroup() {
				continue
			}
			propagateEveryoneFor(l, acl.OtherMask, e, groupAllow)
		}
	}
}

// applyMasksPass narrows every allow entry's mask to the file mask of
// the class it belongs to: the owner mask for owner@ and for a
// unix-user entry matching the file's owner, the other mask for
// everyone@, and the group mask for everything else.
func applyMasksPass(l *alloc.List[Entry], acl *ACL, owner uint32) {
	for i := 0; i < l.Len(); i++ {
		e := l.Items[i]
		if e.IsInheritOnly() || !e.IsAllow() {
			continue
		}
		var mask Mask
		switch {
		case e.IsOwner() || (e.IsUnixUser() && uint32(e.Who.(UID)) == owner):
			mask = acl.OwnerMask
		case e.IsEveryone():
			mask = acl.OtherMask
		default:
			mask = acl.GroupMask
		}
		i = changeMask(l, i, e.Mask&mask)
	}
}

// maxAllowed computes the maximum mask anybody could end up being
// allowed, scanning from the end so a trailing everyone@ deny can
// retract permissions an earlier allow granted.
func maxAllowed(l *alloc.List[Entry]) Mask {
	var allowed Mask
	for i := l.Len() - 1; i >= 0; i-- {
		e := l.Items[i]
		if e.IsInheritOnly() {
			continue
		}
		if e.IsAllow() {
			allowed |= e.Mask
		} else if e.IsDeny() && e.IsEveryone() {
			allowed &^= e.Mask
		}
	}
	return allowed
}

// isolateOwnerClass makes sure owner@ is granted no more than the
// owner mask, widening a leading owner@ deny entry or inserting one.
func isolateOwnerClass(l *alloc.List[Entry], acl *ACL) {
	deny := maxAllowed(l) &^ acl.OwnerMask
	if deny == 0 {
		return
	}

	for i := 0; i < l.Len(); i++ {
		e := l.Items[i]
		if e.IsInheritOnly() {
			continue
		}
		if e.IsAllow() {
			break
		}
		if e.IsOwner() {
			changeMask(l, i, e.Mask|deny)
			return
		}
	}

	l.InsertBefore(0)
	l.Items[0] = Entry{Type: TypeDeny, Who: SpecialOwner(), Mask: deny}
}

// isolateWho denies who the permissions in deny that it would
// otherwise receive from the trailing everyone@ allow entry, widening
// a reachable deny entry for who or inserting one just before the
// trailing entry.
func isolateWho(l *alloc.List[Entry], who Entry, deny Mask) {
	for i := 0; i < l.Len(); i++ {
		e := l.Items[i]
		if e.IsInheritOnly() {
			continue
		}
		if IsSameIdentifier(&e, &who) && e.IsDeny() {
			deny &^= e.Mask
		}
	}
	if deny == 0 {
		return
	}

	for n := l.Len() - 2; n >= 0; n-- {
		e := l.Items[n]
		if e.IsInheritOnly() {
			continue
		}
		if e.IsDeny() {
			if IsSameIdentifier(&e, &who) {
				changeMask(l, n, e.Mask|deny)
				return
			}
		} else if e.IsAllow() && e.Mask&deny != 0 {
			break
		}
	}

	pos := l.Len() - 1
	l.InsertBefore(pos)
	cp := who
	cp.Type = TypeDeny
	cp.clearInheritanceFlags()
	cp.Mask = deny
	l.Items[pos] = cp
}

// isolateGroupClass makes sure every group-class identity (everything
// but owner@ and everyone@) is granted no more than the group mask,
// by denying each of them whatever the trailing everyone@ allow entry
// grants beyond the group mask.
func isolateGroupClass(l *alloc.List[Entry], acl *ACL) {
	n := l.Len()
	if n == 0 {
		return
	}
	last := l.Items[n-1]
	if last.IsInheritOnly() || !last.IsEveryone() {
		return
	}
	deny := last.Mask &^ acl.GroupMask
	if deny == 0 {
		return
	}

	isolateWho(l, Entry{Who: SpecialGroup()}, deny)

	for n := l.Len() - 2; n >= 0; n-- {
		e := l.Items[n]
		if e.IsInheritOnly() || e.IsOwner() || e.IsGroup() {
			continue
		}
		isolateWho(l, e, deny)
	}
}

// setOwnerPermissions guarantees the owner actually receives the
// owner mask even in the presence of earlier deny entries, provided
// the acl is both masked and write-through.
func setOwnerPermissions(l *alloc.List[Entry], acl *ACL) {
	if acl.Flags&(FlagWriteThrough|FlagMasked) != FlagWriteThrough|FlagMasked {
		return
	}

	ownerMask := acl.OwnerMask &^ PosixAlwaysAllowed
	var denied Mask

	for i := 0; i < l.Len(); i++ {
		e := l.Items[i]
		if e.IsOwner() {
			if e.IsAllow() && ownerMask&denied == 0 {
				i = changeMask(l, i, ownerMask)
				ownerMask = 0
			} else {
				i = changeMask(l, i, 0)
			}
		} else if e.IsDeny() {
			denied |= e.Mask
		}
	}

	if ownerMask&(denied|^acl.OtherMask|^acl.GroupMask) != 0 {
		l.InsertBefore(0)
		l.Items[0] = Entry{Type: TypeAllow, Who: SpecialOwner(), Mask: ownerMask}
	}
}

// setOtherPermissions widens the trailing everyone@ allow entry to
// the other mask, or appends one, provided the acl is both masked and
// write-through and the other mask grants more than always-allowed
// permissions.
func setOtherPermissions(l *alloc.List[Entry], acl *ACL) {
	otherMask := acl.OtherMask &^ PosixAlwaysAllowed
	if otherMask == 0 || acl.Flags&(FlagWriteThrough|FlagMasked) != FlagWriteThrough|FlagMasked {
		return
	}

	n := l.Len()
	if n == 0 {
		pos := l.Append()
		l.Items[pos] = Entry{Type: TypeAllow, Who: SpecialEveryone(), Mask: otherMask}
		return
	}
	last := l.Items[n-1]
	if !last.IsEveryone() || last.IsInheritOnly() {
		pos := l.Append()
		l.Items[pos] = Entry{Type: TypeAllow, Who: SpecialEveryone(), Mask: otherMask}
		return
	}
	changeMask(l, n-1, otherMask)
}

// ApplyMasks rewrites acl in place so that no entry grants a
// permission outside the acl's three class masks, then clears
// MASKED and WRITE_THROUGH. owner is the uid of the file the acl
// belongs to, needed to recognize a unix-user entry that names the
// owner.
//
// The rewrite runs seven ordered passes over the entries, sharing a
// capacity-tracked list so repeated delete/insert pairs don't
// reallocate on every step: move everyone@ to the end, propagate its
// permissions up to identities that would otherwise lose them, narrow
// every entry to its class mask, then patch the owner and other
// classes back up to their exact masks (write-through only), and
// finally deny the owner and group classes down to their masks.
//
// If acl is not MASKED, ApplyMasks does nothing.
func ApplyMasks(acl *ACL, owner uint32) {
	if !acl.IsMasked() {
		return
	}

	l := alloc.NewList(acl.Entries)

	moveEveryoneAcesDown(l)
	propagateEveryone(l, acl)
	applyMasksPass(l, acl, owner)
	setOwnerPermissions(l, acl)
	setOtherPermissions(l, acl)
	isolateOwnerClass(l, acl)
	isolateGroupClass(l, acl)

	acl.Entries = l.Items
	acl.Flags &^= FlagWriteThrough | FlagMasked
}
