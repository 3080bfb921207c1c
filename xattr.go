package richacl

import "encoding/binary"

const (
	xattrVersion = 0

	// xattrHeaderSize is the on-disk size of the richacl_xattr header:
	// a_version, a_flags, a_count, a_owner_mask, a_group_mask, a_other_mask.
	xattrHeaderSize = 1 + 1 + 2 + 4 + 4 + 4

	// xattrEntrySize is the on-disk size of one richace_xattr record:
	// e_type, e_flags, e_mask, e_id.
	xattrEntrySize = 2 + 2 + 4 + 4

	// xattrSizeMax mirrors XATTR_SIZE_MAX, the kernel's per-value xattr
	// size ceiling.
	xattrSizeMax = 65536
)

// MaxXattrCount is the largest number of entries ToXattr can encode
// without the string table, mirroring RICHACL_XATTR_MAX_COUNT.
const MaxXattrCount = (xattrSizeMax - xattrHeaderSize) / xattrEntrySize

// XattrSize returns the exact number of bytes ToXattr would produce
// for acl: the fixed header, one fixed-size record per entry, and one
// NUL-terminated string per UnmappedWho entry.
func XattrSize(acl *ACL) int {
	size := xattrHeaderSize + len(acl.Entries)*xattrEntrySize
	for i := range acl.Entries {
		if w, ok := acl.Entries[i].Who.(UnmappedWho); ok {
			size += len(w.Who) + 1
		}
	}
	return size
}

// ToXattr encodes acl into the wire format stored in the
// system.richacl xattr: a fixed header, one fixed-size record per
// entry (special/unix identities carried as e_id, with e_flags
// recording which kind of who each record holds), followed by a
// packed table of NUL-terminated strings, one per UnmappedWho entry,
// in entry order.
func ToXattr(acl *ACL) ([]byte, error) {
	if len(acl.Entries) > MaxXattrCount {
		return nil, newError(CapacityExceeded, "too many entries for a single xattr value")
	}

	buf := make([]byte, XattrSize(acl))

	buf[0] = xattrVersion
	buf[1] = byte(acl.Flags)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(acl.Entries)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(acl.OwnerMask))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(acl.GroupMask))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(acl.OtherMask))

	off := xattrHeaderSize
	strOff := xattrHeaderSize + len(acl.Entries)*xattrEntrySize
	for i := range acl.Entries {
		e := &acl.Entries[i]
		flags := e.Flags
		var id uint32

		switch who := e.Who.(type) {
		case SpecialWho:
			flags |= FlagSpecialWho
			id = uint32(who.ID)
		case UID:
			id = uint32(who)
		case GID:
			flags |= FlagIdentifierGroup
			id = uint32(who)
		case UnmappedWho:
			flags |= FlagUnmappedWho
			if who.Group {
				flags |= FlagIdentifierGroup
			}
			n := copy(buf[strOff:], who.Who)
			buf[strOff+n] = 0
			strOff += n + 1
		}

		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(e.Type))
		binary.LittleEndian.PutUint16(buf[off+2:off+4], uint16(flags))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(e.Mask))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], id)
		off += xattrEntrySize
	}

	return buf, nil
}

// FromXattr decodes the wire format ToXattr produces. It validates
// the header, entry count, and buffer length before trusting any of
// it, and requires the input to be consumed exactly: trailing or
// missing bytes in the string table are an error, matching the strict
// richacl_from_xattr kernel behavior this mirrors.
func FromXattr(data []byte) (*ACL, error) {
	if len(data) < xattrHeaderSize {
		return nil, newError(InvalidInput, "xattr value shorter than header")
	}
	if data[0] != xattrVersion {
		return nil, newError(InvalidInput, "unsupported richacl xattr version")
	}
	flags := ACLFlags(data[1])
	if flags&^ValidACLFlags != 0 {
		return nil, newError(InvalidInput, "unknown acl flag bits")
	}
	count := int(binary.LittleEndian.Uint16(data[2:4]))
	if count > MaxXattrCount {
		return nil, newError(CapacityExceeded, "entry count exceeds MaxXattrCount")
	}

	recordsEnd := xattrHeaderSize + count*xattrEntrySize
	if len(data) < recordsEnd {
		return nil, newError(InvalidInput, "xattr value too short for entry count")
	}

	acl := New(count)
	acl.Entries = acl.Entries[:count]
	acl.Flags = flags
	acl.OwnerMask = Mask(binary.LittleEndian.Uint32(data[4:8]))
	acl.GroupMask = Mask(binary.LittleEndian.Uint32(data[8:12]))
	acl.OtherMask = Mask(binary.LittleEndian.Uint32(data[12:16]))

	strs := data[recordsEnd:]
	strOff := 0

	off := xattrHeaderSize
	for i := 0; i < count; i++ {
		typ := EntryType(binary.LittleEndian.Uint16(data[off : off+2]))
		eflags := EntryFlags(binary.LittleEndian.Uint16(data[off+2 : off+4]))
		mask := Mask(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		id := binary.LittleEndian.Uint32(data[off+8 : off+12])
		off += xattrEntrySize

		if eflags&^ValidEntryFlags != 0 {
			return nil, newError(InvalidInput, "unknown entry flag bits")
		}

		var who Identity
		switch {
		case eflags&FlagUnmappedWho != 0:
			end := strOff
			for end < len(strs) && strs[end] != 0 {
				end++
			}
			if end >= len(strs) {
				return nil, newError(InvalidInput, "unterminated identity string")
			}
			who = UnmappedWho{Who: string(strs[strOff:end]), Group: eflags&FlagIdentifierGroup != 0}
			strOff = end + 1
		case eflags&FlagSpecialWho != 0:
			if id > EveryoneSpecialID {
				return nil, newError(InvalidInput, "unknown special identity")
			}
			who = SpecialWho{ID: int(id)}
		case eflags&FlagIdentifierGroup != 0:
			who = GID(id)
		default:
			who = UID(id)
		}

		acl.Entries[i] = Entry{
			Type:  typ,
			Flags: eflags &^ (FlagUnmappedWho | FlagSpecialWho | FlagIdentifierGroup),
			Mask:  mask,
			Who:   who,
		}
	}

	if strOff != len(strs) {
		return nil, newError(InvalidInput, "trailing garbage after identity strings")
	}

	return acl, nil
}
