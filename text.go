package richacl

import (
	"fmt"
	"strconv"
	"strings"
)

// TextFormat selects how ToText renders flags and masks.
type TextFormat struct {
	// Long writes mnemonic names ("read_data/write_data") instead of
	// single-letter codes ("rw").
	Long bool
	// Simplify hides permissions that are always implicitly allowed
	// (PosixAlwaysAllowed) from the mask rendering.
	Simplify bool
	// NumericIDs renders unix uids/gids as numbers even when a
	// Resolver could turn them into names.
	NumericIDs bool
	// ShowMasks additionally emits owner:/group:/other: MASK
	// pseudo-entries summarizing the acl's three class masks.
	ShowMasks bool
	// Align right-justifies the "flags"/"owner"/"group"/"other" labels
	// and every entry's who field to a common column width, computed
	// from the widest identifier ToText is about to write.
	Align bool
}

type flagBit struct {
	char byte
	bit  ACLFlags
	name string
}

var aclFlagBits = []flagBit{
	{'m', FlagMasked, "masked"},
	{'w', FlagWriteThrough, "write_through"},
	{'a', FlagAutoInherit, "auto_inherit"},
	{'p', FlagProtected, "protected"},
	{'d', FlagDefaulted, "defaulted"},
}

type entryFlagBit struct {
	char byte
	bit  EntryFlags
	name string
}

var entryFlagBits = []entryFlagBit{
	{'f', FlagFileInherit, "file_inherit"},
	{'d', FlagDirectoryInherit, "dir_inherit"},
	{'n', FlagNoPropagateInherit, "no_propagate"},
	{'i', FlagInheritOnly, "inherit_only"},
	{'a', FlagInherited, "inherited"},
}

// maskBit's context bits select whether the mnemonic applies to a
// file mask, a directory mask, or both, mirroring RICHACL_TEXT_FILE/
// DIRECTORY_CONTEXT in the original.
type maskBit struct {
	char          byte
	bit           Mask
	name          string
	file, dir     bool
	alwaysAllowed bool
}

var maskBits = []maskBit{
	{'r', ReadData, "read_data", true, false, false},
	{'r', ListDirectory, "list_directory", false, true, false},
	{'w', WriteData, "write_data", true, false, false},
	{'w', AddFile, "add_file", false, true, false},
	{'p', AppendData, "append_data", true, false, false},
	{'p', AddSubdirectory, "add_subdirectory", false, true, false},
	{'x', Execute, "execute", true, true, false},
	{'d', DeleteChild, "delete_child", true, true, false},
	{'D', Delete, "delete", true, true, false},
	{'a', ReadAttributes, "read_attributes", true, true, true},
	{'A', WriteAttributes, "write_attributes", true, true, false},
	{'R', ReadNamedAttrs, "read_named_attrs", true, true, false},
	{'W', WriteNamedAttrs, "write_named_attrs", true, true, false},
	{'c', ReadACL, "read_acl", true, true, true},
	{'C', WriteACL, "write_acl", true, true, false},
	{'o', WriteOwner, "write_owner", true, true, false},
	{'S', Synchronize, "synchronize", true, true, true},
	{'e', WriteRetention, "write_retention", true, true, false},
	{'E', WriteRetentionHold, "write_retention_hold", true, true, false},
}

func writeACLFlags(b *strings.Builder, flags ACLFlags, long bool) {
	if flags == 0 {
		return
	}
	rest := flags
	first := true
	for _, fb := range aclFlagBits {
		if rest&fb.bit == 0 {
			continue
		}
		rest &^= fb.bit
		if !first {
			b.WriteByte('/')
		}
		if long {
			b.WriteString(fb.name)
		} else {
			b.WriteByte(fb.char)
		}
		first = false
	}
	if rest != 0 {
		if !first {
			b.WriteByte('/')
		}
		fmt.Fprintf(b, "0x%x", uint(rest))
	}
}

func writeEntryFlags(b *strings.Builder, flags EntryFlags, long bool) {
	rest := flags
	first := true
	for _, fb := range entryFlagBits {
		if rest&fb.bit == 0 {
			continue
		}
		rest &^= fb.bit
		if !first {
			b.WriteByte('/')
		}
		if long {
			b.WriteString(fb.name)
		} else {
			b.WriteByte(fb.char)
		}
		first = false
	}
	if rest != 0 {
		if !first {
			b.WriteByte('/')
		}
		fmt.Fprintf(b, "0x%x", uint(rest))
	}
}

func writeMask(b *strings.Builder, mask Mask, fmtFlags TextFormat, isDir bool) {
	written := false
	for _, mb := range maskBits {
		applies := (isDir && mb.dir) || (!isDir && mb.file)
		if !applies || mask&mb.bit == 0 {
			continue
		}
		if fmtFlags.Simplify && mb.alwaysAllowed {
			mask &^= mb.bit
			continue
		}
		mask &^= mb.bit
		if written {
			b.WriteByte('/')
		}
		if fmtFlags.Long {
			b.WriteString(mb.name)
		} else {
			b.WriteByte(mb.char)
		}
		written = true
	}
	if mask != 0 {
		if written {
			b.WriteByte('/')
		}
		fmt.Fprintf(b, "0x%x", uint(mask))
	}
}

// identifierText returns the exact bytes writeIdentifier would emit for
// who, unpadded; used both to print the identifier and, under Align, to
// measure how wide its column needs to be.
func identifierText(who Identity, resolver Resolver, numeric bool) string {
	switch w := who.(type) {
	case SpecialWho:
		return strings.ToLower(w.String())
	case UnmappedWho:
		return w.Who
	case GID:
		if !numeric && resolver != nil {
			if name, ok := resolver.GroupName(uint32(w)); ok {
				return name
			}
		}
		return strconv.FormatUint(uint64(uint32(w)), 10)
	case UID:
		if !numeric && resolver != nil {
			if name, ok := resolver.UserName(uint32(w)); ok {
				return name
			}
		}
		return strconv.FormatUint(uint64(uint32(w)), 10)
	default:
		return ""
	}
}

func writeIdentifier(b *strings.Builder, who Identity, resolver Resolver, numeric bool, align int) {
	fmt.Fprintf(b, "%*s", align, identifierText(who, resolver, numeric))
}

// alignWidth computes the common column width ToText pads the
// "flags"/"owner"/"group"/"other" labels and every who field to, the
// width of the widest identifier the acl is about to render plus one,
// and at least 6 when a flags or class-mask label line is written.
func alignWidth(acl *ACL, fmtFlags TextFormat, resolver Resolver) int {
	if !fmtFlags.Align {
		return 0
	}
	align := 0
	if acl.Flags != 0 {
		align = 6
	}
	if fmtFlags.ShowMasks && align < 6 {
		align = 6
	}
	for i := range acl.Entries {
		a := len(identifierText(acl.Entries[i].Who, resolver, fmtFlags.NumericIDs))
		if a >= align {
			align = a + 1
		}
	}
	return align
}

func writeType(b *strings.Builder, t EntryType) {
	switch t {
	case TypeAllow:
		b.WriteString("allow")
	case TypeDeny:
		b.WriteString("deny")
	default:
		fmt.Fprintf(b, "%d", uint16(t))
	}
}

// ToText renders acl in the line-oriented format FromText parses:
// one comma-or-newline-separated "who:mask:flags:type" entry per
// line, an optional leading "flags:..." line when the acl carries
// any acl-level flags, and, when fmtFlags.ShowMasks is set,
// "owner:mask::mask" / "group:mask::mask" / "other:mask::mask"
// summary lines written after the flags line and before the entries.
// resolver may be nil, in which case unix uids/gids are always
// rendered numerically.
func ToText(acl *ACL, fmtFlags TextFormat, resolver Resolver) string {
	var b strings.Builder
	align := alignWidth(acl, fmtFlags, resolver)

	if acl.Flags != 0 {
		fmt.Fprintf(&b, "%*s:", align, "flags")
		writeACLFlags(&b, acl.Flags, fmtFlags.Long)
		b.WriteByte('\n')
	}

	if fmtFlags.ShowMasks {
		allowed := Mask(0)
		if fmtFlags.Simplify {
			for i := range acl.Entries {
				e := &acl.Entries[i]
				if e.IsInheritOnly() {
					continue
				}
				if e.IsAllow() {
					allowed |= e.Mask
				}
			}
		} else {
			allowed = ValidMask
		}
		fmt.Fprintf(&b, "%*s:", align, "owner")
		writeMask(&b, acl.OwnerMask&allowed, fmtFlags, true)
		b.WriteString("::mask\n")
		fmt.Fprintf(&b, "%*s:", align, "group")
		writeMask(&b, acl.GroupMask&allowed, fmtFlags, true)
		b.WriteString("::mask\n")
		fmt.Fprintf(&b, "%*s:", align, "other")
		writeMask(&b, acl.OtherMask&allowed, fmtFlags, true)
		b.WriteString("::mask\n")
	}

	for i := range acl.Entries {
		e := &acl.Entries[i]
		isDir := e.Flags&FlagDirectoryInherit != 0 || !(e.Flags&FlagFileInherit != 0)

		writeIdentifier(&b, e.Who, resolver, fmtFlags.NumericIDs, align)
		b.WriteByte(':')
		writeMask(&b, e.Mask, fmtFlags, isDir)
		b.WriteByte(':')
		writeEntryFlags(&b, e.Flags&InheritanceFlags, fmtFlags.Long)
		b.WriteByte(':')
		writeType(&b, e.Type)
		b.WriteByte('\n')
	}

	return b.String()
}
