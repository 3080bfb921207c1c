package richacl

import (
	"strconv"
	"strings"
)

// Resolver turns unix identifiers into names and back, the injection
// seam that replaces the direct getpwnam/getgrnam/getpwuid/getgrgid
// calls the original text codec makes. idresolve supplies an
// os/user-backed implementation; tests can supply a fixed map.
type Resolver interface {
	UserName(uid uint32) (string, bool)
	GroupName(gid uint32) (string, bool)
	LookupUser(name string) (uint32, bool)
	LookupGroup(name string) (uint32, bool)
}

func specialWhoFromText(name string) (SpecialWho, bool) {
	switch strings.ToUpper(name) {
	case "OWNER@":
		return SpecialOwner(), true
	case "GROUP@":
		return SpecialGroup(), true
	case "EVERYONE@":
		return SpecialEveryone(), true
	default:
		return SpecialWho{}, false
	}
}

func parseACLFlags(s string) (ACLFlags, error) {
	var flags ACLFlags
	for _, tok := range strings.Split(s, "/") {
		if tok == "" {
			continue
		}
		if n, err := strconv.ParseUint(tok, 0, 8); err == nil {
			flags |= ACLFlags(n)
			continue
		}
		if bit, ok := lookupACLFlagName(tok); ok {
			flags |= bit
			continue
		}
		matched := false
		for _, c := range []byte(tok) {
			if c == '-' {
				matched = true
				continue
			}
			bit, ok := lookupACLFlagChar(c)
			if !ok {
				return 0, newError(InvalidInput, "invalid acl flag '"+tok+"'")
			}
			flags |= bit
			matched = true
		}
		if !matched {
			return 0, newError(InvalidInput, "invalid acl flag '"+tok+"'")
		}
	}
	return flags, nil
}

func lookupACLFlagName(name string) (ACLFlags, bool) {
	for _, fb := range aclFlagBits {
		if strings.EqualFold(fb.name, name) {
			return fb.bit, true
		}
	}
	return 0, false
}

func lookupACLFlagChar(c byte) (ACLFlags, bool) {
	for _, fb := range aclFlagBits {
		if fb.char == c {
			return fb.bit, true
		}
	}
	return 0, false
}

func parseEntryFlags(s string) (EntryFlags, error) {
	var flags EntryFlags
	for _, tok := range strings.Split(s, "/") {
		if tok == "" {
			continue
		}
		if n, err := strconv.ParseUint(tok, 0, 16); err == nil {
			flags |= EntryFlags(n)
			continue
		}
		found := false
		for _, fb := range entryFlagBits {
			if strings.EqualFold(fb.name, tok) {
				flags |= fb.bit
				found = true
				break
			}
		}
		if found {
			continue
		}
		matched := false
		for _, c := range []byte(tok) {
			if c == '-' {
				matched = true
				continue
			}
			ok := false
			for _, fb := range entryFlagBits {
				if fb.char == c {
					flags |= fb.bit
					ok = true
					break
				}
			}
			if !ok {
				return 0, newError(InvalidInput, "invalid entry flag '"+tok+"'")
			}
			matched = true
		}
		if !matched {
			return 0, newError(InvalidInput, "invalid entry flag '"+tok+"'")
		}
	}
	return flags, nil
}

func parseMask(s string) (Mask, error) {
	var mask Mask
	for _, tok := range strings.Split(s, "/") {
		if tok == "" {
			continue
		}
		if n, err := strconv.ParseUint(tok, 0, 32); err == nil {
			mask |= Mask(n)
			continue
		}
		found := false
		for _, mb := range maskBits {
			if strings.EqualFold(mb.name, tok) {
				mask |= mb.bit
				found = true
				break
			}
		}
		if found {
			continue
		}
		matched := false
		for _, c := range []byte(tok) {
			if c == '-' {
				matched = true
				continue
			}
			ok := false
			for _, mb := range maskBits {
				if mb.char == c {
					mask |= mb.bit
					ok = true
					break
				}
			}
			if !ok {
				return 0, newError(InvalidInput, "invalid access mask '"+tok+"'")
			}
			matched = true
		}
		if !matched {
			return 0, newError(InvalidInput, "invalid access mask '"+tok+"'")
		}
	}
	return mask, nil
}

func parseType(s string) (EntryType, error) {
	switch strings.ToLower(s) {
	case "allow":
		return TypeAllow, nil
	case "deny":
		return TypeDeny, nil
	}
	if n, err := strconv.ParseUint(s, 0, 16); err == nil {
		return EntryType(n), nil
	}
	return 0, newError(InvalidInput, "invalid entry type '"+s+"'")
}

func parseIdentifier(who, whoPrefix string, isGroup bool, resolver Resolver) (Identity, error) {
	if special, ok := specialWhoFromText(who); ok {
		if whoPrefix != "" {
			return nil, newError(InvalidInput, "special identifier cannot take a USER:/GROUP: prefix")
		}
		return special, nil
	}

	if n, err := strconv.ParseUint(who, 0, 32); err == nil {
		if isGroup {
			return GID(n), nil
		}
		return UID(n), nil
	}

	if resolver == nil {
		return nil, newError(NoSuchIdentity, "cannot resolve name '"+who+"' without a resolver")
	}
	if isGroup {
		gid, ok := resolver.LookupGroup(who)
		if !ok {
			return nil, newError(NoSuchIdentity, "group '"+who+"' does not exist")
		}
		return GID(gid), nil
	}
	uid, ok := resolver.LookupUser(who)
	if !ok {
		return nil, newError(NoSuchIdentity, "user '"+who+"' does not exist")
	}
	return UID(uid), nil
}

// FromText parses the format ToText produces (plus the fuller text
// grammar it mirrors): comma-or-whitespace separated entries, each
// either a "who:mask:flags:type" ace, a leading "flags:..." acl-flags
// line, or an "owner:mask::MASK" / "group:.../other:..." class-mask
// summary line. who may carry a "USER:"/"U:" prefix (resolve it as a
// user) or a "GROUP:"/"G:" prefix (resolve it as a group); without a
// prefix it is resolved as a user. Special identifiers (owner@,
// group@, everyone@) may not take such a prefix.
func FromText(text string, resolver Resolver) (*ACL, error) {
	acl := New(0)

	fields := splitEntries(text)
	for _, entry := range fields {
		if entry == "" {
			continue
		}

		whoPrefix := ""
		isGroup := false
		rest := entry
		if colonCount(entry) == 4 {
			switch {
			case hasPrefixFold(entry, "USER:"):
				whoPrefix, rest = "USER:", entry[5:]
			case hasPrefixFold(entry, "U:"):
				whoPrefix, rest = "U:", entry[2:]
			case hasPrefixFold(entry, "GROUP:"):
				whoPrefix, rest, isGroup = "GROUP:", entry[6:], true
			case hasPrefixFold(entry, "G:"):
				whoPrefix, rest, isGroup = "G:", entry[2:], true
			}
		}

		parts := strings.SplitN(rest, ":", 4)
		if len(parts) < 2 {
			return nil, newError(InvalidInput, "invalid entry '"+entry+"'")
		}

		who := strings.TrimSpace(parts[0])
		if whoPrefix == "" && strings.EqualFold(who, "flags") {
			flags, err := parseACLFlags(parts[1])
			if err != nil {
				return nil, err
			}
			acl.Flags |= flags
			continue
		}

		if len(parts) != 4 {
			return nil, newError(InvalidInput, "invalid entry '"+entry+"'")
		}
		maskStr, flagsStr, typeStr := parts[1], parts[2], parts[3]

		if strings.EqualFold(typeStr, "mask") {
			if whoPrefix != "" {
				return nil, newError(InvalidInput, "class mask entries cannot take a USER:/GROUP: prefix")
			}
			mask, err := parseMask(maskStr)
			if err != nil {
				return nil, err
			}
			switch strings.ToLower(who) {
			case "owner":
				acl.OwnerMask = mask
			case "group":
				acl.GroupMask = mask
			case "other":
				acl.OtherMask = mask
			default:
				return nil, newError(InvalidInput, "invalid class mask '"+who+"'")
			}
			continue
		}

		mask, err := parseMask(maskStr)
		if err != nil {
			return nil, err
		}
		flags, err := parseEntryFlags(flagsStr)
		if err != nil {
			return nil, err
		}
		typ, err := parseType(typeStr)
		if err != nil {
			return nil, err
		}
		identity, err := parseIdentifier(who, whoPrefix, isGroup, resolver)
		if err != nil {
			return nil, err
		}

		acl.Entries = append(acl.Entries, Entry{Type: typ, Flags: flags, Mask: mask, Who: identity})
	}

	return acl, nil
}

func colonCount(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' || s[i] == ' ' || s[i] == '\t' || s[i] == '\n' {
			break
		}
		if s[i] == ':' {
			n++
		}
	}
	return n
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// splitEntries breaks the input into individual entries, separated
// by commas or whitespace, the way the original's comma-or-isspace
// scanner does.
func splitEntries(text string) []string {
	var entries []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}) {
		if t := strings.TrimSpace(line); t != "" {
			entries = append(entries, t)
		}
	}
	return entries
}
