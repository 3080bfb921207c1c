package main

import "github.com/richacl/richacl"

// mergeEntries folds additions into existing by identity and type: an
// addition whose (who, type) already appears replaces that entry's
// mask and flags in place, preserving its position. A new deny entry
// is inserted into the non-inherited deny block, ahead of the first
// non-inherited allow entry, so it takes priority the way a deny
// placed by hand normally would. A new allow entry is appended to the
// non-inherited section unless it is itself marked INHERITED, in
// which case it goes after every other entry, alongside the entries
// auto-inherit itself would have produced.
func mergeEntries(existing []richacl.Entry, additions []richacl.Entry) []richacl.Entry {
	out := append([]richacl.Entry(nil), existing...)

	for _, add := range additions {
		replaced := false
		for i := range out {
			if out[i].Type == add.Type && richacl.IsSameIdentifier(&out[i], &add) {
				out[i].Mask = add.Mask
				out[i].Flags = add.Flags
				replaced = true
				break
			}
		}
		if replaced {
			continue
		}
		out = insertEntry(out, add)
	}
	return out
}

func insertEntry(entries []richacl.Entry, add richacl.Entry) []richacl.Entry {
	split := len(entries)
	for i, e := range entries {
		if e.IsInherited() {
			split = i
			break
		}
	}

	if add.IsInherited() {
		return append(entries, add)
	}

	pos := split
	if add.IsDeny() {
		for i := 0; i < split; i++ {
			if entries[i].IsAllow() {
				pos = i
				break
			}
		}
	}

	out := make([]richacl.Entry, 0, len(entries)+1)
	out = append(out, entries[:pos]...)
	out = append(out, add)
	out = append(out, entries[pos:]...)
	return out
}
