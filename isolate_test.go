package richacl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richacl/richacl/internal/alloc"
)

func TestApplyMasksNoopWhenNotMasked(t *testing.T) {
	acl := New(0)
	acl.Entries = append(acl.Entries, Entry{Type: TypeAllow, Who: SpecialOwner(), Mask: ReadData})
	before := acl.Clone()

	ApplyMasks(acl, 1)
	assert.True(t, Compare(acl, before))
}

func TestApplyMasksPreservesOwnerOnNarrowedChmod(t *testing.T) {
	// Start from a directory granting rwx to owner/group/other, then
	// chmod down to 0700 and apply: the owner must still have full
	// access even though the acl's raw entries were never rewritten by
	// the chmod itself, only the class masks.
	acl := FromMode(0o040777)
	Chmod(acl, 0o040700)
	require.True(t, acl.IsMasked())

	ApplyMasks(acl, 5000)
	ctx := Context{UID: 5000, Owner: 5000, OwningGroup: 100}
	assert.Equal(t, ReadData|WriteData|AppendData|Execute|DeleteChild,
		Access(acl, ctx, true)&(ReadData|WriteData|AppendData|Execute|DeleteChild))

	other := Context{UID: 9999, Owner: 5000, OwningGroup: 100}
	assert.Equal(t, Mask(0), Access(acl, other, true)&(ReadData|WriteData))
	assert.False(t, acl.IsMasked())
}

func TestApplyMasksEveryoneAllowStillGrantsOwner(t *testing.T) {
	acl := New(0)
	acl.Flags = FlagMasked
	acl.OwnerMask = ReadData | WriteData
	acl.GroupMask = ReadData
	acl.OtherMask = ReadData
	acl.Entries = append(acl.Entries, Entry{Type: TypeAllow, Who: SpecialEveryone(), Mask: ReadData})

	ApplyMasks(acl, 1)
	ctx := Context{UID: 1, Owner: 1, OwningGroup: 2}
	assert.Equal(t, ReadData, Access(acl, ctx, true)&ReadData)
}

// changeMask's inheritable-split path must keep the effective half's
// INHERITED marking when the original entry already carried it, so a
// later AutoInherit pass doesn't mistake it for a non-inherited entry.
func TestChangeMaskSplitPreservesInheritedFlag(t *testing.T) {
	l := alloc.NewList([]Entry{
		{
			Type:  TypeAllow,
			Who:   SpecialOwner(),
			Mask:  ReadData | WriteData,
			Flags: FlagInherited | FlagFileInherit | FlagDirectoryInherit,
		},
	})

	changeMask(l, 0, ReadData)

	require.Equal(t, 2, l.Len())
	template, effective := l.Items[0], l.Items[1]

	assert.True(t, template.IsInheritOnly())
	assert.True(t, effective.IsInherited())
	assert.Equal(t, ReadData, effective.Mask)
	assert.False(t, effective.IsInheritable())
}
