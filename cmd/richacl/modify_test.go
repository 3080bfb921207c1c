package main

import (
	"testing"

	"github.com/richacl/richacl"
	"github.com/stretchr/testify/assert"
)

func TestMergeEntriesReplacesMatchingIdentityAndType(t *testing.T) {
	existing := []richacl.Entry{
		{Type: richacl.TypeAllow, Who: richacl.UID(42), Mask: richacl.ReadData},
	}
	additions := []richacl.Entry{
		{Type: richacl.TypeAllow, Who: richacl.UID(42), Mask: richacl.WriteData},
	}

	got := mergeEntries(existing, additions)
	if assert.Len(t, got, 1) {
		assert.Equal(t, richacl.WriteData, got[0].Mask)
	}
}

func TestMergeEntriesInsertsNewDenyAheadOfAllowBlock(t *testing.T) {
	existing := []richacl.Entry{
		{Type: richacl.TypeAllow, Who: richacl.SpecialEveryone(), Mask: richacl.ReadData},
	}
	additions := []richacl.Entry{
		{Type: richacl.TypeDeny, Who: richacl.UID(7), Mask: richacl.WriteData},
	}

	got := mergeEntries(existing, additions)
	if assert.Len(t, got, 2) {
		assert.True(t, got[0].IsDeny())
		assert.True(t, got[1].IsAllow())
	}
}

func TestMergeEntriesAppendsNewAllowBeforeInheritedSection(t *testing.T) {
	existing := []richacl.Entry{
		{Type: richacl.TypeAllow, Who: richacl.UID(1), Mask: richacl.ReadData},
		{Type: richacl.TypeAllow, Who: richacl.UID(2), Mask: richacl.ReadData, Flags: richacl.FlagInherited},
	}
	additions := []richacl.Entry{
		{Type: richacl.TypeAllow, Who: richacl.UID(3), Mask: richacl.WriteData},
	}

	got := mergeEntries(existing, additions)
	if assert.Len(t, got, 3) {
		assert.Equal(t, richacl.UID(1), got[0].Who)
		assert.Equal(t, richacl.UID(3), got[1].Who)
		assert.Equal(t, richacl.UID(2), got[2].Who)
	}
}

func TestMergeEntriesAppendsInheritedAdditionAtTrueEnd(t *testing.T) {
	existing := []richacl.Entry{
		{Type: richacl.TypeAllow, Who: richacl.UID(1), Mask: richacl.ReadData},
		{Type: richacl.TypeAllow, Who: richacl.UID(2), Mask: richacl.ReadData, Flags: richacl.FlagInherited},
	}
	additions := []richacl.Entry{
		{Type: richacl.TypeAllow, Who: richacl.UID(3), Mask: richacl.WriteData, Flags: richacl.FlagInherited},
	}

	got := mergeEntries(existing, additions)
	if assert.Len(t, got, 3) {
		assert.Equal(t, richacl.UID(3), got[2].Who)
	}
}
