package richacl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario F: a richacl carrying one UNMAPPED_WHO entry round-trips
// through the binary codec with its identifier string intact.
func TestXattrRoundTripUnmappedWho(t *testing.T) {
	acl := New(1)
	acl.Flags = FlagAutoInherit
	acl.OwnerMask = ReadData | WriteData
	acl.GroupMask = ReadData
	acl.OtherMask = 0
	acl.Entries = append(acl.Entries, Entry{
		Type:  TypeAllow,
		Flags: FlagFileInherit,
		Mask:  ReadData,
		Who:   UnmappedWho{Who: "guest@FOREIGN", Group: false},
	})

	buf, err := ToXattr(acl)
	require.NoError(t, err)

	decoded, err := FromXattr(buf)
	require.NoError(t, err)

	assert.True(t, Compare(acl, decoded))
	w, ok := decoded.Entries[0].Who.(UnmappedWho)
	require.True(t, ok)
	assert.Equal(t, "guest@FOREIGN", w.Who)
}

func TestXattrRoundTripNumericIdentities(t *testing.T) {
	acl := New(0)
	acl.Entries = append(acl.Entries,
		Entry{Type: TypeAllow, Who: SpecialOwner(), Mask: ReadData},
		Entry{Type: TypeDeny, Who: UID(100), Mask: WriteData},
		Entry{Type: TypeAllow, Who: GID(200), Mask: Execute},
	)

	buf, err := ToXattr(acl)
	require.NoError(t, err)
	assert.Equal(t, XattrSize(acl), len(buf))

	decoded, err := FromXattr(buf)
	require.NoError(t, err)
	assert.True(t, Compare(acl, decoded))
}

func TestFromXattrRejectsUnknownVersion(t *testing.T) {
	acl := New(0)
	buf, err := ToXattr(acl)
	require.NoError(t, err)
	buf[0] = xattrVersion + 1

	_, err = FromXattr(buf)
	require.Error(t, err)
	assert.True(t, InvalidInput.Is(err))
}

func TestFromXattrRejectsShortBuffer(t *testing.T) {
	_, err := FromXattr([]byte{0, 0, 1})
	require.Error(t, err)
	assert.True(t, InvalidInput.Is(err))
}

func TestFromXattrRejectsUnknownACLFlags(t *testing.T) {
	acl := New(0)
	buf, err := ToXattr(acl)
	require.NoError(t, err)
	buf[1] = 0x08 // unassigned flag bit

	_, err = FromXattr(buf)
	require.Error(t, err)
	assert.True(t, InvalidInput.Is(err))
}

func TestFromXattrRejectsBadSpecialID(t *testing.T) {
	acl := New(1)
	acl.Entries = append(acl.Entries, Entry{Type: TypeAllow, Who: SpecialOwner(), Mask: ReadData})
	buf, err := ToXattr(acl)
	require.NoError(t, err)

	// Corrupt the id field of the single entry record to an
	// out-of-range special id.
	idOff := xattrHeaderSize + 8
	buf[idOff] = 99

	_, err = FromXattr(buf)
	require.Error(t, err)
	assert.True(t, InvalidInput.Is(err))
}

func TestFromXattrRejectsTrailingGarbage(t *testing.T) {
	acl := New(1)
	acl.Entries = append(acl.Entries, Entry{
		Type: TypeAllow,
		Who:  UnmappedWho{Who: "a"},
		Mask: ReadData,
	})
	buf, err := ToXattr(acl)
	require.NoError(t, err)

	_, err = FromXattr(append(buf, 'x'))
	require.Error(t, err)
	assert.True(t, InvalidInput.Is(err))
}

func TestXattrSizeMatchesEncodedLength(t *testing.T) {
	acl := New(0)
	acl.Entries = append(acl.Entries, Entry{Type: TypeAllow, Who: UnmappedWho{Who: "abc"}, Mask: ReadData})
	buf, err := ToXattr(acl)
	require.NoError(t, err)
	assert.Equal(t, XattrSize(acl), len(buf))
}
