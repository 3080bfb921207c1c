package richacl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	users  map[string]uint32
	groups map[string]uint32
}

func (r *fakeResolver) UserName(uid uint32) (string, bool) {
	for n, id := range r.users {
		if id == uid {
			return n, true
		}
	}
	return "", false
}

func (r *fakeResolver) GroupName(gid uint32) (string, bool) {
	for n, id := range r.groups {
		if id == gid {
			return n, true
		}
	}
	return "", false
}

func (r *fakeResolver) LookupUser(name string) (uint32, bool) {
	id, ok := r.users[name]
	return id, ok
}

func (r *fakeResolver) LookupGroup(name string) (uint32, bool) {
	id, ok := r.groups[name]
	return id, ok
}

func TestFromTextParsesSpecialAndUnixEntries(t *testing.T) {
	acl, err := FromText("owner@:rwx::allow, joe:r::deny", &fakeResolver{
		users: map[string]uint32{"joe": 42},
	})
	require.NoError(t, err)
	require.Len(t, acl.Entries, 2)

	assert.True(t, acl.Entries[0].IsOwner())
	assert.Equal(t, ReadData|WriteData|Execute, acl.Entries[0].Mask)
	assert.True(t, acl.Entries[0].IsAllow())

	assert.Equal(t, UID(42), acl.Entries[1].Who)
	assert.True(t, acl.Entries[1].IsDeny())
	assert.Equal(t, ReadData, acl.Entries[1].Mask)
}

func TestFromTextPlainNumericIdentityNeedsNoPrefix(t *testing.T) {
	acl, err := FromText("1000:r::allow", nil)
	require.NoError(t, err)
	require.Len(t, acl.Entries, 1)
	assert.Equal(t, UID(1000), acl.Entries[0].Who)
}

func TestFromTextGroupPrefix(t *testing.T) {
	acl, err := FromText("GROUP:staff:r::allow", &fakeResolver{
		groups: map[string]uint32{"staff": 7},
	})
	require.NoError(t, err)
	require.Len(t, acl.Entries, 1)
	assert.Equal(t, GID(7), acl.Entries[0].Who)
}

func TestFromTextSpecialRejectsPrefix(t *testing.T) {
	_, err := FromText("USER:owner@:r::allow", nil)
	require.Error(t, err)
}

func TestFromTextClassMaskLines(t *testing.T) {
	acl, err := FromText("owner:rw::mask\ngroup:r::mask\nother:-::mask", nil)
	require.NoError(t, err)
	assert.Equal(t, ReadData|WriteData, acl.OwnerMask)
	assert.Equal(t, ReadData, acl.GroupMask)
	assert.Equal(t, Mask(0), acl.OtherMask)
}

func TestFromTextDashPlaceholderMeansEmptyMask(t *testing.T) {
	acl, err := FromText("owner@:-::allow", nil)
	require.NoError(t, err)
	require.Len(t, acl.Entries, 1)
	assert.Equal(t, Mask(0), acl.Entries[0].Mask)
}

func TestFromTextDashWithinAbbreviation(t *testing.T) {
	acl, err := FromText("owner@:r-x::allow", nil)
	require.NoError(t, err)
	require.Len(t, acl.Entries, 1)
	assert.Equal(t, ReadData|Execute, acl.Entries[0].Mask)
}

func TestFromTextFlagsLine(t *testing.T) {
	acl, err := FromText("flags:ap", nil)
	require.NoError(t, err)
	assert.Equal(t, FlagAutoInherit|FlagProtected, acl.Flags)
}

func TestFromTextUnknownUserErrorsWithoutResolver(t *testing.T) {
	_, err := FromText("nobody:r::allow", nil)
	require.Error(t, err)
	assert.True(t, NoSuchIdentity.Is(err))
}

func TestToTextFromTextRoundTrip(t *testing.T) {
	acl := New(0)
	acl.Flags = FlagAutoInherit
	acl.Entries = append(acl.Entries,
		Entry{Type: TypeAllow, Who: SpecialOwner(), Mask: ReadData | WriteData},
		Entry{Type: TypeDeny, Who: UID(42), Mask: Execute},
	)

	text := ToText(acl, TextFormat{}, nil)
	parsed, err := FromText(text, nil)
	require.NoError(t, err)

	assert.Equal(t, acl.Flags, parsed.Flags)
	require.Len(t, parsed.Entries, 2)
	assert.True(t, parsed.Entries[0].IsOwner())
	assert.Equal(t, acl.Entries[0].Mask, parsed.Entries[0].Mask)
	assert.Equal(t, acl.Entries[1].Who, parsed.Entries[1].Who)
	assert.Equal(t, acl.Entries[1].Mask, parsed.Entries[1].Mask)
}

func TestToTextSimplifyHidesAlwaysAllowed(t *testing.T) {
	acl := New(0)
	acl.Entries = append(acl.Entries, Entry{
		Type: TypeAllow,
		Who:  SpecialOwner(),
		Mask: ReadData | Synchronize | ReadAttributes | ReadACL,
	})

	text := ToText(acl, TextFormat{Simplify: true}, nil)
	assert.True(t, strings.Contains(text, "owner@:r:"))
	assert.False(t, strings.Contains(text, "S"))
}

func TestToTextAlignPadsIdentifierColumnAndStillRoundTrips(t *testing.T) {
	acl := New(0)
	acl.Flags = FlagAutoInherit
	acl.Entries = append(acl.Entries,
		Entry{Type: TypeAllow, Who: SpecialOwner(), Mask: ReadData},
		Entry{Type: TypeAllow, Who: UID(42), Mask: WriteData},
	)

	text := ToText(acl, TextFormat{Align: true}, nil)
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		assert.True(t, strings.HasPrefix(line, " "), "expected padded line, got %q", line)
	}

	parsed, err := FromText(text, nil)
	require.NoError(t, err)
	assert.Equal(t, acl.Flags, parsed.Flags)
	require.Len(t, parsed.Entries, 2)
	assert.True(t, parsed.Entries[0].IsOwner())
	assert.Equal(t, acl.Entries[1].Who, parsed.Entries[1].Who)
}
