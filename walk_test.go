package richacl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFS struct {
	acls     map[string]*ACL
	children map[string][]DirEntry
}

func (f *fakeFS) ReadDir(path string) ([]DirEntry, error) {
	return f.children[path], nil
}

func (f *fakeFS) GetACL(path string) (*ACL, error) {
	return f.acls[path], nil
}

func (f *fakeFS) SetACL(path string, acl *ACL) error {
	f.acls[path] = acl
	return nil
}

func TestWalkPropagatesAndSkipsProtected(t *testing.T) {
	parent := New(0)
	parent.Entries = append(parent.Entries, Entry{
		Type:  TypeAllow,
		Flags: FlagDirectoryInherit,
		Who:   SpecialGroup(),
		Mask:  ReadData,
	})

	root := New(0)
	root.Entries = append(root.Entries, Entry{Type: TypeAllow, Who: SpecialOwner(), Mask: WriteData, Flags: FlagInherited})

	protectedChild := New(0)
	protectedChild.Flags = FlagProtected
	protectedChild.Entries = append(protectedChild.Entries, Entry{Type: TypeAllow, Who: UID(9), Mask: Execute})

	plainChild := New(0)

	fs := &fakeFS{
		acls: map[string]*ACL{
			"/root":           root,
			"/root/protected": protectedChild,
			"/root/plain":     plainChild,
		},
		children: map[string][]DirEntry{
			"/root": {
				{Path: "/root/protected", IsDir: true},
				{Path: "/root/plain", IsDir: false},
			},
		},
	}

	err := Walk(fs, "/root", parent)
	require.NoError(t, err)

	// root's own INHERITED entry was refreshed from parent.
	updatedRoot := fs.acls["/root"]
	require.Len(t, updatedRoot.Entries, 1)
	assert.True(t, updatedRoot.Entries[0].IsGroup())
	assert.True(t, updatedRoot.Entries[0].IsInherited())

	// protected child's entries are left alone.
	assert.Equal(t, protectedChild, fs.acls["/root/protected"])

	// plain (non-protected, non-dir) child received the file-inherit
	// set computed from root's just-updated acl.
	updatedPlain := fs.acls["/root/plain"]
	require.Len(t, updatedPlain.Entries, 0)
}

func TestWalkInheritsIntoFreshChild(t *testing.T) {
	parent := New(0)
	parent.Entries = append(parent.Entries, Entry{
		Type:  TypeAllow,
		Flags: FlagFileInherit,
		Who:   UID(5),
		Mask:  ReadData,
	})

	root := New(0)
	fs := &fakeFS{
		acls: map[string]*ACL{"/root": root},
		children: map[string][]DirEntry{
			"/root": {{Path: "/root/f", IsDir: false}},
		},
	}

	err := Walk(fs, "/root", parent)
	require.NoError(t, err)

	child := fs.acls["/root/f"]
	require.NotNil(t, child)
	require.Len(t, child.Entries, 1)
	assert.Equal(t, UID(5), child.Entries[0].Who)
	assert.Equal(t, EntryFlags(0), child.Entries[0].Flags)
}
