package xattrio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/richacl/richacl"
)

func TestSetGetRemoveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	acl := richacl.New(0)
	acl.Entries = append(acl.Entries, richacl.Entry{
		Type: richacl.TypeAllow,
		Who:  richacl.SpecialOwner(),
		Mask: richacl.ReadData,
	})

	if err := Set(path, acl); err != nil {
		t.Skipf("filesystem does not support xattrs in this environment: %v", err)
	}

	got, err := Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !richacl.Compare(acl, got) {
		t.Fatalf("round-tripped acl differs: got %+v, want %+v", got, acl)
	}

	if err := Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := Get(path); err == nil || !richacl.NotFound.Is(err) {
		t.Fatalf("Get after Remove = %v, want richacl.NotFound", err)
	}
}

func TestGetOnFileWithoutXattrIsNotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Get(path)
	if err == nil || !richacl.NotFound.Is(err) {
		t.Fatalf("Get = %v, want richacl.NotFound", err)
	}
}

func TestContextAndMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, nil, 0o640); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ctx, err := Context(path)
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if ctx.UID != uint32(os.Getuid()) {
		t.Fatalf("Context.UID = %d, want %d", ctx.UID, os.Getuid())
	}

	mode, err := Mode(path)
	if err != nil {
		t.Fatalf("Mode: %v", err)
	}
	if mode&0o777 != 0o640 {
		t.Fatalf("Mode = %o, want permission bits 0640", mode&0o777)
	}
}
