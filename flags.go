package richacl

// ACLFlags holds the acl-wide flag bits (a_flags in the on-disk format).
type ACLFlags uint8

const (
	FlagAutoInherit  ACLFlags = 0x01
	FlagProtected    ACLFlags = 0x02
	FlagDefaulted    ACLFlags = 0x04
	FlagWriteThrough ACLFlags = 0x40
	FlagMasked       ACLFlags = 0x80
)

// ValidACLFlags is the union of every flag bit richacl understands.
const ValidACLFlags = FlagAutoInherit | FlagProtected | FlagDefaulted | FlagWriteThrough | FlagMasked

// EntryType distinguishes allow and deny entries. richacl has no audit
// or alarm entry types; those exist only on the Windows side of this
// model and are not represented here.
type EntryType uint16

const (
	TypeAllow EntryType = 0x0000
	TypeDeny  EntryType = 0x0001
)

// EntryFlags holds the per-entry flag bits (e_flags).
type EntryFlags uint16

const (
	FlagFileInherit       EntryFlags = 0x0001
	FlagDirectoryInherit  EntryFlags = 0x0002
	FlagNoPropagateInherit EntryFlags = 0x0004
	FlagInheritOnly       EntryFlags = 0x0008
	FlagIdentifierGroup   EntryFlags = 0x0040
	FlagInherited         EntryFlags = 0x0080
	FlagUnmappedWho       EntryFlags = 0x2000
	FlagSpecialWho        EntryFlags = 0x4000
)

// ValidEntryFlags is the union of every entry flag bit richacl understands.
const ValidEntryFlags = FlagFileInherit | FlagDirectoryInherit | FlagNoPropagateInherit |
	FlagInheritOnly | FlagIdentifierGroup | FlagInherited | FlagUnmappedWho | FlagSpecialWho

// InheritanceFlags is the subset of entry flags that govern inheritance,
// including FlagInherited (an inherited entry still carries inheritance
// metadata describing how it itself propagates further).
const InheritanceFlags = FlagFileInherit | FlagDirectoryInherit | FlagNoPropagateInherit |
	FlagInheritOnly | FlagInherited

// Mask is the 21-bit access mask (e_mask / a_owner_mask / a_group_mask / a_other_mask).
type Mask uint32

const (
	ReadData        Mask = 0x00000001 // == ListDirectory
	ListDirectory   Mask = 0x00000001
	WriteData       Mask = 0x00000002 // == AddFile
	AddFile         Mask = 0x00000002
	AppendData      Mask = 0x00000004 // == AddSubdirectory
	AddSubdirectory Mask = 0x00000004
	ReadNamedAttrs  Mask = 0x00000008
	WriteNamedAttrs Mask = 0x00000010
	Execute         Mask = 0x00000020
	DeleteChild     Mask = 0x00000040
	ReadAttributes  Mask = 0x00000080
	WriteAttributes Mask = 0x00000100
	WriteRetention     Mask = 0x00000200
	WriteRetentionHold Mask = 0x00000400
	Delete      Mask = 0x00010000
	ReadACL     Mask = 0x00020000
	WriteACL    Mask = 0x00040000
	WriteOwner  Mask = 0x00080000
	Synchronize Mask = 0x00100000
)

// ValidMask is the union of every access-mask bit richacl understands.
const ValidMask = ReadData | WriteData | AppendData | ReadNamedAttrs | WriteNamedAttrs |
	Execute | DeleteChild | ReadAttributes | WriteAttributes | WriteRetention |
	WriteRetentionHold | Delete | ReadACL | WriteACL | WriteOwner | Synchronize

// Posix mode projections: the bits mode_to_mask/mask_to_mode shuttle
// between a 3-bit rwx group and the richer access mask.
const (
	PosixModeRead  = ReadData
	PosixModeWrite = WriteData | AppendData | DeleteChild
	PosixModeExec  = Execute
)

// PosixAlwaysAllowed is granted to everyone regardless of any ACL entry.
const PosixAlwaysAllowed = Synchronize | ReadAttributes | ReadACL

// PosixOwnerAllowed is granted to the file owner regardless of any ACL entry.
const PosixOwnerAllowed = WriteAttributes | WriteOwner | WriteACL

// Special identifier ids used with SpecialWho.
const (
	OwnerSpecialID    = 0
	GroupSpecialID    = 1
	EveryoneSpecialID = 2
)
