package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
	"google.golang.org/protobuf/encoding/protowire"
)

// FileEntry is a regular file inside a Directory.
type FileEntry struct {
	Name       string
	Digest     Digest
	Executable bool
}

// DirectoryEntry is a sub directory inside a Directory, referenced by digest.
type DirectoryEntry struct {
	Name   string
	Digest Digest
}

// SymlinkEntry is a symbolic link inside a Directory. Targets are stored verbatim.
type SymlinkEntry struct {
	Name   string
	Target string
}

// Directory is the serialized form of one level of a tree. The wire layout
// matches the remote execution API Directory message, so directory digests
// are interchangeable with other CAS implementations.
type Directory struct {
	Files       []FileEntry
	Directories []DirectoryEntry
	Symlinks    []SymlinkEntry
}

const (
	directoryFilesField       protowire.Number = 1
	directoryDirectoriesField protowire.Number = 2
	directorySymlinksField    protowire.Number = 3

	entryNameField       protowire.Number = 1
	entryDigestField     protowire.Number = 2
	entryTargetField     protowire.Number = 2
	entryExecutableField protowire.Number = 4
)

// Marshal encodes the directory with every entry list sorted by name.
func (d *Directory) Marshal() []byte {
	files := slices.Clone(d.Files)
	slices.SortFunc(files, func(a, b FileEntry) int { return strings.Compare(a.Name, b.Name) })
	dirs := slices.Clone(d.Directories)
	slices.SortFunc(dirs, func(a, b DirectoryEntry) int { return strings.Compare(a.Name, b.Name) })
	links := slices.Clone(d.Symlinks)
	slices.SortFunc(links, func(a, b SymlinkEntry) int { return strings.Compare(a.Name, b.Name) })

	var b []byte
	for _, f := range files {
		var m []byte
		m = appendString(m, entryNameField, f.Name)
		m = AppendDigestField(m, entryDigestField, f.Digest)
		if f.Executable {
			m = protowire.AppendTag(m, entryExecutableField, protowire.VarintType)
			m = protowire.AppendVarint(m, 1)
		}
		b = protowire.AppendTag(b, directoryFilesField, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	for _, sub := range dirs {
		var m []byte
		m = appendString(m, entryNameField, sub.Name)
		m = AppendDigestField(m, entryDigestField, sub.Digest)
		b = protowire.AppendTag(b, directoryDirectoriesField, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	for _, l := range links {
		var m []byte
		m = appendString(m, entryNameField, l.Name)
		m = appendString(m, entryTargetField, l.Target)
		b = protowire.AppendTag(b, directorySymlinksField, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	return b
}

// Digest returns the digest of the marshaled directory.
func (d *Directory) Digest() Digest {
	return NewDigest(d.Marshal())
}

// UnmarshalDirectory decodes a Directory message.
func UnmarshalDirectory(b []byte) (*Directory, error) {
	d := &Directory{}
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case directoryFilesField:
			var f FileEntry
			err := forEachField(v, func(num protowire.Number, typ protowire.Type, v []byte) error {
				switch num {
				case entryNameField:
					f.Name = string(v)
				case entryDigestField:
					dg, err := UnmarshalDigest(v)
					if err != nil {
						return err
					}
					f.Digest = dg
				case entryExecutableField:
					x, n := protowire.ConsumeVarint(v)
					if n < 0 {
						return protowire.ParseError(n)
					}
					f.Executable = protowire.DecodeBool(x)
				}
				return nil
			})
			if err != nil {
				return err
			}
			d.Files = append(d.Files, f)
		case directoryDirectoriesField:
			var sub DirectoryEntry
			err := forEachField(v, func(num protowire.Number, _ protowire.Type, v []byte) error {
				switch num {
				case entryNameField:
					sub.Name = string(v)
				case entryDigestField:
					dg, err := UnmarshalDigest(v)
					if err != nil {
						return err
					}
					sub.Digest = dg
				}
				return nil
			})
			if err != nil {
				return err
			}
			d.Directories = append(d.Directories, sub)
		case directorySymlinksField:
			var l SymlinkEntry
			err := forEachField(v, func(num protowire.Number, _ protowire.Type, v []byte) error {
				switch num {
				case entryNameField:
					l.Name = string(v)
				case entryTargetField:
					l.Target = string(v)
				}
				return nil
			})
			if err != nil {
				return err
			}
			d.Symlinks = append(d.Symlinks, l)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(ErrCorruptTree, "malformed directory node"), "cause", err.Error())
	}
	return d, nil
}

// ChildDigests returns the digests of every file and sub directory referenced by d.
func (d *Directory) ChildDigests() []Digest {
	out := make([]Digest, 0, len(d.Files)+len(d.Directories))
	for _, f := range d.Files {
		out = append(out, f.Digest)
	}
	for _, sub := range d.Directories {
		out = append(out, sub.Digest)
	}
	return out
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// forEachField walks the top level fields of a message. For varint fields v
// holds the raw varint bytes, for length delimited fields the payload.
func forEachField(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		var v []byte
		if typ == protowire.BytesType {
			payload, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			v, n = payload, m
		} else {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v = b[:n]
		}
		if err := fn(num, typ, v); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
