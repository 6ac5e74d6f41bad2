// Package domain contains the core domain models of stratum: digests, directory
// trees, artifacts, elements and the dependency graph.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
	"google.golang.org/protobuf/encoding/protowire"
)

// HashSize is the length of a hex encoded SHA-256 hash.
const HashSize = sha256.Size * 2

// Digest identifies a blob by the SHA-256 of its content and its size.
type Digest struct {
	Hash string
	Size int64
}

// EmptyDigest is the digest of the zero length blob.
var EmptyDigest = NewDigest(nil)

// NewDigest computes the digest of data.
func NewDigest(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest{
		Hash: hex.EncodeToString(sum[:]),
		Size: int64(len(data)),
	}
}

// ParseDigest parses the "hash/size" form produced by Digest.String.
func ParseDigest(s string) (Digest, error) {
	hash, size, ok := strings.Cut(s, "/")
	if !ok {
		return Digest{}, zerr.With(zerr.Wrap(ErrInvalidDigest, "missing size"), "digest", s)
	}
	n, err := strconv.ParseInt(size, 10, 64)
	if err != nil {
		return Digest{}, zerr.With(zerr.Wrap(ErrInvalidDigest, "malformed size"), "digest", s)
	}
	d := Digest{Hash: hash, Size: n}
	if err := d.Validate(); err != nil {
		return Digest{}, err
	}
	return d, nil
}

// String returns the canonical "hash/size" representation.
func (d Digest) String() string {
	return d.Hash + "/" + strconv.FormatInt(d.Size, 10)
}

// IsZero reports whether d is the zero value, i.e. no digest at all.
func (d Digest) IsZero() bool {
	return d.Hash == "" && d.Size == 0
}

// Validate checks that the hash is a lowercase hex SHA-256 and the size is not negative.
func (d Digest) Validate() error {
	if len(d.Hash) != HashSize {
		return zerr.With(zerr.Wrap(ErrInvalidDigest, "bad hash length"), "hash", d.Hash)
	}
	for i := 0; i < len(d.Hash); i++ {
		c := d.Hash[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return zerr.With(zerr.Wrap(ErrInvalidDigest, "hash is not lowercase hex"), "hash", d.Hash)
		}
	}
	if d.Size < 0 {
		return zerr.With(zerr.Wrap(ErrInvalidDigest, "negative size"), "size", d.Size)
	}
	return nil
}

// Verify checks that data hashes to d.
func (d Digest) Verify(data []byte) error {
	if got := NewDigest(data); got != d {
		err := zerr.With(zerr.Wrap(ErrDigestMismatch, "content does not match digest"), "expected", d.String())
		return zerr.With(err, "actual", got.String())
	}
	return nil
}

// Digest wire fields, shared with the remote execution API.
const (
	digestHashField protowire.Number = 1
	digestSizeField protowire.Number = 2
)

// MarshalDigest encodes d as a Digest message.
func MarshalDigest(d Digest) []byte {
	var b []byte
	if d.Hash != "" {
		b = protowire.AppendTag(b, digestHashField, protowire.BytesType)
		b = protowire.AppendString(b, d.Hash)
	}
	if d.Size != 0 {
		b = protowire.AppendTag(b, digestSizeField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(d.Size))
	}
	return b
}

// UnmarshalDigest decodes a Digest message. Unknown fields are skipped.
func UnmarshalDigest(b []byte) (Digest, error) {
	var d Digest
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Digest{}, zerr.Wrap(protowire.ParseError(n), "malformed digest")
		}
		b = b[n:]
		switch {
		case num == digestHashField && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(b)
			if m < 0 {
				return Digest{}, zerr.Wrap(protowire.ParseError(m), "malformed digest hash")
			}
			d.Hash = v
			n = m
		case num == digestSizeField && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return Digest{}, zerr.Wrap(protowire.ParseError(m), "malformed digest size")
			}
			d.Size = int64(v)
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Digest{}, zerr.Wrap(protowire.ParseError(n), "malformed digest field")
			}
		}
		b = b[n:]
	}
	return d, nil
}

// AppendDigestField appends d as an embedded message field. Zero digests are omitted.
func AppendDigestField(b []byte, num protowire.Number, d Digest) []byte {
	if d.IsZero() {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, MarshalDigest(d))
}
