package domain

import (
	"go.trai.ch/zerr"
	"google.golang.org/protobuf/encoding/protowire"
)

// ArtifactVersion is the version written into new artifact records.
const ArtifactVersion = 1

// Artifact is the record describing the output of one element build. It is
// stored in the local artifact cache and exchanged with remotes in protobuf
// wire format; fields this version does not know are kept and written back.
type Artifact struct {
	Version           int32
	BuildSuccess      bool
	BuildError        string
	BuildErrorDetails string
	StrongKey         string
	WeakKey           string
	WasWorkspaced     bool
	Files             Digest
	BuildDeps         []ArtifactDependency
	PublicData        Digest
	Logs              []LogFile
	BuildTree         Digest
	Sources           Digest

	unknown []byte
}

// ArtifactDependency records the key of a dependency an artifact was built against.
type ArtifactDependency struct {
	ProjectName   string
	ElementName   string
	CacheKey      string
	WasWorkspaced bool

	unknown []byte
}

// LogFile references a build log stored in the CAS.
type LogFile struct {
	Name   string
	Digest Digest

	unknown []byte
}

// Digests returns every CAS object referenced by the artifact. Used as GC roots.
func (a *Artifact) Digests() []Digest {
	var out []Digest
	for _, d := range []Digest{a.Files, a.PublicData, a.BuildTree, a.Sources} {
		if !d.IsZero() {
			out = append(out, d)
		}
	}
	for _, l := range a.Logs {
		if !l.Digest.IsZero() {
			out = append(out, l.Digest)
		}
	}
	return out
}

const (
	artifactVersionField           protowire.Number = 1
	artifactBuildSuccessField      protowire.Number = 2
	artifactBuildErrorField        protowire.Number = 3
	artifactBuildErrorDetailsField protowire.Number = 4
	artifactStrongKeyField         protowire.Number = 5
	artifactWeakKeyField           protowire.Number = 6
	artifactWasWorkspacedField     protowire.Number = 7
	artifactFilesField             protowire.Number = 8
	artifactBuildDepsField         protowire.Number = 9
	artifactPublicDataField        protowire.Number = 10
	artifactLogsField              protowire.Number = 11
	artifactBuildTreeField         protowire.Number = 12
	artifactSourcesField           protowire.Number = 13

	dependencyProjectNameField   protowire.Number = 1
	dependencyElementNameField   protowire.Number = 2
	dependencyCacheKeyField      protowire.Number = 3
	dependencyWasWorkspacedField protowire.Number = 4

	logNameField   protowire.Number = 1
	logDigestField protowire.Number = 2
)

// Marshal encodes the artifact in field number order followed by unknown fields.
func (a *Artifact) Marshal() []byte {
	var b []byte
	if a.Version != 0 {
		b = protowire.AppendTag(b, artifactVersionField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(a.Version)))
	}
	b = appendBool(b, artifactBuildSuccessField, a.BuildSuccess)
	b = appendString(b, artifactBuildErrorField, a.BuildError)
	b = appendString(b, artifactBuildErrorDetailsField, a.BuildErrorDetails)
	b = appendString(b, artifactStrongKeyField, a.StrongKey)
	b = appendString(b, artifactWeakKeyField, a.WeakKey)
	b = appendBool(b, artifactWasWorkspacedField, a.WasWorkspaced)
	b = AppendDigestField(b, artifactFilesField, a.Files)
	for i := range a.BuildDeps {
		dep := &a.BuildDeps[i]
		var m []byte
		m = appendString(m, dependencyProjectNameField, dep.ProjectName)
		m = appendString(m, dependencyElementNameField, dep.ElementName)
		m = appendString(m, dependencyCacheKeyField, dep.CacheKey)
		m = appendBool(m, dependencyWasWorkspacedField, dep.WasWorkspaced)
		m = append(m, dep.unknown...)
		b = protowire.AppendTag(b, artifactBuildDepsField, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	b = AppendDigestField(b, artifactPublicDataField, a.PublicData)
	for i := range a.Logs {
		l := &a.Logs[i]
		var m []byte
		m = appendString(m, logNameField, l.Name)
		m = AppendDigestField(m, logDigestField, l.Digest)
		m = append(m, l.unknown...)
		b = protowire.AppendTag(b, artifactLogsField, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	b = AppendDigestField(b, artifactBuildTreeField, a.BuildTree)
	b = AppendDigestField(b, artifactSourcesField, a.Sources)
	return append(b, a.unknown...)
}

// UnmarshalArtifact decodes an artifact record.
func UnmarshalArtifact(b []byte) (*Artifact, error) {
	a := &Artifact{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformedArtifact(protowire.ParseError(n))
		}
		field := b
		b = b[n:]

		var v []byte
		var x uint64
		switch typ {
		case protowire.BytesType:
			v, n = protowire.ConsumeBytes(b)
		case protowire.VarintType:
			x, n = protowire.ConsumeVarint(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, malformedArtifact(protowire.ParseError(n))
		}
		b = b[n:]
		raw := field[:len(field)-len(b)]

		var err error
		switch {
		case num == artifactVersionField && typ == protowire.VarintType:
			a.Version = int32(x)
		case num == artifactBuildSuccessField && typ == protowire.VarintType:
			a.BuildSuccess = protowire.DecodeBool(x)
		case num == artifactBuildErrorField && typ == protowire.BytesType:
			a.BuildError = string(v)
		case num == artifactBuildErrorDetailsField && typ == protowire.BytesType:
			a.BuildErrorDetails = string(v)
		case num == artifactStrongKeyField && typ == protowire.BytesType:
			a.StrongKey = string(v)
		case num == artifactWeakKeyField && typ == protowire.BytesType:
			a.WeakKey = string(v)
		case num == artifactWasWorkspacedField && typ == protowire.VarintType:
			a.WasWorkspaced = protowire.DecodeBool(x)
		case num == artifactFilesField && typ == protowire.BytesType:
			a.Files, err = UnmarshalDigest(v)
		case num == artifactBuildDepsField && typ == protowire.BytesType:
			var dep ArtifactDependency
			dep, err = unmarshalArtifactDependency(v)
			a.BuildDeps = append(a.BuildDeps, dep)
		case num == artifactPublicDataField && typ == protowire.BytesType:
			a.PublicData, err = UnmarshalDigest(v)
		case num == artifactLogsField && typ == protowire.BytesType:
			var l LogFile
			l, err = unmarshalLogFile(v)
			a.Logs = append(a.Logs, l)
		case num == artifactBuildTreeField && typ == protowire.BytesType:
			a.BuildTree, err = UnmarshalDigest(v)
		case num == artifactSourcesField && typ == protowire.BytesType:
			a.Sources, err = UnmarshalDigest(v)
		default:
			a.unknown = append(a.unknown, raw...)
		}
		if err != nil {
			return nil, malformedArtifact(err)
		}
	}
	return a, nil
}

func unmarshalArtifactDependency(b []byte) (ArtifactDependency, error) {
	var dep ArtifactDependency
	err := forEachRawField(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64, raw []byte) {
		switch {
		case num == dependencyProjectNameField && typ == protowire.BytesType:
			dep.ProjectName = string(v)
		case num == dependencyElementNameField && typ == protowire.BytesType:
			dep.ElementName = string(v)
		case num == dependencyCacheKeyField && typ == protowire.BytesType:
			dep.CacheKey = string(v)
		case num == dependencyWasWorkspacedField && typ == protowire.VarintType:
			dep.WasWorkspaced = protowire.DecodeBool(x)
		default:
			dep.unknown = append(dep.unknown, raw...)
		}
	})
	return dep, err
}

func unmarshalLogFile(b []byte) (LogFile, error) {
	var l LogFile
	var derr error
	err := forEachRawField(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64, raw []byte) {
		switch {
		case num == logNameField && typ == protowire.BytesType:
			l.Name = string(v)
		case num == logDigestField && typ == protowire.BytesType:
			l.Digest, derr = UnmarshalDigest(v)
		default:
			l.unknown = append(l.unknown, raw...)
		}
	})
	if err == nil {
		err = derr
	}
	return l, err
}

func forEachRawField(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, x uint64, raw []byte)) error {
	for len(b) > 0 {
		start := b
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		var v []byte
		var x uint64
		switch typ {
		case protowire.BytesType:
			v, n = protowire.ConsumeBytes(b)
		case protowire.VarintType:
			x, n = protowire.ConsumeVarint(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		fn(num, typ, v, x, start[:len(start)-len(b)])
	}
	return nil
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func malformedArtifact(cause error) error {
	return zerr.With(zerr.Wrap(ErrCorruptArtifact, "malformed artifact record"), "cause", cause.Error())
}
