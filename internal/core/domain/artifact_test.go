package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stratum/internal/core/domain"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestArtifact_RoundTrip(t *testing.T) {
	art := &domain.Artifact{
		Version:      domain.ArtifactVersion,
		BuildSuccess: true,
		StrongKey:    "strong",
		WeakKey:      "weak",
		Files:        domain.NewDigest([]byte("files")),
		BuildDeps: []domain.ArtifactDependency{
			{ProjectName: "demo", ElementName: "base", CacheKey: "k1"},
			{ProjectName: "demo", ElementName: "lib", CacheKey: "k2"},
		},
		PublicData: domain.NewDigest([]byte("public")),
		Logs:       []domain.LogFile{{Name: "build.log", Digest: domain.NewDigest([]byte("log"))}},
		Sources:    domain.NewDigest([]byte("sources")),
	}

	data := art.Marshal()
	got, err := domain.UnmarshalArtifact(data)
	require.NoError(t, err)

	assert.Equal(t, art.StrongKey, got.StrongKey)
	assert.Equal(t, art.Files, got.Files)
	assert.Equal(t, art.BuildDeps[1].ElementName, got.BuildDeps[1].ElementName)
	assert.Equal(t, art.Logs[0].Digest, got.Logs[0].Digest)
	assert.Equal(t, data, got.Marshal())
	assert.ElementsMatch(t, []domain.Digest{art.Files, art.PublicData, art.Sources, art.Logs[0].Digest}, got.Digests())
}

func TestArtifact_PreservesUnknownFields(t *testing.T) {
	art := &domain.Artifact{Version: 1, BuildSuccess: false, BuildError: "build failed", StrongKey: "s"}
	data := art.Marshal()

	// Field 14 and 99 are not known to this version.
	data = protowire.AppendTag(data, 14, protowire.BytesType)
	data = protowire.AppendString(data, "low-diversity")
	data = protowire.AppendTag(data, 99, protowire.VarintType)
	data = protowire.AppendVarint(data, 7)

	got, err := domain.UnmarshalArtifact(data)
	require.NoError(t, err)
	assert.Equal(t, "build failed", got.BuildError)
	assert.False(t, got.BuildSuccess)
	assert.Equal(t, data, got.Marshal())
}

func TestUnmarshalArtifact_Malformed(t *testing.T) {
	_, err := domain.UnmarshalArtifact([]byte{0x2a, 0x05, 'a'})
	assert.ErrorIs(t, err, domain.ErrCorruptArtifact)
}
