package cachekey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/engine/cachekey"
)

func element() *domain.Element {
	return &domain.Element{
		Name:     "app",
		Kind:     "manual",
		Sources:  []domain.Source{{Kind: "local", Path: "src"}},
		Commands: []string{"make", "make install DESTDIR=%{install-root}"},
		Variables: map[string]string{
			"prefix": "/usr",
			"jobs":   "4",
		},
		Config: map[string]any{"strip": true, "nested": map[string]any{"b": 2, "a": 1}},
	}
}

func TestWeakKey_Deterministic(t *testing.T) {
	t.Parallel()

	sources := domain.NewDigest([]byte("sources"))
	k1, err := cachekey.WeakKey(element(), sources)
	require.NoError(t, err)
	k2, err := cachekey.WeakKey(element(), sources)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64)
}

func TestWeakKey_IgnoresDependencies(t *testing.T) {
	t.Parallel()

	a := element()
	b := element()
	b.Dependencies = []domain.Dependency{{Name: "base", Type: domain.DepAll}}

	ka, err := cachekey.WeakKey(a, domain.Digest{})
	require.NoError(t, err)
	kb, err := cachekey.WeakKey(b, domain.Digest{})
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
}

func TestWeakKey_InputsChangeKey(t *testing.T) {
	t.Parallel()

	base, err := cachekey.WeakKey(element(), domain.NewDigest([]byte("sources")))
	require.NoError(t, err)

	mutations := map[string]func(e *domain.Element){
		"command":  func(e *domain.Element) { e.Commands[0] = "make -j1" },
		"kind":     func(e *domain.Element) { e.Kind = "stack" },
		"variable": func(e *domain.Element) { e.Variables["prefix"] = "/opt" },
		"config":   func(e *domain.Element) { e.Config["strip"] = false },
		"source":   func(e *domain.Element) { e.Sources[0].Directory = "sub" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			e := element()
			mutate(e)
			k, err := cachekey.WeakKey(e, domain.NewDigest([]byte("sources")))
			require.NoError(t, err)
			assert.NotEqual(t, base, k)
		})
	}

	other, err := cachekey.WeakKey(element(), domain.NewDigest([]byte("changed sources")))
	require.NoError(t, err)
	assert.NotEqual(t, base, other)
}

func TestWeakKey_Unencodable(t *testing.T) {
	t.Parallel()

	e := element()
	e.Config["bad"] = func() {}
	_, err := cachekey.WeakKey(e, domain.Digest{})
	assert.ErrorIs(t, err, domain.ErrInvalidElement)
}

func TestStrongKey_DependencyOrderMatters(t *testing.T) {
	t.Parallel()

	weak, err := cachekey.WeakKey(element(), domain.Digest{})
	require.NoError(t, err)

	ab := cachekey.StrongKey(weak, []cachekey.DependencyKey{{Name: "a", Strong: "1"}, {Name: "b", Strong: "2"}})
	ba := cachekey.StrongKey(weak, []cachekey.DependencyKey{{Name: "b", Strong: "2"}, {Name: "a", Strong: "1"}})
	assert.NotEqual(t, ab, ba)

	again := cachekey.StrongKey(weak, []cachekey.DependencyKey{{Name: "a", Strong: "1"}, {Name: "b", Strong: "2"}})
	assert.Equal(t, ab, again)
}

func TestStrongKey_PropagatesDependencyChange(t *testing.T) {
	t.Parallel()

	weak := "weak"
	before := cachekey.StrongKey(weak, []cachekey.DependencyKey{{Name: "base", Strong: "k1"}})
	after := cachekey.StrongKey(weak, []cachekey.DependencyKey{{Name: "base", Strong: "k2"}})
	assert.NotEqual(t, before, after)

	assert.Equal(t, cachekey.StrongKey(weak, nil), cachekey.StrongKey(weak, []cachekey.DependencyKey{}))
	assert.NotEqual(t, weak, cachekey.StrongKey(weak, nil))
}

func TestCompute(t *testing.T) {
	t.Parallel()

	key, err := cachekey.Compute(element(), domain.Digest{}, []cachekey.DependencyKey{{Name: "base", Strong: "k"}})
	require.NoError(t, err)
	assert.NotEqual(t, key.Weak, key.Strong)
	assert.False(t, key.IsZero())
}
