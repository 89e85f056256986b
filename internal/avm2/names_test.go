package avm2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespaceEqualityBySpellingAndKind(t *testing.T) {
	pkg := PackageNamespace("flash.events")
	priv := PrivateNamespace("flash.events")
	assert.False(t, pkg.Equal(priv), "same payload text across different kinds must not collide")
	assert.True(t, pkg.Equal(PackageNamespace("flash.events")))
}

func TestQNameComponentwiseEquality(t *testing.T) {
	a := NewQName(PublicNamespace(), "x")
	b := NewQName(PackageNamespace(""), "x")
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(PublicQName("x")))
}
