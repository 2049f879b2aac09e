package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDef(key string, exts ...string) SourceDefinition {
	def := flatTestDef
	def.Info = SourceInfo{Key: key, Label: key, Extensions: exts}
	def.Shape = lineShape
	return def
}

func TestRegistry(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(testDef("zeta", ".psv"))
	Register(testDef("alpha", ".TXT", ".tsv"))

	assert.Equal(t, 2, KindCount())

	def, ok := Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", def.Info.Key)

	_, ok = Get("missing")
	assert.False(t, ok)

	kinds := Kinds()
	require.Len(t, kinds, 2)
	assert.Equal(t, "alpha", kinds[0].Key, "kinds are sorted by key")
	assert.Equal(t, "zeta", kinds[1].Key)
}

func TestForFile(t *testing.T) {
	Clear()
	t.Cleanup(Clear)
	Register(testDef("pipe", ".psv"))
	Register(testDef("text", ".TXT"))

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"V8.psv", "pipe", true},
		{"dir/V8.PSV", "pipe", true},
		{"notes.txt", "text", true},
		{"archive.tar.psv", "pipe", true},
		{"README", "", false},
		{"schedule.xlsx", "", false},
	}
	for _, tt := range tests {
		def, ok := ForFile(tt.name)
		assert.Equal(t, tt.ok, ok, "ForFile(%q)", tt.name)
		assert.Equal(t, tt.want, def.Info.Key, "ForFile(%q)", tt.name)
	}
}

func TestRegister_Panics(t *testing.T) {
	Clear()
	t.Cleanup(Clear)
	Register(testDef("pipe", ".psv"))

	assert.Panics(t, func() { Register(testDef("pipe", ".psv")) }, "duplicate key")

	noShape := testDef("empty")
	noShape.Shape = nil
	assert.Panics(t, func() { Register(noShape) }, "missing shape")
}

func TestRequiredFields(t *testing.T) {
	assert.Equal(t, []string{"clientContentId", "performChannel"}, flatTestDef.RequiredFields())
	assert.Nil(t, eventTestDef.RequiredFields())
}
