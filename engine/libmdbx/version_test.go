package libmdbx

import (
	"testing"

	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/stretchr/testify/assert"

	"github.com/caffeineduck/mdbsh/mdb"
)

func TestLinkedVersion(t *testing.T) {
	tests := []struct {
		describe string
		want     mdb.Version
	}{
		{"v0.14.1-0-ga13147d1", mdb.Version{Major: 0, Minor: 14, Patch: 1}},
		{"v0.13.6-12-gdeadbee", mdb.Version{Major: 0, Minor: 13, Patch: 6}},
		{"0.14.2", mdb.Version{Major: 0, Minor: 14, Patch: 2}},
		{"a13147d1", Header},
		{"v0.x.1-0-g1", Header},
		{"", Header},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, linkedVersion(tt.describe), tt.describe)
	}
}

func TestEngineReportsLibraryVersion(t *testing.T) {
	assert.Equal(t, mdb.Version{Major: int(mdbx.Major), Minor: int(mdbx.Minor)}, Header)

	e := New()
	defer e.Close()
	assert.Equal(t, Header, e.BuildVersion())
	assert.Equal(t, linkedVersion(mdbx.Version()), e.RuntimeVersion())
	assert.Equal(t, Header.Major, e.RuntimeVersion().Major)
	assert.Equal(t, Header.Minor, e.RuntimeVersion().Minor)
	assert.True(t, e.RuntimeVersion().Compatible(e.BuildVersion()))
}
