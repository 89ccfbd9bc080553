package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DesignDocFn(t *testing.T) {
	ddfn := DesignDocFn{
		Type:        ViewFn,
		DesignDocID: "_design/some",
		FnName:      "name",
	}
	assert.Equal(t, "views:some:name", ddfn.String())
	assert.Equal(t, "some/name", ddfn.ViewName())
	assert.Equal(t, []byte("views:some:name#3"), ddfn.GenerationBucket(3))

	parsed, err := ParseDesignDocFn(ddfn.String())
	require.NoError(t, err)
	assert.Equal(t, ddfn, *parsed)
}

func Test_ParseViewName(t *testing.T) {
	ddfn, err := ParseViewName("ddoc/aview")
	require.NoError(t, err)
	assert.Equal(t, "_design/ddoc", ddfn.DesignDocID)
	assert.Equal(t, "aview", ddfn.FnName)

	ddfn, err = ParseViewName("_design/ddoc/aview")
	require.NoError(t, err)
	assert.Equal(t, "ddoc/aview", ddfn.ViewName())

	for _, invalid := range []string{"", "ddoc", "ddoc/", "/view"} {
		_, err := ParseViewName(invalid)
		assert.Error(t, err, invalid)
	}
}
