package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemotePath(t *testing.T) {
	tests := []struct {
		input  string
		expect string
		depth  int
		abs    bool
	}{
		{"/", "/", 0, true},
		{"", "", 0, false},
		{"/sites/ftp.ibiblio.org/pub/docs/books/gutenberg/", "/sites/ftp.ibiblio.org/pub/docs/books/gutenberg", 6, true},
		{"pub//docs///", "pub/docs", 2, false},
		{" /a/b ", "/a/b", 2, true},
	}

	for _, tt := range tests {
		p := ParseRemotePath(tt.input)
		assert.Equal(t, tt.expect, p.String(), "input %q", tt.input)
		assert.Equal(t, tt.depth, p.Depth(), "input %q", tt.input)
		assert.Equal(t, tt.abs, p.IsAbs(), "input %q", tt.input)
	}
}

func TestRemotePathJoin(t *testing.T) {
	base := ParseRemotePath("/pub/gutenberg/")

	child := base.Join("1")
	assert.Equal(t, "/pub/gutenberg/1", child.String())
	assert.Equal(t, "/pub/gutenberg", base.String())

	// Siblings built from the same parent must not share storage.
	a := child.Join("a")
	b := child.Join("b")
	assert.Equal(t, "/pub/gutenberg/1/a", a.String())
	assert.Equal(t, "/pub/gutenberg/1/b", b.String())

	assert.Equal(t, "/pub/gutenberg/1/x/y", child.Join("/x//y/").String())
	assert.Equal(t, "/pub/gutenberg/1", child.Join("").String())
	assert.Equal(t, "/x", ParseRemotePath("/").Join("x").String())
}

func TestRemotePathParentBase(t *testing.T) {
	p := ParseRemotePath("/a/b/c.txt")
	assert.Equal(t, "c.txt", p.Base())
	assert.Equal(t, "/a/b", p.Parent().String())
	assert.Equal(t, "/", p.Parent().Parent().Parent().String())
	assert.Equal(t, "/", ParseRemotePath("/").Parent().String())
	assert.Equal(t, "", ParseRemotePath("/").Base())
	assert.Equal(t, "/a/b/c.txt", p.String())
}

func TestRemotePathJSON(t *testing.T) {
	p := ParseRemotePath("/pub/1")
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `"/pub/1"`, string(data))

	var decoded RemotePath
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, p, decoded)
}
