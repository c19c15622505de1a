package binding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestExpand(t *testing.T) {
	data := decode(t, `{"user":{"name":"Ada"},"items":[{"qty":3},{"qty":2.5}],"flag":true}`)

	cases := map[string]string{
		"Hello, ${user.name}!":                "Hello, Ada!",
		"${items[0].qty} / ${ items[1].qty }": "3 / 2.5",
		"${flag}":                             "true",
		"${}":                                 "${}",
	}
	for in, want := range cases {
		out, err := Expand(in, data)
		require.NoError(t, err, in)
		assert.Equal(t, want, out, in)
	}

	out, err := Expand("${x}", nil)
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.Equal(t, "${x}", out)
}

func TestExpandReportsMissing(t *testing.T) {
	data := decode(t, `{"a":1}`)

	out, err := Expand("${a}-${b}-${c[0]}", data)
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.Contains(t, err.Error(), "b, c[0]")
	assert.Equal(t, "1-${b}-${c[0]}", out)

	out, err = Expand("plain", data)
	require.NoError(t, err)
	assert.Equal(t, "plain", out)
}

func TestLookup(t *testing.T) {
	data := decode(t, `{"grid":[[1,2],[3,4]]}`)

	v, ok := Lookup(data, "grid[1][0]")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	_, ok = Lookup(data, "grid[5]")
	assert.False(t, ok)
	_, ok = Lookup(data, "grid[x]")
	assert.False(t, ok)
	_, ok = Lookup(data, "grid.name")
	assert.False(t, ok)
}
