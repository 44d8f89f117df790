package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	fenced := "Here is the result:\n```json\n{\"a\":1}\n```\nThanks"
	plain := "{\"a\":1}"

	got1, ok1 := ExtractJSONObject(fenced)
	require.True(t, ok1)
	got2, ok2 := ExtractJSONObject(plain)
	require.True(t, ok2)

	assert.Equal(t, got2, got1, "fenced and plain inputs must extract identically")
	assert.JSONEq(t, `{"a":1}`, got1)
}

func TestExtractJSONObjectProse(t *testing.T) {
	raw := "The model says: {\"x\": [1, 2, {\"y\": true}]} and that is all."
	got, ok := ExtractJSONObject(raw)
	require.True(t, ok)
	assert.JSONEq(t, `{"x":[1,2,{"y":true}]}`, got)
}

func TestExtractJSONObjectNone(t *testing.T) {
	for _, raw := range []string{"", "no json here", "}{", "[1,2,3]"} {
		_, ok := ExtractJSONObject(raw)
		assert.False(t, ok, "input %q", raw)
	}
}

func TestDecodeLoose(t *testing.T) {
	var out struct {
		A int `json:"a"`
	}
	require.NoError(t, DecodeLoose("```json\n{\"a\": 7}\n```", &out))
	assert.Equal(t, 7, out.A)

	assert.Error(t, DecodeLoose("not json at all", &out))
	assert.Error(t, DecodeLoose("{\"a\": }", &out))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}
