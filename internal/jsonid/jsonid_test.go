package jsonid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want ID
	}{
		{`{"id":7}`, "7"},
		{`{"id":"a1b2"}`, "a1b2"},
		{`{"id":null}`, ""},
		{`{}`, ""},
	}
	for _, c := range cases {
		var v struct {
			ID ID `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(c.in), &v), c.in)
		assert.Equal(t, c.want, v.ID, c.in)
	}

	var v struct {
		ID ID `json:"id"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &v))
}

func TestMarshalAsString(t *testing.T) {
	b, err := json.Marshal(struct {
		ID ID `json:"id"`
	}{ID: "12"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"12"}`, string(b))
}
