package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailable(t *testing.T) {
	raw, err := Unavailable{}.GenerateStructured(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Nil(t, raw, "unavailable client reports no usable response, not an error")
}

func TestStatic_MatchesSubstring(t *testing.T) {
	client := Static{
		Responses: map[string]json.RawMessage{
			"privacy": json.RawMessage(`{"risks":[]}`),
		},
		Default: json.RawMessage(`{"status":"ok"}`),
	}

	raw, err := client.GenerateStructured(context.Background(), "You are a Privacy Counsel.", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"risks":[]}`, string(raw))

	raw, err = client.GenerateStructured(context.Background(), "unrelated prompt", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))
}

func TestDecode(t *testing.T) {
	var out struct {
		Status string `json:"status"`
	}
	ok, err := Decode(nil, &out)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Decode(json.RawMessage(`{"status":"revise"}`), &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "revise", out.Status)

	_, err = Decode(json.RawMessage(`{broken`), &out)
	assert.Error(t, err)
}
