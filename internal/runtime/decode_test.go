package runtime_test

import (
	"testing"

	"github.com/Jembe/jembe-sub000/internal/runtime"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponse(t *testing.T) {
	resp, err := runtime.DecodeResponse([]byte(`[
		{"execName": "/page", "url": "/tasks", "changesUrl": true, "state": {"n": 1}, "actions": ["refresh"], "dom": "<html></html>"},
		{"execName": "/page/view", "state": {}},
		{"execName": "/page/empty", "dom": ""},
		{"removeComponents": ["/page/old"]}
	]`))
	require.NoError(t, err)

	require.Len(t, resp.Components, 3)
	page := resp.Components[0]
	assert.Equal(t, "/page", page.ExecName)
	assert.Equal(t, "/tasks", page.URL)
	assert.True(t, page.ChangesURL)
	assert.Equal(t, float64(1), page.State["n"])
	assert.Equal(t, []string{"refresh"}, page.Actions)
	require.NotNil(t, page.DOM)
	assert.Equal(t, "<html></html>", *page.DOM)

	assert.Nil(t, resp.Components[1].DOM, "absent markup means a state-only record")
	require.NotNil(t, resp.Components[2].DOM)
	assert.Empty(t, *resp.Components[2].DOM)

	assert.Equal(t, []string{"/page/old"}, resp.Remove)
}

func TestDecodeResponse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not a list", `{"execName": "/page"}`},
		{"not json", `<html>`},
		{"relative name", `[{"execName": "page"}]`},
		{"missing name", `[{"state": {}}]`},
		{"bad removal list", `[{"removeComponents": {"a": 1}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runtime.DecodeResponse([]byte(tt.body))
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}

func TestDecodeComponentData(t *testing.T) {
	data, err := runtime.DecodeComponentData(`{"state": {"q": "x"}, "url": "/s", "changesUrl": true, "actions": ["go"]}`)
	require.NoError(t, err)
	assert.Equal(t, "x", data.State["q"])
	assert.Equal(t, "/s", data.URL)
	assert.True(t, data.ChangesURL)
	assert.Equal(t, []string{"go"}, data.Actions)

	empty, err := runtime.DecodeComponentData("")
	require.NoError(t, err)
	assert.Nil(t, empty.State)

	_, err = runtime.DecodeComponentData("{")
	assert.Error(t, err)
}
