package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveText(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Len(t, req.Messages, 1)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": text}},
		})
	}))
}

func TestTranslateToCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "plain", text: "/sale 1a2b 250 90", want: "/sale 1a2b 250 90"},
		{name: "fenced", text: "`/profit`", want: "/profit"},
		{name: "extra lines", text: "/month\nThis shows your month.", want: "/month"},
		{name: "no command", text: "", want: ""},
		{name: "chatter", text: "Sorry, I can't map that.", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveText(t, http.StatusOK, tt.text)
			defer srv.Close()

			got, err := newClient("key", srv.URL).TranslateToCommand(context.Background(), "sold 250g for 90")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslateToCommand_APIError(t *testing.T) {
	srv := serveText(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	_, err := newClient("key", srv.URL).TranslateToCommand(context.Background(), "hi")
	assert.Error(t, err)
}
