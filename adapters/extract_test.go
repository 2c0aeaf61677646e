package adapters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message", body: `{"message":"invalid image"}`, want: "invalid image"},
		{name: "detail", body: `{"detail":"not found"}`, want: "not found"},
		{name: "message before detail", body: `{"detail":"second","message":"first"}`, want: "first"},
		{name: "nested error", body: `{"error":{"code":"x","message":"bad source"}}`, want: "bad source"},
		{name: "string error", body: `{"error":"quota exceeded"}`, want: "quota exceeded"},
		{name: "structured detail", body: `{"detail":{"error":"avatar"}}`, want: `{"error":"avatar"}`},
		{name: "no known field", body: `{"code":7}`, want: `{"code":7}`},
		{name: "not json", body: "Internal Server Error", want: "Internal Server Error"},
		{name: "empty", body: "  ", want: "Empty response"},
		{name: "json array", body: `["a","b"]`, want: `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMessage([]byte(tt.body)))
		})
	}
}

func TestExtractMessage_TruncatesRawBody(t *testing.T) {
	raw := "<html>" + strings.Repeat("x", 500)
	got := ExtractMessage([]byte(raw))
	assert.Len(t, got, MaxMessageLength)
	assert.True(t, strings.HasPrefix(got, "<html>"))
}

func TestFirstString(t *testing.T) {
	body := []byte(`{"id":"","data":{"task_id":"t-1","_id":"a-1"},"n":42}`)

	assert.Equal(t, "t-1", FirstString(body, "task_id", "id", "data.task_id", "data._id"))
	assert.Equal(t, "a-1", FirstString(body, "data._id", "data.task_id"))
	assert.Equal(t, "42", FirstString(body, "n"))
	assert.Equal(t, "", FirstString(body, "data"), "objects are not scalars")
	assert.Equal(t, "", FirstString([]byte("not json"), "id"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "héll", Truncate("héllo", 4))
}
