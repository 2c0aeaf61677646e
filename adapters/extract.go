package adapters

import (
	"bytes"
	"strings"

	"github.com/tidwall/gjson"
)

// MaxMessageLength bounds raw response text copied into error messages.
const MaxMessageLength = 200

// messagePaths are tried in order when looking for a human readable error in
// a provider response. A bare string "error" is accepted after the nested form.
var messagePaths = []string{"message", "detail", "error.message", "error"}

// FirstString returns the first non-empty scalar found at paths, in order.
func FirstString(body []byte, paths ...string) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range paths {
		if s := scalar(gjson.GetBytes(body, path)); s != "" {
			return s
		}
	}
	return ""
}

// ExtractMessage returns the best-effort error message from a provider body:
// the first structured message field, or the raw body truncated to
// MaxMessageLength when none is present or the body is not JSON.
func ExtractMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "Empty response"
	}
	if gjson.ValidBytes(trimmed) {
		root := gjson.ParseBytes(trimmed)
		if root.IsObject() {
			for _, path := range messagePaths {
				r := root.Get(path)
				if path == "detail" {
					if s := strings.TrimSpace(r.String()); s != "" {
						return s
					}
					continue
				}
				if s := scalar(r); s != "" {
					return s
				}
			}
		}
	}
	return Truncate(string(trimmed), MaxMessageLength)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func scalar(r gjson.Result) string {
	switch r.Type {
	case gjson.String, gjson.Number:
		return strings.TrimSpace(r.String())
	}
	return ""
}
