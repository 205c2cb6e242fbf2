package news

import (
	"net/url"
	"strings"
)

// placeholderHosts: заглушки, которые встречаются в тестовых и сломанных лентах.
var placeholderHosts = []string{"example.com", "example.org", "localhost", "127.0.0.1"}

// IsPlaceholderURL сообщает, что URL пуст, не разбирается или указывает на домен-заглушку.
func IsPlaceholderURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range placeholderHosts {
		if host == p || strings.HasSuffix(host, "."+p) {
			return true
		}
	}
	return false
}
