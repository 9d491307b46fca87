package youtube

import (
	"errors"
	"testing"
)

func TestResolveVideoIDRecognizedShapes(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"watch", "https://www.youtube.com/watch?v=abc123"},
		{"watch bare host", "https://youtube.com/watch?v=abc123"},
		{"watch mobile", "https://m.youtube.com/watch?v=abc123"},
		{"short link", "https://youtu.be/abc123"},
		{"short link trailing slash", "https://youtu.be/abc123/"},
		{"embed", "https://www.youtube.com/embed/abc123"},
		{"v path", "https://www.youtube.com/v/abc123"},
		{"surrounding whitespace", "  https://www.youtube.com/watch?v=abc123  "},
		{"watch with extra params", "https://www.youtube.com/watch?v=abc123&list=PLx&t=10s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ResolveVideoID(tc.url)
			if err != nil {
				t.Fatalf("ResolveVideoID(%q): %v", tc.url, err)
			}
			if id != "abc123" {
				t.Fatalf("ResolveVideoID(%q) = %q, want %q", tc.url, id, "abc123")
			}
		})
	}
}

func TestResolveVideoIDInvalid(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"unrecognized host", "https://vimeo.com/12345"},
		{"watch without v", "https://www.youtube.com/watch"},
		{"watch with empty v", "https://www.youtube.com/watch?v="},
		{"unsupported path", "https://www.youtube.com/playlist?list=PLx"},
		{"short link without id", "https://youtu.be/"},
		{"embed without id", "https://www.youtube.com/embed/"},
		{"not a url", "://missing-scheme"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ResolveVideoID(tc.url); !errors.Is(err, ErrInvalidURL) {
				t.Fatalf("ResolveVideoID(%q) error = %v, want ErrInvalidURL", tc.url, err)
			}
		})
	}
}
