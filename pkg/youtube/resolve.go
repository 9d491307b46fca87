package youtube

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURL indicates the input does not address a video on a
// recognized host.
var ErrInvalidURL = errors.New("invalid video URL")

// ResolveVideoID extracts the video identifier from a URL.
//
// Recognized shapes:
//   - https://youtu.be/VIDEO_ID
//   - https://www.youtube.com/watch?v=VIDEO_ID (also youtube.com, m.youtube.com)
//   - https://www.youtube.com/embed/VIDEO_ID
//   - https://www.youtube.com/v/VIDEO_ID
//
// Pure and deterministic; safe for arbitrary untrusted input.
func ResolveVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}

	if u.Host == "youtu.be" {
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return "", ErrInvalidURL
		}
		return id, nil
	}

	switch u.Host {
	case "youtube.com", "www.youtube.com", "m.youtube.com":
	default:
		return "", ErrInvalidURL
	}

	if u.Path == "/watch" {
		id := u.Query().Get("v")
		if id == "" {
			return "", ErrInvalidURL
		}
		return id, nil
	}

	// /embed/<id> and /v/<id>: the identifier is the segment after the token.
	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if (part == "embed" || part == "v") && i < len(parts)-1 && parts[i+1] != "" {
			return parts[i+1], nil
		}
	}
	return "", ErrInvalidURL
}
