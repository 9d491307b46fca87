package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"
)

const (
	defaultBaseURL           = "https://www.youtube.com"
	defaultPreferredLanguage = "en"

	playerResponseMarker = "ytInitialPlayerResponse"
)

// Expected acquisition outcomes. Anything else the provider or transport
// reports surfaces as a wrapped error.
var (
	// ErrNoTranscript indicates the video has no caption tracks at all.
	ErrNoTranscript = errors.New("no transcript available")
	// ErrTranscriptsDisabled indicates captions are categorically disabled
	// for the video. Distinct from ErrNoTranscript; never falls back.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled")
)

// IsExpectedOutcome reports whether err is an acquisition outcome shown to
// users as a notice rather than a provider fault.
func IsExpectedOutcome(err error) bool {
	return errors.Is(err, ErrNoTranscript) || errors.Is(err, ErrTranscriptsDisabled)
}

// CaptionEntry is one timed caption line as returned by the provider.
type CaptionEntry struct {
	Start    float64
	Duration float64
	Text     string
}

// Track identifies one caption track listed for a video.
type Track struct {
	LanguageCode string
	Name         string
	Kind         string
	BaseURL      string
}

// Client fetches caption tracks from the video provider.
type Client struct {
	baseURL           string
	preferredLanguage string
	httpClient        *http.Client
}

// NewClient constructs a caption client. baseURL and preferredLanguage
// default to the public provider host and English when empty.
func NewClient(baseURL, preferredLanguage string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	preferredLanguage = strings.TrimSpace(preferredLanguage)
	if preferredLanguage == "" {
		preferredLanguage = defaultPreferredLanguage
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:           baseURL,
		preferredLanguage: preferredLanguage,
		httpClient:        &http.Client{Timeout: timeout},
	}
}

// Transcript acquires caption entries for a video with a two-tier language
// fallback: the preferred-language track when listed, otherwise the first
// track in provider order. Zero tracks yields ErrNoTranscript; disabled
// captions yield ErrTranscriptsDisabled without trying alternates.
func (c *Client) Transcript(ctx context.Context, videoID string) ([]CaptionEntry, Track, error) {
	tracks, err := c.ListTracks(ctx, videoID)
	if err != nil {
		return nil, Track{}, err
	}
	if len(tracks) == 0 {
		return nil, Track{}, ErrNoTranscript
	}
	track := tracks[0]
	for _, t := range tracks {
		if t.LanguageCode == c.preferredLanguage {
			track = t
			break
		}
	}
	entries, err := c.FetchTrack(ctx, track)
	if err != nil {
		return nil, Track{}, err
	}
	return entries, track, nil
}

// ListTracks fetches the watch page and returns the caption tracks the
// player response lists for the video, in provider order.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	pageURL := c.baseURL + "/watch?v=" + url.QueryEscape(videoID)
	body, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}

	payload, err := extractPlayerResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}

	var response playerResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	if response.Captions == nil {
		return nil, ErrTranscriptsDisabled
	}

	raw := response.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	tracks := make([]Track, 0, len(raw))
	for _, t := range raw {
		tracks = append(tracks, Track{
			LanguageCode: t.LanguageCode,
			Name:         t.Name.SimpleText,
			Kind:         t.Kind,
			BaseURL:      t.BaseURL,
		})
	}
	return tracks, nil
}

// FetchTrack downloads one caption track and decodes its timed entries.
func (c *Client) FetchTrack(ctx context.Context, track Track) ([]CaptionEntry, error) {
	trackURL := track.BaseURL
	if strings.HasPrefix(trackURL, "/") {
		trackURL = c.baseURL + trackURL
	}
	body, err := c.get(ctx, trackURL)
	if err != nil {
		return nil, fmt.Errorf("fetch caption track: %w", err)
	}

	var doc captionDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode caption track: %w", err)
	}
	entries := make([]CaptionEntry, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		entries = append(entries, CaptionEntry{
			Start:    t.Start,
			Duration: t.Duration,
			Text:     text,
		})
	}
	return entries, nil
}

// RawTrack returns the undecoded provider payload for one caption track.
// Used to archive the extraction source verbatim.
func (c *Client) RawTrack(ctx context.Context, track Track) ([]byte, error) {
	trackURL := track.BaseURL
	if strings.HasPrefix(trackURL, "/") {
		trackURL = c.baseURL + trackURL
	}
	body, err := c.get(ctx, trackURL)
	if err != nil {
		return nil, fmt.Errorf("fetch caption track: %w", err)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", c.preferredLanguage)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("provider status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 16<<20))
}

// extractPlayerResponse walks the watch page and returns the JSON object
// assigned to ytInitialPlayerResponse in one of the inline scripts.
func extractPlayerResponse(page []byte) ([]byte, error) {
	doc, err := xhtml.Parse(strings.NewReader(string(page)))
	if err != nil {
		return nil, err
	}
	var payload []byte
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if payload != nil {
			return
		}
		if n.Type == xhtml.ElementNode && n.Data == "script" && n.FirstChild != nil {
			if obj, ok := playerResponseJSON(n.FirstChild.Data); ok {
				payload = obj
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	if payload == nil {
		return nil, errors.New("player response not found")
	}
	return payload, nil
}

// playerResponseJSON slices the balanced JSON object following the marker
// assignment out of a script body.
func playerResponseJSON(script string) ([]byte, bool) {
	idx := strings.Index(script, playerResponseMarker)
	if idx < 0 {
		return nil, false
	}
	start := strings.IndexByte(script[idx:], '{')
	if start < 0 {
		return nil, false
	}
	start += idx

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(script); i++ {
		ch := script[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return []byte(script[start : i+1]), true
			}
		}
	}
	return nil, false
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []struct {
				BaseURL      string `json:"baseUrl"`
				LanguageCode string `json:"languageCode"`
				Kind         string `json:"kind"`
				Name         struct {
					SimpleText string `json:"simpleText"`
				} `json:"name"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionDocument struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
		Body     string  `xml:",chardata"`
	} `xml:"text"`
}
