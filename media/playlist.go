// Package media keeps the playlist slice of the state and mirrors the
// transport state of an external player.
package media

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"focusdeck/model"
)

var (
	ErrEmptyURL     = errors.New("url must not be empty")
	ErrInvalidMedia = errors.New("invalid media type")
)

// AddToPlaylist appends u when it is not listed yet and makes it current.
func AddToPlaylist(m model.Media, u string) (model.Media, error) {
	u = strings.TrimSpace(u)
	if u == "" {
		return m, ErrEmptyURL
	}
	m.YouTubePlaylist = withURL(m.YouTubePlaylist, u)
	m.YouTubeURL = u
	return m, nil
}

// RemoveFromPlaylist drops u. When u was current, the first remaining entry
// becomes current, or the default url when nothing is left.
func RemoveFromPlaylist(m model.Media, u string) model.Media {
	kept := make([]string, 0, len(m.YouTubePlaylist))
	for _, entry := range m.YouTubePlaylist {
		if entry != u {
			kept = append(kept, entry)
		}
	}
	m.YouTubePlaylist = kept
	if m.YouTubeURL == u {
		if len(kept) > 0 {
			m.YouTubeURL = kept[0]
		} else {
			m.YouTubeURL = model.DefaultYouTubeURL
		}
	}
	return m
}

// SetMediaURL sets the current url for the given source. YouTube urls are
// also added to the playlist when absent.
func SetMediaURL(m model.Media, t model.MediaType, u string) (model.Media, error) {
	u = strings.TrimSpace(u)
	if u == "" {
		return m, ErrEmptyURL
	}
	switch t {
	case model.MediaYouTube:
		m.YouTubeURL = u
		m.YouTubePlaylist = withURL(m.YouTubePlaylist, u)
	case model.MediaSpotify:
		m.SpotifyURL = u
	default:
		return m, ErrInvalidMedia
	}
	return m, nil
}

// SetMediaType switches the active source.
func SetMediaType(m model.Media, t model.MediaType) (model.Media, error) {
	if t != model.MediaYouTube && t != model.MediaSpotify {
		return m, ErrInvalidMedia
	}
	m.Type = t
	return m, nil
}

// SetPlayerOpen shows or hides the player panel.
func SetPlayerOpen(m model.Media, open bool) model.Media {
	m.PlayerOpen = open
	return m
}

// ExtractVideoID returns the value of the v= parameter up to the next '&',
// or the last path segment when there is none.
func ExtractVideoID(raw string) string {
	if _, after, ok := strings.Cut(raw, "v="); ok {
		id, _, _ := strings.Cut(after, "&")
		if id != "" {
			return id
		}
	}
	if parsed, err := url.Parse(raw); err == nil && parsed.Path != "" {
		return path.Base(parsed.Path)
	}
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		return raw[i+1:]
	}
	return raw
}

func withURL(list []string, u string) []string {
	for _, entry := range list {
		if entry == u {
			return list
		}
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, u)
}
