package app

import (
	"focusdeck/media"
	"focusdeck/model"
)

// AddToPlaylist adds url to the playlist and makes it current.
func (s *Service) AddToPlaylist(url string) error {
	return s.updateMedia(func(m model.Media) (model.Media, error) {
		return media.AddToPlaylist(m, url)
	})
}

// RemoveFromPlaylist drops url from the playlist.
func (s *Service) RemoveFromPlaylist(url string) {
	_ = s.updateMedia(func(m model.Media) (model.Media, error) {
		return media.RemoveFromPlaylist(m, url), nil
	})
}

// SetMediaURL sets the current url of a source.
func (s *Service) SetMediaURL(t model.MediaType, url string) error {
	return s.updateMedia(func(m model.Media) (model.Media, error) {
		return media.SetMediaURL(m, t, url)
	})
}

// SetMediaType switches the active media source.
func (s *Service) SetMediaType(t model.MediaType) error {
	return s.updateMedia(func(m model.Media) (model.Media, error) {
		return media.SetMediaType(m, t)
	})
}

// SetPlayerOpen shows or hides the player panel.
func (s *Service) SetPlayerOpen(open bool) {
	_ = s.updateMedia(func(m model.Media) (model.Media, error) {
		return media.SetPlayerOpen(m, open), nil
	})
}

func (s *Service) updateMedia(fn func(model.Media) (model.Media, error)) error {
	return s.update(func(st *model.AppState) error {
		next, err := fn(st.Media)
		if err != nil {
			return err
		}
		st.Media = next
		return nil
	})
}
