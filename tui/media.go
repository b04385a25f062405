package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"focusdeck/media"
	"focusdeck/model"
)

const volumeStep = 10

// waitForPlayer blocks on the next player event.
func waitForPlayer(events <-chan media.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		return playerEventMsg{ev: ev, ok: ok}
	}
}

func (m *Model) handlePlayerEvent(msg playerEventMsg) tea.Cmd {
	if !msg.ok {
		m.log.Info("player stopped")
		m.setStatus("Player stopped", true)
		return nil
	}
	if err := m.player.Handle(m.ctx, msg.ev); err != nil {
		m.log.Warn("player event failed", zap.String("event", string(msg.ev)), zap.Error(err))
		m.setStatus(errorText(err), true)
	}
	if msg.ev == media.EventReady {
		m.setStatus("Player ready", false)
	}
	return waitForPlayer(m.player.Events())
}

// updateMediaKeys handles the transport keys available from every view.
func (m *Model) updateMediaKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	st := m.svc.State().Media
	switch {
	case key.Matches(msg, m.keys.PlayPause):
		m.reportPlayer(m.player.TogglePlay(m.ctx), "")
	case key.Matches(msg, m.keys.Mute):
		err := m.player.ToggleMute(m.ctx)
		if m.player.Status().Muted {
			m.reportPlayer(err, "Muted")
		} else {
			m.reportPlayer(err, "Unmuted")
		}
	case key.Matches(msg, m.keys.VolumeUp), key.Matches(msg, m.keys.VolumeDown):
		step := volumeStep
		if key.Matches(msg, m.keys.VolumeDown) {
			step = -volumeStep
		}
		err := m.player.SetVolume(m.ctx, m.player.Status().Volume+step)
		m.reportPlayer(err, fmt.Sprintf("Volume %d", m.player.Status().Volume))
	case key.Matches(msg, m.keys.AddURL):
		prompt := "YouTube url: "
		if st.Type == model.MediaSpotify {
			prompt = "Spotify url: "
		}
		return m.openInput(inputAddURL, prompt, "", ""), true
	case key.Matches(msg, m.keys.NextTrack):
		m.nextInPlaylist(st)
	case key.Matches(msg, m.keys.DropTrack):
		if st.YouTubeURL == "" {
			m.setStatus("Playlist is empty", false)
			return nil, true
		}
		m.svc.RemoveFromPlaylist(st.YouTubeURL)
		m.loadCurrent("Removed from playlist")
	case key.Matches(msg, m.keys.Panel):
		m.svc.SetPlayerOpen(!st.PlayerOpen)
	case key.Matches(msg, m.keys.Source):
		next := model.MediaSpotify
		if st.Type == model.MediaSpotify {
			next = model.MediaYouTube
		}
		m.report(m.svc.SetMediaType(next), "Source: "+strings.ToLower(string(next)))
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) nextInPlaylist(st model.Media) {
	if len(st.YouTubePlaylist) == 0 {
		m.setStatus("Playlist is empty", false)
		return
	}
	next := st.YouTubePlaylist[0]
	for i, u := range st.YouTubePlaylist {
		if u == st.YouTubeURL {
			next = st.YouTubePlaylist[(i+1)%len(st.YouTubePlaylist)]
			break
		}
	}
	if err := m.svc.SetMediaURL(model.MediaYouTube, next); err != nil {
		m.report(err, "")
		return
	}
	m.loadCurrent("Now queued: " + next)
}

func (m *Model) addURL(text string) tea.Cmd {
	if m.svc.State().Media.Type == model.MediaSpotify {
		m.report(m.svc.SetMediaURL(model.MediaSpotify, text), "Spotify url set")
		return nil
	}
	if err := m.svc.AddToPlaylist(text); err != nil {
		m.report(err, "")
		return nil
	}
	m.loadCurrent("Added to playlist")
	return nil
}

// loadCurrent queues the current YouTube url on the player.
func (m *Model) loadCurrent(success string) {
	m.reportPlayer(m.player.Load(m.ctx, m.svc.State().Media.YouTubeURL), success)
}

// reportPlayer is report for transport commands. A player that is still
// starting is not an error worth logging.
func (m *Model) reportPlayer(err error, success string) {
	if err != nil && !errors.Is(err, media.ErrNotReady) {
		m.log.Warn("player command failed", zap.Error(err))
	}
	if err == nil && success == "" {
		return
	}
	m.report(err, success)
}

func (m *Model) renderMediaPanel(st model.AppState, width int) string {
	status := m.player.Status()
	source := "youtube"
	url := st.Media.YouTubeURL
	if st.Media.Type == model.MediaSpotify {
		source = "spotify"
		url = st.Media.SpotifyURL
	}

	state := "paused"
	if status.Playing {
		state = "playing"
	}
	if status.Muted {
		state += " • muted"
	}
	line := fmt.Sprintf("♪ %s • %s • vol %d", source, state, status.Volume)
	if st.Media.Type == model.MediaYouTube {
		if status.VideoID != "" {
			line += " • " + status.VideoID
		}
		line += fmt.Sprintf(" • %d in playlist", len(st.Media.YouTubePlaylist))
		if !status.Ready {
			line += " • " + dim("player not ready")
		}
	}
	body := line + "\n" + dim(truncateRunes(url, max(width-4, 10)))
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(lipgloss.Color("240")).
		Width(width).
		Render(body)
}
