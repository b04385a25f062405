package media

import (
	"context"
	"fmt"
)

const defaultVolume = 50

// Status is the mirrored transport state shown by the UI.
type Status struct {
	Ready   bool
	Playing bool
	Muted   bool
	Volume  int
	VideoID string
}

// Controller drives a Player and mirrors what it confirms. Playing only
// changes on player events; mute and volume change once the command succeeds.
// It is not safe for concurrent use; the UI loop owns it.
type Controller struct {
	player Player
	status Status
}

// NewController wraps p. A nil player is replaced by NopPlayer.
func NewController(p Player) *Controller {
	if p == nil {
		p = NopPlayer{}
	}
	return &Controller{player: p, status: Status{Volume: defaultVolume}}
}

// Status returns the mirrored state.
func (c *Controller) Status() Status { return c.status }

// Events exposes the player event stream.
func (c *Controller) Events() <-chan Event { return c.player.Events() }

// Handle applies a confirmed event. Readiness resets the player to the
// default volume, unmuted and paused.
func (c *Controller) Handle(ctx context.Context, ev Event) error {
	switch ev {
	case EventReady:
		c.status.Ready = true
		c.status.Playing = false
		c.status.Muted = false
		if err := c.player.SetVolume(ctx, defaultVolume); err != nil {
			return fmt.Errorf("set initial volume: %w", err)
		}
		c.status.Volume = defaultVolume
		if c.status.VideoID != "" {
			return c.player.Load(ctx, c.status.VideoID)
		}
	case EventPlaying:
		c.status.Playing = true
	case EventPaused, EventEnded:
		c.status.Playing = false
	}
	return nil
}

// Load queues the video behind rawURL. Before readiness the id is kept and
// loaded once the player reports ready.
func (c *Controller) Load(ctx context.Context, rawURL string) error {
	id := ExtractVideoID(rawURL)
	if id == c.status.VideoID && c.status.Ready {
		return nil
	}
	c.status.VideoID = id
	if !c.status.Ready {
		return nil
	}
	return c.player.Load(ctx, id)
}

// TogglePlay pauses while playing, otherwise plays. Playing also lifts a
// mute and restores a zero volume.
func (c *Controller) TogglePlay(ctx context.Context) error {
	if !c.status.Ready {
		return ErrNotReady
	}
	if c.status.Playing {
		return c.player.Pause(ctx)
	}
	if err := c.player.Play(ctx); err != nil {
		return err
	}
	if c.status.Muted {
		if err := c.player.UnMute(ctx); err != nil {
			return err
		}
		c.status.Muted = false
	}
	if c.status.Volume == 0 {
		if err := c.player.SetVolume(ctx, defaultVolume); err != nil {
			return err
		}
		c.status.Volume = defaultVolume
	}
	return nil
}

// ToggleMute mutes, or unmutes and plays. Unmuting at zero volume restores
// the default volume.
func (c *Controller) ToggleMute(ctx context.Context) error {
	if !c.status.Ready {
		return ErrNotReady
	}
	if !c.status.Muted {
		if err := c.player.Mute(ctx); err != nil {
			return err
		}
		c.status.Muted = true
		return nil
	}

	if err := c.player.UnMute(ctx); err != nil {
		return err
	}
	c.status.Muted = false
	target := c.status.Volume
	if target == 0 {
		target = defaultVolume
	}
	if err := c.player.SetVolume(ctx, target); err != nil {
		return err
	}
	c.status.Volume = target
	return c.player.Play(ctx)
}

// SetVolume clamps v to 0..100. Raising the volume while muted unmutes first.
func (c *Controller) SetVolume(ctx context.Context, v int) error {
	if !c.status.Ready {
		return ErrNotReady
	}
	v = max(0, min(v, 100))
	if v > 0 && c.status.Muted {
		if err := c.player.UnMute(ctx); err != nil {
			return err
		}
		c.status.Muted = false
	}
	if err := c.player.SetVolume(ctx, v); err != nil {
		return err
	}
	c.status.Volume = v
	return nil
}

// Close releases the player.
func (c *Controller) Close() error {
	return c.player.Close()
}
