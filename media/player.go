package media

import (
	"context"
	"errors"
)

// ErrNotReady is returned while the player has not reported readiness.
var ErrNotReady = errors.New("player not ready")

// Event is a state change confirmed by the player.
type Event string

const (
	EventReady   Event = "READY"
	EventPlaying Event = "PLAYING"
	EventPaused  Event = "PAUSED"
	EventEnded   Event = "ENDED"
)

// Player is the control surface of an external player.
type Player interface {
	Load(ctx context.Context, videoID string) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Mute(ctx context.Context) error
	UnMute(ctx context.Context) error
	SetVolume(ctx context.Context, volume int) error
	Events() <-chan Event
	Close() error
}

// NopPlayer accepts every command and never reports anything.
type NopPlayer struct{}

func (NopPlayer) Load(context.Context, string) error   { return nil }
func (NopPlayer) Play(context.Context) error           { return nil }
func (NopPlayer) Pause(context.Context) error          { return nil }
func (NopPlayer) Mute(context.Context) error           { return nil }
func (NopPlayer) UnMute(context.Context) error         { return nil }
func (NopPlayer) SetVolume(context.Context, int) error { return nil }
func (NopPlayer) Events() <-chan Event                 { return nil }
func (NopPlayer) Close() error                         { return nil }
