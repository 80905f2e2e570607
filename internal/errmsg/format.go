// Package errmsg provides consistent error formatting for user-facing messages.
// Format and FormatWith build strings for status lines and logs; Wrap and
// WrapWith build errors that keep the cause reachable through errors.Is.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playlist operations
	OpPlaylistCreate   Op = "create playlist"
	OpPlaylistRename   Op = "rename playlist"
	OpPlaylistDelete   Op = "delete playlist"
	OpPlaylistAddTrack Op = "add track to playlist"
	OpPlaylistRemove   Op = "remove track from playlist"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpEngineInit    Op = "initialize audio engine"

	// Favorites
	OpFavoriteToggle Op = "update favorites"

	// Stats
	OpStatsRecord Op = "record listening stats"

	// Effects
	OpEffectsSave Op = "save effect settings"
	OpEffectsLoad Op = "load effect settings"

	// Assistant
	OpChatSend    Op = "send chat message"
	OpChatSession Op = "load chat session"

	// Last.fm
	OpLastfmScrobble   Op = "scrobble to Last.fm"
	OpLastfmNowPlaying Op = "update Last.fm now playing"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Wrap returns err prefixed like Format, or nil when err is nil.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("Failed to %s: %w", op, err)
}

// WrapWith returns err prefixed like FormatWith, or nil when err is nil.
func WrapWith(op Op, context string, err error) error {
	if err == nil {
		return nil
	}
	if context == "" {
		return Wrap(op, err)
	}
	return fmt.Errorf("Failed to %s '%s': %w", op, context, err)
}
