package board

import "errors"

var (
	// ErrEmptyContent rejects a post whose content is blank after trimming
	ErrEmptyContent = errors.New("content must not be empty")
	// ErrPostNotFound is returned when no post with the id is on the board
	ErrPostNotFound = errors.New("post not found")
	// ErrUnknownReaction rejects a reaction kind outside like, cheer, join
	ErrUnknownReaction = errors.New("unknown reaction kind")
	// ErrUnknownTheme rejects a theme outside the supported set
	ErrUnknownTheme = errors.New("unknown theme")
	// ErrNotLoaded is returned by mutations before Load has run
	ErrNotLoaded = errors.New("board not loaded")
	// ErrAlreadyLoaded is returned by a second Load
	ErrAlreadyLoaded = errors.New("board already loaded")
	// ErrSnapshotUnavailable reports a write skipped because the persisted
	// snapshot could not be read at load
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("board closed")
)
