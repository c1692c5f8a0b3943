// Package state provides a lightweight FSM/session manager for Telegram
// dialogues. Sessions are purely in-memory: they are created on first use
// and discarded explicitly once a conversation completes.
package state
