// Package state provides a lightweight FSM/session manager for Telegram bots.
// Sessions are keyed by Telegram user id, live in memory only, and are
// dropped when a conversation completes or is cancelled.
package state
