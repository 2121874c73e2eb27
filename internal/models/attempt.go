package models

import "time"

// LoginAttempt is the per-caller failed-login counter. The record is
// created lazily on the first failure, reset once the window elapses
// and deleted on successful login.
type LoginAttempt struct {
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
}
