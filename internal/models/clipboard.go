package models

import "time"

// Clipboard is a persisted, encrypted clipboard row.
type Clipboard struct {
	ID            string
	AccountID     string
	EncryptedData []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ClipboardSummary is a listing row without payload.
type ClipboardSummary struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TextSection is one editable part of a decrypted clipboard. ID is minted
// per session and never persisted; only Content and order are.
type TextSection struct {
	ID      string
	Content string
}

// ClipboardContent is a decrypted clipboard.
type ClipboardContent struct {
	ID       string
	Sections []TextSection
}

// SaveResult describes a successful save. NewCount is nil when an existing
// clipboard was updated.
type SaveResult struct {
	ID       string
	Created  bool
	NewCount *int
}
