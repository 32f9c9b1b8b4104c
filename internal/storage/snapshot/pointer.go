// Package snapshot defines the registry backup blob and its pointer.
package snapshot

import "fmt"

// Pointer identifies the most recently pushed snapshot in the external
// channel: the chat the anchor message lives in, the message carrying
// the document, and the document's file id.
//
// Exactly one pointer is live at a time. It is owned by the sync
// manager, initialized from config at startup, and replaced only when
// a push has been acknowledged by the channel.
type Pointer struct {
	ChatID    int64  `json:"chat_id"    koanf:"chat_id"`
	MessageID int    `json:"message_id" koanf:"message_id"`
	FileID    string `json:"file_id"    koanf:"file_id"`
}

// HasBlob reports whether the pointer names a fetchable document.
func (p Pointer) HasBlob() bool {
	return p.FileID != ""
}

// HasAnchor reports whether the pointer names an editable message.
func (p Pointer) HasAnchor() bool {
	return p.ChatID != 0 && p.MessageID != 0
}

// String renders the pointer for logs and operator replies.
func (p Pointer) String() string {
	return fmt.Sprintf("chat=%d message=%d file=%s", p.ChatID, p.MessageID, p.FileID)
}
