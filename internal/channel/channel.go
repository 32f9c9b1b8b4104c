// Package channel abstracts the external message channel.
//
// The same chat transport serves two purposes: it delivers operator
// and player commands, and it stores the registry backup as a document
// attached to an anchor message. The core only ever sees these narrow
// interfaces; the Telegram client lives behind them in
// channel/telegram, and tests substitute fakes.
package channel

import "context"

// DocumentRef identifies a document stored in the channel.
type DocumentRef struct {
	ChatID    int64
	MessageID int
	FileID    string
}

// Blob is the blob-storage face of the channel. All calls are
// synchronous and blocking; timeouts and cancellation arrive through
// the context.
type Blob interface {
	// UploadDocument posts a brand-new document to the chat and returns
	// where it landed.
	UploadDocument(ctx context.Context, chatID int64, name string, data []byte) (DocumentRef, error)

	// ReplaceDocument swaps the document attached to an existing
	// message. The returned ref carries the new file id; chat and
	// message ids stay put.
	ReplaceDocument(ctx context.Context, chatID int64, messageID int, name string, data []byte) (DocumentRef, error)

	// FetchDocument downloads a document's content by file id.
	FetchDocument(ctx context.Context, fileID string) ([]byte, error)
}

// Sender delivers plain text replies to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Message is the narrow capability the core needs from an inbound
// framework message. Adapters wrap the transport's message type.
type Message interface {
	// ChatID is the originating chat (doubles as the user id at
	// registration time).
	ChatID() int64

	// MessageID is the transport's id for this message.
	MessageID() int

	// Text is the raw message text, including any command.
	Text() string

	// DocumentFileID is the file id of an attached document, or empty
	// when the message carries none.
	DocumentFileID() string
}
