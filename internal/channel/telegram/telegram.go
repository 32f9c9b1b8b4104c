// Package telegram adapts the Telegram Bot API to the channel
// interfaces. Everything Telegram-specific stays in this package; the
// rest of the system works against channel.Blob, channel.Sender and
// channel.Message.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/clickermsu/leaderboard-go/internal/channel"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/logger"
)

// Handler consumes inbound messages. *bot.Dispatcher satisfies it.
type Handler interface {
	Handle(ctx context.Context, msg channel.Message)
}

// Config carries the Telegram client settings.
type Config struct {
	// Token is the bot token issued by BotFather.
	Token string

	// PollTimeout is the long-poll timeout for update fetching.
	PollTimeout time.Duration

	// Logger defaults to the process logger when nil.
	Logger logger.Logger
}

// Client wraps a telebot bot and exposes it through the channel
// interfaces.
type Client struct {
	bot *tele.Bot
	log logger.Logger
}

// New builds the Telegram client. It performs the initial getMe call,
// so a bad token fails here rather than at first use.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 10 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}

	log.Info("telegram bot connected",
		"username", b.Me.Username,
		"token", logger.RedactString(cfg.Token),
	)
	return &Client{bot: b, log: log}, nil
}

// Attach registers the update handlers and routes every inbound text
// or document message through h. The base context is cloned per
// update and enriched with the update and chat ids for logging.
func (c *Client) Attach(base context.Context, h Handler) {
	route := func(tc tele.Context) error {
		m := tc.Message()
		if m == nil {
			return nil
		}
		ctx := logger.WithChatID(logger.WithUpdateID(base, tc.Update().ID), m.Chat.ID)
		h.Handle(ctx, inbound{m})
		return nil
	}
	c.bot.Handle(tele.OnText, route)
	c.bot.Handle(tele.OnDocument, route)
}

// Start runs the long-poll loop until Stop is called. It blocks.
func (c *Client) Start() {
	c.bot.Start()
}

// Stop terminates the long-poll loop and waits for in-flight handlers.
func (c *Client) Stop() {
	c.bot.Stop()
}

// SendText implements channel.Sender.
func (c *Client) SendText(_ context.Context, chatID int64, text string) error {
	if _, err := c.bot.Send(&tele.Chat{ID: chatID}, text); err != nil {
		return fmt.Errorf("telegram: send text: %w", err)
	}
	return nil
}

// UploadDocument implements channel.Blob by posting a fresh document
// message to the chat.
func (c *Client) UploadDocument(_ context.Context, chatID int64, name string, data []byte) (channel.DocumentRef, error) {
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: name,
	}
	msg, err := c.bot.Send(&tele.Chat{ID: chatID}, doc)
	if err != nil {
		return channel.DocumentRef{}, fmt.Errorf("telegram: upload document: %w", err)
	}
	if msg.Document == nil {
		return channel.DocumentRef{}, fmt.Errorf("telegram: upload reply carries no document")
	}
	return channel.DocumentRef{
		ChatID:    chatID,
		MessageID: msg.ID,
		FileID:    msg.Document.FileID,
	}, nil
}

// ReplaceDocument implements channel.Blob by editing the media of the
// anchor message in place. Telegram assigns a new file id on every
// edit; the anchor message id survives.
func (c *Client) ReplaceDocument(_ context.Context, chatID int64, messageID int, name string, data []byte) (channel.DocumentRef, error) {
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: name,
	}
	anchor := tele.StoredMessage{
		ChatID:    chatID,
		MessageID: strconv.Itoa(messageID),
	}
	msg, err := c.bot.EditMedia(anchor, doc)
	if err != nil {
		return channel.DocumentRef{}, fmt.Errorf("telegram: replace document: %w", err)
	}
	if msg.Document == nil {
		return channel.DocumentRef{}, fmt.Errorf("telegram: edit reply carries no document")
	}
	return channel.DocumentRef{
		ChatID:    chatID,
		MessageID: messageID,
		FileID:    msg.Document.FileID,
	}, nil
}

// FetchDocument implements channel.Blob by downloading the file
// content through the bot API.
func (c *Client) FetchDocument(_ context.Context, fileID string) ([]byte, error) {
	rc, err := c.bot.File(&tele.File{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("telegram: fetch document: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("telegram: read document: %w", err)
	}
	return data, nil
}

// inbound adapts *tele.Message to channel.Message.
type inbound struct {
	m *tele.Message
}

func (m inbound) ChatID() int64  { return m.m.Chat.ID }
func (m inbound) MessageID() int { return m.m.ID }
func (m inbound) Text() string   { return m.m.Text }

func (m inbound) DocumentFileID() string {
	if m.m.Document == nil {
		return ""
	}
	return m.m.Document.FileID
}
