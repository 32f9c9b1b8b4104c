// Package config defines the server configuration structure.
package config

import (
	"errors"
	"os"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyBot(&cfg.Bot); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifySync(&cfg.Sync); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return nil
}

func verifyBot(cfg *BotSection) error {
	if cfg.Token == "" {
		return errors.New("bot.token is required")
	}
	if cfg.PollTimeout <= 0 {
		return errors.New("bot.poll_timeout must be positive")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.InMemory {
		return nil
	}
	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return errors.New("cannot create data directory: " + err.Error())
	}
	return nil
}

func verifySync(cfg *SyncSection) error {
	if cfg.PushRate < 0 {
		return errors.New("sync.push_rate must not be negative")
	}
	if cfg.BlobName == "" {
		return errors.New("sync.blob_name is required")
	}
	if cfg.SealPassphrase != "" && len(cfg.SealPassphrase) < 8 {
		return errors.New("sync.seal_passphrase must be at least 8 characters")
	}
	// A message id without a chat id cannot be dereferenced.
	if cfg.Pointer.MessageID != 0 && cfg.Pointer.ChatID == 0 {
		return errors.New("sync.pointer.chat_id is required when message_id is set")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("log.level must be one of debug, info, warn, error")
	}
	switch cfg.Format {
	case "json", "text":
	default:
		return errors.New("log.format must be json or text")
	}
	return nil
}
