// Package config defines the server configuration structure.
package config

import (
	"time"

	"github.com/clickermsu/leaderboard-go/internal/storage/snapshot"
)

// ServerConfig is the root configuration for leaderboard-server.
type ServerConfig struct {
	Bot     BotSection     `koanf:"bot"`
	Storage StorageSection `koanf:"storage"`
	Sync    SyncSection    `koanf:"sync"`
	Ops     OpsSection     `koanf:"ops"`
	Log     LogSection     `koanf:"log"`
}

// BotSection configures the Telegram client.
type BotSection struct {
	// Token is the bot token issued by BotFather.
	Token string `koanf:"token"`

	// PollTimeout is the long-poll timeout for update fetching.
	PollTimeout time.Duration `koanf:"poll_timeout"`
}

// StorageSection configures the local durable store.
type StorageSection struct {
	DataDir    string `koanf:"data_dir"`
	InMemory   bool   `koanf:"in_memory"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// SyncSection configures the channel backup loop.
type SyncSection struct {
	// Pointer is the last known snapshot location. The server rewrites
	// back to it after /save re-anchors the backup.
	Pointer snapshot.Pointer `koanf:"pointer"`

	// PullOnStart restores the registry from the pointer at boot.
	PullOnStart bool `koanf:"pull_on_start"`

	// PushRate caps snapshot pushes per second. Zero disables the cap.
	PushRate float64 `koanf:"push_rate"`

	// BlobName is the document file name used for snapshot uploads.
	BlobName string `koanf:"blob_name"`

	// SealPassphrase, when set, encrypts snapshots before upload.
	// Minimum 8 characters.
	SealPassphrase string `koanf:"seal_passphrase"`
}

// OpsSection configures the operational HTTP endpoint.
type OpsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
