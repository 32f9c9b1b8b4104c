// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultPollTimeout = 10 * time.Second

	DefaultDataDir = "/var/lib/leaderboard-server/data"

	DefaultPushRate = 1.0
	DefaultBlobName = "users.json"

	DefaultOpsAddr = "127.0.0.1:5080"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Bot: BotSection{
			PollTimeout: DefaultPollTimeout,
		},
		Storage: StorageSection{
			DataDir: DefaultDataDir,
		},
		Sync: SyncSection{
			PullOnStart: true,
			PushRate:    DefaultPushRate,
			BlobName:    DefaultBlobName,
		},
		Ops: OpsSection{
			Enabled: false,
			Addr:    DefaultOpsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
