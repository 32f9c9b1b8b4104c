// Package bot routes inbound channel commands to the registry service.
//
// The dispatcher is transport-agnostic: it consumes the narrow
// channel.Message capability and replies through channel.Sender, so
// the Telegram client (or a test fake) stays entirely outside the
// core. A single mutex serializes command handling - one in-flight
// request, processed to completion including any channel pull/push,
// before the next is looked at.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/clickermsu/leaderboard-go/internal/channel"
	"github.com/clickermsu/leaderboard-go/internal/core/domain"
	"github.com/clickermsu/leaderboard-go/internal/core/rank"
	"github.com/clickermsu/leaderboard-go/internal/core/service"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/logger"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/metric"
)

// Command names. "sighin" is the game client's historical spelling;
// it is part of the wire protocol and must not be corrected.
const (
	CmdRegister = "register"
	CmdSignIn   = "sighin"
	CmdDelete   = "delete"
	CmdSave     = "save"
	CmdUpdate   = "update"
	CmdRestore  = "restore"
)

// Dispatcher routes inbound messages to registry operations.
type Dispatcher struct {
	svc     *service.RegistryService
	sender  channel.Sender
	log     logger.Logger
	metrics *metric.Registry

	// mu enforces the one-command-at-a-time processing model.
	mu sync.Mutex
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(svc *service.RegistryService, sender channel.Sender, log logger.Logger, metrics *metric.Registry) *Dispatcher {
	if log == nil {
		log = logger.Default()
	}
	return &Dispatcher{
		svc:     svc,
		sender:  sender,
		log:     log,
		metrics: metrics,
	}
}

// Handle processes one inbound message to completion.
func (d *Dispatcher) Handle(ctx context.Context, msg channel.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx = logger.WithChatID(ctx, msg.ChatID())

	if fileID := msg.DocumentFileID(); fileID != "" {
		d.handleDocument(ctx, msg, fileID)
		return
	}

	cmd, args := splitCommand(msg.Text())
	if cmd == "" {
		return
	}

	switch cmd {
	case CmdRegister:
		d.handleRegister(ctx, msg, args)
	case CmdSignIn:
		d.handleSignIn(ctx, msg, args)
	case CmdDelete:
		d.handleDelete(ctx, msg)
	case CmdSave:
		d.handleSave(ctx, msg)
	case CmdUpdate:
		d.handleUpdate(ctx, msg)
	case CmdRestore:
		d.handleRestore(ctx, msg)
	default:
		d.log.Debug("unknown command ignored", "command", cmd)
	}
}

// splitCommand extracts the command name (sans slash and bot mention)
// and its arguments from a message text.
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}

	cmd := strings.TrimPrefix(fields[0], "/")
	// Group chats address commands as /register@SomeBot.
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), fields[1:]
}

func (d *Dispatcher) handleRegister(ctx context.Context, msg channel.Message, args []string) {
	if len(args) != 2 {
		d.reply(ctx, msg, "Usage: /register <username> <password>")
		d.count(CmdRegister, metric.OutcomeError)
		return
	}

	res, err := d.svc.Register(ctx, service.RegisterRequest{
		ID:       msg.ChatID(),
		Username: args[0],
		Password: args[1],
	})
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		d.reply(ctx, msg, "Same user also exists...")
		d.count(CmdRegister, metric.OutcomeConflict)
		return
	case err != nil:
		d.replyError(ctx, msg, err)
		d.count(CmdRegister, metric.OutcomeError)
		return
	}

	var b strings.Builder
	b.WriteString("Registered!\n")
	b.WriteString(formatBoard(res.Top))
	for _, e := range res.Placement {
		fmt.Fprintf(&b, "Your place: #%d\n", e.Rank)
	}
	if res.BackupStale {
		b.WriteString("Warning: backup push failed, run /update to retry.\n")
	}
	d.reply(ctx, msg, strings.TrimRight(b.String(), "\n"))
	d.count(CmdRegister, metric.OutcomeOK)
}

func (d *Dispatcher) handleSignIn(ctx context.Context, msg channel.Message, args []string) {
	if len(args) != 2 {
		d.reply(ctx, msg, "Usage: /sighin <username> <password>")
		d.count(CmdSignIn, metric.OutcomeError)
		return
	}

	res, err := d.svc.SignIn(ctx, args[0], args[1])
	if err != nil {
		d.replyError(ctx, msg, err)
		d.count(CmdSignIn, metric.OutcomeError)
		return
	}

	switch {
	case !res.Registered:
		d.reply(ctx, msg, "You are not registered yet.")
		d.count(CmdSignIn, metric.OutcomeNotFound)
	case !res.PasswordOK:
		d.reply(ctx, msg, "Wrong password.")
		d.count(CmdSignIn, metric.OutcomeError)
	default:
		d.reply(ctx, msg, "Signed in successfully.")
		d.count(CmdSignIn, metric.OutcomeOK)
	}
}

func (d *Dispatcher) handleDelete(ctx context.Context, msg channel.Message) {
	d.reply(ctx, msg, "Deleting")

	n, err := d.svc.Delete(ctx, msg.ChatID())
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		d.reply(ctx, msg, "NO SUCH USER IN DATABASE")
		d.count(CmdDelete, metric.OutcomeNotFound)
	case err != nil:
		d.replyError(ctx, msg, err)
		d.count(CmdDelete, metric.OutcomeError)
	default:
		d.reply(ctx, msg, fmt.Sprintf("Deleted user %d (%d record(s))", msg.ChatID(), n))
		d.count(CmdDelete, metric.OutcomeOK)
	}
}

func (d *Dispatcher) handleSave(ctx context.Context, msg channel.Message) {
	ptr, err := d.svc.Save(ctx, msg.ChatID())
	if err != nil {
		d.replyError(ctx, msg, err)
		d.count(CmdSave, metric.OutcomeError)
		return
	}

	// The three pointer fields are announced separately so an operator
	// can copy them straight into the server config.
	d.reply(ctx, msg, fmt.Sprintf("admin_id = %d", ptr.ChatID))
	d.reply(ctx, msg, fmt.Sprintf("config_id = %d", ptr.MessageID))
	d.reply(ctx, msg, fmt.Sprintf("file_id = %s", ptr.FileID))
	d.count(CmdSave, metric.OutcomeOK)
}

func (d *Dispatcher) handleUpdate(ctx context.Context, msg channel.Message) {
	if err := d.svc.Update(ctx); err != nil {
		d.replyError(ctx, msg, err)
		d.count(CmdUpdate, metric.OutcomeError)
		return
	}
	d.reply(ctx, msg, "Snapshot updated.")
	d.count(CmdUpdate, metric.OutcomeOK)
}

func (d *Dispatcher) handleRestore(ctx context.Context, msg channel.Message) {
	if err := d.svc.Restore(ctx); err != nil {
		d.replyError(ctx, msg, err)
		d.count(CmdRestore, metric.OutcomeError)
		return
	}
	d.reply(ctx, msg, "Registry restored from the latest snapshot.")
	d.count(CmdRestore, metric.OutcomeOK)
}

// handleDocument echoes the file id of any uploaded document, so an
// operator can seed the snapshot pointer from an existing backup file.
func (d *Dispatcher) handleDocument(ctx context.Context, msg channel.Message, fileID string) {
	d.log.Info("document received", "file_id", fileID)
	d.reply(ctx, msg, fileID)
	d.count("document", metric.OutcomeOK)
}

// formatBoard renders leaderboard rows, one per line.
func formatBoard(entries []rank.Entry) string {
	if len(entries) == 0 {
		return "The board is empty.\n"
	}
	var b strings.Builder
	b.WriteString("Top players:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%2d. %s (%d)\n", e.Rank, e.Username, e.ID)
	}
	return b.String()
}

func (d *Dispatcher) reply(ctx context.Context, msg channel.Message, text string) {
	if err := d.sender.SendText(ctx, msg.ChatID(), text); err != nil {
		d.log.Error("reply failed", "chat_id", msg.ChatID(), "error", err)
	}
}

func (d *Dispatcher) replyError(ctx context.Context, msg channel.Message, err error) {
	d.log.Error("command failed", "chat_id", msg.ChatID(), "error", err)
	if code := domain.GetErrorCode(err); code != "" {
		d.reply(ctx, msg, fmt.Sprintf("Command failed: %s", code))
		return
	}
	d.reply(ctx, msg, "Command failed.")
}

func (d *Dispatcher) count(command, outcome string) {
	if d.metrics != nil {
		d.metrics.CommandsTotal.WithLabelValues(command, outcome).Inc()
	}
}
