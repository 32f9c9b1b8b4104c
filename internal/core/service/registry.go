// Package service provides the registry domain service.
//
// RegistryService glues the local store, the rank engine and the sync
// manager into the command surface the dispatcher exposes. Command
// handling is strictly sequential: the dispatcher delivers one request
// at a time and each request runs to completion, including any
// blocking channel pull or push, before the next one starts.
package service

import (
	"context"
	"errors"

	"github.com/clickermsu/leaderboard-go/internal/core/domain"
	"github.com/clickermsu/leaderboard-go/internal/core/rank"
	"github.com/clickermsu/leaderboard-go/internal/storage/snapshot"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/logger"
)

// TopSize is how many leaderboard rows a registration reply carries.
const TopSize = 10

// Repository defines the storage interface for registry operations.
type Repository interface {
	// Insert appends a record; ErrUsernameTaken on duplicate username.
	Insert(ctx context.Context, u domain.User) error

	// FindByUsername returns the first record with the given username.
	FindByUsername(ctx context.Context, username string) (domain.User, error)

	// FindByID returns the first record with the given id.
	FindByID(ctx context.Context, id int64) (domain.User, error)

	// DeleteByID removes every record matching the id.
	DeleteByID(ctx context.Context, id int64) (int, error)

	// ReplaceAll installs a snapshot wholesale.
	ReplaceAll(ctx context.Context, s domain.Snapshot) error

	// All returns the full table in insertion order.
	All(ctx context.Context) (domain.Snapshot, error)
}

// Syncer is the sync manager's face: pull the remote snapshot into the
// store, push the store as the remote snapshot, or save a brand-new
// remote snapshot.
type Syncer interface {
	Pull(ctx context.Context) error
	Push(ctx context.Context) error
	Save(ctx context.Context, chatID int64) (snapshot.Pointer, error)
	Pointer() snapshot.Pointer
}

// RegistryService handles the leaderboard command surface.
type RegistryService struct {
	repo Repository
	sync Syncer
	log  logger.Logger
}

// NewRegistryService creates a RegistryService.
func NewRegistryService(repo Repository, sync Syncer, log logger.Logger) *RegistryService {
	if log == nil {
		log = logger.Default()
	}
	return &RegistryService{
		repo: repo,
		sync: sync,
		log:  log,
	}
}

// refresh pulls the latest pushed snapshot into the store before a
// mutation, so a process that lost its local file picks up where the
// backup left off. An unset pointer means no backup exists yet and is
// not an error; anything else aborts the surrounding operation.
func (s *RegistryService) refresh(ctx context.Context) error {
	err := s.sync.Pull(ctx)
	if err == nil || errors.Is(err, domain.ErrPointerUnset) {
		return nil
	}
	return err
}

// RegisterRequest contains parameters for a register command.
type RegisterRequest struct {
	ID       int64  // requester's chat id
	Username string // required, unique
	Password string // stored as-is
}

// RegisterResult is the reply data for a successful registration.
type RegisterResult struct {
	// Top is the current top of the board, at most TopSize rows.
	Top []rank.Entry

	// Placement is the new user's row(s) with 1-based rank over the
	// full board.
	Placement []rank.Entry

	// BackupStale is set when the record was stored locally but the
	// follow-up push did not reach the channel.
	BackupStale bool
}

// Register pulls the remote snapshot, inserts the record, pushes the
// new state and computes the reply ranks - in that order. A Conflict
// from the uniqueness guard is returned as ErrUsernameTaken with no
// result. A failed follow-up push does not void the registration: the
// record is already durable locally, so the result is returned with
// BackupStale set and the operator can re-issue an update.
func (s *RegistryService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	user := domain.User{ID: req.ID, Username: req.Username, Password: req.Password}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, err
	}

	result := &RegisterResult{}
	if err := s.sync.Push(ctx); err != nil {
		result.BackupStale = true
		s.log.Warn("post-register push failed", "username", req.Username, "error", err)
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	result.Top = rank.TopN(all, TopSize)
	result.Placement = rank.Placement(all, req.Username)

	s.log.Info("user registered", "username", req.Username, "id", req.ID, "records", len(all))
	return result, nil
}

// SignInResult is the reply data for a sign-in command.
type SignInResult struct {
	// Registered reports whether the username exists at all.
	Registered bool

	// PasswordOK reports whether the supplied password matched.
	// Meaningless unless Registered is set.
	PasswordOK bool
}

// SignIn pulls the remote snapshot and checks the credentials against
// the store. A missing user is a normal outcome, not an error.
func (s *RegistryService) SignIn(ctx context.Context, username, password string) (*SignInResult, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return &SignInResult{Registered: false}, nil
	}
	if err != nil {
		return nil, err
	}

	return &SignInResult{
		Registered: true,
		PasswordOK: u.Password == password,
	}, nil
}

// Delete removes every record with the given id and returns how many
// were removed. ErrUserNotFound when nothing matched.
func (s *RegistryService) Delete(ctx context.Context, id int64) (int, error) {
	n, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return 0, err
	}
	s.log.Info("user deleted", "id", id, "records_removed", n)
	return n, nil
}

// Save pushes the registry as a brand-new document to the given chat
// and re-anchors the snapshot pointer there.
func (s *RegistryService) Save(ctx context.Context, chatID int64) (snapshot.Pointer, error) {
	return s.sync.Save(ctx, chatID)
}

// Update pushes the registry over the document at the current pointer.
func (s *RegistryService) Update(ctx context.Context) error {
	return s.sync.Push(ctx)
}

// Restore pulls the remote snapshot into the store. Unlike the
// opportunistic refresh inside Register and SignIn, an unset pointer
// is surfaced here: the caller explicitly asked for a restore.
func (s *RegistryService) Restore(ctx context.Context) error {
	return s.sync.Pull(ctx)
}

// Top returns the current top-n leaderboard rows.
func (s *RegistryService) Top(ctx context.Context, n int) ([]rank.Entry, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return rank.TopN(all, n), nil
}

// RankOf returns the ranked row(s) for a username, or ErrUserNotFound.
func (s *RegistryService) RankOf(ctx context.Context, username string) ([]rank.Entry, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	entries := rank.Placement(all, username)
	if len(entries) == 0 {
		return nil, domain.ErrUserNotFound.WithDetails(username)
	}
	return entries, nil
}

// Pointer exposes the current snapshot pointer for operator replies.
func (s *RegistryService) Pointer() snapshot.Pointer {
	return s.sync.Pointer()
}
