// Package snapshot defines the registry backup blob: its wire format,
// the pointer locating the latest pushed copy, and optional sealing.
//
// The blob is a UTF-8 JSON array of 3-element arrays, one per record:
//
//	[[721641425,"alice","pw1"],[430,"bob","pw2"]]
//
// The format is shared with the game client's original backup files,
// so it must round-trip exactly, including the empty registry.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/clickermsu/leaderboard-go/internal/core/domain"
)

// Encode serializes a registry snapshot to the wire format.
// The empty snapshot encodes to "[]", never to "null".
func Encode(s domain.Snapshot) ([]byte, error) {
	rows := make([][3]any, 0, len(s))
	for _, u := range s {
		rows = append(rows, [3]any{u.ID, u.Username, u.Password})
	}

	blob, err := json.Marshal(rows)
	if err != nil {
		return nil, domain.ErrInternal.WithDetails("encode snapshot").WithCause(err)
	}
	return blob, nil
}

// Decode parses a wire-format blob back into a snapshot. It fails with
// ErrSnapshotMalformed on anything that is not an array of
// [id, username, password] triples.
func Decode(blob []byte) (domain.Snapshot, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(blob, &rows); err != nil {
		return nil, domain.ErrSnapshotMalformed.WithCause(err)
	}

	out := make(domain.Snapshot, 0, len(rows))
	for i, raw := range rows {
		u, err := decodeRow(raw)
		if err != nil {
			return nil, domain.ErrSnapshotMalformed.
				WithDetails(fmt.Sprintf("row %d", i)).
				WithCause(err)
		}
		out = append(out, u)
	}
	return out, nil
}

func decodeRow(raw json.RawMessage) (domain.User, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(raw, &tuple); err != nil {
		return domain.User{}, err
	}
	if len(tuple) != 3 {
		return domain.User{}, fmt.Errorf("want 3 elements, got %d", len(tuple))
	}

	var u domain.User
	if err := json.Unmarshal(tuple[0], &u.ID); err != nil {
		return domain.User{}, fmt.Errorf("id: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &u.Username); err != nil {
		return domain.User{}, fmt.Errorf("username: %w", err)
	}
	if err := json.Unmarshal(tuple[2], &u.Password); err != nil {
		return domain.User{}, fmt.Errorf("password: %w", err)
	}
	return u, nil
}
