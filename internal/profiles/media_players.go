package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// MediaPlayerRepository defines media player projection persistence.
type MediaPlayerRepository interface {
	// UpsertMediaPlayer inserts a media player or overwrites the existing
	// row with the same entity_id. Returns ErrMissingNaturalKey if
	// EntityID is empty.
	UpsertMediaPlayer(ctx context.Context, m *MediaPlayer) error

	// GetMediaPlayer retrieves a media player by its entity ID.
	// Returns ErrMediaPlayerNotFound if the media player does not exist.
	GetMediaPlayer(ctx context.Context, entityID string) (*MediaPlayer, error)

	// ListMediaPlayers retrieves all media players ordered by entity_id.
	ListMediaPlayers(ctx context.Context) ([]MediaPlayer, error)
}

// UpsertMediaPlayer inserts or overwrites a media player by natural key.
func (r *SQLiteRepository) UpsertMediaPlayer(ctx context.Context, m *MediaPlayer) error {
	if m.EntityID == "" {
		return ErrMissingNaturalKey
	}

	membersJSON, err := marshalStrings(m.GroupMembers)
	if err != nil {
		return fmt.Errorf("marshalling group_members: %w", err)
	}

	query := `
		INSERT INTO media_players (
			entity_id, volume_level, is_muted, media_content_type,
			media_title, media_artist, group_members
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			volume_level = excluded.volume_level,
			is_muted = excluded.is_muted,
			media_content_type = excluded.media_content_type,
			media_title = excluded.media_title,
			media_artist = excluded.media_artist,
			group_members = excluded.group_members,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

	_, err = r.db.ExecContext(ctx, query,
		m.EntityID,
		m.VolumeLevel,
		boolToInt(m.IsMuted),
		m.MediaContentType,
		m.MediaTitle,
		m.MediaArtist,
		membersJSON,
	)
	if err != nil {
		return fmt.Errorf("upserting media player: %w", err)
	}
	return nil
}

// GetMediaPlayer retrieves a media player by its entity ID.
func (r *SQLiteRepository) GetMediaPlayer(ctx context.Context, entityID string) (*MediaPlayer, error) {
	query := selectMediaPlayer + `
		WHERE entity_id = ?`

	row := r.db.QueryRowContext(ctx, query, entityID)
	m, err := scanMediaPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMediaPlayerNotFound
		}
		return nil, fmt.Errorf("querying media player by id: %w", err)
	}
	return m, nil
}

// ListMediaPlayers retrieves all media players ordered by entity_id.
func (r *SQLiteRepository) ListMediaPlayers(ctx context.Context) ([]MediaPlayer, error) {
	query := selectMediaPlayer + `
		ORDER BY entity_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying media players: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var players []MediaPlayer
	for rows.Next() {
		m, err := scanMediaPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning media player: %w", err)
		}
		players = append(players, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating media players: %w", err)
	}
	return players, nil
}

const selectMediaPlayer = `
		SELECT entity_id, volume_level, is_muted, media_content_type,
			media_title, media_artist, group_members, created_at, updated_at
		FROM media_players`

func scanMediaPlayer(s scanner) (*MediaPlayer, error) {
	var (
		m           MediaPlayer
		volumeLevel sql.NullFloat64
		isMuted     int
		contentType sql.NullString
		title       sql.NullString
		artist      sql.NullString
		membersJSON string
		createdAt   string
		updatedAt   string
	)

	err := s.Scan(&m.EntityID, &volumeLevel, &isMuted, &contentType, &title, &artist,
		&membersJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(membersJSON), &m.GroupMembers); err != nil {
		return nil, fmt.Errorf("unmarshalling group_members: %w", err)
	}

	m.VolumeLevel = nullFloat(volumeLevel)
	m.IsMuted = isMuted != 0
	m.MediaContentType = nullString(contentType)
	m.MediaTitle = nullString(title)
	m.MediaArtist = nullString(artist)

	if m.CreatedAt, m.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing timestamps: %w", err)
	}

	return &m, nil
}
