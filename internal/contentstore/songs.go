package contentstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"spirare/internal/content"
)

const songColumns = "id, title, artist, src, fade_in_ms, fade_out_ms, volume, stage, created_at, updated_at"

// ListSongs returns every song ordered by title.
func (s *Store) ListSongs(ctx context.Context) ([]content.Song, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+songColumns+` FROM songs ORDER BY title, id`)
	if err != nil {
		return nil, unavailable("list songs", err)
	}
	defer rows.Close()

	var songs []content.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list songs", err)
	}
	return songs, nil
}

func (s *Store) GetSong(ctx context.Context, id string) (content.Song, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Song{}, notFound("get song", "no song with id %q", id)
	}
	if err != nil {
		return content.Song{}, err
	}
	return song, nil
}

// CreateSong stores a new song, assigning an id when none is set.
func (s *Store) CreateSong(ctx context.Context, song content.Song) (content.Song, error) {
	song.Normalize()
	if err := song.Validate(); err != nil {
		return content.Song{}, err
	}
	if song.ID == "" {
		song.ID = uuid.NewString()
	}
	now := s.now()
	if song.CreatedAt.IsZero() {
		song.CreatedAt = now
	}
	song.UpdatedAt = now
	_, err := s.exec(ctx,
		`INSERT INTO songs (`+songColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		song.ID,
		song.Title,
		nullableString(song.Artist),
		song.Src,
		song.FadeInMs,
		song.FadeOutMs,
		song.Volume,
		nullableString(string(song.Stage)),
		formatTime(song.CreatedAt),
		formatTime(song.UpdatedAt),
	)
	if err != nil {
		return content.Song{}, unavailable("create song", err)
	}
	return song, nil
}

// UpdateSong replaces the song stored under id.
func (s *Store) UpdateSong(ctx context.Context, id string, song content.Song) (content.Song, error) {
	existing, err := s.GetSong(ctx, id)
	if err != nil {
		return content.Song{}, err
	}
	song.Normalize()
	if err := song.Validate(); err != nil {
		return content.Song{}, err
	}
	song.ID = existing.ID
	song.CreatedAt = existing.CreatedAt
	song.UpdatedAt = s.now()
	_, err = s.exec(ctx,
		`UPDATE songs
         SET title = ?, artist = ?, src = ?, fade_in_ms = ?, fade_out_ms = ?, volume = ?, stage = ?, updated_at = ?
         WHERE id = ?`,
		song.Title,
		nullableString(song.Artist),
		song.Src,
		song.FadeInMs,
		song.FadeOutMs,
		song.Volume,
		nullableString(string(song.Stage)),
		formatTime(song.UpdatedAt),
		song.ID,
	)
	if err != nil {
		return content.Song{}, unavailable("update song", err)
	}
	return song, nil
}

func (s *Store) DeleteSong(ctx context.Context, id string) error {
	res, err := s.exec(ctx, "DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return unavailable("delete song", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("delete song", "no song with id %q", id)
	}
	return nil
}

func scanSong(scanner interface{ Scan(dest ...any) error }) (content.Song, error) {
	var (
		song       content.Song
		artist     sql.NullString
		stage      sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&song.ID,
		&song.Title,
		&artist,
		&song.Src,
		&song.FadeInMs,
		&song.FadeOutMs,
		&song.Volume,
		&stage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.Song{}, err
		}
		return content.Song{}, unavailable("scan song", err)
	}
	song.Artist = artist.String
	song.Stage = content.Stage(stage.String)
	if created, err := parseTime(createdRaw); err == nil {
		song.CreatedAt = created
	}
	if updated, err := parseTime(updatedRaw); err == nil {
		song.UpdatedAt = updated
	}
	if err := song.Validate(); err != nil {
		return content.Song{}, corrupt("scan song", err, "stored song %s is invalid", song.ID)
	}
	return song, nil
}
