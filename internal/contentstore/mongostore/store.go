// Package mongostore is the MongoDB content backend. Collections mirror the
// SQLite tables: structure, themes, base_content, songs and settings.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spirare/internal/content"
	"spirare/internal/services"
)

const (
	collStructure = "structure"
	collThemes    = "themes"
	collPools     = "base_content"
	collSongs     = "songs"
	collSettings  = "settings"

	singletonID          = "singleton"
	metronomeSettingsKey = "metronome"
	connectTimeout       = 10 * time.Second
)

var collections = []string{collStructure, collThemes, collPools, collSongs, collSettings}

// Store implements content.Store on a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

var _ content.Store = (*Store)(nil)

type structureDoc struct {
	ID        string            `bson:"_id"`
	Structure content.Structure `bson:"structure"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

type settingsDoc struct {
	Key       string                    `bson:"_id"`
	Metronome content.MetronomeSettings `bson:"metronome"`
	UpdatedAt time.Time                 `bson:"updatedAt"`
}

// Open connects, pings and ensures the unique indexes.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	uri = strings.TrimSpace(uri)
	database = strings.TrimSpace(database)
	if uri == "" || database == "" {
		return nil, services.Wrap(services.ErrValidation, "mongostore", "open", "mongo uri and database are required", nil)
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, unavailable("connect", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, unavailable("ping", err)
	}
	store := newStore(client.Database(database))
	if err := store.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

func newStore(db *mongo.Database) *Store {
	return &Store{
		client: db.Client(),
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string]mongo.IndexModel{
		collThemes: {
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		collPools: {
			Keys:    bson.D{{Key: "stage", Value: 1}, {Key: "practice", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		collSongs: {
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	for name, model := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateOne(ctx, model); err != nil {
			return unavailable("ensure index "+name, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) GetStructure(ctx context.Context) (content.Structure, error) {
	var doc structureDoc
	err := s.db.Collection(collStructure).FindOne(ctx, bson.M{"_id": singletonID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return content.Structure{}, notFound("get structure", "structure has not been seeded")
	}
	if err != nil {
		return content.Structure{}, unavailable("get structure", err)
	}
	if err := doc.Structure.Validate(); err != nil {
		return content.Structure{}, corrupt("get structure", err, "stored structure is invalid")
	}
	return doc.Structure, nil
}

func (s *Store) SaveStructure(ctx context.Context, structure content.Structure) error {
	if err := structure.Validate(); err != nil {
		return err
	}
	doc := structureDoc{ID: singletonID, Structure: structure, UpdatedAt: s.now()}
	_, err := s.db.Collection(collStructure).ReplaceOne(ctx, bson.M{"_id": singletonID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return unavailable("save structure", err)
	}
	return nil
}

func (s *Store) GetThemeByCategory(ctx context.Context, category string) (content.Theme, error) {
	category = content.NormalizeCategory(category)
	var theme content.Theme
	err := s.db.Collection(collThemes).FindOne(ctx, bson.M{"category": category}).Decode(&theme)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return content.Theme{}, notFound("get theme", "no theme for category %q", category)
	}
	if err != nil {
		return content.Theme{}, unavailable("get theme", err)
	}
	if err := theme.Validate(); err != nil {
		return content.Theme{}, corrupt("get theme", err, "stored theme %s is invalid", category)
	}
	return theme, nil
}

func (s *Store) ListThemes(ctx context.Context) ([]content.Theme, error) {
	var themes []content.Theme
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}})
	if err := s.findAll(ctx, collThemes, opts, &themes); err != nil {
		return nil, unavailable("list themes", err)
	}
	for _, theme := range themes {
		if err := theme.Validate(); err != nil {
			return nil, corrupt("list themes", err, "stored theme %s is invalid", theme.Category)
		}
	}
	return themes, nil
}

func (s *Store) CreateTheme(ctx context.Context, theme content.Theme) (content.Theme, error) {
	theme.Normalize()
	if err := theme.Validate(); err != nil {
		return content.Theme{}, err
	}
	if theme.ID == "" {
		theme.ID = uuid.NewString()
	}
	now := s.now()
	if theme.CreatedAt.IsZero() {
		theme.CreatedAt = now
	}
	theme.UpdatedAt = now
	_, err := s.db.Collection(collThemes).InsertOne(ctx, theme)
	if mongo.IsDuplicateKeyError(err) {
		return content.Theme{}, conflict("create theme", theme.Category)
	}
	if err != nil {
		return content.Theme{}, unavailable("create theme", err)
	}
	return theme, nil
}

func (s *Store) UpdateTheme(ctx context.Context, category string, theme content.Theme) (content.Theme, error) {
	existing, err := s.GetThemeByCategory(ctx, category)
	if err != nil {
		return content.Theme{}, err
	}
	if theme.Category == "" {
		theme.Category = existing.Category
	}
	theme.Normalize()
	if err := theme.Validate(); err != nil {
		return content.Theme{}, err
	}
	theme.ID = existing.ID
	theme.CreatedAt = existing.CreatedAt
	theme.UpdatedAt = s.now()
	_, err = s.db.Collection(collThemes).ReplaceOne(ctx, bson.M{"category": existing.Category}, theme)
	if mongo.IsDuplicateKeyError(err) {
		return content.Theme{}, conflict("update theme", theme.Category)
	}
	if err != nil {
		return content.Theme{}, unavailable("update theme", err)
	}
	return theme, nil
}

func (s *Store) DeleteTheme(ctx context.Context, category string) error {
	category = content.NormalizeCategory(category)
	res, err := s.db.Collection(collThemes).DeleteOne(ctx, bson.M{"category": category})
	if err != nil {
		return unavailable("delete theme", err)
	}
	if res.DeletedCount == 0 {
		return notFound("delete theme", "no theme for category %q", category)
	}
	return nil
}

func (s *Store) BasePool(ctx context.Context, stage content.Stage, practice string) ([]string, error) {
	var pool content.BasePool
	err := s.db.Collection(collPools).FindOne(ctx, bson.M{"stage": stage, "practice": practice}).Decode(&pool)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("base pool", err)
	}
	return pool.Phrases, nil
}

func (s *Store) ListPools(ctx context.Context) ([]content.BasePool, error) {
	var pools []content.BasePool
	if err := s.findAll(ctx, collPools, options.Find(), &pools); err != nil {
		return nil, unavailable("list pools", err)
	}
	for _, pool := range pools {
		if err := pool.Validate(); err != nil {
			return nil, corrupt("list pools", err, "stored pool is invalid")
		}
	}
	content.SortPools(pools)
	return pools, nil
}

func (s *Store) SavePool(ctx context.Context, pool content.BasePool) error {
	pool.Normalize()
	if err := pool.Validate(); err != nil {
		return err
	}
	filter := bson.M{"stage": pool.Stage, "practice": pool.Practice}
	_, err := s.db.Collection(collPools).ReplaceOne(ctx, filter, pool, options.Replace().SetUpsert(true))
	if err != nil {
		return unavailable("save pool", err)
	}
	return nil
}

func (s *Store) ListSongs(ctx context.Context) ([]content.Song, error) {
	var songs []content.Song
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}, {Key: "id", Value: 1}})
	if err := s.findAll(ctx, collSongs, opts, &songs); err != nil {
		return nil, unavailable("list songs", err)
	}
	return songs, nil
}

func (s *Store) GetSong(ctx context.Context, id string) (content.Song, error) {
	var song content.Song
	err := s.db.Collection(collSongs).FindOne(ctx, bson.M{"id": id}).Decode(&song)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return content.Song{}, notFound("get song", "no song with id %q", id)
	}
	if err != nil {
		return content.Song{}, unavailable("get song", err)
	}
	return song, nil
}

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
	if _, err := s.db.Collection(collSongs).InsertOne(ctx, song); err != nil {
		return content.Song{}, unavailable("create song", err)
	}
	return song, nil
}

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
	if _, err := s.db.Collection(collSongs).ReplaceOne(ctx, bson.M{"id": id}, song); err != nil {
		return content.Song{}, unavailable("update song", err)
	}
	return song, nil
}

func (s *Store) DeleteSong(ctx context.Context, id string) error {
	res, err := s.db.Collection(collSongs).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return unavailable("delete song", err)
	}
	if res.DeletedCount == 0 {
		return notFound("delete song", "no song with id %q", id)
	}
	return nil
}

func (s *Store) MetronomeSettings(ctx context.Context) (content.MetronomeSettings, error) {
	var doc settingsDoc
	err := s.db.Collection(collSettings).FindOne(ctx, bson.M{"_id": metronomeSettingsKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return content.DefaultMetronomeSettings(), nil
	}
	if err != nil {
		return content.MetronomeSettings{}, unavailable("metronome settings", err)
	}
	return doc.Metronome.Clamped(), nil
}

func (s *Store) SaveMetronomeSettings(ctx context.Context, settings content.MetronomeSettings) error {
	doc := settingsDoc{Key: metronomeSettingsKey, Metronome: settings.Clamped(), UpdatedAt: s.now()}
	_, err := s.db.Collection(collSettings).ReplaceOne(ctx, bson.M{"_id": metronomeSettingsKey}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return unavailable("save metronome settings", err)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (content.Stats, error) {
	var stats content.Stats
	counts := []struct {
		coll   string
		filter bson.M
		dest   *int
	}{
		{collThemes, bson.M{}, &stats.Themes},
		{collThemes, bson.M{"isActive": true}, &stats.ActiveThemes},
		{collPools, bson.M{}, &stats.Pools},
		{collSongs, bson.M{}, &stats.Songs},
	}
	for _, c := range counts {
		n, err := s.db.Collection(c.coll).CountDocuments(ctx, c.filter)
		if err != nil {
			return content.Stats{}, unavailable("stats", err)
		}
		*c.dest = int(n)
	}
	n, err := s.db.Collection(collStructure).CountDocuments(ctx, bson.M{})
	if err != nil {
		return content.Stats{}, unavailable("stats", err)
	}
	stats.HasStructure = n > 0

	pools, err := s.ListPools(ctx)
	if err != nil {
		return content.Stats{}, err
	}
	for _, pool := range pools {
		stats.Phrases += len(pool.Phrases)
	}
	return stats, nil
}

// Drop empties every content collection. Indexes are kept.
func (s *Store) Drop(ctx context.Context) error {
	for _, name := range collections {
		if _, err := s.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return unavailable("drop "+name, err)
		}
	}
	return nil
}

func (s *Store) findAll(ctx context.Context, coll string, opts *options.FindOptions, out any) error {
	cursor, err := s.db.Collection(coll).Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func unavailable(operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return services.Wrap(services.ErrUnavailable, "mongostore", operation, "mongodb", err)
}

func notFound(operation, format string, args ...any) error {
	return services.Wrap(services.ErrNotFound, "mongostore", operation, fmt.Sprintf(format, args...), nil)
}

func conflict(operation, category string) error {
	return services.Wrap(services.ErrConflict, "mongostore", operation,
		fmt.Sprintf("category %q already exists", category), nil)
}

func corrupt(operation string, err error, format string, args ...any) error {
	return services.Wrap(services.ErrInternal, "mongostore", operation, fmt.Sprintf(format, args...), err)
}
