// Package store persists finished battles and their event logs through gorm,
// on sqlite or postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Garsondee/Turn-Tactics/internal/config"
	"github.com/Garsondee/Turn-Tactics/internal/game"
)

var (
	// ErrDisabled is returned by Open when storage.type is none.
	ErrDisabled = errors.New("replay store disabled")
	// ErrNotFound is returned when no battle has the requested id.
	ErrNotFound = errors.New("battle not found")
)

// MemoryPath opens a private in-memory sqlite database.
const MemoryPath = ":memory:"

// Store is the replay store.
type Store struct {
	DB      *gorm.DB
	Backend string // "sqlite" or "postgres"
	Logger  zerolog.Logger
}

// Record is what SaveBattle persists.
type Record struct {
	UUID     string
	Scenario string
	Battle   *game.Battle
}

// Open connects to the configured backend and migrates the tables. A postgres
// connection failure falls back to sqlite at cfg.SQLite.Path.
func Open(cfg config.StorageConfig, log zerolog.Logger) (*Store, error) {
	s := &Store{Logger: log}
	var err error

	switch cfg.Type {
	case "", "none":
		return nil, ErrDisabled
	case "sqlite":
		s.DB, err = openSQLite(cfg.SQLite.Path)
		s.Backend = "sqlite"
	case "postgres":
		s.DB, err = openPostgres(cfg.Postgres)
		s.Backend = "postgres"
		if err == nil {
			err = ping(s.DB)
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to Postgres DB, trying SQLite")
			s.DB, err = openSQLite(cfg.SQLite.Path)
			s.Backend = "sqlite"
		}
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", s.Backend, err)
	}

	if err := s.DB.AutoMigrate(&Battle{}, &TurnEvent{}); err != nil {
		return nil, fmt.Errorf("migrate replay tables: %w", err)
	}
	log.Info().Str("backend", s.Backend).Msg("Replay store ready")
	return s, nil
}

func openSQLite(path string) (*gorm.DB, error) {
	dsn := path
	memory := path == "" || path == MemoryPath
	if memory {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if memory {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func openPostgres(cfg config.PostgresConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Ping()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveBattle stores the battle's outcome, final snapshot and full event log.
func (s *Store) SaveBattle(ctx context.Context, rec Record) (*Battle, error) {
	b := rec.Battle
	if b == nil {
		return nil, errors.New("save battle: nil battle")
	}
	snap, err := json.Marshal(b.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	out := game.DetermineOutcome(b)

	row := &Battle{
		UUID:          rec.UUID,
		Scenario:      rec.Scenario,
		Seed:          b.Seed(),
		Attacker:      b.Attacker().String(),
		Turns:         b.Turn(),
		Outcome:       out.Outcome.String(),
		Description:   out.Description,
		RedSurvivors:  out.RedSurvivors,
		RedTotal:      out.RedTotal,
		BlueSurvivors: out.BlueSurvivors,
		BlueTotal:     out.BlueTotal,
		Snapshot:      datatypes.JSON(snap),
	}
	for i, e := range b.Log().Entries() {
		row.Events = append(row.Events, TurnEvent{
			Seq:    i,
			Turn:   e.Turn,
			Unit:   e.Unit,
			Team:   e.Team,
			Role:   e.Role,
			Kind:   e.Kind,
			Target: e.Target,
			Detail: truncate(e.Detail, 255),
			Amount: e.Amount,
		})
	}

	if err := s.DB.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("save battle %s: %w", rec.UUID, err)
	}
	s.Logger.Debug().Str("battle", rec.UUID).Int("turns", row.Turns).
		Int("events", len(row.Events)).Str("outcome", row.Outcome).Msg("Battle saved")
	return row, nil
}

// GetBattle loads one battle without its events.
func (s *Store) GetBattle(ctx context.Context, uuid string) (*Battle, error) {
	var row Battle
	err := s.DB.WithContext(ctx).Where("uuid = ?", uuid).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListBattles returns the most recent battles first.
func (s *Store) ListBattles(ctx context.Context, limit int) ([]Battle, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []Battle
	err := s.DB.WithContext(ctx).Order("id desc").Limit(limit).Find(&rows).Error
	return rows, err
}

// Events returns a stored battle's event log in its original order.
func (s *Store) Events(ctx context.Context, uuid string) ([]game.Event, error) {
	row, err := s.GetBattle(ctx, uuid)
	if err != nil {
		return nil, err
	}
	var rows []TurnEvent
	if err := s.DB.WithContext(ctx).Where("battle_id = ?", row.ID).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	events := make([]game.Event, len(rows))
	for i, r := range rows {
		events[i] = game.Event{
			Turn:   r.Turn,
			Unit:   r.Unit,
			Team:   r.Team,
			Role:   r.Role,
			Kind:   r.Kind,
			Target: r.Target,
			Detail: r.Detail,
			Amount: r.Amount,
		}
	}
	return events, nil
}

// OutcomeCounts tallies stored battles by outcome.
func (s *Store) OutcomeCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Outcome string
		N       int
	}
	err := s.DB.WithContext(ctx).Model(&Battle{}).
		Select("outcome, count(*) as n").Group("outcome").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Outcome] = r.N
	}
	return counts, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}
