package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct {
	db    *sql.DB
	clock clockwork.Clock
	newID func() string

	// serializes read-modify-write of partitions within this process;
	// immediate transactions cover other processes.
	writeMu sync.Mutex
}

var _ Repo = (*SQLiteRepo)(nil)

// Option customizes a SQLiteRepo.
type Option func(*SQLiteRepo)

// WithClock sets the clock used for entry timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(r *SQLiteRepo) { r.clock = c }
}

// WithIDGenerator replaces the UUID generator for entry ids.
func WithIDGenerator(f func() string) Option {
	return func(r *SQLiteRepo) { r.newID = f }
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	// Immediate transactions take the write lock on BEGIN, so a second
	// process waits on busy_timeout instead of failing mid read-modify-write.
	db, err := sql.Open("sqlite", path+"?_txlock=immediate")
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	r := &SQLiteRepo{
		db:    db,
		clock: clockwork.NewRealClock(),
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// inTx runs fn in a write transaction. The caller's cancellation is not
// propagated: once started, a write either commits or rolls back on error.
func (r *SQLiteRepo) inTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx = context.WithoutCancel(ctx)

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadPartition(ctx context.Context, q queryer, date string) ([]domain.FoodEntry, error) {
	query, args, err := psql.Select("entries_json").
		From("food_logs").
		Where(sq.Eq{"log_date": date}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var raw string
	if err := q.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []domain.FoodEntry{}, nil
		}
		return nil, err
	}
	return decodeEntries(raw)
}

func (r *SQLiteRepo) savePartition(ctx context.Context, tx *sql.Tx, date string, entries []domain.FoodEntry) error {
	raw, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert("food_logs").
		Columns("log_date", "entries_json", "updated_at").
		Values(date, raw, r.clock.Now().UTC().Unix()).
		Suffix("ON CONFLICT(log_date) DO UPDATE SET entries_json = excluded.entries_json, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// LoadDay returns the entries of a date in insertion order. A missing date
// yields an empty slice.
func (r *SQLiteRepo) LoadDay(ctx context.Context, date string) ([]domain.FoodEntry, error) {
	if _, err := domain.ParseDateKey(date, time.Local); err != nil {
		return nil, err
	}
	entries, err := loadPartition(ctx, r.db, date)
	if err != nil {
		return nil, fmt.Errorf("load day %s: %w", date, err)
	}
	return entries, nil
}

// AppendEntry assigns id and timestamp to draft and appends it to the
// partition of date.
func (r *SQLiteRepo) AppendEntry(ctx context.Context, date string, draft domain.EntryDraft) (domain.FoodEntry, error) {
	if err := draft.Validate(); err != nil {
		return domain.FoodEntry{}, err
	}
	stamp, err := domain.StampFor(date, r.clock.Now())
	if err != nil {
		return domain.FoodEntry{}, err
	}

	entry := domain.FoodEntry{
		ID:         r.newID(),
		Timestamp:  stamp,
		EntryDraft: draft,
	}
	err = r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		entries, err := loadPartition(ctx, tx, date)
		if err != nil {
			return err
		}
		return r.savePartition(ctx, tx, date, append(entries, entry))
	})
	if err != nil {
		return domain.FoodEntry{}, fmt.Errorf("append entry %s: %w", date, err)
	}
	return entry, nil
}

// UpdateEntry replaces the mutable fields of the entry with the same id.
// The stored id and timestamp are kept. Unknown ids return
// domain.ErrNotFound and leave the partition untouched.
func (r *SQLiteRepo) UpdateEntry(ctx context.Context, date string, entry domain.FoodEntry) (domain.FoodEntry, error) {
	if err := entry.EntryDraft.Validate(); err != nil {
		return domain.FoodEntry{}, err
	}
	if _, err := domain.ParseDateKey(date, time.Local); err != nil {
		return domain.FoodEntry{}, err
	}

	var updated domain.FoodEntry
	err := r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		entries, err := loadPartition(ctx, tx, date)
		if err != nil {
			return err
		}
		i := indexOfEntry(entries, entry.ID)
		if i < 0 {
			return fmt.Errorf("entry %s: %w", entry.ID, domain.ErrNotFound)
		}
		entries[i].EntryDraft = entry.EntryDraft
		updated = entries[i]
		return r.savePartition(ctx, tx, date, entries)
	})
	if err != nil {
		return domain.FoodEntry{}, fmt.Errorf("update entry %s: %w", date, err)
	}
	return updated, nil
}

// RemoveEntry deletes the entry with id from date. Removing a missing entry
// is a no-op.
func (r *SQLiteRepo) RemoveEntry(ctx context.Context, date, id string) error {
	if _, err := domain.ParseDateKey(date, time.Local); err != nil {
		return err
	}
	err := r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		entries, err := loadPartition(ctx, tx, date)
		if err != nil {
			return err
		}
		i := indexOfEntry(entries, id)
		if i < 0 {
			return nil
		}
		return r.savePartition(ctx, tx, date, append(entries[:i], entries[i+1:]...))
	})
	if err != nil {
		return fmt.Errorf("remove entry %s: %w", date, err)
	}
	return nil
}

// LogDates lists stored partition keys within [from, to], ascending. An
// empty bound is open.
func (r *SQLiteRepo) LogDates(ctx context.Context, from, to string) ([]string, error) {
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := domain.ParseDateKey(bound, time.Local); err != nil {
			return nil, err
		}
	}
	b := psql.Select("log_date").From("food_logs").OrderBy("log_date ASC")
	if from != "" {
		b = b.Where(sq.GtOrEq{"log_date": from})
	}
	if to != "" {
		b = b.Where(sq.LtOrEq{"log_date": to})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// LoadProfile returns the stored profile, or nil when none exists.
func (r *SQLiteRepo) LoadProfile(ctx context.Context) (*domain.Profile, error) {
	query, args, err := psql.Select("profile_json").From("profile").Where(sq.Eq{"id": 1}).ToSql()
	if err != nil {
		return nil, err
	}

	var raw string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	var p domain.Profile
	if err := unmarshalJSON(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// SaveProfile replaces the stored profile wholesale.
func (r *SQLiteRepo) SaveProfile(ctx context.Context, p domain.Profile) error {
	raw, err := marshalJSON(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	query, args, err := psql.Insert("profile").
		Columns("id", "profile_json", "updated_at").
		Values(1, raw, r.clock.Now().UTC().Unix()).
		Suffix("ON CONFLICT(id) DO UPDATE SET profile_json = excluded.profile_json, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	return r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		return nil
	})
}

// Clear removes the profile and every daily log in one transaction.
func (r *SQLiteRepo) Clear(ctx context.Context) error {
	return r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, table := range []string{"profile", "food_logs"} {
			query, args, err := psql.Delete(table).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

const (
	sessionLoggedIn = "logged_in"
	sessionChatID   = "chat_id"
)

func (r *SQLiteRepo) setSession(ctx context.Context, key, value string) error {
	query, args, err := psql.Insert("session").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return err
	}
	return r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}

func (r *SQLiteRepo) getSession(ctx context.Context, key string) (string, bool, error) {
	query, args, err := psql.Select("value").From("session").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return "", false, err
	}
	var v string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (r *SQLiteRepo) SetLoggedIn(ctx context.Context, loggedIn bool) error {
	return r.setSession(ctx, sessionLoggedIn, boolToString(loggedIn))
}

func (r *SQLiteRepo) IsLoggedIn(ctx context.Context) (bool, error) {
	v, ok, err := r.getSession(ctx, sessionLoggedIn)
	if err != nil {
		return false, fmt.Errorf("session: %w", err)
	}
	return ok && v == "1", nil
}

// SetChatID binds the chat that receives reminders.
func (r *SQLiteRepo) SetChatID(ctx context.Context, chatID int64) error {
	return r.setSession(ctx, sessionChatID, strconv.FormatInt(chatID, 10))
}

// ChatID returns the bound chat, if any.
func (r *SQLiteRepo) ChatID(ctx context.Context) (int64, bool, error) {
	v, ok, err := r.getSession(ctx, sessionChatID)
	if err != nil || !ok {
		return 0, false, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("session chat id %q: %w", v, err)
	}
	return id, true, nil
}

// ClearSession drops the login flag and the bound chat.
func (r *SQLiteRepo) ClearSession(ctx context.Context) error {
	query, args, err := psql.Delete("session").ToSql()
	if err != nil {
		return err
	}
	return r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}
