package data

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOwned             = errors.New("item already owned")
	ErrNotOwned          = errors.New("item not owned")
)

//go:embed schema.sql
var schema string

// Dialect is the SQL flavour behind a Store.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// User is the public-facing player payload.
type User struct {
	ID           string   `json:"id"`
	Nickname     string   `json:"nickname"`
	Tag          int      `json:"tag"`
	Coins        int      `json:"coins"`
	Wins         int      `json:"wins"`
	Losses       int      `json:"losses"`
	Draws        int      `json:"draws"`
	BestScore    int      `json:"best_score"`
	Unlocks      []string `json:"unlocks"`
	PasswordHash string   `json:"-"`
}

// Ranking is one leaderboard row.
type Ranking struct {
	Nickname  string `json:"nickname"`
	Tag       int    `json:"tag"`
	Wins      int    `json:"wins"`
	BestScore int    `json:"best_score"`
}

// Purchase is one shop transaction. Stackable items add Uses to what the
// player already holds; the rest can only be bought once.
type Purchase struct {
	UserID    string
	ItemID    string
	Cost      int
	Uses      int
	Stackable bool
}

// ResultRecord is the round-end bookkeeping flushed in a single transaction.
type ResultRecord struct {
	CharacterIndex int
	Difficulty     string
	Winner         string
	Score          int
	Coins          int
	Unlocks        []string
	ConsumeItem    string
	MemoryKey      string
	Memory         string
}

// Store persists player progression, inventory and CPU memory.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	dialect Dialect
}

// NewStore wraps an open handle and makes sure the schema exists.
func NewStore(db *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{db: db, dialect: dialect}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenPostgres connects with a connection string such as DATABASE_URL.
func OpenPostgres(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	s, err := NewStore(db, Postgres)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenSQLite opens (creating if needed) a SQLite progression file.
func OpenSQLite(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s, err := NewStore(db, SQLite)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

var placeholder = regexp.MustCompile(`\$\d+`)

// q rewrites $n placeholders for SQLite. Queries bind each argument once,
// in order, so positional ? markers line up.
func (s *Store) q(query string) string {
	if s.dialect == Postgres {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}

// isUniqueViolation recognises a primary key or unique constraint failure
// from either driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

// ========================================
// USERS
// ========================================

// CreateUser inserts a player under a random free tag for the nickname.
func (s *Store) CreateUser(ctx context.Context, nickname, passwordHash string) (User, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < 20; i++ {
		tag := rng.Intn(9999) + 1 // 1..9999
		userID := "u_" + uuid.NewString()

		var insertedID string
		err := s.db.QueryRowContext(ctx, s.q(`
			INSERT INTO users (id, nickname, tag, password_hash)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (nickname, tag) DO NOTHING
			RETURNING id
		`), userID, nickname, tag, passwordHash).Scan(&insertedID)

		if errors.Is(err, sql.ErrNoRows) {
			continue // Tag collision, retry
		}
		if err != nil {
			return User{}, fmt.Errorf("create user: %w", err)
		}
		return User{ID: insertedID, Nickname: nickname, Tag: tag, PasswordHash: passwordHash}, nil
	}
	return User{}, fmt.Errorf("failed to generate unique tag for %s", nickname)
}

const userColumns = `id, nickname, tag, password_hash, coins, wins, losses, draws, best_score`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Nickname, &u.Tag, &u.PasswordHash, &u.Coins, &u.Wins, &u.Losses, &u.Draws, &u.BestScore)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

// GetUser returns a single user by ID, with unlock flags.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.q(`SELECT `+userColumns+` FROM users WHERE id = $1`), id))
	if err != nil {
		return User{}, err
	}
	if u.Unlocks, err = s.Unlocks(ctx, id); err != nil {
		return User{}, err
	}
	return u, nil
}

// FindUser looks a player up by nickname and tag.
func (s *Store) FindUser(ctx context.Context, nickname string, tag int) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.q(`
		SELECT `+userColumns+` FROM users WHERE nickname = $1 AND tag = $2
	`), nickname, tag))
	if err != nil {
		return User{}, err
	}
	if u.Unlocks, err = s.Unlocks(ctx, u.ID); err != nil {
		return User{}, err
	}
	return u, nil
}

// Leaderboard lists the best single-round scores, ties broken by wins.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]Ranking, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT nickname, tag, wins, best_score FROM users
		WHERE best_score > 0 OR wins > 0
		ORDER BY best_score DESC, wins DESC, nickname ASC
		LIMIT $1
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	out := []Ranking{}
	for rows.Next() {
		var r Ranking
		if err := rows.Scan(&r.Nickname, &r.Tag, &r.Wins, &r.BestScore); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AdjustCoins adds or subtracts coins, never going below zero.
func (s *Store) AdjustCoins(ctx context.Context, userID string, amount int) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE users
		SET coins = CASE WHEN coins + $1 < 0 THEN 0 ELSE coins + $2 END
		WHERE id = $3
	`), amount, amount, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ========================================
// INVENTORY
// ========================================

// HasItem reports whether the player holds at least one use of an item.
func (s *Store) HasItem(ctx context.Context, userID, itemID string) bool {
	var exists bool
	_ = s.db.QueryRowContext(ctx, s.q(`
		SELECT EXISTS(SELECT 1 FROM inventory WHERE user_id = $1 AND item_id = $2 AND uses > 0)
	`), userID, itemID).Scan(&exists)
	return exists
}

// DeductCoinsAndAddItem charges the player and grants the item atomically.
func (s *Store) DeductCoinsAndAddItem(ctx context.Context, p Purchase) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Uses < 1 {
		p.Uses = 1
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Deduct
	res, err := tx.ExecContext(ctx, s.q(`UPDATE users SET coins = coins - $1 WHERE id = $2 AND coins >= $3`), p.Cost, p.UserID, p.Cost)
	if err != nil {
		return 0, err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, s.q(`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`), p.UserID).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrUserNotFound
		}
		return 0, ErrInsufficientFunds
	}

	// Add Item
	if p.Stackable {
		_, err = tx.ExecContext(ctx, s.q(`
			INSERT INTO inventory (user_id, item_id, uses) VALUES ($1, $2, $3)
			ON CONFLICT (user_id, item_id) DO UPDATE SET uses = inventory.uses + EXCLUDED.uses
		`), p.UserID, p.ItemID, p.Uses)
	} else {
		_, err = tx.ExecContext(ctx, s.q(`INSERT INTO inventory (user_id, item_id, uses) VALUES ($1, $2, $3)`), p.UserID, p.ItemID, p.Uses)
		if isUniqueViolation(err) {
			return 0, ErrOwned
		}
	}
	if err != nil {
		return 0, fmt.Errorf("add item %s: %w", p.ItemID, err)
	}

	var coins int
	if err := tx.QueryRowContext(ctx, s.q(`SELECT coins FROM users WHERE id = $1`), p.UserID).Scan(&coins); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return coins, nil
}

// Inventory maps every held item to its remaining uses.
func (s *Store) Inventory(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT item_id, uses FROM inventory WHERE user_id = $1 AND uses > 0`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inv := make(map[string]int)
	for rows.Next() {
		var id string
		var uses int
		if err := rows.Scan(&id, &uses); err != nil {
			return nil, err
		}
		inv[id] = uses
	}
	return inv, rows.Err()
}

// ConsumeItem spends one use of an item and returns what is left.
func (s *Store) ConsumeItem(ctx context.Context, userID, itemID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	left, err := s.consume(ctx, tx, userID, itemID)
	if err != nil {
		return 0, err
	}
	return left, tx.Commit()
}

func (s *Store) consume(ctx context.Context, tx *sql.Tx, userID, itemID string) (int, error) {
	res, err := tx.ExecContext(ctx, s.q(`
		UPDATE inventory SET uses = uses - 1 WHERE user_id = $1 AND item_id = $2 AND uses > 0
	`), userID, itemID)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotOwned
	}
	var left int
	err = tx.QueryRowContext(ctx, s.q(`SELECT uses FROM inventory WHERE user_id = $1 AND item_id = $2`), userID, itemID).Scan(&left)
	return left, err
}

// ========================================
// CPU MEMORY
// ========================================

// LoadMemory returns the stored CPU memory blob, if any.
func (s *Store) LoadMemory(ctx context.Context, userID, key string) (string, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT data FROM cpu_memory WHERE user_id = $1 AND memory_key = $2
	`), userID, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return raw, true, nil
}

// SaveMemory creates or replaces a CPU memory blob.
func (s *Store) SaveMemory(ctx context.Context, userID, key, raw string) error {
	_, err := s.db.ExecContext(ctx, s.q(saveMemorySQL), userID, key, raw)
	return err
}

const saveMemorySQL = `
	INSERT INTO cpu_memory (user_id, memory_key, data) VALUES ($1, $2, $3)
	ON CONFLICT (user_id, memory_key) DO UPDATE
	SET data = EXCLUDED.data,
	    updated_at = CURRENT_TIMESTAMP
`

// ========================================
// UNLOCKS AND RESULTS
// ========================================

// GrantUnlocks adds unlock flags, ignoring ones already held.
func (s *Store) GrantUnlocks(ctx context.Context, userID string, flags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.grant(ctx, tx, userID, flags); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) grant(ctx context.Context, tx *sql.Tx, userID string, flags []string) error {
	for _, f := range flags {
		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO unlocks (user_id, flag) VALUES ($1, $2)
			ON CONFLICT (user_id, flag) DO NOTHING
		`), userID, f); err != nil {
			return fmt.Errorf("grant unlock %s: %w", f, err)
		}
	}
	return nil
}

// Unlocks lists the player's unlock flags in grant order.
func (s *Store) Unlocks(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT flag FROM unlocks WHERE user_id = $1 ORDER BY created_at, flag
	`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := []string{}
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// RecordResult flushes a finished round: history row, coins, win counters,
// unlocks, the consumed item and the CPU memory all commit together.
func (s *Store) RecordResult(ctx context.Context, userID string, r ResultRecord) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO results (id, user_id, character_index, difficulty, winner, score, coins)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`), uuid.NewString(), userID, r.CharacterIndex, r.Difficulty, r.Winner, r.Score, r.Coins); err != nil {
		return User{}, fmt.Errorf("insert result: %w", err)
	}

	var wins, losses, draws int
	switch r.Winner {
	case "player":
		wins = 1
	case "cpu":
		losses = 1
	case "draw":
		draws = 1
	}
	res, err := tx.ExecContext(ctx, s.q(`
		UPDATE users
		SET coins = coins + $1,
		    wins = wins + $2,
		    losses = losses + $3,
		    draws = draws + $4,
		    best_score = CASE WHEN best_score < $5 THEN $6 ELSE best_score END
		WHERE id = $7
	`), r.Coins, wins, losses, draws, r.Score, r.Score, userID)
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, ErrUserNotFound
	}

	if err := s.grant(ctx, tx, userID, r.Unlocks); err != nil {
		return User{}, err
	}
	if r.ConsumeItem != "" {
		if _, err := s.consume(ctx, tx, userID, r.ConsumeItem); err != nil && !errors.Is(err, ErrNotOwned) {
			return User{}, fmt.Errorf("consume %s: %w", r.ConsumeItem, err)
		}
	}
	if r.MemoryKey != "" {
		if _, err := tx.ExecContext(ctx, s.q(saveMemorySQL), userID, r.MemoryKey, r.Memory); err != nil {
			return User{}, fmt.Errorf("save memory: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return User{}, err
	}
	return s.GetUser(ctx, userID)
}
