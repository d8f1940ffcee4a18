package goalstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
	// Register the pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every goal version as a row in a SQLite database.
// Rows are never updated; the primary key on (goal set, unique name, version)
// rejects concurrent writers that raced on the same predecessor.
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.GoalStore = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (or creates) the database at path.
// Use ":memory:" for an ephemeral store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
			return nil, zerr.Wrap(err, "failed to create goal store directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open goal store")
	}
	// A single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	return NewSQLiteStore(db)
}

// NewSQLiteStore initializes the schema in db and returns a store using it.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, zerr.Wrap(err, "failed to initialize goal store schema")
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS goals (
			goal_set_id TEXT NOT NULL,
			unique_name TEXT NOT NULL,
			version INTEGER NOT NULL,
			state TEXT NOT NULL,
			registration TEXT NOT NULL,
			ts INTEGER NOT NULL,
			body BLOB NOT NULL,
			PRIMARY KEY (goal_set_id, unique_name, version)
		);
		CREATE INDEX IF NOT EXISTS goals_state ON goals (state);`,
	)
	return err
}

// Query returns the latest version of each matching goal ordered by goal set and unique name.
func (s *SQLiteStore) Query(ctx context.Context, q domain.GoalQuery) ([]domain.Goal, error) {
	var (
		where []string
		args  []any
	)
	if q.GoalSetID != "" {
		where = append(where, "g.goal_set_id = ?")
		args = append(args, q.GoalSetID)
	}
	if q.UniqueName != "" {
		where = append(where, "g.unique_name = ?")
		args = append(args, q.UniqueName)
	}
	if q.Registration != "" {
		where = append(where, "g.registration = ?")
		args = append(args, q.Registration)
	}
	if len(q.States) > 0 {
		where = append(where, "g.state IN ("+strings.TrimSuffix(strings.Repeat("?,", len(q.States)), ",")+")")
		for _, st := range q.States {
			args = append(args, string(st))
		}
	}

	query := `
		SELECT g.body FROM goals g
		JOIN (
			SELECT goal_set_id, unique_name, MAX(version) AS version
			FROM goals GROUP BY goal_set_id, unique_name
		) latest
		ON g.goal_set_id = latest.goal_set_id
			AND g.unique_name = latest.unique_name
			AND g.version = latest.version`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY g.goal_set_id, g.unique_name"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to query goals")
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Goal
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, zerr.Wrap(err, "failed to scan goal")
		}
		g, err := decodeGoal(body)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Get returns the latest version of a goal.
func (s *SQLiteStore) Get(ctx context.Context, goalSetID, uniqueName string) (domain.Goal, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM goals
		WHERE goal_set_id = ? AND unique_name = ?
		ORDER BY version DESC LIMIT 1`,
		goalSetID, uniqueName,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Goal{}, domain.ErrGoalNotFound
	}
	if err != nil {
		return domain.Goal{}, zerr.Wrap(err, "failed to read goal")
	}
	return decodeGoal(body)
}

// Create stores the first version of a goal.
func (s *SQLiteStore) Create(ctx context.Context, goal domain.Goal) error {
	if err := goal.Validate(); err != nil {
		return err
	}
	if goal.Version == 0 {
		goal.Version = 1
	}

	return s.insert(ctx, goal, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM goals WHERE goal_set_id = ? AND unique_name = ?`,
			goal.GoalSetID, goal.UniqueName,
		).Scan(&n); err != nil {
			return zerr.Wrap(err, "failed to check goal existence")
		}
		if n > 0 {
			return domain.ErrGoalExists
		}
		return nil
	})
}

// Update appends next if it directly follows the latest stored version.
func (s *SQLiteStore) Update(ctx context.Context, next domain.Goal) error {
	return s.insert(ctx, next, func(tx *sql.Tx) error {
		var latest sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(version) FROM goals WHERE goal_set_id = ? AND unique_name = ?`,
			next.GoalSetID, next.UniqueName,
		).Scan(&latest); err != nil {
			return zerr.Wrap(err, "failed to read latest goal version")
		}
		if !latest.Valid {
			return domain.ErrGoalNotFound
		}
		if latest.Int64 != next.Version-1 {
			return domain.ErrStaleGoalVersion
		}
		return nil
	})
}

func (s *SQLiteStore) insert(ctx context.Context, goal domain.Goal, check func(*sql.Tx) error) error {
	body, err := json.Marshal(goal)
	if err != nil {
		return zerr.Wrap(err, "failed to encode goal")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zerr.Wrap(err, "failed to begin goal store transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err := check(tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO goals (goal_set_id, unique_name, version, state, registration, ts, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		goal.GoalSetID,
		goal.UniqueName,
		goal.Version,
		string(goal.State),
		goal.Registration,
		goal.Timestamp.UnixMilli(),
		body,
	); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrStaleGoalVersion
		}
		return zerr.Wrap(err, "failed to insert goal version")
	}

	if err := tx.Commit(); err != nil {
		return zerr.Wrap(err, "failed to commit goal version")
	}
	return nil
}

func decodeGoal(body []byte) (domain.Goal, error) {
	var g domain.Goal
	if err := json.Unmarshal(body, &g); err != nil {
		return domain.Goal{}, zerr.Wrap(err, "failed to decode goal")
	}
	return g, nil
}
