// Package persist stores networks in SQLite: entity blobs keyed by their
// dense refs, metadata as JSON values, and the attempted-recipe set, so
// an expansion can be saved, inspected and resumed bit-for-bit.
package persist

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/retort/entity"
	"github.com/roach88/retort/network"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed network archive.
// Uses WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// SaveOption configures a Save call.
type SaveOption func(*saveConfig)

type saveConfig struct {
	tried []string
}

// WithTried saves the attempted recipe keys alongside the network so the
// expansion can resume without re-evaluating them.
func WithTried(keys []string) SaveOption {
	return func(c *saveConfig) { c.tried = keys }
}

// Save writes the full network state in one transaction, replacing any
// previously saved contents.
func (s *Store) Save(ctx context.Context, net *network.Network, opts ...SaveOption) error {
	var cfg saveConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"molecules", "operators", "reactions", "metadata", "attempted"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := saveEntities(ctx, tx, net); err != nil {
		return err
	}
	if err := saveMetadata(ctx, tx, net); err != nil {
		return err
	}

	for _, key := range cfg.tried {
		if _, err := tx.ExecContext(ctx, "INSERT INTO attempted (recipe_key) VALUES (?)", key); err != nil {
			return fmt.Errorf("save attempted recipe: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func saveEntities(ctx context.Context, tx *sql.Tx, net *network.Network) error {
	var failed error
	insert := func(table string, ref int, key string, blob []byte) bool {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO "+table+" (ref, key, blob) VALUES (?, ?, ?)", ref, key, blob)
		if err != nil {
			failed = fmt.Errorf("save %s %d: %w", table, ref, err)
			return false
		}
		return true
	}

	net.EachMolecule(func(ref entity.MolRef, m entity.Molecule) bool {
		return insert("molecules", int(ref), m.Key(), m.Blob())
	})
	if failed != nil {
		return failed
	}
	net.EachOperator(func(ref entity.OpRef, op entity.Operator) bool {
		return insert("operators", int(ref), op.Key(), op.Blob())
	})
	if failed != nil {
		return failed
	}
	net.EachReaction(func(ref entity.RxnRef, r entity.Reaction) bool {
		return insert("reactions", int(ref), r.Key(), r.Blob())
	})
	return failed
}

func saveMetadata(ctx context.Context, tx *sql.Tx, net *network.Network) error {
	var failed error
	dump := func(kind entity.Kind) {
		if failed != nil {
			return
		}
		net.Meta(kind).Each(func(ref int, key string, value any) bool {
			encoded, err := json.Marshal(value)
			if err != nil {
				failed = fmt.Errorf("encode metadata %s/%d %q: %w", kind, ref, key, err)
				return false
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO metadata (kind, ref, meta_key, value) VALUES (?, ?, ?, ?)",
				kind.String(), ref, key, string(encoded))
			if err != nil {
				failed = fmt.Errorf("save metadata %s/%d %q: %w", kind, ref, key, err)
				return false
			}
			return true
		})
	}

	dump(entity.KindMolecule)
	dump(entity.KindOperator)
	dump(entity.KindReaction)
	return failed
}

// Load reads the saved network back, reconstructing molecules and
// operators through the decoder. Returns the network and the attempted
// recipe keys. Refs are reassigned in saved order, so they match the
// saved network exactly.
func (s *Store) Load(ctx context.Context, dec entity.Decoder) (*network.Network, []string, error) {
	net := network.New()

	err := s.eachRow(ctx, "molecules", func(ref int, blob []byte) error {
		m, err := dec.Molecule(blob)
		if err != nil {
			return fmt.Errorf("decode molecule %d: %w", ref, err)
		}
		got, _, err := net.AddMolecule(m)
		if err != nil {
			return err
		}
		if int(got) != ref {
			return fmt.Errorf("molecule %d loaded at ref %d", ref, got)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	err = s.eachRow(ctx, "operators", func(ref int, blob []byte) error {
		op, err := dec.Operator(blob)
		if err != nil {
			return fmt.Errorf("decode operator %d: %w", ref, err)
		}
		got, _, err := net.AddOperator(op)
		if err != nil {
			return err
		}
		if int(got) != ref {
			return fmt.Errorf("operator %d loaded at ref %d", ref, got)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	err = s.eachRow(ctx, "reactions", func(ref int, blob []byte) error {
		r, err := entity.DecodeReaction(blob)
		if err != nil {
			return fmt.Errorf("decode reaction %d: %w", ref, err)
		}
		got, _, err := net.AddReaction(r)
		if err != nil {
			return err
		}
		if int(got) != ref {
			return fmt.Errorf("reaction %d loaded at ref %d", ref, got)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.loadMetadata(ctx, net); err != nil {
		return nil, nil, err
	}

	tried, err := s.loadAttempted(ctx)
	if err != nil {
		return nil, nil, err
	}
	return net, tried, nil
}

// eachRow streams (ref, blob) pairs from an entity table in ref order.
func (s *Store) eachRow(ctx context.Context, table string, fn func(ref int, blob []byte) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT ref, blob FROM "+table+" ORDER BY ref")
	if err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref int
		var blob []byte
		if err := rows.Scan(&ref, &blob); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		if err := fn(ref, blob); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) loadMetadata(ctx context.Context, net *network.Network) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, ref, meta_key, value FROM metadata ORDER BY kind, ref, meta_key")
	if err != nil {
		return fmt.Errorf("load metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kindName, key, encoded string
		var ref int
		if err := rows.Scan(&kindName, &ref, &key, &encoded); err != nil {
			return fmt.Errorf("scan metadata: %w", err)
		}
		kind, err := kindFromName(kindName)
		if err != nil {
			return err
		}
		var value any
		if err := json.Unmarshal([]byte(encoded), &value); err != nil {
			return fmt.Errorf("decode metadata %s/%d %q: %w", kindName, ref, key, err)
		}
		if err := net.Meta(kind).Set(ref, key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) loadAttempted(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT recipe_key FROM attempted ORDER BY recipe_key")
	if err != nil {
		return nil, fmt.Errorf("load attempted: %w", err)
	}
	defer rows.Close()

	var tried []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan attempted: %w", err)
		}
		tried = append(tried, key)
	}
	return tried, rows.Err()
}

func kindFromName(name string) (entity.Kind, error) {
	switch name {
	case "molecule":
		return entity.KindMolecule, nil
	case "operator":
		return entity.KindOperator, nil
	case "reaction":
		return entity.KindReaction, nil
	default:
		return 0, fmt.Errorf("unknown metadata kind %q", name)
	}
}
