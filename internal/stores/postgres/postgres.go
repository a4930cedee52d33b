// Package postgres backs the document store with a single JSONB table so the
// gateway packages keep the narrow collection/document surface they were
// written against.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
	"storefront/internal/stores/docstore"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// Open connects using the POSTGRES_* environment variables.
func Open() (*sql.DB, error) {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")
	dbName := os.Getenv("POSTGRES_DB")
	sslMode := os.Getenv("POSTGRES_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

func (c *Conf) Create(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling document: %w", err)
	}

	id := uuid.NewString()
	err = c.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO documents (id, collection, data, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
		`
		if _, err := tx.ExecContext(ctx, query, id, collection, data); err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *Conf) GetByID(ctx context.Context, collection, id string) (docstore.Document, error) {
	query := `
		SELECT data
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var data []byte
	err := c.db.QueryRowContext(ctx, query, collection, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("querying document: %w", err)
	}
	return decodeDocument(data, id)
}

func (c *Conf) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshaling partial document: %w", err)
	}

	return c.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE documents
			SET data = data || $3::jsonb, updated_at = NOW()
			WHERE collection = $1 AND id = $2
		`
		res, err := tx.ExecContext(ctx, query, collection, id, data)
		if err != nil {
			return fmt.Errorf("updating document: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reading rows affected: %w", err)
		}
		if rows == 0 {
			return docstore.ErrNotFound
		}
		return nil
	})
}

func (c *Conf) Delete(ctx context.Context, collection, id string) error {
	query := `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`
	if _, err := c.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

func (c *Conf) Query(ctx context.Context, collection string, filters []docstore.Filter, order *docstore.Ordering) ([]docstore.Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1`
	args := []any{collection}

	for _, f := range filters {
		args = append(args, f.Field, f.Value)
		query += fmt.Sprintf(" AND data->>$%d = $%d", len(args)-1, len(args))
	}
	if order != nil {
		args = append(args, order.Field)
		query += fmt.Sprintf(" ORDER BY data->>$%d", len(args))
		if order.Desc {
			query += " DESC"
		}
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		doc, err := decodeDocument(data, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	return docs, nil
}

func decodeDocument(data []byte, id string) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling document: %w", err)
	}
	doc["id"] = id
	return doc, nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		er := tx.Rollback()
		if er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}
