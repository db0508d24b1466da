// Package journal keeps a local SQLite ledger of extraction batches so the
// provenance of every batch, and the stage at which a failed one stopped,
// can be inspected after the fact.
package journal

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/pkg/errors"
)

// Batch statuses.
const (
	StatusRunning   = "running"
	StatusCommitted = "committed"
	StatusFailed    = "failed"
)

// Batch is one extraction run.
type Batch struct {
	ID           string   `json:"id"`
	SourceName   string   `json:"sourceName"`
	SourceID     string   `json:"sourceId,omitempty"`
	Status       string   `json:"status"`
	ConceptCount int      `json:"conceptCount"`
	FactCount    int      `json:"factCount"`
	FailedStage  string   `json:"failedStage,omitempty"`
	Error        string   `json:"error,omitempty"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
	Entities     []Entity `json:"entities,omitempty"`
}

// Entity is a graph entity written by a committed batch.
type Entity struct {
	EntityID string `json:"entityId"`
	Kind     string `json:"kind"`
	Text     string `json:"text"`
}

// Outcome closes a batch. A failed batch whose writes were rolled back
// keeps no entities.
type Outcome struct {
	SourceID    string
	Entities    []Entity
	Concepts    int
	Facts       int
	FailedStage string
	Err         error
	RolledBack  bool
}

// Journal is the SQLite-backed batch ledger.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) journal.db under dataDir and migrates it.
func Open(dataDir string) (*Journal, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	dbPath := filepath.Join(dataDir, "journal.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, errors.Wrap(err, "open journal db")
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate journal db")
	}
	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Begin records a new running batch and returns its id.
func (j *Journal) Begin(sourceName string) (string, error) {
	id := uuid.New().String()
	if _, err := j.db.Exec(`INSERT INTO batches (id, source_name) VALUES (?, ?)`, id, sourceName); err != nil {
		return "", errors.Wrap(err, "insert batch")
	}
	return id, nil
}

// Finish marks a batch committed, or failed when out.Err is set, and stores
// the entities it wrote.
func (j *Journal) Finish(batchID string, out Outcome) error {
	tx, err := j.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	status, msg := StatusCommitted, ""
	if out.Err != nil {
		status, msg = StatusFailed, out.Err.Error()
	}
	res, err := tx.Exec(
		`UPDATE batches
		 SET status = ?, source_id = ?, concept_count = ?, fact_count = ?, failed_stage = ?, error = ?,
		     updated_at = datetime('now')
		 WHERE id = ?`,
		status, out.SourceID, out.Concepts, out.Facts, out.FailedStage, msg, batchID,
	)
	if err != nil {
		return errors.Wrap(err, "update batch")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Errorf("batch %q not found", batchID)
	}

	entities := out.Entities
	if out.RolledBack {
		entities = nil
	}
	for i, e := range entities {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO batch_entities (batch_id, entity_id, kind, text, position) VALUES (?, ?, ?, ?, ?)`,
			batchID, e.EntityID, e.Kind, e.Text, i,
		); err != nil {
			return errors.Wrapf(err, "insert batch entity %q", e.EntityID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// Get loads a batch with its entities.
func (j *Journal) Get(batchID string) (*Batch, error) {
	b, err := scanBatch(j.db.QueryRow(
		`SELECT id, source_name, source_id, status, concept_count, fact_count, failed_stage, error, created_at, updated_at
		 FROM batches WHERE id = ?`, batchID,
	))
	if err != nil {
		return nil, err
	}

	rows, err := j.db.Query(
		`SELECT entity_id, kind, text FROM batch_entities WHERE batch_id = ? ORDER BY position`, batchID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query batch entities")
	}
	defer rows.Close()
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.EntityID, &e.Kind, &e.Text); err != nil {
			return nil, errors.Wrap(err, "scan batch entity")
		}
		b.Entities = append(b.Entities, e)
	}
	return b, rows.Err()
}

// List returns the most recent batches, newest first, without entities.
func (j *Journal) List(limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query(
		`SELECT id, source_name, source_id, status, concept_count, fact_count, failed_stage, error, created_at, updated_at
		 FROM batches ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list batches")
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.SourceName, &b.SourceID, &b.Status, &b.ConceptCount, &b.FactCount,
			&b.FailedStage, &b.Error, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan batch")
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func scanBatch(row *sql.Row) (*Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.SourceName, &b.SourceID, &b.Status, &b.ConceptCount, &b.FactCount,
		&b.FailedStage, &b.Error, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.New("batch not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan batch")
	}
	return &b, nil
}
