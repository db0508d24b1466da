package journal

// Schema is the SQL schema of the extraction journal database.
const Schema = `
CREATE TABLE IF NOT EXISTS batches (
    id            TEXT PRIMARY KEY,
    source_name   TEXT NOT NULL,
    source_id     TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'running'
                  CHECK(status IN ('running', 'committed', 'failed')),
    concept_count INTEGER NOT NULL DEFAULT 0,
    fact_count    INTEGER NOT NULL DEFAULT 0,
    failed_stage  TEXT NOT NULL DEFAULT '',
    error         TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS batch_entities (
    batch_id   TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
    entity_id  TEXT NOT NULL,
    kind       TEXT NOT NULL,
    text       TEXT NOT NULL,
    position   INTEGER NOT NULL,
    PRIMARY KEY (batch_id, entity_id)
);

CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at);
CREATE INDEX IF NOT EXISTS idx_batches_status ON batches(status);
`
