package graph

import (
	"context"

	"github.com/pkg/errors"
)

// Schema lists the constraints and indexes the knowledge engine relies on.
// Every statement is idempotent.
var Schema = []string{
	// Concept names merge on match, so uniqueness is enforced by the store.
	`CREATE CONSTRAINT concept_name_unique IF NOT EXISTS FOR (c:Concept) REQUIRE c.name IS UNIQUE`,
	`CREATE CONSTRAINT domain_name_unique IF NOT EXISTS FOR (d:Domain) REQUIRE d.name IS UNIQUE`,

	`CREATE INDEX concept_id IF NOT EXISTS FOR (c:Concept) ON (c.id)`,
	`CREATE INDEX fact_id IF NOT EXISTS FOR (f:Fact) ON (f.id)`,
	`CREATE INDEX source_id IF NOT EXISTS FOR (s:Source) ON (s.id)`,
	`CREATE INDEX knowledge_id IF NOT EXISTS FOR (k:Knowledge) ON (k.id)`,
	`CREATE INDEX domain_id IF NOT EXISTS FOR (d:Domain) ON (d.id)`,
	`CREATE INDEX fact_statement IF NOT EXISTS FOR (f:Fact) ON (f.statement)`,
	`CREATE INDEX knowledge_content_type IF NOT EXISTS FOR (k:Knowledge) ON (k.contentType)`,
}

// EnsureSchema applies Schema. Schema statements cannot share a transaction
// with data writes, so each runs in auto-commit mode.
func EnsureSchema(ctx context.Context, store Store) error {
	sess, err := store.OpenSession(ctx)
	if err != nil {
		return errors.Wrap(err, "open session")
	}
	defer sess.Close(ctx)

	for _, stmt := range Schema {
		if _, err := sess.Run(ctx, stmt, nil); err != nil {
			return errors.Wrapf(err, "apply schema %q", stmt)
		}
	}
	return nil
}
