package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/pkg/errors"
)

// Config holds Neo4j connection settings.
type Config struct {
	URI                          string
	Username                     string
	Password                     string
	Database                     string
	MaxConnectionPoolSize        int
	ConnectionAcquisitionTimeout time.Duration
}

// Neo4jStore implements Store on top of a pooled Neo4j driver.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// OpenNeo4j creates a driver and verifies the server is reachable.
func OpenNeo4j(ctx context.Context, cfg Config) (*Neo4jStore, error) {
	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		if cfg.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
		}
		if cfg.ConnectionAcquisitionTimeout > 0 {
			c.ConnectionAcquisitionTimeout = cfg.ConnectionAcquisitionTimeout
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "create neo4j driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, errors.Wrapf(err, "connect to neo4j at %s", cfg.URI)
	}
	return &Neo4jStore{driver: driver, database: cfg.Database}, nil
}

// OpenSession opens a driver session against the configured database.
func (s *Neo4jStore) OpenSession(ctx context.Context) (Session, error) {
	if s.driver == nil {
		return nil, errors.New("neo4j driver is closed")
	}
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	return &neo4jSession{sess: sess}, nil
}

// Close shuts down the driver and its pool.
func (s *Neo4jStore) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close(ctx)
	s.driver = nil
	return err
}

type neo4jSession struct {
	sess neo4j.SessionWithContext
}

func (s *neo4jSession) Run(ctx context.Context, cypher string, params map[string]any) (*Result, error) {
	start := time.Now()
	res, err := s.sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	out, err := collect(ctx, res)
	if err != nil {
		return nil, err
	}
	out.Summary.ExecutionTime = time.Since(start)
	return out, nil
}

func (s *neo4jSession) ExecuteWrite(ctx context.Context, fn func(tx Runner) error) error {
	tx, err := s.sess.BeginTransaction(ctx)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Close(ctx)

	if err := fn(&neo4jTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Wrapf(err, "rollback failed (%v)", rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

func (s *neo4jSession) Close(ctx context.Context) error {
	return s.sess.Close(ctx)
}

type neo4jTx struct {
	tx neo4j.ExplicitTransaction
}

func (t *neo4jTx) Run(ctx context.Context, cypher string, params map[string]any) (*Result, error) {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return collect(ctx, res)
}

func collect(ctx context.Context, res neo4j.ResultWithContext) (*Result, error) {
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := &Result{Records: make([]Record, 0, len(records))}
	for _, rec := range records {
		r := make(Record, len(rec.Keys))
		for i, key := range rec.Keys {
			r[key] = convertValue(rec.Values[i])
		}
		out.Records = append(out.Records, r)
	}

	summary, err := res.Consume(ctx)
	if err == nil && summary != nil && summary.Counters() != nil {
		c := summary.Counters()
		out.Summary.NodesCreated = c.NodesCreated()
		out.Summary.RelationshipsCreated = c.RelationshipsCreated()
		out.Summary.PropertiesSet = c.PropertiesSet()
	}
	return out, nil
}

// convertValue maps driver values onto the package's plain types.
func convertValue(v any) any {
	switch val := v.(type) {
	case dbtype.Node:
		return Node{ElementID: val.ElementId, Labels: val.Labels, Props: convertMap(val.Props)}
	case dbtype.Relationship:
		return Relationship{
			ElementID: val.ElementId,
			StartID:   val.StartElementId,
			EndID:     val.EndElementId,
			Type:      val.Type,
			Props:     convertMap(val.Props),
		}
	case dbtype.LocalDateTime:
		return time.Time(val)
	case dbtype.Date:
		return time.Time(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = convertValue(e)
		}
		return out
	case map[string]any:
		return convertMap(val)
	default:
		return v
	}
}

func convertMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = convertValue(v)
	}
	return out
}
