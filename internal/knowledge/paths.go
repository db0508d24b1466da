package knowledge

import (
	"context"
	"fmt"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/query"
)

// PathFinder finds bounded paths between two entities.
type PathFinder struct {
	base
}

// NewPathFinder returns a PathFinder over store.
func NewPathFinder(store graph.Store, opts ...Option) *PathFinder {
	return &PathFinder{base: newBase(store, opts)}
}

// FindPaths returns up to query.MaxPaths shortest paths between the two
// entities. Unresolvable endpoints and unconnected pairs yield Found=false.
func (p *PathFinder) FindPaths(ctx context.Context, req models.PathRequest) (*models.PathResult, error) {
	const op = "find paths"
	if req.MaxPathLength == 0 {
		req.MaxPathLength = models.DefaultMaxPathLength
	}
	if err := checkRequest(req); err != nil {
		return nil, validationErr(op, err)
	}
	stmt, err := query.FindPaths(query.PathParams{
		EntityA:           req.EntityA,
		EntityB:           req.EntityB,
		MaxPathLength:     req.MaxPathLength,
		RelationshipTypes: req.RelationshipConstraints,
		IncludeNodes:      req.IncludeNodes,
	})
	if err != nil {
		return nil, builderErr(op, err)
	}

	var paths []models.Path
	err = p.withSession(ctx, op, func(sess graph.Session) error {
		res, err := sess.Run(ctx, stmt.Cypher, stmt.Params)
		if err != nil {
			return storeErr(op, "run path query", err)
		}
		for _, rec := range res.Records {
			length := rec.Int("pathLength")
			if length > req.MaxPathLength {
				continue
			}
			paths = append(paths, toPath(rec, length))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		return &models.PathResult{
			Success: true,
			Found:   false,
			Message: fmt.Sprintf("no path between %q and %q within %d hops",
				req.EntityA, req.EntityB, req.MaxPathLength),
		}, nil
	}

	shortest := paths[0].Length
	for _, path := range paths[1:] {
		shortest = min(shortest, path.Length)
	}
	return &models.PathResult{
		Success:            true,
		Found:              true,
		Paths:              paths,
		ShortestPathLength: shortest,
	}, nil
}

func toPath(rec graph.Record, length int) models.Path {
	segments := rec.Maps("segments")
	path := models.Path{
		Nodes:    make([]models.NodeSummary, 0),
		Segments: make([]models.PathSegment, 0, len(segments)),
		Length:   length,
	}
	for _, s := range segments {
		path.Segments = append(path.Segments, models.PathSegment{
			Source:       graph.Prop(s, "source"),
			Relationship: graph.Prop(s, "relationship"),
			Target:       graph.Prop(s, "target"),
		})
	}
	for _, n := range rec.Maps("nodes") {
		name := graph.Prop(n, "name")
		path.Nodes = append(path.Nodes, models.NodeSummary{
			ID:      graph.Prop(n, "id"),
			Name:    name,
			Labels:  graph.AsStrings(n["labels"]),
			Content: name,
		})
	}
	return path
}
