package knowledge

import (
	"context"

	"github.com/emicklei/dot"
	"github.com/pkg/errors"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/query"
)

// Visualization limits.
const (
	maxVisualNodes = 20
	maxLabelLength = 30
)

// Explorer expands the neighbourhood of one entity.
type Explorer struct {
	base
}

// NewExplorer returns an Explorer over store.
func NewExplorer(store graph.Store, opts ...Option) *Explorer {
	return &Explorer{base: newBase(store, opts)}
}

// Explore resolves req.StartEntity and reports every entity within
// req.MaxDepth hops. An unknown start entity is a KindNotFound error.
func (e *Explorer) Explore(ctx context.Context, req models.ExplorationRequest) (*models.ExplorationResult, error) {
	const op = "explore"
	if req.MaxDepth == 0 {
		req.MaxDepth = models.DefaultMaxDepth
	}
	if err := checkRequest(req); err != nil {
		return nil, validationErr(op, err)
	}
	resolve, err := query.Resolve(req.StartEntity)
	if err != nil {
		return nil, validationErr(op, err)
	}

	var out *models.ExplorationResult
	err = e.withSession(ctx, op, func(sess graph.Session) error {
		res, err := sess.Run(ctx, resolve.Cypher, resolve.Params)
		if err != nil {
			return storeErr(op, "resolve start entity", err)
		}
		rec := res.Single()
		start, ok := rec.Node("n")
		if rec == nil || !ok {
			return &Error{Kind: KindNotFound, Op: op,
				Err: errors.Errorf("entity %q not found", req.StartEntity)}
		}

		stmt, err := query.Explore(start.ElementID, req.RelationshipTypes, req.MaxDepth)
		if err != nil {
			return builderErr(op, err)
		}
		res, err = sess.Run(ctx, stmt.Cypher, stmt.Params)
		if err != nil {
			return storeErr(op, "run traversal query", err)
		}

		out = &models.ExplorationResult{
			Success: true,
			StartNode: models.NodeSummary{
				ID:      graph.Prop(start.Props, "id"),
				Name:    displayText(start.Props),
				Labels:  start.Labels,
				Content: rec.String("content"),
			},
			ConnectedNodes:      make([]models.ConnectedNode, 0, len(res.Records)),
			RelationshipSummary: make(map[string]int),
		}
		for _, row := range res.Records {
			node, ok := row.Node("connected")
			if !ok {
				continue
			}
			depth := row.Int("depth")
			if depth > req.MaxDepth {
				continue
			}
			rels := row.Strings("relationships")
			out.ConnectedNodes = append(out.ConnectedNodes, models.ConnectedNode{
				ID:            graph.Prop(node.Props, "id"),
				Name:          displayText(node.Props),
				Type:          contentType(node),
				Content:       row.String("content"),
				Source:        graph.Prop(node.Props, "source"),
				Confidence:    confidenceOf(node.Props),
				Depth:         depth,
				Relationships: rels,
			})
			for _, t := range rels {
				out.RelationshipSummary[t]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Visualize {
		out.Visualization = visualize(out.StartNode, out.ConnectedNodes)
	}
	return out, nil
}

// visualize renders the start node and the first connected nodes as a
// Graphviz digraph, with one edge per distinct relationship type.
func visualize(start models.NodeSummary, nodes []models.ConnectedNode) string {
	g := dot.NewGraph(dot.Directed)
	root := g.Node(nodeKey(start.ID, start.Name)).Label(truncateLabel(start.Name))

	if len(nodes) > maxVisualNodes {
		nodes = nodes[:maxVisualNodes]
	}
	for _, n := range nodes {
		target := g.Node(nodeKey(n.ID, n.Name)).Label(truncateLabel(n.Name))
		seen := make(map[string]bool)
		for _, rel := range n.Relationships {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			g.Edge(root, target, rel)
		}
	}
	return g.String()
}

func nodeKey(id, name string) string {
	if id != "" {
		return id
	}
	return name
}

func truncateLabel(s string) string {
	r := []rune(s)
	if len(r) <= maxLabelLength {
		return s
	}
	return string(r[:maxLabelLength]) + "..."
}
