package knowledge

import (
	"context"
	"sort"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/query"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/textsim"
)

// Ranking weights for semantic and hybrid search.
const (
	similarityWeight = 0.7
	confidenceWeight = 0.3

	minCandidatePool = 50
)

// Retriever runs ranked searches.
type Retriever struct {
	base
}

// NewRetriever returns a Retriever over store.
func NewRetriever(store graph.Store, opts ...Option) *Retriever {
	return &Retriever{base: newBase(store, opts)}
}

func searchDefaults(req *models.SearchRequest) {
	if req.SearchType == "" {
		req.SearchType = models.SearchHybrid
	}
	if req.MaxResults == 0 {
		req.MaxResults = models.DefaultMaxResults
	}
}

// Search matches entities for req.Query and returns them ordered by relevance.
func (r *Retriever) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	const op = "search"
	searchDefaults(&req)
	if err := checkRequest(req); err != nil {
		return nil, validationErr(op, err)
	}

	params := query.SearchParams{
		Query:         req.Query,
		SearchType:    req.SearchType,
		Domain:        req.ContextFilters.Domain,
		MinConfidence: req.ContextFilters.MinConfidence,
		ContentTypes:  req.ContextFilters.ContentTypes,
		Source:        req.ContextFilters.Source,
		Limit:         req.MaxResults,
	}
	rescored := req.SearchType == models.SearchSemantic || req.SearchType == models.SearchHybrid
	if rescored {
		params.Limit = max(req.MaxResults*5, minCandidatePool)
	}
	switch {
	case req.SearchType == models.SearchGraph:
		params.RelatedHops = 2
	case req.IncludeContext:
		params.RelatedHops = 1
	}

	stmt, err := query.Search(params)
	if err != nil {
		return nil, builderErr(op, err)
	}

	var hits []models.SearchHit
	err = r.withSession(ctx, op, func(sess graph.Session) error {
		res, err := sess.Run(ctx, stmt.Cypher, stmt.Params)
		if err != nil {
			return storeErr(op, "run search query", err)
		}
		hits = make([]models.SearchHit, 0, len(res.Records))
		for _, rec := range res.Records {
			node, ok := rec.Node("n")
			if !ok {
				continue
			}
			hit := toHit(node, rec)
			hit.Relevance = hit.Confidence
			if rescored {
				hit.Relevance = similarityWeight*textsim.Similarity(req.Query, hit.Content) +
					confidenceWeight*hit.Confidence
			}
			hits = append(hits, hit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Relevance > hits[j].Relevance })
	if len(hits) > req.MaxResults {
		hits = hits[:req.MaxResults]
	}
	r.logger.Debug("search complete", "search_type", req.SearchType, "results", len(hits))

	return &models.SearchResult{
		Success:        true,
		Results:        hits,
		TotalCount:     len(hits),
		SearchType:     req.SearchType,
		IncludeContext: req.IncludeContext,
	}, nil
}

func toHit(n graph.Node, rec graph.Record) models.SearchHit {
	content := rec.String("content")
	if content == "" {
		content = displayText(n.Props)
	}
	return models.SearchHit{
		ID:              graph.Prop(n.Props, "id"),
		Content:         content,
		ContentType:     contentType(n),
		Source:          graph.Prop(n.Props, "source"),
		Confidence:      confidenceOf(n.Props),
		RelatedConcepts: toRefs(rec.Maps("related")),
	}
}
