package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// searchableLabels is the label set searched when no content type is given.
const searchableLabels = "(n:Concept OR n:Fact OR n:Knowledge OR n:Source)"

// SearchParams describes one retrieval query.
type SearchParams struct {
	Query         string
	SearchType    string
	Domain        string
	MinConfidence *float64
	ContentTypes  []string
	Source        string
	// Limit caps the rows returned by the store.
	Limit int
	// RelatedHops attaches entities up to this many hops away; 0 disables it.
	RelatedHops int
}

// Search builds the match query for one search type. Exact and graph
// queries come back ordered by confidence; semantic and hybrid rows are
// candidates for re-ranking by the caller.
func Search(p SearchParams) (Statement, error) {
	if strings.TrimSpace(p.Query) == "" {
		return Statement{}, errors.New("query is required")
	}
	if p.Limit < 1 {
		return Statement{}, errors.Errorf("limit %d must be positive", p.Limit)
	}
	if p.RelatedHops < 0 || p.RelatedHops > 2 {
		return Statement{}, errors.Errorf("related hops %d outside 0..2", p.RelatedHops)
	}

	params := map[string]any{"query": p.Query, "limit": p.Limit}
	var where []string

	if len(p.ContentTypes) > 0 {
		where = append(where, "(any(l IN labels(n) WHERE l IN $contentTypes) OR n.contentType IN $contentTypes)")
		params["contentTypes"] = NormalizeContentTypes(p.ContentTypes)
	} else {
		where = append(where, searchableLabels)
	}

	switch p.SearchType {
	case "exact", "graph", "hybrid":
		where = append(where, fmt.Sprintf("toLower(%s) CONTAINS toLower($query)", display("n")))
	case "semantic":
		where = append(where, fmt.Sprintf("%s =~ $pattern", display("n")))
		params["pattern"] = SemanticPattern(p.Query)
	default:
		return Statement{}, errors.Wrapf(ErrUnsupportedOperation, "search type %q", p.SearchType)
	}

	if p.Domain != "" {
		where = append(where, "EXISTS { MATCH (n)-[:BELONGS_TO]->(:Domain {name: $domain}) }")
		params["domain"] = p.Domain
	}
	if p.MinConfidence != nil {
		where = append(where, "coalesce(n.confidence, 0.5) >= $minConfidence")
		params["minConfidence"] = *p.MinConfidence
	}
	if p.Source != "" {
		where = append(where, "n.source = $source")
		params["source"] = p.Source
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (n)\nWHERE %s\n", strings.Join(where, "\n  AND "))
	fmt.Fprintf(&b, "WITH n, %s AS content\n", display("n"))
	b.WriteString("ORDER BY coalesce(n.confidence, 0.5) DESC\n")
	b.WriteString("LIMIT $limit\n")
	if p.RelatedHops > 0 {
		fmt.Fprintf(&b, "OPTIONAL MATCH (n)-[*1..%d]-(m)\nWHERE m <> n AND NOT m:Domain\n", p.RelatedHops)
		fmt.Fprintf(&b, "WITH n, content, collect(DISTINCT m) AS neighbours\n")
		fmt.Fprintf(&b, "RETURN n, content, [x IN neighbours | {id: x.id, content: %s}][..%d] AS related",
			display("x"), MaxRelated)
	} else {
		b.WriteString("RETURN n, content, [] AS related")
	}
	return Statement{Cypher: b.String(), Params: params}, nil
}

// SemanticPattern turns a free-text query into a loose case-insensitive
// regular expression matching its words in order. The s flag lets the words
// sit on different lines of multi-line content.
func SemanticPattern(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return "(?is).*" + strings.Join(words, ".*") + ".*"
}

// NormalizeContentTypes expands each type to its given, lower and title
// cased spellings so "concept" matches the Concept label.
func NormalizeContentTypes(types []string) []string {
	title := cases.Title(language.Und)
	seen := make(map[string]bool)
	var out []string
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		for _, v := range []string{t, strings.ToLower(t), title.String(t)} {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Resolve finds the single best entity for an id or name reference.
func Resolve(ref string) (Statement, error) {
	if strings.TrimSpace(ref) == "" {
		return Statement{}, errors.New("entity reference is required")
	}
	return Statement{
		Cypher: fmt.Sprintf(`MATCH (n) WHERE %s
RETURN n, %s AS content
ORDER BY %s
LIMIT 1`, matchRef("n", "ref", ref), display("n"), rankRef("n", "ref")),
		Params: map[string]any{"ref": ref},
	}, nil
}

// Explore returns, for every entity within maxDepth hops of the start node in
// any direction, its hop distance and the relationship types along the
// shortest path reaching it.
func Explore(startElementID string, relTypes []string, maxDepth int) (Statement, error) {
	rel, err := relPattern(relTypes, maxDepth)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Cypher: fmt.Sprintf(`MATCH (start) WHERE elementId(start) = $startId
MATCH p = (start)-%s-(connected)
WHERE connected <> start
WITH connected, p ORDER BY length(p) ASC
WITH connected, collect(p)[0] AS shortest
RETURN connected, %s AS content, length(shortest) AS depth,
       [r IN relationships(shortest) | type(r)] AS relationships
ORDER BY depth ASC, content ASC`, rel, display("connected")),
		Params: map[string]any{"startId": startElementID},
	}, nil
}

// PathParams describes a path search.
type PathParams struct {
	EntityA           string
	EntityB           string
	MaxPathLength     int
	RelationshipTypes []string
	IncludeNodes      bool
}

// FindPaths returns up to MaxPaths paths of 1..MaxPathLength hops between
// the resolved endpoints, shortest first.
func FindPaths(p PathParams) (Statement, error) {
	if p.EntityA == "" || p.EntityB == "" {
		return Statement{}, errors.New("both path endpoints are required")
	}
	rel, err := relPattern(p.RelationshipTypes, p.MaxPathLength)
	if err != nil {
		return Statement{}, err
	}
	nodes := "[] AS nodes"
	if p.IncludeNodes {
		nodes = fmt.Sprintf("[n IN nodes(p) | {id: n.id, name: %s, labels: labels(n)}] AS nodes", display("n"))
	}
	return Statement{
		Cypher: fmt.Sprintf(`MATCH (a) WHERE %s
WITH a ORDER BY %s LIMIT 1
MATCH (b) WHERE %s AND b <> a
WITH a, b ORDER BY %s LIMIT 1
MATCH p = (a)-%s-(b)
WITH p, length(p) AS pathLength
ORDER BY pathLength ASC
LIMIT %d
RETURN pathLength,
       [r IN relationships(p) | {source: %s, relationship: type(r), target: %s}] AS segments,
       %s`,
			matchRef("a", "entityA", p.EntityA), rankRef("a", "entityA"),
			matchRef("b", "entityB", p.EntityB), rankRef("b", "entityB"),
			rel, MaxPaths,
			display("startNode(r)"), display("endNode(r)"),
			nodes),
		Params: map[string]any{"entityA": p.EntityA, "entityB": p.EntityB},
	}, nil
}
