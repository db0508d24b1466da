package query

import (
	"fmt"

	"github.com/pkg/errors"
)

// StaleAfterDays is the age after which domain content counts as outdated.
const StaleAfterDays = 90

// WeakConnectionCount is the degree below which a member counts as weakly connected.
const WeakConnectionCount = 3

// GapAnalysis builds the query for one gap heuristic over a domain.
//
// missing-connections returns unconnected member pairs in element id order;
// the caller scores their name similarity against threshold. At most
// GapCandidateCap+1 pairs come back so the caller can tell the candidate set
// was cut off. weak-areas and outdated-content
// are filtered, ordered and capped by the store.
func GapAnalysis(domain, analysisType string, threshold float64) (Statement, error) {
	if domain == "" {
		return Statement{}, errors.New("domain is required")
	}
	params := map[string]any{"domain": domain}

	switch analysisType {
	case "missing-connections":
		params["candidateLimit"] = GapCandidateCap + 1
		return Statement{
			Cypher: fmt.Sprintf(`MATCH (a)-[:BELONGS_TO]->(:Domain {name: $domain})<-[:BELONGS_TO]-(b)
WHERE elementId(a) < elementId(b)
  AND NOT EXISTS { MATCH (a)--(b) }
RETURN a.id AS idA, %s AS contentA, b.id AS idB, %s AS contentB
ORDER BY elementId(a), elementId(b)
LIMIT $candidateLimit`, display("a"), display("b")),
			Params: params,
		}, nil

	case "weak-areas":
		params["threshold"] = threshold
		params["minConnections"] = WeakConnectionCount
		return Statement{
			Cypher: fmt.Sprintf(`MATCH (n)-[:BELONGS_TO]->(:Domain {name: $domain})
WITH DISTINCT n
OPTIONAL MATCH (n)-[o]->()
WITH n, count(o) AS outDegree
OPTIONAL MATCH (n)<-[i]-()
WITH n, outDegree, count(i) AS inDegree
WITH n, outDegree + inDegree AS connectionCount, coalesce(n.confidence, 0.5) AS confidence
WHERE connectionCount < $minConnections OR confidence < $threshold
RETURN n.id AS id, %s AS content, connectionCount, confidence
ORDER BY connectionCount ASC, confidence ASC
LIMIT %d`, display("n"), MaxGapResults),
			Params: params,
		}, nil

	case "outdated-content":
		params["staleDays"] = StaleAfterDays
		return Statement{
			Cypher: fmt.Sprintf(`MATCH (n)-[:BELONGS_TO]->(:Domain {name: $domain})
WITH DISTINCT n, coalesce(n.updatedAt, n.createdAt) AS lastUpdate
WHERE lastUpdate IS NOT NULL AND lastUpdate < datetime() - duration({days: $staleDays})
RETURN n.id AS id, %s AS content, lastUpdate,
       duration.inDays(lastUpdate, datetime()).days AS daysSinceUpdate
ORDER BY daysSinceUpdate DESC
LIMIT %d`, display("n"), MaxGapResults),
			Params: params,
		}, nil
	}

	return Statement{}, errors.Wrapf(ErrUnsupportedOperation, "analysis type %q", analysisType)
}
