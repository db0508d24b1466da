package knowledge

import (
	"context"
	"sort"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/query"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/textsim"
)

const reasonWeakConnections = "weak_connections"

// GapAnalyzer reports structural weaknesses within a domain.
type GapAnalyzer struct {
	base
}

// NewGapAnalyzer returns a GapAnalyzer over store.
func NewGapAnalyzer(store graph.Store, opts ...Option) *GapAnalyzer {
	return &GapAnalyzer{base: newBase(store, opts)}
}

// AnalyzeGaps runs one heuristic over the members of req.Domain.
func (g *GapAnalyzer) AnalyzeGaps(ctx context.Context, req models.GapAnalysisRequest) (*models.GapAnalysisResult, error) {
	const op = "analyze gaps"
	if err := checkRequest(req); err != nil {
		return nil, validationErr(op, err)
	}
	threshold := confidenceOr(req.Threshold, models.DefaultGapThreshold)

	stmt, err := query.GapAnalysis(req.Domain, req.AnalysisType, threshold)
	if err != nil {
		return nil, builderErr(op, err)
	}

	gaps := make([]models.Gap, 0)
	truncated := false
	err = g.withSession(ctx, op, func(sess graph.Session) error {
		res, err := sess.Run(ctx, stmt.Cypher, stmt.Params)
		if err != nil {
			return storeErr(op, "run "+req.AnalysisType+" query", err)
		}
		switch req.AnalysisType {
		case models.GapMissingConnections:
			records := res.Records
			if len(records) > query.GapCandidateCap {
				records, truncated = records[:query.GapCandidateCap], true
				g.logger.Warn("missing-connections candidates truncated",
					"domain", req.Domain, "scored", query.GapCandidateCap)
			}
			gaps = missingConnections(records, threshold)
		case models.GapWeakAreas:
			gaps = weakAreas(res.Records, threshold)
		case models.GapOutdatedContent:
			gaps = outdatedContent(res.Records)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(gaps) > query.MaxGapResults {
		gaps = gaps[:query.MaxGapResults]
	}

	return &models.GapAnalysisResult{
		Success:      true,
		Domain:       req.Domain,
		AnalysisType: req.AnalysisType,
		Threshold:    threshold,
		Results:      gaps,
		Count:        len(gaps),
		Truncated:    truncated,
	}, nil
}

func missingConnections(records []graph.Record, threshold float64) []models.Gap {
	gaps := make([]models.Gap, 0)
	for _, rec := range records {
		a := models.Ref{ID: rec.String("idA"), Content: rec.String("contentA")}
		b := models.Ref{ID: rec.String("idB"), Content: rec.String("contentB")}
		sim := textsim.Similarity(a.Content, b.Content)
		if sim <= threshold {
			continue
		}
		gaps = append(gaps, models.Gap{EntityA: &a, EntityB: &b, Similarity: sim})
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Similarity > gaps[j].Similarity })
	return gaps
}

func weakAreas(records []graph.Record, threshold float64) []models.Gap {
	gaps := make([]models.Gap, 0, len(records))
	for _, rec := range records {
		count := rec.Int("connectionCount")
		confidence := rec.Float("confidence", unscoredConfidence)
		if count >= query.WeakConnectionCount && confidence >= threshold {
			continue
		}
		gaps = append(gaps, models.Gap{
			Entity:          &models.Ref{ID: rec.String("id"), Content: rec.String("content")},
			ConnectionCount: &count,
			Confidence:      confidence,
			Reason:          reasonWeakConnections,
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		if *gaps[i].ConnectionCount != *gaps[j].ConnectionCount {
			return *gaps[i].ConnectionCount < *gaps[j].ConnectionCount
		}
		return gaps[i].Confidence < gaps[j].Confidence
	})
	return gaps
}

func outdatedContent(records []graph.Record) []models.Gap {
	gaps := make([]models.Gap, 0, len(records))
	for _, rec := range records {
		gaps = append(gaps, models.Gap{
			Entity:          &models.Ref{ID: rec.String("id"), Content: rec.String("content")},
			DaysSinceUpdate: rec.Int("daysSinceUpdate"),
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].DaysSinceUpdate > gaps[j].DaysSinceUpdate })
	return gaps
}
