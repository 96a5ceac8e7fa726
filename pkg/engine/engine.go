// Package engine provides the public facade over the matching core. It owns
// the pipeline wiring and lifecycle: lookup tables, catalog index, scorer,
// analyzer, prioritizer and aggregator are explicit state constructed here,
// never package-level singletons.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/cache"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/config"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/inventory"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/matching"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/observability"
)

// InventorySource loads the full replacement catalog during a sync. The
// protocol behind it (ERP pull, file import) stays outside the core.
type InventorySource interface {
	ListAll(ctx context.Context) ([]matching.InventoryItem, error)
}

// Engine wires the matching pipeline over a catalog index.
type Engine struct {
	cfg    *config.Config
	logger *observability.Logger

	index         *inventory.Index
	normalizer    *matching.DimensionNormalizer
	scorer        *matching.Scorer
	validator     *matching.Validator
	finder        *matching.AlternativeFinder
	matcher       *matching.BatchMatcher
	analyzer      *matching.Analyzer
	prioritizer   *matching.Prioritizer
	aggregator    *matching.Aggregator
	analysisCache *matching.AnalysisCache
}

// New constructs an engine from configuration. A nil cache client disables
// analysis caching.
func New(cfg *config.Config, logger *observability.Logger, cacheClient cache.Client) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = observability.DefaultLogger()
	}

	tables, err := matching.LoadLookupTables(cfg.Tables.Path)
	if err != nil {
		return nil, fmt.Errorf("load lookup tables: %w", err)
	}

	scorer := matching.NewScorer(matching.ScorerConfig{
		Tolerance:             cfg.Matching.Tolerance,
		FuzzyOverlapThreshold: cfg.Matching.FuzzyOverlapThreshold,
	}, tables.ManufacturerAliases)
	validator := matching.NewValidator(cfg.Matching.Tolerance)
	matcher := matching.NewBatchMatcher(scorer, validator, cfg.Matching.MaxWorkers)

	analyzer := matching.NewAnalyzer(matcher, matching.AnalyzerConfig{
		MinConfidence:            cfg.Matching.MinConfidence,
		AlternativeConfidence:    cfg.Availability.AlternativeConfidence,
		MaxAlternatives:          cfg.Availability.MaxAlternatives,
		DefaultLeadTimeDays:      cfg.Availability.DefaultLeadTimeDays,
		NoMatchLeadTimeDays:      cfg.Availability.NoMatchLeadTimeDays,
		ImmediateDays:            cfg.Availability.ImmediateDays,
		NormalDays:               cfg.Availability.NormalDays,
		MinMatchesForLowCostRisk: cfg.Availability.MinMatchesForLowCostRisk,
	})

	prioritizer := matching.NewPrioritizer(matching.PrioritizerConfig{
		BlockingDependencyCount: cfg.Procurement.BlockingDependencyCount,
		CriticalBufferDays:      cfg.Procurement.CriticalBufferDays,
		HighBufferDays:          cfg.Procurement.HighBufferDays,
		MediumBufferDays:        cfg.Procurement.MediumBufferDays,
		CriticalOrderBufferDays: cfg.Procurement.CriticalOrderBufferDays,
		StandardOrderBufferDays: cfg.Procurement.StandardOrderBufferDays,
		WindowDays:              cfg.Procurement.WindowDays,
		DefaultLeadTimeDays:     cfg.Availability.DefaultLeadTimeDays,
	})

	aggregator := matching.NewAggregator(matching.AggregatorConfig{
		ReadyThreshold:         cfg.Readiness.ReadyThreshold,
		PartialThreshold:       cfg.Readiness.PartialThreshold,
		CriticalPathClearRatio: cfg.Readiness.CriticalPathClearRatio,
		AtRiskBufferDays:       cfg.Readiness.AtRiskBufferDays,
		StandardBufferDays:     cfg.Readiness.StandardBufferDays,
	})

	var analysisCache *matching.AnalysisCache
	if cacheClient != nil {
		cacheCfg := matching.DefaultAnalysisCacheConfig()
		cacheCfg.TTL = cfg.Cache.TTL
		analysisCache = matching.NewAnalysisCache(cacheClient, logger, cacheCfg)
	}

	return &Engine{
		cfg:           cfg,
		logger:        logger,
		index:         inventory.NewIndex(),
		normalizer:    matching.NewDimensionNormalizer(),
		scorer:        scorer,
		validator:     validator,
		finder:        matching.NewAlternativeFinder(tables.Equivalence, cfg.Matching.Tolerance),
		matcher:       matcher,
		analyzer:      analyzer,
		prioritizer:   prioritizer,
		aggregator:    aggregator,
		analysisCache: analysisCache,
	}, nil
}

// Sync pulls the full catalog from the source and publishes it as a new
// snapshot. The source call is the only blocking boundary; the swap itself is
// atomic and readers in flight keep their snapshot.
func (e *Engine) Sync(ctx context.Context, source InventorySource) (*inventory.Snapshot, error) {
	start := time.Now()
	items, err := source.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	snapshot, err := e.index.Replace(e.normalizeItems(items))
	if err != nil {
		return nil, fmt.Errorf("publish snapshot: %w", err)
	}

	e.logger.Info().
		Int("items", len(items)).
		Uint64("version", snapshot.Version).
		Dur("elapsed", time.Since(start)).
		Msg("Inventory snapshot published")
	return snapshot, nil
}

// ReplaceInventory publishes the given items directly as a new snapshot.
func (e *Engine) ReplaceInventory(items []matching.InventoryItem) (*inventory.Snapshot, error) {
	return e.index.Replace(e.normalizeItems(items))
}

// normalizeItems expands dimension text in item specifications into derived
// numeric keys. Normalization happens once at ingestion, never per match.
func (e *Engine) normalizeItems(items []matching.InventoryItem) []matching.InventoryItem {
	out := make([]matching.InventoryItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Specifications = e.normalizer.NormalizeSpecifications(out[i].Specifications)
	}
	return out
}

// normalizeComponent expands dimension text in a requirement's specifications.
func (e *Engine) normalizeComponent(required matching.RequiredComponent) matching.RequiredComponent {
	required.Specifications = e.normalizer.NormalizeSpecifications(required.Specifications)
	return required
}

// Snapshot returns the current catalog snapshot.
func (e *Engine) Snapshot() *inventory.Snapshot {
	return e.index.Snapshot()
}

// Match ranks catalog candidates for one requirement at the configured
// minimum confidence.
func (e *Engine) Match(ctx context.Context, required matching.RequiredComponent) ([]matching.ComponentMatch, error) {
	snapshot := e.index.Snapshot()
	return e.matcher.Match(ctx, e.normalizeComponent(required), snapshot.Items, e.cfg.Matching.MinConfidence)
}

// FindAlternatives looks up substitutes for the requirement's component type.
func (e *Engine) FindAlternatives(required matching.RequiredComponent) matching.AlternativeResult {
	return e.finder.FindAlternatives(e.normalizeComponent(required), e.cfg.Matching.MinSimilarity)
}

// Analyze produces the availability verdict for one requirement, serving from
// the analysis cache when the catalog snapshot has not changed.
func (e *Engine) Analyze(ctx context.Context, required matching.RequiredComponent) (matching.AvailabilityAnalysis, error) {
	required = e.normalizeComponent(required)
	snapshot := e.index.Snapshot()

	if e.analysisCache != nil {
		if cached, ok := e.analysisCache.Get(ctx, required, snapshot.Version); ok {
			return *cached, nil
		}
	}

	analysis, err := e.analyzer.Analyze(ctx, required, snapshot.Items)
	if err != nil {
		return matching.AvailabilityAnalysis{}, err
	}

	if e.analysisCache != nil {
		_ = e.analysisCache.Set(ctx, required, snapshot.Version, &analysis)
	}

	e.logger.Debug().
		Str("component", required.Name).
		Bool("available", analysis.IsAvailable).
		Str("urgency", string(analysis.Urgency)).
		Int("matches", len(analysis.Matches)).
		Msg("Availability analyzed")
	return analysis, nil
}

// PlanProcurement analyzes every requirement and returns the derived
// procurement items in execution order.
func (e *Engine) PlanProcurement(ctx context.Context, components []matching.RequiredComponent) ([]matching.ProcurementItem, error) {
	items := make([]matching.ProcurementItem, 0, len(components))
	for _, component := range components {
		analysis, err := e.Analyze(ctx, component)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", component.Name, err)
		}
		items = append(items, e.prioritizer.BuildItem(component, analysis))
	}
	matching.Sequence(items)
	return items, nil
}

// AssessReadiness analyzes every requirement and rolls the verdicts into a
// project-level readiness assessment.
func (e *Engine) AssessReadiness(ctx context.Context, projectID string, components []matching.RequiredComponent) (matching.BuildReadinessAssessment, error) {
	analyses := make([]matching.AvailabilityAnalysis, 0, len(components))
	for _, component := range components {
		analysis, err := e.Analyze(ctx, component)
		if err != nil {
			return matching.BuildReadinessAssessment{}, fmt.Errorf("analyze %s: %w", component.Name, err)
		}
		analyses = append(analyses, analysis)
	}

	assessment := e.aggregator.Assess(projectID, analyses)
	e.logger.WithProject(projectID).Info().
		Float64("score", assessment.Score).
		Str("status", string(assessment.Status)).
		Int("at_risk", assessment.AtRiskCount).
		Msg("Build readiness assessed")
	return assessment, nil
}
