package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimtrust_posts_fetched_total",
		Help: "The total number of social posts fetched",
	}, []string{"network"})

	ClaimsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claimtrust_claims_extracted_total",
		Help: "The total number of candidate claims extracted from posts",
	})

	ClaimsDeduplicated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimtrust_claims_deduplicated_total",
		Help: "Dedup outcomes for candidate claims",
	}, []string{"outcome"})

	ClaimsVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimtrust_claims_verified_total",
		Help: "The total number of claims verified",
	}, []string{"outcome"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "claimtrust_llm_request_duration_seconds",
		Help:    "Duration of LLM requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	EvidenceSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimtrust_evidence_searches_total",
		Help: "The total number of literature search calls",
	}, []string{"source", "status"})

	EvidenceArticlesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claimtrust_evidence_articles_fetched_total",
		Help: "The total number of evidence articles fetched in full",
	})

	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimtrust_pipeline_runs_total",
		Help: "Influencer pipeline runs by terminal status",
	}, []string{"status"})

	UnverifiedBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "claimtrust_unverified_claims_backlog",
		Help: "Number of claims currently awaiting verification",
	})
)

// Dedup outcome label values.
const (
	DedupOutcomeNew       = "new"
	DedupOutcomeDuplicate = "duplicate"
)
