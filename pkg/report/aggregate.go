package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/costlocker/report-export/pkg/logging"
)

// Prometheus metrics for report aggregation.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "costlocker_report_pages_fetched_total",
		Help: "Total report pages fetched successfully",
	})

	itemsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "costlocker_report_items_fetched_total",
		Help: "Total report items fetched across all pages",
	})

	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "costlocker_report_aggregation_duration_seconds",
		Help:    "Full report aggregation duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

// FetcherConfig holds fetcher configuration.
type FetcherConfig struct {
	// PageSize is the number of items requested per page.
	PageSize int

	// MaxConcurrency is the maximum number of parallel page requests
	// after page 1.
	MaxConcurrency int

	// PageTimeout bounds each individual page fetch.
	PageTimeout time.Duration
}

// DefaultFetcherConfig returns safe default configuration.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		PageSize:       100,
		MaxConcurrency: 5,
		PageTimeout:    15 * time.Second,
	}
}

// Fetcher fetches report data page by page and aggregates the result.
type Fetcher struct {
	client GraphQLClient
	config FetcherConfig
	logger zerolog.Logger
}

// NewFetcher creates a new report fetcher.
func NewFetcher(client GraphQLClient, config FetcherConfig) *Fetcher {
	if config.PageSize <= 0 {
		config.PageSize = 100
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 5
	}
	if config.PageTimeout <= 0 {
		config.PageTimeout = 15 * time.Second
	}

	return &Fetcher{
		client: client,
		config: config,
		logger: logging.NewLogger("report-fetcher"),
	}
}

// Request identifies a full report to aggregate.
type Request struct {
	// UUID identifies the report (required).
	UUID string

	// Filter is an opaque filter value passed through to every page request.
	Filter json.RawMessage

	// Sorting is an opaque ordered list of sort directives.
	Sorting []json.RawMessage

	// PageSize overrides the fetcher's configured page size when > 0.
	PageSize int
}

// Result is the aggregation of all pages of one report.
//
// TotalItems is the value observed on page 1. The server is trusted to
// report it identically on every page; no reconciliation is attempted, so
// an inconsistent server can yield len(Items) != TotalItems.
type Result struct {
	Items      []json.RawMessage
	TotalItems int
}

// FetchAll fetches every page of a report and concatenates the items in
// ascending page order.
//
// Page 1 is fetched first to learn totalItems. Remaining pages are fetched
// by at most MaxConcurrency parallel requests. Any page failure fails the
// whole aggregation; no partial result is returned.
func (f *Fetcher) FetchAll(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	defer func() {
		aggregationDuration.Observe(time.Since(start).Seconds())
	}()

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = f.config.PageSize
	}

	logger := f.logger.With().Str("report_uuid", req.UUID).Logger()

	first, err := f.fetchPageWithTimeout(ctx, req, 1, pageSize)
	if err != nil {
		return Result{}, fmt.Errorf("fetch page 1: %w", err)
	}

	totalPages := totalPages(first.TotalItems, pageSize)

	logger.Info().
		Int("total_items", first.TotalItems).
		Int("total_pages", totalPages).
		Int("page_size", pageSize).
		Msg("Starting report aggregation")

	if totalPages <= 1 {
		logger.Info().
			Int("items", len(first.Items)).
			Dur("duration", time.Since(start)).
			Msg("Aggregation complete (single page)")
		return Result{Items: first.Items, TotalItems: first.TotalItems}, nil
	}

	// One slot per remaining page; each request writes only its own slot,
	// so page order survives arbitrary completion order.
	slots := make([][]json.RawMessage, totalPages-1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.config.MaxConcurrency)

	for page := 2; page <= totalPages; page++ {
		g.Go(func() error {
			result, err := f.fetchPageWithTimeout(gctx, req, page, pageSize)
			if err != nil {
				return fmt.Errorf("fetch page %d: %w", page, err)
			}
			slots[page-2] = result.Items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().
			Err(err).
			Int("total_pages", totalPages).
			Msg("Report aggregation failed")
		return Result{}, err
	}

	items := make([]json.RawMessage, 0, first.TotalItems)
	items = append(items, first.Items...)
	for _, slot := range slots {
		items = append(items, slot...)
	}

	logger.Info().
		Int("pages", totalPages).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Aggregation complete")

	return Result{Items: items, TotalItems: first.TotalItems}, nil
}

func (f *Fetcher) fetchPageWithTimeout(ctx context.Context, req Request, page, pageSize int) (Page, error) {
	pageCtx, cancel := context.WithTimeout(ctx, f.config.PageTimeout)
	defer cancel()

	return f.FetchPage(pageCtx, Params{
		UUID:     req.UUID,
		Filter:   req.Filter,
		Sorting:  req.Sorting,
		Page:     page,
		PageSize: pageSize,
	})
}

// totalPages computes ceil(totalItems / pageSize). Zero items means zero
// pages beyond the one already issued.
func totalPages(totalItems, pageSize int) int {
	if totalItems <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}
