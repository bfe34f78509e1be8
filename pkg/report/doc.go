// Package report fetches Costlocker report data across all of its pages.
//
// The reportData query is paginated. Page 1 is fetched first to learn
// totalItems, the remaining pages are fetched by a bounded set of concurrent
// requests, and the items are concatenated in ascending page order.
//
// Example usage:
//
//	fetcher := report.NewFetcher(gqlClient, report.DefaultFetcherConfig())
//	result, err := fetcher.FetchAll(ctx, report.Request{UUID: uuid})
//
// The fetcher:
//   - Issues exactly max(1, ceil(totalItems/pageSize)) requests per report
//   - Limits concurrency (default 5 parallel page requests)
//   - Restores page order positionally, independent of completion order
//   - Fails the whole aggregation on the first page error (no partial data)
//
// Items, filter, and sorting values are opaque JSON passed through verbatim;
// the fetcher never interprets their contents.
package report
