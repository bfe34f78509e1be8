package report

import (
	"context"
	"encoding/json"
	"fmt"
)

// reportDataQuery is the single GraphQL operation this tool issues. Items
// are served as opaque JSON records.
const reportDataQuery = `query ReportData($uuid: String!, $filter: ReportPayloadFilterInput, $pagination: PaginationInput!, $sorting: [ReportDataItemSortingInput!]) {
  reportData(uuid: $uuid, filter: $filter, pagination: $pagination, sorting: $sorting) {
    items
    totalItems
  }
}`

const reportDataOpName = "ReportData"

// GraphQLClient is the interface the fetcher needs for query execution.
// *client.Client implements it.
type GraphQLClient interface {
	Query(ctx context.Context, opName, query string, variables, out any) error
}

// Params identifies one page of one report.
type Params struct {
	// UUID identifies the report (required, non-empty).
	UUID string

	// Filter is an opaque filter value passed through to the server.
	Filter json.RawMessage

	// Sorting is an opaque ordered list of sort directives.
	Sorting []json.RawMessage

	// Page is the 1-based page number.
	Page int

	// PageSize is the maximum number of items per page.
	PageSize int
}

// Page is one page of report data as returned by the server.
type Page struct {
	Items      []json.RawMessage
	TotalItems int
}

// pagination mirrors the PaginationInput GraphQL input type.
type pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// queryVariables is the variables envelope for the reportData operation.
type queryVariables struct {
	UUID       string            `json:"uuid"`
	Filter     json.RawMessage   `json:"filter,omitempty"`
	Pagination pagination        `json:"pagination"`
	Sorting    []json.RawMessage `json:"sorting,omitempty"`
}

// reportDataPayload mirrors the reportData response shape. Both fields are
// optional on the wire; absent values decode to their zero values.
type reportDataPayload struct {
	Items      []json.RawMessage `json:"items"`
	TotalItems int               `json:"totalItems"`
}

type reportDataResponse struct {
	ReportData reportDataPayload `json:"reportData"`
}

// FetchPage fetches a single report page.
//
// Exactly one network round trip is performed. A response missing items or
// totalItems is normalized to an empty slice / zero; any transport or
// GraphQL error propagates unmodified.
func (f *Fetcher) FetchPage(ctx context.Context, params Params) (Page, error) {
	if params.UUID == "" {
		return Page{}, fmt.Errorf("report uuid is required")
	}
	if params.Page < 1 {
		return Page{}, fmt.Errorf("page must be >= 1 (got %d)", params.Page)
	}
	if params.PageSize < 1 {
		return Page{}, fmt.Errorf("page size must be >= 1 (got %d)", params.PageSize)
	}

	vars := queryVariables{
		UUID:   params.UUID,
		Filter: params.Filter,
		Pagination: pagination{
			Page:     params.Page,
			PageSize: params.PageSize,
		},
		Sorting: params.Sorting,
	}

	var resp reportDataResponse
	if err := f.client.Query(ctx, reportDataOpName, reportDataQuery, vars, &resp); err != nil {
		return Page{}, err
	}

	page := Page{
		Items:      resp.ReportData.Items,
		TotalItems: resp.ReportData.TotalItems,
	}
	if page.Items == nil {
		f.logger.Debug().
			Int("page", params.Page).
			Msg("Response missing items, normalized to empty")
		page.Items = []json.RawMessage{}
	}

	pagesFetchedTotal.Inc()
	itemsFetchedTotal.Add(float64(len(page.Items)))

	return page, nil
}
