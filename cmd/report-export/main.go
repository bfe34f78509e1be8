// Command report-export fetches all pages of one Costlocker report and
// prints the items as JSON to stdout.
//
// It takes no arguments; configuration comes from environment variables
// (COSTLOCKER_API_URL, COSTLOCKER_API_TOKEN, REPORT_UUID), optionally
// loaded from a local .env file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/costlocker/report-export/pkg/client"
	"github.com/costlocker/report-export/pkg/config"
	"github.com/costlocker/report-export/pkg/logging"
	"github.com/costlocker/report-export/pkg/report"
)

func main() {
	os.Exit(run(context.Background(), os.Stdout, os.Stderr))
}

func run(ctx context.Context, out, errOut io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(errOut, "configuration error: %v\n", err)
		return 1
	}

	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: errOut,
	})

	gqlClient, err := client.New(client.Config{
		Endpoint: cfg.APIURL,
		Token:    cfg.APIToken,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		fmt.Fprintf(errOut, "configuration error: %v\n", err)
		return 1
	}

	fetcher := report.NewFetcher(gqlClient, report.FetcherConfig{
		PageSize:       cfg.PageSize,
		MaxConcurrency: cfg.MaxConcurrency,
		PageTimeout:    cfg.Timeout,
	})

	result, err := fetcher.FetchAll(ctx, report.Request{UUID: cfg.ReportUUID})
	if err != nil {
		reportError(errOut, err)
		return 1
	}

	return printResult(out, errOut, cfg.ReportUUID, result)
}

// reportError writes a failed aggregation to stderr. GraphQL error lists
// are enumerated entry by entry with their extensions; everything else is
// printed as-is.
func reportError(errOut io.Writer, err error) {
	if gqlErrs, ok := client.AsGraphQLErrors(err); ok {
		for _, gqlErr := range gqlErrs {
			fmt.Fprintf(errOut, "graphql error: %s\n", gqlErr.Message)
			if len(gqlErr.Extensions) > 0 {
				ext, marshalErr := json.Marshal(gqlErr.Extensions)
				if marshalErr == nil {
					fmt.Fprintf(errOut, "  extensions: %s\n", ext)
				}
			}
		}
	}
	fmt.Fprintf(errOut, "report fetch failed: %v\n", err)
}

func printResult(out, errOut io.Writer, uuid string, result report.Result) int {
	fmt.Fprintf(out, "Report %s\n", uuid)

	data, err := json.MarshalIndent(result.Items, "", "  ")
	if err != nil {
		fmt.Fprintf(errOut, "failed to serialize items: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, string(data))

	fmt.Fprintf(out, "Items: %d / Total: %d\n", len(result.Items), result.TotalItems)
	return 0
}
