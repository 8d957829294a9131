package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/wesleyorama2/sockhttp/internal/http"
	"github.com/wesleyorama2/sockhttp/internal/inspect"
	"github.com/wesleyorama2/sockhttp/internal/metrics"
	"github.com/wesleyorama2/sockhttp/internal/output"
	"github.com/wesleyorama2/sockhttp/internal/stats"
)

func newVerbCmd(verb string, flags *requestFlags) *cobra.Command {
	method := strings.ToUpper(verb)
	return &cobra.Command{
		Use:   verb + " URL",
		Short: fmt.Sprintf("Send a %s request to the specified URL", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, flags, method, args[0])
		},
	}
}

func newRequestCmd(flags *requestFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "request [METHOD] URL",
		Short: "Send a request with any supported method",
		Long: `Send a request with any supported method. Without METHOD the
method comes from the config profile, or GET.`,
		Example: "  sockhttp request SEARCH http://localhost:8080/index -d q=term",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return runRequest(cmd, flags, strings.ToUpper(args[0]), args[1])
			}
			method, err := flags.defaultMethod()
			if err != nil {
				return err
			}
			return runRequest(cmd, flags, method, args[0])
		},
	}
}

// runRequest sends one request, or --repeat of them, and prints the
// outcome in the selected format
func runRequest(cmd *cobra.Command, flags *requestFlags, method, rawURL string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	format, err := output.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	noColor := flags.noColor || !output.ColorEnabled(stdout)
	formatter := output.GetFormatter(format, flags.verbose, noColor)

	if flags.repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}
	if flags.rate < 0 {
		return fmt.Errorf("--rate cannot be negative")
	}

	extractions := make([]inspect.Extraction, 0, len(flags.extract))
	for _, e := range flags.extract {
		ex, err := inspect.ParseExtraction(e)
		if err != nil {
			return err
		}
		extractions = append(extractions, ex)
	}

	var schema *inspect.Schema
	if flags.schema != "" {
		doc, err := os.ReadFile(flags.schema)
		if err != nil {
			return fmt.Errorf("error reading schema: %w", err)
		}
		if schema, err = inspect.CompileSchema(doc); err != nil {
			return err
		}
	}

	opts, err := flags.clientOptions(stderr)
	if err != nil {
		return err
	}
	if flags.driver != "" && !strings.EqualFold(flags.driver, "auto") {
		if _, ok := http.DefaultRegistry().Get(flags.driver); !ok {
			return fmt.Errorf("unknown driver %q (see 'sockhttp drivers')", flags.driver)
		}
	}
	collector := metrics.NewCollector()
	opts = append(opts, http.WithMetrics(collector))

	client := http.NewClient(opts...)
	defer client.Close()

	url := normalizeURL(rawURL, client.BaseURL())
	headers, err := flags.callHeaders()
	if err != nil {
		return err
	}
	data, err := flags.payload()
	if err != nil {
		return err
	}

	if flags.verbose || flags.dryRun {
		raw, err := client.BuildRaw(method, url, data, headers)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, formatter.FormatRequest(raw))
		if flags.dryRun {
			return nil
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var limiter *rate.Limiter
	if flags.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(flags.rate), 1)
	}
	recorder := stats.NewRecorder()

	var last *http.Response
	for i := 0; i < flags.repeat; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		resp, err := client.Request(ctx, method, url, data, headers)
		if err != nil {
			if flags.repeat == 1 {
				return err
			}
			recorder.Record(0, 0, 0)
			fmt.Fprintf(stderr, "%s request %d: %v\n", output.ErrorIcon(noColor), i+1, err)
			continue
		}
		recorder.Record(resp.ResponseTime, resp.StatusCode, len(resp.GetBody()))
		last = resp
	}

	if flags.repeat == 1 {
		fmt.Fprint(stdout, formatter.FormatResponse(last))
	} else {
		fmt.Fprint(stdout, formatter.FormatSummary(recorder.Summary()))
	}

	if flags.metrics {
		if err := writeMetrics(stderr, collector); err != nil {
			return err
		}
	}

	if last == nil {
		return fmt.Errorf("all %d requests failed", flags.repeat)
	}
	return checkResponse(stdout, formatter, last, extractions, schema, noColor)
}

// checkResponse runs extractions and schema validation on the last
// response. Either failing fails the command.
func checkResponse(w io.Writer, formatter output.FormatProvider, resp *http.Response, extractions []inspect.Extraction, schema *inspect.Schema, noColor bool) error {
	if len(extractions) > 0 {
		values, err := inspect.ExtractAll(resp.GetBody(), extractions)
		fmt.Fprint(w, formatter.FormatExtractions(values))
		if err != nil {
			return err
		}
	}

	if schema != nil {
		if err := schema.Validate(resp.GetBody()); err != nil {
			fmt.Fprintf(w, "%s Schema validation failed\n", output.ErrorIcon(noColor))
			return err
		}
		fmt.Fprintf(w, "%s Schema validation passed\n", output.SuccessIcon(noColor))
	}
	return nil
}

func writeMetrics(w io.Writer, collector *metrics.Collector) error {
	families, err := collector.Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// normalizeURL adds http:// to scheme-less URLs. Paths starting with "/"
// are left relative when a base URL is configured.
func normalizeURL(raw, baseURL string) string {
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "//") {
		return raw
	}
	if baseURL != "" && (strings.HasPrefix(raw, "/") || raw == "") {
		return raw
	}
	return "http://" + raw
}
