package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/LeeDigitalWorks/cephcrush/pkg/crush"

	"github.com/dustin/go-humanize"
)

const (
	outputJSON = "json"
	outputText = "text"
)

func printResult(w io.Writer, format string, res *crush.Result) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	status := "ok"
	switch {
	case len(res.Planned) > 0:
		status = "check"
	case !res.OK():
		status = "failed"
	}
	fmt.Fprintf(w, "%s: %s (rc=%d, changed=%t)\n", hostLabel(res), status, res.RC, res.Changed)

	for _, args := range res.Planned {
		fmt.Fprintf(w, "  would run: %s\n", strings.Join(args, " "))
	}
	if len(res.Cmd) > 0 {
		fmt.Fprintf(w, "  last command: %s\n", strings.Join(res.Cmd, " "))
	}
	if res.Msg != "" {
		fmt.Fprintf(w, "  msg: %s\n", res.Msg)
	}
	if res.Stdout != "" {
		fmt.Fprintf(w, "  stdout: %s\n", res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprintf(w, "  stderr: %s\n", res.Stderr)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  failed (rc=%d): %s\n", f.RC, strings.Join(f.Cmd, " "))
	}
	return nil
}

// printSummary prints one row per host of an inventory run.
func printSummary(w io.Writer, results []*crush.Result, skipped []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tSTATUS\tRC\tFAILED COMMANDS\tDURATION")
	fmt.Fprintln(tw, "----\t------\t--\t---------------\t--------")

	failed := 0
	for _, res := range results {
		status := "ok"
		if !res.OK() {
			status = "failed"
			failed++
		} else if !res.Changed {
			status = "unchanged"
		}
		delta := res.Delta
		if delta == "" {
			delta = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			hostLabel(res),
			status,
			res.RC,
			humanize.Comma(int64(len(res.Failures))),
			delta,
		)
	}
	for _, host := range skipped {
		fmt.Fprintf(tw, "%s\tskipped\t-\t-\t-\n", host)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Hosts: %s processed, %s failed, %s skipped\n",
		humanize.Comma(int64(len(results))),
		humanize.Comma(int64(failed)),
		humanize.Comma(int64(len(skipped))),
	)
}

func hostLabel(res *crush.Result) string {
	if res.Host == "" {
		return "<no host>"
	}
	return res.Host
}
