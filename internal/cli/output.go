package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/usecase/extract"
)

const (
	formatPretty = "pretty"
	formatJSON   = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatPretty, formatJSON, "":
		return nil
	default:
		return &domain.OpError{
			Op:   "cli.format",
			Kind: domain.KindInvalidArgument,
			Err:  fmt.Errorf("unsupported format %q (expected pretty|json)", format),
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecord(w io.Writer, r domain.Record, format string) error {
	if format == formatJSON {
		return printJSON(w, recordJSON(r))
	}
	fmt.Fprint(w, r.Summary())
	return nil
}

// recordJSON keeps the snake_case field names used in run artifacts.
func recordJSON(r domain.Record) map[string]any {
	out := map[string]any{
		"id":          r.ID,
		"alias":       r.Alias,
		"title":       r.Title,
		"description": r.Description,
		"owner":       r.Owner,
		"creator":     r.Creator,
		"source":      r.Source,
		"size":        r.Size,
		"repo_id":     r.RepoID,
		"keywords":    r.Keywords,
		"metadata":    r.Metadata,
	}
	if !r.CreatedAt.IsZero() {
		out["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !r.UpdatedAt.IsZero() {
		out["updated_at"] = r.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if !r.UploadedAt.IsZero() {
		out["uploaded_at"] = r.UploadedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func printListing(w io.Writer, id string, l domain.Listing, format string) error {
	if format == formatJSON {
		items := make([]map[string]string, 0, len(l.Items))
		for _, it := range l.Items {
			items = append(items, map[string]string{
				"id":    it.ID,
				"alias": it.Alias,
				"title": it.Title,
				"owner": it.Owner,
			})
		}
		return printJSON(w, map[string]any{
			"id":     id,
			"offset": l.Offset,
			"count":  l.Count,
			"total":  l.Total,
			"items":  items,
		})
	}

	if len(l.Items) == 0 {
		fmt.Fprintln(w, "(empty)")
		return nil
	}
	for _, it := range l.Items {
		alias := it.Alias
		if alias == "" {
			alias = "-"
		}
		fmt.Fprintf(w, "- %-14s %-24s %s\n", it.ID, alias, it.Title)
	}
	fmt.Fprintf(w, "\nShowing %d from offset %d of %d\n", len(l.Items), l.Offset, l.Total)
	return nil
}

func printExtracts(w io.Writer, id string, results []extract.Result, format string) error {
	if format == formatJSON {
		return printJSON(w, map[string]any{"id": id, "fields": results})
	}
	for _, r := range results {
		if r.Success {
			fmt.Fprintf(w, "✓ %s = %s\n", r.Expr, r.Value)
		} else {
			fmt.Fprintf(w, "✗ %s: %s\n", r.Expr, r.Message)
		}
	}
	return nil
}

func printTransfer(w io.Writer, recordID string, t domain.Transfer, format string) error {
	if format == formatJSON {
		return printJSON(w, map[string]any{
			"record_id": recordID,
			"task_id":   t.ID,
			"status":    t.Status.String(),
			"remote":    t.Remote,
			"local":     t.Local,
			"error":     t.ErrMsg,
		})
	}
	fmt.Fprintf(w, "Record:   %s\n", recordID)
	fmt.Fprintf(w, "Task:     %s\n", t.ID)
	fmt.Fprintf(w, "Status:   %s\n", t.Status)
	if t.ErrMsg != "" {
		fmt.Fprintf(w, "Error:    %s\n", t.ErrMsg)
	}
	return nil
}

func printPushRun(w io.Writer, run domain.PushRun, runID, format string) error {
	if format == formatJSON {
		return printJSON(w, map[string]any{
			"run_id": runID,
			"run":    run,
		})
	}

	total := run.EndedAt.Sub(run.StartedAt)
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "Directory: %s\n", run.Dir)
	if run.Collection != "" {
		fmt.Fprintf(w, "Collection: %s\n", run.Collection)
	}
	fmt.Fprintf(w, "Workers:   %d\n", run.Workers)
	fmt.Fprintf(w, "Duration:  %s\n", total.Round(time.Millisecond))
	if runID != "" {
		fmt.Fprintf(w, "Run ID:    %s\n", runID)
	}
	fmt.Fprintln(w)

	for _, r := range run.Results {
		printPushResult(w, "- ", r)
	}

	fmt.Fprintf(w, "\n%d created, %d skipped, %d failed\n",
		run.Count(domain.PushCreated), run.Count(domain.PushSkipped), run.Count(domain.PushFailed))
	return nil
}

func printPushResult(w io.Writer, prefix string, r domain.PushResult) {
	switch r.Outcome {
	case domain.PushCreated:
		fmt.Fprintf(w, "%s[CREATED] %s -> %s (%dms)\n", prefix, r.Alias, r.RecordID, r.DurationMS)
	case domain.PushSkipped:
		fmt.Fprintf(w, "%s[SKIPPED] %s (%s)\n", prefix, r.Alias, r.RecordID)
	default:
		fmt.Fprintf(w, "%s[FAILED]  %s: %s\n", prefix, r.Alias, r.Message)
	}
}

func printRuns(w io.Writer, refs []domain.RunRef, format string) error {
	if format == formatJSON {
		if refs == nil {
			refs = []domain.RunRef{}
		}
		return printJSON(w, refs)
	}
	if len(refs) == 0 {
		fmt.Fprintln(w, "(no runs found)")
		return nil
	}
	for _, r := range refs {
		fmt.Fprintf(w, "- %s  %s  %d created / %d skipped / %d failed  (%s)\n",
			r.StartedAt.Local().Format(time.DateTime), r.Dir, r.Created, r.Skipped, r.Failed, r.File)
	}
	return nil
}
