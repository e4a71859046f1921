package tui

import (
	"fmt"
	"strings"

	"github.com/pcdshub/happi-to-confluence/internal/runtime"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

var outcomeOrder = []domain.Outcome{
	domain.OutcomeCreated,
	domain.OutcomeUpdated,
	domain.OutcomeUpToDate,
	domain.OutcomeKept,
	domain.OutcomeSkipped,
	domain.OutcomeFailed,
}

// Summary renders a run report as markdown: outcome totals, then one row
// per page that was written or needs attention.
func Summary(report *runtime.Report) string {
	var sb strings.Builder

	sb.WriteString("# Run summary\n\n")
	sb.WriteString(fmt.Sprintf("Root: **%s** (%s). Entities: %d synced, %d without device class.\n\n",
		report.Root.Title, report.Root.ID, report.Entities, report.Skipped))

	counts := report.Counts()
	sb.WriteString("| Outcome | Pages |\n|---|---|\n")
	for _, o := range outcomeOrder {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", o, counts[o]))
	}

	var rows []domain.NodeResult
	for _, res := range append(append([]domain.NodeResult(nil), report.Results...), report.ViewResults...) {
		if res.Outcome != domain.OutcomeUpToDate && res.Outcome != domain.OutcomeKept {
			rows = append(rows, res)
		}
	}
	if len(rows) == 0 {
		sb.WriteString("\nNothing changed.\n")
		return sb.String()
	}

	sb.WriteString("\n| Identifier | Template | Title | Outcome | Page | Error |\n|---|---|---|---|---|---|\n")
	for _, res := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			cell(res.Identifier), cell(res.Template), cell(res.Title),
			res.Outcome, cell(res.PageID), cell(res.Error())))
	}
	return sb.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
