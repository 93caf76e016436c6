package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"call-quality-go/internal/actionable"
	"call-quality-go/internal/aggregator"
	"call-quality-go/internal/logger"
	"call-quality-go/internal/pipeline"
)

const (
	sessionsSheet = "Sessions"
	summarySheet  = "Summary"
)

var sessionHeader = []any{
	"Session", "Overall quality", "Immediate review", "Review priority", "Resolution",
	"Category", "Unannounced long pauses", "Conversation review", "Conversation priority",
	"Review reasons", "Degraded", "Errors",
}

// WriteReport saves a batch run as an xlsx workbook: one row per session and
// a summary sheet with the aggregate and the action card.
func WriteReport(path string, rep pipeline.Report, ins aggregator.Insight, card actionable.ActionCard) error {
	log := logger.New().WithField("component", "dataset.report").WithField("path", path)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sessionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sessionsSheet, "A1", &sessionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, res := range rep.Results {
		row := sessionRow(res)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sessionsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	for i, kv := range summaryRows(rep, ins, card) {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &kv); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		log.WithError(err).Error("save failed")
		return fmt.Errorf("save: %w", err)
	}
	log.WithField("sessions", len(rep.Results)).Info("report written")
	return nil
}

func sessionRow(res pipeline.Result) []any {
	row := make([]any, len(sessionHeader))
	row[0] = res.SessionID
	if a := res.Analysis; a != nil {
		row[1] = a.OverallQualityScore
		row[2] = a.RequiresImmediateReview
		row[3] = string(a.Resolution.ReviewPriority)
		row[4] = string(a.Resolution.Status)
		row[5] = string(a.Categorization.Primary)
		row[6] = a.Pauses.UnannouncedLongPauses
		row[10] = a.Degraded
	}
	if c := res.Conversation; c != nil {
		row[7] = c.Required
		row[8] = string(c.Priority)
		row[9] = strings.Join(c.Reasons, ", ")
		if c.Degraded {
			row[10] = true
		}
	}
	row[11] = strings.Join(res.Errors, "; ")
	return row
}

func summaryRows(rep pipeline.Report, ins aggregator.Insight, card actionable.ActionCard) [][]any {
	rows := [][]any{
		{"Run", rep.RunID},
		{"Sessions", ins.Total},
		{"Immediate review", ins.ImmediateReview},
		{"Review rate", ins.ReviewRate},
		{"Average quality", ins.AverageQuality},
		{"Degraded", ins.Degraded},
		{"Unannounced long pauses", ins.PauseViolations},
	}
	cats := make([]string, 0, len(ins.CategoryCounts))
	for c := range ins.CategoryCounts {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		rows = append(rows, []any{"Category " + c, ins.CategoryCounts[c], ins.UnresolvedByCategory[c]})
	}
	return append(rows,
		[]any{"Insight", card.Insight},
		[]any{"Action", card.Action},
		[]any{"Impact", card.Impact},
	)
}
