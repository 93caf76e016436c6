package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"call-quality-go/internal/actionable"
	"call-quality-go/internal/aggregator"
	"call-quality-go/internal/pipeline"
	"call-quality-go/internal/types"
)

func writeSheet(t *testing.T, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadSessions(t *testing.T) {
	path := writeSheet(t, [][]any{
		{"Agent", "Session ID", "Date"},
		{"Ona", "call-1", "2025-12-01"},
		{"Jonas", " call-2/ ", "2025-12-01"},
		{"Ona", "", "2025-12-02"},
		{"Ona", "call-1", "2025-12-03"},
	})

	ids, err := LoadSessions(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"call-1", "call-2"}, ids)
}

func TestLoadSessionsFallsBackToFirstColumn(t *testing.T) {
	path := writeSheet(t, [][]any{{"Recording"}, {"a"}, {"b"}})

	ids, err := LoadSessions(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestLoadSessionsRejectsEmptySheet(t *testing.T) {
	path := writeSheet(t, [][]any{{"Session"}})

	_, err := LoadSessions(path)
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	a := types.ComprehensiveAnalysis{SessionID: "call-1", OverallQualityScore: 74.75}
	a.Resolution.Status = types.ProblemResolved
	a.Resolution.ReviewPriority = types.PriorityLow
	a.Categorization.Primary = types.CategoryTechnicalSupport
	conv := types.ConversationAnalysis{ReviewDecision: types.ReviewDecision{
		Required: true, Priority: types.PriorityMedium, Reasons: []string{"pause_compliance_violation"},
	}}
	rep := pipeline.Report{RunID: "run-1", Results: []pipeline.Result{
		{SessionID: "call-1", Analysis: &a, Conversation: &conv},
		{SessionID: "call-2", Errors: []string{"analysis: not available"}},
	}}
	ins := aggregator.Aggregate(rep.Analyses())
	card := actionable.Generate(ins)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReport(path, rep, ins, card))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{sessionsSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(sessionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Session", rows[0][0])
	assert.Equal(t, "call-1", rows[1][0])
	assert.Equal(t, "74.75", rows[1][1])
	assert.Equal(t, "technical_support", rows[1][5])
	assert.Equal(t, "pause_compliance_violation", rows[1][9])
	assert.Equal(t, "call-2", rows[2][0])
	assert.Equal(t, "analysis: not available", rows[2][11])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Run", "run-1"}, summary[0])
	assert.Equal(t, []string{"Insight", card.Insight}, summary[len(summary)-3])
}
