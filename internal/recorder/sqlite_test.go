package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/stretchr/testify/suite"
)

type SQLiteRecorderTestSuite struct {
	suite.Suite
	recorder *SQLiteRecorder
	ctx      context.Context
}

func TestSQLiteRecorderSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRecorderTestSuite))
}

func (suite *SQLiteRecorderTestSuite) SetupTest() {
	r, err := NewSQLiteRecorder(filepath.Join(suite.T().TempDir(), "history.db"), logger.NewNopLogger())
	suite.Require().NoError(err)

	suite.recorder = r
	suite.ctx = context.Background()
}

func (suite *SQLiteRecorderTestSuite) TearDownTest() {
	suite.NoError(suite.recorder.Close())
}

func sampleReport(id string, at time.Time) types.Report {
	return types.Report{
		CycleID:     id,
		Frequency:   types.FrequencyDaily,
		GeneratedAt: at,
		Results: []types.SignalResult{
			{Name: types.PatternNewHigh, Symbols: []string{"NVDA", "AAPL"}},
			{Name: types.PatternMACDBullishDivergence, Symbols: []string{"MSFT"}},
		},
		MissingData:     []string{"XYZ"},
		MissingAnalysis: []string{},
	}
}

func (suite *SQLiteRecorderTestSuite) TestLatestEmpty() {
	latest, err := suite.recorder.Latest(suite.ctx)
	suite.NoError(err)
	suite.True(latest.IsNone())
}

func (suite *SQLiteRecorderTestSuite) TestSaveRoundTrip() {
	report := sampleReport("cycle-1", time.Date(2024, 12, 27, 18, 0, 0, 123, time.UTC))
	suite.Require().NoError(suite.recorder.Save(suite.ctx, report))

	latest, err := suite.recorder.Latest(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().True(latest.IsSome())

	if diff := cmp.Diff(report, latest.Unwrap()); diff != "" {
		suite.Failf("report mismatch", "(-want +got):\n%s", diff)
	}
}

func (suite *SQLiteRecorderTestSuite) TestSaveWithoutHits() {
	report := types.Report{
		CycleID:         "empty",
		Frequency:       types.FrequencyWeekly,
		GeneratedAt:     time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC),
		Results:         []types.SignalResult{},
		MissingData:     []string{},
		MissingAnalysis: []string{"IPO"},
	}
	suite.Require().NoError(suite.recorder.Save(suite.ctx, report))

	latest, err := suite.recorder.Latest(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(cmp.Diff(report, latest.Unwrap()))
}

func (suite *SQLiteRecorderTestSuite) TestLatestPicksNewest() {
	base := time.Date(2024, 12, 20, 18, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.recorder.Save(suite.ctx, sampleReport("newer", base.Add(24*time.Hour))))
	suite.Require().NoError(suite.recorder.Save(suite.ctx, sampleReport("older", base)))

	latest, err := suite.recorder.Latest(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal("newer", latest.Unwrap().CycleID)
}

func (suite *SQLiteRecorderTestSuite) TestSaveDuplicateCycle() {
	report := sampleReport("dup", time.Now().UTC())
	suite.Require().NoError(suite.recorder.Save(suite.ctx, report))

	err := suite.recorder.Save(suite.ctx, report)
	suite.Error(err)

	history, err := suite.recorder.SymbolHistory(suite.ctx, "MSFT", 0)
	suite.NoError(err)
	suite.Len(history, 1)
}

func (suite *SQLiteRecorderTestSuite) TestSymbolHistory() {
	base := time.Date(2024, 12, 20, 18, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.recorder.Save(suite.ctx, sampleReport("first", base)))
	suite.Require().NoError(suite.recorder.Save(suite.ctx, sampleReport("second", base.Add(24*time.Hour))))

	history, err := suite.recorder.SymbolHistory(suite.ctx, "AAPL", 0)
	suite.Require().NoError(err)
	suite.Require().Len(history, 2)
	suite.Equal("second", history[0].CycleID)
	suite.Equal("first", history[1].CycleID)
	suite.Equal(types.PatternNewHigh, history[0].Pattern)
	suite.True(history[1].GeneratedAt.Equal(base))

	limited, err := suite.recorder.SymbolHistory(suite.ctx, "AAPL", 1)
	suite.NoError(err)
	suite.Len(limited, 1)

	none, err := suite.recorder.SymbolHistory(suite.ctx, "TSLA", 0)
	suite.NoError(err)
	suite.Empty(none)
}

func TestNoopRecorder(t *testing.T) {
	r := NewNoopRecorder()
	ctx := context.Background()

	if err := r.Save(ctx, types.Report{CycleID: "x"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	latest, err := r.Latest(ctx)
	if err != nil || latest.IsSome() {
		t.Fatalf("Latest: %v %v", latest, err)
	}
}
