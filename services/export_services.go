package services

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const ScoreboardSheet = "Scoreboard"

// ExportScoreboard writes the scoreboard of competitionID as an xlsx workbook
func (s *ScoreService) ExportScoreboard(ctx context.Context, competitionID uint, w io.Writer) error {
	rows, err := s.GetScoreboard(ctx, competitionID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ScoreboardSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ScoreboardSheet, "A1", &[]interface{}{"Rank", "Participant", "Score", "Signup"}); err != nil {
		return err
	}

	for i, row := range rows {
		var rank, score interface{}
		if row.Rank > 0 {
			rank = row.Rank
		}
		if row.Score != nil {
			score = *row.Score
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ScoreboardSheet, cell, &[]interface{}{rank, row.Participant, score, row.SignupID}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
