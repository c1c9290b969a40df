package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"contests/models"
	"contests/testutil"

	"github.com/xuri/excelize/v2"
)

func TestExportScoreboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewScoreService(db)

	competition := testutil.CreateTestCompetition(t, db, "Chess Open", 1, time.Now())
	ana := testutil.CreateTestUser(t, db, "Ana", models.RoleUser)
	ben := testutil.CreateTestUser(t, db, "Ben", models.RoleUser)
	testutil.CreateTestSignup(t, db, ana.ID, competition.ID, testutil.Score(7))
	testutil.CreateTestSignup(t, db, ben.ID, competition.ID, nil)

	var buf bytes.Buffer
	if err := svc.ExportScoreboard(context.Background(), competition.ID, &buf); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Failed to read workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ScoreboardSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and two rows, got %v", rows)
	}
	if rows[0][0] != "Rank" || rows[0][1] != "Participant" || rows[0][2] != "Score" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][1] != "Ana" || rows[1][2] != "7" {
		t.Errorf("Unexpected first row: %v", rows[1])
	}
	if rows[2][1] != "Ben" || rows[2][2] != "" {
		t.Errorf("Expected Ben unscored, got %v", rows[2])
	}
}

func TestExportScoreboard_UnknownCompetition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewScoreService(db)

	var buf bytes.Buffer
	if err := svc.ExportScoreboard(context.Background(), 5, &buf); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected nothing written, got %d bytes", buf.Len())
	}
}
