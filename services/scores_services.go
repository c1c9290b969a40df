package services

import (
	"context"
	"errors"
	"math"
	"time"

	"contests/metrics"
	"contests/models"
	"contests/utils"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ScoreRow is one line of a scoreboard
type ScoreRow struct {
	SignupID      uint     `json:"id"`
	Participant   string   `json:"participant"`
	Score         *float64 `json:"score"`
	CompetitionID uint     `json:"competition_id"`
	Competition   string   `json:"competition"`
	Rank          int      `json:"rank"`
}

// ScoreService records scores and builds scoreboards
type ScoreService struct {
	db *gorm.DB
}

func NewScoreService(db *gorm.DB) *ScoreService {
	return &ScoreService{db: db}
}

// GetScoreboard returns the signups of competitionID ordered by ascending score. Unscored
// signups are listed last on every database, ties are broken by signup id. An unknown
// competition is ErrNotFound, so an empty scoreboard always means nobody signed up yet.
func (s *ScoreService) GetScoreboard(ctx context.Context, competitionID uint) ([]ScoreRow, error) {
	if err := requirePositiveID("competition_id", competitionID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	defer metrics.RecordDBOperation("select", "signed_up", time.Now())

	var count int64
	if err := db.Model(&models.Competition{}).Where("id = ?", competitionID).Count(&count).Error; err != nil {
		return nil, persistenceError("check competition", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	rows := []ScoreRow{}
	err := db.Table("signed_up a").
		Select("a.id AS signup_id, u.name AS participant, a.score, c.id AS competition_id, c.name AS competition").
		Joins("JOIN users u ON a.user_id = u.id").
		Joins("JOIN competitions c ON a.competition_id = c.id").
		Where("c.id = ?", competitionID).
		Order("a.score IS NULL, a.score, a.id").
		Scan(&rows).Error
	if err != nil {
		return nil, persistenceError("load scoreboard", err)
	}

	scores := make([]*float64, len(rows))
	for i := range rows {
		scores[i] = rows[i].Score
	}
	for i, rank := range utils.RankAscending(scores) {
		rows[i].Rank = rank
	}
	return rows, nil
}

// UpdateScore sets the score of signupID. competitionID must be the competition the signup
// belongs to; a mismatch is rejected as a validation error.
func (s *ScoreService) UpdateScore(ctx context.Context, signupID, competitionID uint, score float64) error {
	if err := requirePositiveID("id", signupID); err != nil {
		return err
	}
	if err := requirePositiveID("competition_id", competitionID); err != nil {
		return err
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return invalidField("score", "must be a finite number")
	}
	defer metrics.RecordDBOperation("update", "signed_up", time.Now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var signup models.Signup
		if err := tx.Select("id", "competition_id").First(&signup, signupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return persistenceError("lookup signup", err)
		}
		if signup.CompetitionID != competitionID {
			return invalidField("competition_id", "does not match the competition of the signup")
		}

		result := tx.Model(&models.Signup{}).Where("id = ?", signupID).Update("score", score)
		if result.Error != nil {
			return persistenceError("update score", result.Error)
		}
		if result.RowsAffected != 1 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"signup_id": signupID, "competition_id": competitionID, "score": score}).Info("Score updated")
	return nil
}
