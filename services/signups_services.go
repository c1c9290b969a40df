package services

import (
	"context"
	"errors"
	"time"

	"contests/metrics"
	"contests/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SignupOutcome is the non-error result of a signup request
type SignupOutcome int

const (
	SignedUp SignupOutcome = iota + 1
	AlreadySignedUp
)

func (o SignupOutcome) String() string {
	switch o {
	case SignedUp:
		return "signed_up"
	case AlreadySignedUp:
		return "already_signed_up"
	default:
		return "unknown"
	}
}

// SignupService registers users for competitions
type SignupService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewSignupService(db *gorm.DB, notifier Notifier) *SignupService {
	return &SignupService{db: db, notifier: notifier, now: time.Now}
}

// SignUp registers user for competitionID at most once. A repeated request, including one that
// loses a race against a concurrent request for the same pair, yields AlreadySignedUp.
// Administrators are notified only after the signup row is confirmed, and a failed
// notification never turns a successful signup into an error.
func (s *SignupService) SignUp(ctx context.Context, user models.User, competitionID uint) (SignupOutcome, error) {
	if err := requirePositiveID("competition_id", competitionID); err != nil {
		return 0, err
	}
	db := s.db.WithContext(ctx)

	var competition models.Competition
	if err := db.Select("id", "name").First(&competition, competitionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, persistenceError("lookup competition", err)
	}

	// Fast path only; the unique index is what guarantees a single row.
	exists, err := s.isSignedUp(ctx, user.ID, competitionID)
	if err != nil {
		return 0, err
	}
	if exists {
		return s.finish(user, competitionID, AlreadySignedUp), nil
	}

	start := time.Now()
	signup := models.Signup{
		UserID:        user.ID,
		CompetitionID: competitionID,
		AppliedAt:     s.now().UTC(),
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&signup)
	metrics.RecordDBOperation("insert", "signed_up", start)
	if result.Error != nil {
		return 0, persistenceError("insert signup", result.Error)
	}

	if result.RowsAffected != 1 {
		exists, err := s.isSignedUp(ctx, user.ID, competitionID)
		if err != nil {
			return 0, err
		}
		if exists {
			return s.finish(user, competitionID, AlreadySignedUp), nil
		}
		return 0, persistenceError("insert signup", errors.New("no row inserted"))
	}

	s.notify(ctx, user, competition)
	return s.finish(user, competitionID, SignedUp), nil
}

func (s *SignupService) isSignedUp(ctx context.Context, userID, competitionID uint) (bool, error) {
	defer metrics.RecordDBOperation("select", "signed_up", time.Now())

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Signup{}).
		Where("user_id = ? AND competition_id = ?", userID, competitionID).
		Count(&count).Error
	if err != nil {
		return false, persistenceError("check signup", err)
	}
	return count > 0, nil
}

func (s *SignupService) notify(ctx context.Context, user models.User, competition models.Competition) {
	if s.notifier == nil {
		return
	}

	n := Notification{
		SenderID: user.ID,
		Message:  SignupMessage(user.Name, competition.Name),
	}
	// The signup is already committed, so the notification outlives a cancelled request.
	if err := s.notifier.Notify(context.WithoutCancel(ctx), n); err != nil {
		metrics.NotificationFailures.Inc()
		log.WithFields(log.Fields{
			"user_id":        user.ID,
			"competition_id": competition.ID,
		}).WithError(err).Error("Failed to notify administrators of signup")
	}
}

func (s *SignupService) finish(user models.User, competitionID uint, outcome SignupOutcome) SignupOutcome {
	metrics.SignupOutcomes.WithLabelValues(outcome.String()).Inc()
	log.WithFields(log.Fields{
		"user_id":        user.ID,
		"competition_id": competitionID,
		"outcome":        outcome.String(),
	}).Info("Signup processed")
	return outcome
}
