package services

import (
	"context"
	"errors"
	"time"

	"contests/metrics"
	"contests/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CompetitionInput carries the editable fields of a competition
type CompetitionInput struct {
	Name        string `json:"name" validate:"required,min=3,max=50"`
	Description string `json:"description" validate:"required,min=3,max=1000"`
	ApplyTill   string `json:"apply_till" validate:"required"`
}

// CompetitionSummary is a competition joined with the display name of its author
type CompetitionSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	ApplyTill   time.Time `json:"apply_till"`
}

// CompetitionService creates, edits, lists and deletes competitions
type CompetitionService struct {
	db *gorm.DB
}

func NewCompetitionService(db *gorm.DB) *CompetitionService {
	return &CompetitionService{db: db}
}

// validate checks the input and returns the parsed deadline
func (in CompetitionInput) validate() (time.Time, error) {
	verr := &ValidationError{Fields: map[string]string{}}
	if err := validateStruct(in); err != nil {
		if !errors.As(err, &verr) {
			return time.Time{}, err
		}
	}
	deadline, err := ParseDeadline(in.ApplyTill)
	if err != nil {
		if _, set := verr.Fields["apply_till"]; !set {
			verr.Fields["apply_till"] = "must be a date (YYYY-MM-DD)"
		}
	}
	if len(verr.Fields) > 0 {
		return time.Time{}, verr
	}
	return deadline, nil
}

// List returns every competition ordered by application deadline
func (s *CompetitionService) List(ctx context.Context) ([]CompetitionSummary, error) {
	defer metrics.RecordDBOperation("select", "competitions", time.Now())

	items := []CompetitionSummary{}
	err := s.db.WithContext(ctx).
		Table("competitions c").
		Select("c.id, c.name, c.description, u.name AS author, c.apply_till").
		Joins("JOIN users u ON c.author_id = u.id").
		Order("c.apply_till, c.id").
		Scan(&items).Error
	if err != nil {
		return nil, persistenceError("list competitions", err)
	}
	return items, nil
}

// Get returns one competition by id
func (s *CompetitionService) Get(ctx context.Context, id uint) (models.Competition, error) {
	if err := requirePositiveID("id", id); err != nil {
		return models.Competition{}, err
	}
	defer metrics.RecordDBOperation("select", "competitions", time.Now())

	var competition models.Competition
	if err := s.db.WithContext(ctx).First(&competition, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Competition{}, ErrNotFound
		}
		return models.Competition{}, persistenceError("get competition", err)
	}
	return competition, nil
}

// Create validates the input and inserts a competition authored by authorID
func (s *CompetitionService) Create(ctx context.Context, in CompetitionInput, authorID uint) (models.Competition, error) {
	deadline, err := in.validate()
	if err != nil {
		return models.Competition{}, err
	}
	defer metrics.RecordDBOperation("insert", "competitions", time.Now())

	competition := models.Competition{
		Name:        in.Name,
		Description: in.Description,
		AuthorID:    authorID,
		ApplyTill:   deadline,
	}
	result := s.db.WithContext(ctx).Create(&competition)
	if result.Error != nil {
		return models.Competition{}, persistenceError("create competition", result.Error)
	}
	if result.RowsAffected != 1 {
		return models.Competition{}, persistenceError("create competition", errors.New("no row inserted"))
	}

	log.WithFields(log.Fields{"competition_id": competition.ID, "author_id": authorID}).Info("Competition created")
	return competition, nil
}

// Edit updates name, description and deadline of competition id. The author never changes.
func (s *CompetitionService) Edit(ctx context.Context, id uint, in CompetitionInput) error {
	if err := requirePositiveID("id", id); err != nil {
		return err
	}
	deadline, err := in.validate()
	if err != nil {
		return err
	}
	defer metrics.RecordDBOperation("update", "competitions", time.Now())

	result := s.db.WithContext(ctx).
		Model(&models.Competition{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":        in.Name,
			"description": in.Description,
			"apply_till":  deadline,
		})
	if result.Error != nil {
		return persistenceError("edit competition", result.Error)
	}
	if result.RowsAffected != 1 {
		return ErrNotFound
	}

	log.WithField("competition_id", id).Info("Competition updated")
	return nil
}

// Delete removes the competition and all of its signups in one transaction
func (s *CompetitionService) Delete(ctx context.Context, id uint) error {
	if err := requirePositiveID("id", id); err != nil {
		return err
	}
	defer metrics.RecordDBOperation("delete", "competitions", time.Now())

	var removedSignups int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		signups := tx.Where("competition_id = ?", id).Delete(&models.Signup{})
		if signups.Error != nil {
			return persistenceError("delete signups", signups.Error)
		}
		removedSignups = signups.RowsAffected

		competition := tx.Delete(&models.Competition{}, id)
		if competition.Error != nil {
			return persistenceError("delete competition", competition.Error)
		}
		if competition.RowsAffected != 1 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"competition_id": id, "signups": removedSignups}).Info("Competition deleted")
	return nil
}
