package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contests/metrics"
	"contests/models"

	"gorm.io/gorm"
)

// Notification is one admin-facing message produced by a user action
type Notification struct {
	SenderID uint
	Message  string
}

// Notifier delivers notifications. Implementations must not assume the caller retries.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// SignupMessage is the text sent to administrators when userName signs up for competitionName
func SignupMessage(userName, competitionName string) string {
	return fmt.Sprintf("%s signed up for %s", userName, competitionName)
}

// RecipientResolver decides who is addressed by admin notifications: a single configured
// user, or every user holding the admin role when no user is configured
type RecipientResolver struct {
	db          *gorm.DB
	recipientID uint
}

func NewRecipientResolver(db *gorm.DB, recipientID uint) *RecipientResolver {
	return &RecipientResolver{db: db, recipientID: recipientID}
}

func (r *RecipientResolver) Resolve(ctx context.Context) ([]uint, error) {
	if r.recipientID > 0 {
		return []uint{r.recipientID}, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, persistenceError("resolve admin recipients", err)
	}
	return ids, nil
}

// MessageSink stores notifications in the messages table, one row per recipient
type MessageSink struct {
	db         *gorm.DB
	recipients *RecipientResolver
}

func NewMessageSink(db *gorm.DB, recipients *RecipientResolver) *MessageSink {
	return &MessageSink{db: db, recipients: recipients}
}

func (s *MessageSink) Notify(ctx context.Context, n Notification) error {
	ids, err := s.recipients.Resolve(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	defer metrics.RecordDBOperation("insert", "messages", time.Now())

	messages := make([]models.Message, 0, len(ids))
	for _, id := range ids {
		messages = append(messages, models.Message{
			Message:     n.Message,
			SenderID:    n.SenderID,
			RecipientID: id,
		})
	}
	if err := s.db.WithContext(ctx).Create(&messages).Error; err != nil {
		return persistenceError("insert messages", err)
	}
	return nil
}

// Inbox returns the messages addressed to recipientID, newest first
func (s *MessageSink) Inbox(ctx context.Context, recipientID uint) ([]models.Message, error) {
	defer metrics.RecordDBOperation("select", "messages", time.Now())

	messages := []models.Message{}
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, persistenceError("list messages", err)
	}
	return messages, nil
}

// MultiNotifier fans a notification out to every notifier and joins their failures
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
