package services

import (
    "context"
    "fmt"
    "net/smtp"
    "strings"

    "contests/config"
    "contests/models"

    "gorm.io/gorm"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService forwards notifications to the mailboxes of their recipients
type EmailService struct {
    db         *gorm.DB
    recipients *RecipientResolver
    host       string
    port       string
    username   string
    password   string
    send       sendMailFunc
}

func NewEmailService(db *gorm.DB, recipients *RecipientResolver) *EmailService {
    return &EmailService{
        db:         db,
        recipients: recipients,
        host:       config.MailHost,
        port:       config.MailPort,
        username:   config.MailUsername,
        password:   config.MailPassword,
        send:       smtp.SendMail,
    }
}

// Enabled reports whether an SMTP host is configured
func (s *EmailService) Enabled() bool {
    return s.host != ""
}

// Notify mails the notification text to every resolved recipient that has an address
func (s *EmailService) Notify(ctx context.Context, n Notification) error {
    ids, err := s.recipients.Resolve(ctx)
    if err != nil {
        return err
    }
    if len(ids) == 0 {
        return nil
    }

    var addresses []string
    if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", ids).Pluck("email", &addresses).Error; err != nil {
        return persistenceError("lookup recipient emails", err)
    }
    if len(addresses) == 0 {
        return nil
    }

    return s.SendNotificationEmail(addresses, n.Message)
}

func (s *EmailService) SendNotificationEmail(to []string, message string) error {
    auth := smtp.PlainAuth("", s.username, s.password, s.host)

    textTemplate := strings.TrimSpace(`
To: %s
MIME-version: 1.0
Content-Type: text/plain; charset="UTF-8"
Subject: New competition signup

%s
`)

    msg := []byte(fmt.Sprintf(textTemplate, strings.Join(to, ", "), message))
    return s.send(s.host+":"+s.port, auth, s.username, to, msg)
}
