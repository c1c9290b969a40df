package models

import "time"

// Message is an administrative inbox entry produced as a side effect of user actions
type Message struct {
    ID          uint      `gorm:"primaryKey" json:"id"`
    Message     string    `gorm:"type:text;not null" json:"message"`
    SenderID    uint      `gorm:"not null;column:sender_id" json:"sender_id"`
    RecipientID uint      `gorm:"not null;column:recipient_id;index" json:"recipient_id"`
    CreatedAt   time.Time `json:"created_at"`
}
