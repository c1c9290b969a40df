package models

import "time"

// Competition represents a competition users can sign up for before its application deadline
type Competition struct {
    ID          uint      `gorm:"primaryKey" json:"id"`
    Name        string    `gorm:"type:varchar(50);not null" json:"name"`
    Description string    `gorm:"type:varchar(1000);not null" json:"description"`
    AuthorID    uint      `gorm:"not null;column:author_id" json:"author_id"`
    ApplyTill   time.Time `gorm:"not null;column:apply_till" json:"apply_till"`
    CreatedAt   time.Time `json:"created_at"`
    UpdatedAt   time.Time `json:"updated_at"`
    Author      *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
