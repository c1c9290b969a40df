package models

import "time"

// Signup links a user to a competition they applied to. The score stays nil until it is recorded.
type Signup struct {
    ID            uint         `gorm:"primaryKey" json:"id"`
    UserID        uint         `gorm:"not null;column:user_id;uniqueIndex:idx_signup_user_competition" json:"user_id"`
    CompetitionID uint         `gorm:"not null;column:competition_id;uniqueIndex:idx_signup_user_competition;index" json:"competition_id"`
    AppliedAt     time.Time    `gorm:"not null;column:applied_at" json:"applied_at"`
    Score         *float64     `gorm:"column:score" json:"score"`
    User          *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
    Competition   *Competition `gorm:"foreignKey:CompetitionID" json:"-"`
}

func (Signup) TableName() string {
    return "signed_up"
}
