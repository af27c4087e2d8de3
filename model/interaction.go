package model

import "time"

// Interaction logs a recommendation served to a user, for later analytics.
// Managed through GORM.
type Interaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;index" json:"userId"`
	SampleID  int64     `gorm:"index" json:"sampleId"`
	Action    string    `gorm:"size:32" json:"action"` // recommended
	Score     float64   `json:"score"`
	Reason    string    `gorm:"size:128" json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName sets the GORM table name.
func (Interaction) TableName() string {
	return "interactions"
}
