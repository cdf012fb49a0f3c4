package model

import (
	"time"

	"gorm.io/datatypes"
)

// WizardSnapshot stores one serialized wizard state per storage key.
type WizardSnapshot struct {
	Key       string         `gorm:"type:varchar(255);primaryKey" json:"key"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP;index" json:"updated_at"`
}

func (WizardSnapshot) TableName() string {
	return "wizard_snapshots"
}
