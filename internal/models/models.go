package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type User struct {
	BaseModel
	Username string `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password string `json:"-" gorm:"size:255;not null"`
	Status   int    `json:"status" gorm:"default:1"` // 1:active, 0:inactive
}

const (
	SessionRecording = "recording"
	SessionStopped   = "stopped"
)

type Session struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	UserID       uint       `json:"user_id" gorm:"index;not null"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	Description  string     `json:"description" gorm:"size:1000"`
	Precondition string     `json:"precondition" gorm:"size:1000"`
	URL          string     `json:"url" gorm:"size:1000"`
	Device       string     `json:"device" gorm:"size:100"`
	Language     string     `json:"language" gorm:"size:10"`
	Status       string     `json:"status" gorm:"size:20;index"` // recording, stopped
	StartedAt    time.Time  `json:"started_at"`
	StoppedAt    *time.Time `json:"stopped_at"`
	Actions      string     `json:"-" gorm:"type:longtext"` // JSON format ActionRecord array
	ActionCount  int        `json:"action_count" gorm:"-"`
}

func (s *Session) GetActions() ([]ActionRecord, error) {
	var actions []ActionRecord
	if s.Actions == "" {
		return actions, nil
	}
	err := json.Unmarshal([]byte(s.Actions), &actions)
	return actions, err
}

func (s *Session) SetActions(actions []ActionRecord) error {
	if actions == nil {
		actions = []ActionRecord{}
	}
	data, err := json.Marshal(actions)
	if err != nil {
		return err
	}
	s.Actions = string(data)
	s.ActionCount = len(actions)
	return nil
}

// SessionDetail is a session together with its decoded steps.
type SessionDetail struct {
	Session
	Steps []ActionRecord `json:"steps"`
}

// Setting is a persisted key/value preference such as the description language.
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey;size:100"`
	Value     string    `json:"value" gorm:"size:500"`
	UpdatedAt time.Time `json:"updated_at"`
}

const SettingLanguage = "language"
