package model

import (
	"time"

	"github.com/lib/pq"
)

type ProblemStatus string

const (
	ProblemStatusNew        ProblemStatus = "new"
	ProblemStatusInProgress ProblemStatus = "in_progress"
	ProblemStatusResolved   ProblemStatus = "resolved"
)

func (s ProblemStatus) Valid() bool {
	switch s {
	case ProblemStatusNew, ProblemStatusInProgress, ProblemStatusResolved:
		return true
	}
	return false
}

type ProblemCategory string

const (
	CategoryHardware ProblemCategory = "hardware"
	CategorySoftware ProblemCategory = "software"
	CategoryNetwork  ProblemCategory = "network"
	CategoryOther    ProblemCategory = "other"
)

func (c ProblemCategory) Valid() bool {
	switch c {
	case CategoryHardware, CategorySoftware, CategoryNetwork, CategoryOther:
		return true
	}
	return false
}

// Problem is a reported IT issue. Title, description, category and
// attachments are fixed at creation; status changes only through the
// instruction lifecycle (or the explicit status endpoint).
type Problem struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Category    ProblemCategory `gorm:"type:varchar(32);index;not null" json:"category"`
	Status      ProblemStatus   `gorm:"type:varchar(32);index;not null" json:"status"`
	Attachments pq.StringArray  `gorm:"type:text[]" json:"attachments"`
	CreatedBy   string          `gorm:"type:varchar(255);not null" json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Instruction is the resolution an admin attaches to a problem. A problem
// has at most one instruction; creating it marks the problem resolved.
type Instruction struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	ProblemID       string         `gorm:"type:uuid;uniqueIndex;not null" json:"problem_id"`
	InstructionText string         `gorm:"type:text;not null" json:"instruction_text"`
	Images          pq.StringArray `gorm:"type:text[]" json:"images"`
	CreatedBy       string         `gorm:"type:varchar(255);not null" json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
}

// Admin is a roster entry. Emails are stored lowercase and unique; the
// roster must never become empty.
type Admin struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	Email   string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	AddedBy string `gorm:"type:varchar(255);not null" json:"added_by"`

	CreatedAt time.Time `json:"created_at"`
}

// Attachment is an uploaded binary addressed by an opaque token. Problems
// and instructions reference tokens, never the bytes.
type Attachment struct {
	Token       string `gorm:"type:uuid;primaryKey" json:"token"`
	Filename    string `gorm:"type:varchar(255)" json:"filename"`
	ContentType string `gorm:"type:varchar(255)" json:"content_type"`
	Size        int64  `json:"size"`
	Data        []byte `gorm:"type:bytea" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
