package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PresentationStatus representa el estado de una presentación.
// La máquina de estados solo avanza: draft -> ready -> presented.
type PresentationStatus string

const (
	PresentationStatusDraft     PresentationStatus = "draft"
	PresentationStatusReady     PresentationStatus = "ready"
	PresentationStatusPresented PresentationStatus = "presented"
)

// Presentation agrupa los envíos de metas de un período (mes, año)
type Presentation struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string             `gorm:"column:nombre;not null;size:150"`
	Subtitulo   string             `gorm:"column:subtitulo;size:255"`
	Mes         int                `gorm:"column:mes;not null"`
	Anio        int                `gorm:"column:anio;not null"`
	Status      PresentationStatus `gorm:"column:status;type:varchar(20);not null;default:'draft'"`
	Submissions []GoalSubmission   `gorm:"foreignKey:PresentationID"`
	CreatedAt   time.Time          `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Presentation) TableName() string {
	return "presentations"
}

func (p *Presentation) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// GoalSubmission registra el valor enviado de una meta dentro de una
// presentación. A lo sumo un envío por par (presentación, meta); los
// reenvíos reescriben la fila existente.
type GoalSubmission struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PresentationID uuid.UUID    `gorm:"column:presentation_id;type:uuid;not null;index;uniqueIndex:idx_submission_goal,priority:1"`
	Presentation   Presentation `gorm:"foreignKey:PresentationID"`
	GoalID         uuid.UUID    `gorm:"column:goal_id;type:uuid;not null;index;uniqueIndex:idx_submission_goal,priority:2"`
	Goal           MonthlyGoal  `gorm:"foreignKey:GoalID"`
	SubmittedValue float64      `gorm:"column:submitted_value;type:decimal(12,2);not null"`
	Notas          string       `gorm:"column:notas;size:500"`
	CreatedAt      time.Time    `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (GoalSubmission) TableName() string {
	return "goal_submissions"
}

func (s *GoalSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
