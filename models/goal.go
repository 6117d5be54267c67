package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoalStatus representa el estado de una meta mensual
type GoalStatus string

const (
	GoalStatusPending    GoalStatus = "pending"
	GoalStatusInProgress GoalStatus = "in_progress"
	GoalStatusCompleted  GoalStatus = "completed"
)

// GoalTemplate define una métrica reutilizable con sus umbrales de avance
type GoalTemplate struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre        string    `gorm:"column:nombre;unique;not null;size:100"`
	Unidad        string    `gorm:"column:unidad;size:30"`
	DefaultTarget *float64  `gorm:"column:default_target;type:decimal(12,2)"`
	// Umbrales inclusivos: avance >= success es éxito, >= warning es
	// advertencia, el resto es peligro
	SuccessThreshold float64       `gorm:"column:success_threshold;type:decimal(5,2);not null;default:80"`
	WarningThreshold float64       `gorm:"column:warning_threshold;type:decimal(5,2);not null;default:50"`
	Goals            []MonthlyGoal `gorm:"foreignKey:TemplateID"`
	CreatedAt        time.Time     `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time     `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (GoalTemplate) TableName() string {
	return "goal_templates"
}

// MonthlyGoal es la meta de un usuario para un período (mes, año).
// Única por (usuario, plantilla, mes, año).
type MonthlyGoal struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID     `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:idx_goal_periodo,priority:1"`
	User          User          `gorm:"foreignKey:UserID"`
	TemplateID    *uuid.UUID    `gorm:"column:template_id;type:uuid;index;uniqueIndex:idx_goal_periodo,priority:2"`
	Template      *GoalTemplate `gorm:"foreignKey:TemplateID"`
	Mes           int           `gorm:"column:mes;not null;uniqueIndex:idx_goal_periodo,priority:3"`
	Anio          int           `gorm:"column:anio;not null;uniqueIndex:idx_goal_periodo,priority:4"`
	Descripcion   string        `gorm:"column:descripcion;size:255"`
	TargetValue   float64       `gorm:"column:target_value;type:decimal(12,2);not null"`
	AchievedValue float64       `gorm:"column:achieved_value;type:decimal(12,2);not null;default:0"`
	Status        GoalStatus    `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	CreatedAt     time.Time     `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (MonthlyGoal) TableName() string {
	return "monthly_goals"
}

// BeforeCreate hook de validación previo a la creación.
// El target se rechaza en el borde para que el cálculo de avance nunca
// divida por cero sobre filas nuevas.
func (g *MonthlyGoal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.TargetValue <= 0 {
		return errors.New("el valor objetivo debe ser mayor a 0")
	}
	if g.Mes < 1 || g.Mes > 12 {
		return errors.New("mes inválido")
	}
	if g.Anio < 2000 {
		return errors.New("año inválido")
	}
	return nil
}
