package models

import (
	"time"

	"github.com/google/uuid"
)

// Department agrupa áreas; es el primer nivel de la jerarquía organizacional
type Department struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"column:nombre;unique;not null;size:100"`
	Areas     []Area    `gorm:"foreignKey:DepartmentID"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Department) TableName() string {
	return "departments"
}

// Area pertenece a un departamento y agrupa usuarios
type Area struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string     `gorm:"column:nombre;not null;size:100"`
	DepartmentID uuid.UUID  `gorm:"column:department_id;type:uuid;not null;index"`
	Department   Department `gorm:"foreignKey:DepartmentID"`
	CreatedAt    time.Time  `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Area) TableName() string {
	return "areas"
}
