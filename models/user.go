package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rol representa el rol de un usuario dentro del sistema
type Rol string

const (
	RolAdmin    Rol = "admin"
	RolGerente  Rol = "gerente"
	RolCobrador Rol = "cobrador"
	RolUsuario  Rol = "usuario"
)

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string     `gorm:"column:nombre;not null;size:50"`
	Apellido  string     `gorm:"column:apellido;not null;size:50"`
	Email     string     `gorm:"column:email;unique;not null;size:100;index"`
	Password  string     `gorm:"column:password;not null;size:100"`
	Rol       Rol        `gorm:"column:rol;type:varchar(20);not null;default:'usuario'"`
	Imagen    string     `gorm:"column:imagen;size:255"`
	AreaID    *uuid.UUID `gorm:"column:area_id;type:uuid;index"`
	Area      *Area      `gorm:"foreignKey:AreaID"`
	CreatedAt time.Time  `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time  `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate hook de validación previo a la creación
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if len(u.Nombre) < 2 || len(u.Nombre) > 50 {
		return errors.New("el nombre debe tener entre 2 y 50 caracteres")
	}
	if len(u.Apellido) < 2 || len(u.Apellido) > 50 {
		return errors.New("el apellido debe tener entre 2 y 50 caracteres")
	}
	if len(u.Email) < 3 || len(u.Email) > 100 {
		return errors.New("el email debe tener entre 3 y 100 caracteres")
	}
	return nil
}

// NombreCompleto arma el nombre para mostrar en tarjetas y reportes
func (u *User) NombreCompleto() string {
	return u.Nombre + " " + u.Apellido
}
