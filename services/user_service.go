package services

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gestion/models"
)

// UserService maneja usuarios y sus roles
type UserService struct {
	db *gorm.DB
}

type UserDTO struct {
	ID       uuid.UUID  `json:"id"`
	Nombre   string     `json:"nombre"`
	Apellido string     `json:"apellido"`
	Email    string     `json:"email"`
	Rol      models.Rol `json:"rol"`
	AreaID   *uuid.UUID `json:"area_id,omitempty"`
}

type CreateUserRequest struct {
	Nombre   string     `json:"nombre" validate:"required,min=2,max=50"`
	Apellido string     `json:"apellido" validate:"required,min=2,max=50"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8"`
	AreaID   *uuid.UUID `json:"area_id"`
}

// NewUserService crea un nuevo UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// CreateUserInternal crea un usuario nuevo con rol base
func (h *UserService) CreateUserInternal(req CreateUserRequest) (*models.User, error) {
	// Verificamos que el email no esté tomado
	var existing models.User
	if err := h.db.Where("LOWER(email) = LOWER(?)", req.Email).First(&existing).Error; err == nil {
		return nil, errors.New("ya existe un usuario con ese email")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Email:    req.Email,
		Password: string(hashed),
		Rol:      models.RolUsuario,
		AreaID:   req.AreaID,
	}

	if err := h.db.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// FindByEmail busca un usuario por email ignorando mayúsculas y espacios
func (h *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := h.db.Where("LOWER(TRIM(email)) = LOWER(TRIM(?))", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("usuario no encontrado")
		}
		return nil, err
	}
	return &user, nil
}

// FindByID busca un usuario por ID
func (h *UserService) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := h.db.Preload("Area").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("usuario no encontrado")
		}
		return nil, err
	}
	return &user, nil
}

// SetRol cambia el rol de un usuario; lo usan las pantallas de admin
func (h *UserService) SetRol(id uuid.UUID, rol models.Rol) (*models.User, error) {
	switch rol {
	case models.RolAdmin, models.RolGerente, models.RolCobrador, models.RolUsuario:
	default:
		return nil, errors.New("rol inválido")
	}

	user, err := h.FindByID(id)
	if err != nil {
		return nil, err
	}

	user.Rol = rol
	if err := h.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ToDTO convierte el modelo a su representación pública
func (h *UserService) ToDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Nombre:   u.Nombre,
		Apellido: u.Apellido,
		Email:    u.Email,
		Rol:      u.Rol,
		AreaID:   u.AreaID,
	}
}
