package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gestion/models"
)

// Errores de dominio de metas
var (
	ErrMetaNoEncontrada      = errors.New("meta no encontrada")
	ErrMetaDuplicada         = errors.New("ya existe una meta para ese usuario, plantilla y período")
	ErrMetaConEnvios         = errors.New("la meta tiene envíos registrados y no puede eliminarse")
	ErrPlantillaNoEncontrada = errors.New("plantilla no encontrada")
)

type CreateTemplateDTO struct {
	Nombre           string   `json:"nombre" validate:"required,min=2,max=100"`
	Unidad           string   `json:"unidad" validate:"max=30"`
	DefaultTarget    *float64 `json:"default_target" validate:"omitempty,gt=0"`
	SuccessThreshold float64  `json:"success_threshold" validate:"required,gt=0,lte=100"`
	WarningThreshold float64  `json:"warning_threshold" validate:"required,gte=0"`
}

type CreateGoalDTO struct {
	UserID      uuid.UUID  `json:"user_id" validate:"required"`
	TemplateID  *uuid.UUID `json:"template_id"`
	Mes         int        `json:"mes" validate:"required,min=1,max=12"`
	Anio        int        `json:"anio" validate:"required,min=2000"`
	Descripcion string     `json:"descripcion" validate:"max=255"`
	// gt=0 en el borde: el cálculo de avance nunca divide por cero
	TargetValue float64 `json:"target_value" validate:"required,gt=0"`
}

// BulkAssignDTO asigna la misma plantilla a varios usuarios en un período
type BulkAssignDTO struct {
	TemplateID  uuid.UUID   `json:"template_id" validate:"required"`
	UserIDs     []uuid.UUID `json:"user_ids" validate:"required,min=1"`
	Mes         int         `json:"mes" validate:"required,min=1,max=12"`
	Anio        int         `json:"anio" validate:"required,min=2000"`
	TargetValue *float64    `json:"target_value" validate:"omitempty,gt=0"`
}

type UpdateGoalDTO struct {
	Descripcion *string  `json:"descripcion" validate:"omitempty,max=255"`
	TargetValue *float64 `json:"target_value" validate:"omitempty,gt=0"`
}

// GoalProgressDTO es una meta con su avance calculado
type GoalProgressDTO struct {
	Goal     models.MonthlyGoal `json:"goal"`
	Progress ProgressResult     `json:"progress"`
}

// GoalService maneja plantillas y metas mensuales
type GoalService struct {
	db        *gorm.DB
	validator *validator.Validate
	progress  ProgressConfig
}

// NewGoalService crea un nuevo GoalService
func NewGoalService(db *gorm.DB, progress ProgressConfig) *GoalService {
	return &GoalService{
		db:        db,
		validator: validator.New(),
		progress:  progress,
	}
}

// CreateTemplate crea una plantilla de métrica
func (s *GoalService) CreateTemplate(dto CreateTemplateDTO) (*models.GoalTemplate, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}
	if dto.WarningThreshold > dto.SuccessThreshold {
		return nil, errors.New("el umbral de advertencia no puede superar al de éxito")
	}

	tpl := &models.GoalTemplate{
		Nombre:           dto.Nombre,
		Unidad:           dto.Unidad,
		DefaultTarget:    dto.DefaultTarget,
		SuccessThreshold: dto.SuccessThreshold,
		WarningThreshold: dto.WarningThreshold,
	}
	if err := s.db.Create(tpl).Error; err != nil {
		return nil, err
	}
	return tpl, nil
}

// GetTemplates lista las plantillas
func (s *GoalService) GetTemplates() ([]models.GoalTemplate, error) {
	var templates []models.GoalTemplate
	err := s.db.Order("nombre ASC").Find(&templates).Error
	return templates, err
}

// CreateGoal crea una meta mensual respetando la unicidad por
// (usuario, plantilla, mes, año)
func (s *GoalService) CreateGoal(dto CreateGoalDTO) (*models.MonthlyGoal, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	goal, err := s.createGoalTx(tx, dto)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) createGoalTx(tx *gorm.DB, dto CreateGoalDTO) (*models.MonthlyGoal, error) {
	query := tx.Where("user_id = ? AND mes = ? AND anio = ?", dto.UserID, dto.Mes, dto.Anio)
	if dto.TemplateID != nil {
		query = query.Where("template_id = ?", *dto.TemplateID)
	} else {
		query = query.Where("template_id IS NULL")
	}

	var existing models.MonthlyGoal
	if err := query.First(&existing).Error; err == nil {
		return nil, ErrMetaDuplicada
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	goal := &models.MonthlyGoal{
		UserID:      dto.UserID,
		TemplateID:  dto.TemplateID,
		Mes:         dto.Mes,
		Anio:        dto.Anio,
		Descripcion: dto.Descripcion,
		TargetValue: dto.TargetValue,
		Status:      models.GoalStatusPending,
	}
	if err := tx.Create(goal).Error; err != nil {
		return nil, err
	}
	return goal, nil
}

// BulkAssign crea la misma meta para varios usuarios en una transacción.
// O se asignan todas o ninguna.
func (s *GoalService) BulkAssign(dto BulkAssignDTO) ([]models.MonthlyGoal, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var tpl models.GoalTemplate
	if err := tx.First(&tpl, "id = ?", dto.TemplateID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlantillaNoEncontrada
		}
		return nil, err
	}

	target := 0.0
	if dto.TargetValue != nil {
		target = *dto.TargetValue
	} else if tpl.DefaultTarget != nil {
		target = *tpl.DefaultTarget
	}
	if target <= 0 {
		tx.Rollback()
		return nil, errors.New("la plantilla no tiene objetivo por defecto; indique target_value")
	}

	goals := make([]models.MonthlyGoal, 0, len(dto.UserIDs))
	for _, userID := range dto.UserIDs {
		goal, err := s.createGoalTx(tx, CreateGoalDTO{
			UserID:      userID,
			TemplateID:  &dto.TemplateID,
			Mes:         dto.Mes,
			Anio:        dto.Anio,
			Descripcion: tpl.Nombre,
			TargetValue: target,
		})
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		goals = append(goals, *goal)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// GetGoalsByPeriod lista las metas de un período con su avance calculado
func (s *GoalService) GetGoalsByPeriod(mes, anio int) ([]GoalProgressDTO, error) {
	var goals []models.MonthlyGoal
	err := s.db.
		Preload("User").
		Preload("Template").
		Where("mes = ? AND anio = ?", mes, anio).
		Order("created_at ASC").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}

	result := make([]GoalProgressDTO, 0, len(goals))
	for i := range goals {
		cfg := thresholdsFor(&goals[i], s.progress)
		result = append(result, GoalProgressDTO{
			Goal:     goals[i],
			Progress: CalculateProgress(goals[i].AchievedValue, goals[i].TargetValue, cfg),
		})
	}
	return result, nil
}

// GetGoalsByUser lista las metas de un usuario
func (s *GoalService) GetGoalsByUser(userID uuid.UUID) ([]GoalProgressDTO, error) {
	var goals []models.MonthlyGoal
	err := s.db.
		Preload("Template").
		Where("user_id = ?", userID).
		Order("anio DESC, mes DESC").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}

	result := make([]GoalProgressDTO, 0, len(goals))
	for i := range goals {
		cfg := thresholdsFor(&goals[i], s.progress)
		result = append(result, GoalProgressDTO{
			Goal:     goals[i],
			Progress: CalculateProgress(goals[i].AchievedValue, goals[i].TargetValue, cfg),
		})
	}
	return result, nil
}

// UpdateGoal modifica descripción u objetivo de una meta
func (s *GoalService) UpdateGoal(id uuid.UUID, dto UpdateGoalDTO) (*models.MonthlyGoal, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}

	var goal models.MonthlyGoal
	if err := s.db.First(&goal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMetaNoEncontrada
		}
		return nil, err
	}

	if dto.Descripcion != nil {
		goal.Descripcion = *dto.Descripcion
	}
	if dto.TargetValue != nil {
		goal.TargetValue = *dto.TargetValue
	}

	if err := s.db.Save(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// DeleteGoal elimina una meta. Solo se permite mientras no tenga envíos;
// el control de rol (solo admin) vive en el middleware de la ruta.
func (s *GoalService) DeleteGoal(id uuid.UUID) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var goal models.MonthlyGoal
	if err := tx.First(&goal, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMetaNoEncontrada
		}
		return err
	}

	var submissions int64
	if err := tx.Model(&models.GoalSubmission{}).Where("goal_id = ?", id).Count(&submissions).Error; err != nil {
		tx.Rollback()
		return err
	}
	if submissions > 0 {
		tx.Rollback()
		return ErrMetaConEnvios
	}

	if err := tx.Delete(&goal).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
