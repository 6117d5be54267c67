package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gestion/models"
	"gestion/utils"
)

// Errores de dominio de presentaciones
var (
	ErrPresentacionNoEncontrada = errors.New("presentación no encontrada")
	// Violación de la máquina de estados draft -> ready -> presented
	ErrEstadoPresentacion = errors.New("transición de estado de presentación inválida")
	// Una presentación presentada es terminal: no admite envíos ni borrado
	ErrPresentacionCerrada = errors.New("la presentación ya fue presentada y no admite cambios")
)

type CreatePresentationDTO struct {
	Nombre    string `json:"nombre" validate:"required,min=2,max=150"`
	Subtitulo string `json:"subtitulo" validate:"max=255"`
	Mes       int    `json:"mes" validate:"required,min=1,max=12"`
	Anio      int    `json:"anio" validate:"required,min=2000"`
}

type SubmitGoalDTO struct {
	GoalID         uuid.UUID `json:"goal_id" validate:"required"`
	SubmittedValue float64   `json:"submitted_value" validate:"gte=0"`
	Notas          string    `json:"notas" validate:"max=500"`
}

// BulkSubmitDTO envía varias metas de una vez; la operación es atómica
type BulkSubmitDTO struct {
	Submissions []SubmitGoalDTO `json:"submissions" validate:"required,min=1,dive"`
}

// PresentationService maneja presentaciones, envíos y la composición del deck
type PresentationService struct {
	db        *gorm.DB
	validator *validator.Validate
	email     *EmailService
	progress  ProgressConfig
}

// NewPresentationService crea un nuevo PresentationService
func NewPresentationService(db *gorm.DB, email *EmailService, progress ProgressConfig) *PresentationService {
	return &PresentationService{
		db:        db,
		validator: validator.New(),
		email:     email,
		progress:  progress,
	}
}

// canTransition valida la máquina de estados: solo avanza y presented es
// terminal
func canTransition(from, to models.PresentationStatus) bool {
	switch from {
	case models.PresentationStatusDraft:
		return to == models.PresentationStatusReady
	case models.PresentationStatusReady:
		return to == models.PresentationStatusPresented
	default:
		return false
	}
}

// Create crea una presentación en borrador
func (s *PresentationService) Create(dto CreatePresentationDTO) (*models.Presentation, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}

	p := &models.Presentation{
		Nombre:    dto.Nombre,
		Subtitulo: dto.Subtitulo,
		Mes:       dto.Mes,
		Anio:      dto.Anio,
		Status:    models.PresentationStatusDraft,
	}
	if err := s.db.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Get devuelve una presentación con sus envíos
func (s *PresentationService) Get(id uuid.UUID) (*models.Presentation, error) {
	var p models.Presentation
	err := s.db.
		Preload("Submissions").
		Preload("Submissions.Goal").
		Preload("Submissions.Goal.User").
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresentacionNoEncontrada
		}
		return nil, err
	}
	return &p, nil
}

// List lista presentaciones, las más recientes primero
func (s *PresentationService) List() ([]models.Presentation, error) {
	var ps []models.Presentation
	err := s.db.Order("anio DESC, mes DESC, created_at DESC").Find(&ps).Error
	return ps, err
}

// Transition avanza el estado de la presentación. Las violaciones se
// devuelven como error de dominio, distinguible de los de validación.
func (s *PresentationService) Transition(id uuid.UUID, to models.PresentationStatus) (*models.Presentation, error) {
	var p models.Presentation
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresentacionNoEncontrada
		}
		return nil, err
	}

	if !canTransition(p.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrEstadoPresentacion, p.Status, to)
	}

	p.Status = to
	if err := s.db.Save(&p).Error; err != nil {
		return nil, err
	}

	if to == models.PresentationStatusPresented {
		go func(nombre string, mes, anio int) {
			if err := s.email.SendPresentationPresented(nombre, mes, anio); err != nil {
				utils.LogError("No se pudo notificar la presentación: %v", err)
			}
		}(p.Nombre, p.Mes, p.Anio)
	}

	return &p, nil
}

// Delete elimina una presentación y sus envíos. Una presentación
// presentada no puede borrarse.
func (s *PresentationService) Delete(id uuid.UUID) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var p models.Presentation
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPresentacionNoEncontrada
		}
		return err
	}

	if p.Status == models.PresentationStatusPresented {
		tx.Rollback()
		return ErrPresentacionCerrada
	}

	if err := tx.Where("presentation_id = ?", id).Delete(&models.GoalSubmission{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&p).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// SubmitGoal registra (o reescribe) el envío de una meta dentro de la
// presentación y, en la misma transacción, reescribe el avance y estado
// de la meta. La desnormalización es deliberada: la meta siempre refleja
// el último valor enviado.
func (s *PresentationService) SubmitGoal(presentationID uuid.UUID, dto SubmitGoalDTO) (*models.GoalSubmission, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	sub, err := s.submitGoalTx(tx, presentationID, dto)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordSubmission(1, nil)
	return sub, nil
}

func (s *PresentationService) submitGoalTx(tx *gorm.DB, presentationID uuid.UUID, dto SubmitGoalDTO) (*models.GoalSubmission, error) {
	var p models.Presentation
	if err := tx.First(&p, "id = ?", presentationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresentacionNoEncontrada
		}
		return nil, err
	}
	if p.Status == models.PresentationStatusPresented {
		return nil, ErrPresentacionCerrada
	}

	var goal models.MonthlyGoal
	if err := tx.First(&goal, "id = ?", dto.GoalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMetaNoEncontrada
		}
		return nil, err
	}

	// Upsert: a lo sumo un envío por (presentación, meta)
	var sub models.GoalSubmission
	err := tx.Where("presentation_id = ? AND goal_id = ?", presentationID, dto.GoalID).First(&sub).Error
	switch {
	case err == nil:
		sub.SubmittedValue = dto.SubmittedValue
		sub.Notas = dto.Notas
		if err := tx.Save(&sub).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.GoalSubmission{
			PresentationID: presentationID,
			GoalID:         dto.GoalID,
			SubmittedValue: dto.SubmittedValue,
			Notas:          dto.Notas,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	// Segundo paso de la misma transacción: la meta absorbe el valor
	// enviado. Último envío gana; no hay token de concurrencia optimista.
	goal.AchievedValue = dto.SubmittedValue
	goal.Status = goalStatusFor(dto.SubmittedValue, goal.TargetValue)
	if err := tx.Save(&goal).Error; err != nil {
		return nil, err
	}

	return &sub, nil
}

// BulkSubmit registra varios envíos en una sola transacción: o entran
// todos o no entra ninguno
func (s *PresentationService) BulkSubmit(presentationID uuid.UUID, dto BulkSubmitDTO) ([]models.GoalSubmission, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	subs := make([]models.GoalSubmission, 0, len(dto.Submissions))
	for _, item := range dto.Submissions {
		sub, err := s.submitGoalTx(tx, presentationID, item)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		subs = append(subs, *sub)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordSubmission(len(subs), nil)
	return subs, nil
}

// deckRows trae las filas planas del deck con el orden que el compositor
// respeta: departamento, área, usuario
func (s *PresentationService) deckRows(presentationID uuid.UUID) ([]FlatRow, error) {
	var rows []FlatRow
	err := s.db.
		Table("goal_submissions").
		Select(`departments.id AS department_id, departments.nombre AS department_name,
			areas.id AS area_id, areas.nombre AS area_name,
			users.id AS user_id, users.nombre || ' ' || users.apellido AS user_name,
			users.imagen AS user_image,
			monthly_goals.descripcion AS goal_description,
			monthly_goals.target_value, monthly_goals.achieved_value,
			goal_submissions.notas AS notes, monthly_goals.status`).
		Joins("JOIN monthly_goals ON monthly_goals.id = goal_submissions.goal_id").
		Joins("JOIN users ON users.id = monthly_goals.user_id").
		Joins("JOIN areas ON areas.id = users.area_id").
		Joins("JOIN departments ON departments.id = areas.department_id").
		Where("goal_submissions.presentation_id = ?", presentationID).
		Order("departments.nombre ASC, areas.nombre ASC, user_name ASC").
		Scan(&rows).Error
	return rows, err
}

// ComposeDeck arma el deck completo de la presentación
func (s *PresentationService) ComposeDeck(presentationID uuid.UUID) ([]Slide, error) {
	var p models.Presentation
	if err := s.db.First(&p, "id = ?", presentationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresentacionNoEncontrada
		}
		return nil, err
	}

	rows, err := s.deckRows(presentationID)
	if err != nil {
		return nil, err
	}

	slides := ComposeSlides(PresentationInfo{
		Nombre:    p.Nombre,
		Subtitulo: p.Subtitulo,
		Fecha:     time.Date(p.Anio, time.Month(p.Mes), 1, 0, 0, 0, 0, time.UTC),
	}, rows)

	utils.GetMetrics().RecordDeck()
	return slides, nil
}

// Summary devuelve los agregados de la presentación (la lámina de cierre)
func (s *PresentationService) Summary(presentationID uuid.UUID) (*DeckSummary, error) {
	slides, err := s.ComposeDeck(presentationID)
	if err != nil {
		return nil, err
	}
	// la última lámina siempre es el resumen
	return slides[len(slides)-1].Summary, nil
}

// ExportXML serializa el deck a XML para las herramientas de oficina
func (s *PresentationService) ExportXML(presentationID uuid.UUID) ([]byte, error) {
	slides, err := s.ComposeDeck(presentationID)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	deck := doc.CreateElement("deck")
	deck.CreateAttr("slides", fmt.Sprintf("%d", len(slides)))

	for _, slide := range slides {
		el := deck.CreateElement("slide")
		el.CreateAttr("type", string(slide.Type))

		switch slide.Type {
		case SlideTypeCover:
			el.CreateElement("title").SetText(slide.Title)
			if slide.Subtitle != "" {
				el.CreateElement("subtitle").SetText(slide.Subtitle)
			}
			el.CreateElement("date").SetText(slide.Date)
		case SlideTypeDepartment:
			el.CreateElement("department").SetText(slide.DepartmentName)
		case SlideTypeEmployees:
			el.CreateElement("area").SetText(slide.AreaName)
			for _, emp := range slide.Employees {
				empEl := el.CreateElement("employee")
				empEl.CreateAttr("name", emp.UserName)
				for _, g := range emp.Goals {
					goalEl := empEl.CreateElement("goal")
					goalEl.CreateAttr("percentage", fmt.Sprintf("%.0f", g.Percentage))
					goalEl.CreateAttr("status", g.Status)
					goalEl.SetText(g.Description)
				}
			}
		case SlideTypeSummary:
			sum := el.CreateElement("summary")
			sum.CreateAttr("total_goals", fmt.Sprintf("%d", slide.Summary.TotalGoals))
			sum.CreateAttr("completed_goals", fmt.Sprintf("%d", slide.Summary.CompletedGoals))
			sum.CreateAttr("average_percentage", fmt.Sprintf("%.2f", slide.Summary.AveragePercentage))
			sum.CreateAttr("departments", fmt.Sprintf("%d", slide.Summary.Departments))
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
