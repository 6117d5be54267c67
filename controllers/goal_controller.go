package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gestion/database"
	"gestion/services"
)

// GoalController maneja plantillas y metas mensuales
type GoalController struct {
	goalService *services.GoalService
}

// NewGoalController crea un nuevo GoalController
func NewGoalController(db *database.Database, progress services.ProgressConfig) *GoalController {
	return &GoalController{
		goalService: services.NewGoalService(db.DB, progress),
	}
}

// CreateTemplate crea una plantilla de métrica
func (c *GoalController) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateTemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tpl, err := c.goalService.CreateTemplate(dto)
	if err != nil {
		http.Error(w, err.Error(), statusForGoalError(err))
		return
	}

	writeJSON(w, http.StatusCreated, tpl)
}

// GetTemplates lista las plantillas
func (c *GoalController) GetTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := c.goalService.GetTemplates()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, templates)
}

// CreateGoal crea una meta mensual
func (c *GoalController) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateGoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	goal, err := c.goalService.CreateGoal(dto)
	if err != nil {
		http.Error(w, err.Error(), statusForGoalError(err))
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

// BulkAssign asigna metas en bloque
func (c *GoalController) BulkAssign(w http.ResponseWriter, r *http.Request) {
	var dto services.BulkAssignDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	goals, err := c.goalService.BulkAssign(dto)
	if err != nil {
		http.Error(w, err.Error(), statusForGoalError(err))
		return
	}

	writeJSON(w, http.StatusCreated, goals)
}

// GetGoalsByPeriod lista las metas de un período (?mes=&anio=)
func (c *GoalController) GetGoalsByPeriod(w http.ResponseWriter, r *http.Request) {
	mes, err := strconv.Atoi(r.URL.Query().Get("mes"))
	if err != nil || mes < 1 || mes > 12 {
		http.Error(w, "Invalid mes", http.StatusBadRequest)
		return
	}
	anio, err := strconv.Atoi(r.URL.Query().Get("anio"))
	if err != nil {
		http.Error(w, "Invalid anio", http.StatusBadRequest)
		return
	}

	goals, err := c.goalService.GetGoalsByPeriod(mes, anio)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// GetGoalsByUser lista las metas de un usuario
func (c *GoalController) GetGoalsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	goals, err := c.goalService.GetGoalsByUser(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// UpdateGoal modifica una meta
func (c *GoalController) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	var dto services.UpdateGoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	goal, err := c.goalService.UpdateGoal(goalID, dto)
	if err != nil {
		http.Error(w, err.Error(), statusForGoalError(err))
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// DeleteGoal elimina una meta sin envíos; la ruta está detrás del
// middleware de rol admin
func (c *GoalController) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	if err := c.goalService.DeleteGoal(goalID); err != nil {
		http.Error(w, err.Error(), statusForGoalError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// statusForGoalError mapea errores de dominio a códigos HTTP
func statusForGoalError(err error) int {
	var vErrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErrs):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrMetaNoEncontrada),
		errors.Is(err, services.ErrPlantillaNoEncontrada):
		return http.StatusNotFound
	case errors.Is(err, services.ErrMetaDuplicada),
		errors.Is(err, services.ErrMetaConEnvios):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON serializa la respuesta con el content type correcto
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
