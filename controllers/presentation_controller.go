package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gestion/database"
	"gestion/models"
	"gestion/services"
)

// PresentationController maneja presentaciones, envíos y el deck
type PresentationController struct {
	presentationService *services.PresentationService
}

// NewPresentationController crea un nuevo PresentationController
func NewPresentationController(db *database.Database, email *services.EmailService, progress services.ProgressConfig) *PresentationController {
	return &PresentationController{
		presentationService: services.NewPresentationService(db.DB, email, progress),
	}
}

// Create crea una presentación en borrador
func (c *PresentationController) Create(w http.ResponseWriter, r *http.Request) {
	var dto services.CreatePresentationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := c.presentationService.Create(dto)
	if err != nil {
		http.Error(w, err.Error(), statusForPresentationError(err))
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// List lista las presentaciones
func (c *PresentationController) List(w http.ResponseWriter, r *http.Request) {
	ps, err := c.presentationService.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ps)
}

// Get devuelve una presentación con sus envíos
func (c *PresentationController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid presentation ID", http.StatusBadRequest)
		return
	}

	p, err := c.presentationService.Get(id)
	if err != nil {
		http.Error(w, err.Error(), statusForPresentationError(err))
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Transition avanza el estado (body: {"status": "ready"|"presented"})
func (c *PresentationController) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid presentation ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Status models.PresentationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := c.presentationService.Transition(id, body.Status)
	if err != nil {
		http.Error(w, err.Error(), statusForPresentationError(err))
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Delete elimina una presentación no presentada
func (c *PresentationController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid presentation ID", http.StatusBadRequest)
		return
	}

	if err := c.presentationService.Delete(id); err != nil {
		http.Error(w, err.Error(), statusForPresentationError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitGoal registra el envío de una meta
func (c *PresentationController) SubmitGoal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid presentation ID", http.StatusBadRequest)
		return
	}

	var dto services.SubmitGoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := c.presentationService.SubmitGoal(id, dto)
	if err != nil {
		http.Error(w, err.Error(), statusForPresentationError(err))
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// BulkSubmit registra varios envíos de forma atómica
func (c *PresentationController) BulkSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid presentation ID", http.StatusBadRequest)
		return
	}

	var dto services.BulkSubmitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	subs, err := c.presentationService.BulkSubmit(id, dto)
	if err != nil {
		http.Error(w, err.Error(), statusForPresentationError(err))
		return
	}

	writeJSON(w, http.StatusOK, subs)
}

// Deck devuelve las láminas compuestas de la presentación
func (c *PresentationController) Deck(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid presentation ID", http.StatusBadRequest)
		return
	}

	slides, err := c.presentationService.ComposeDeck(id)
	if err != nil {
		http.Error(w, err.Error(), statusForPresentationError(err))
		return
	}

	writeJSON(w, http.StatusOK, slides)
}

// Summary devuelve los agregados del período
func (c *PresentationController) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid presentation ID", http.StatusBadRequest)
		return
	}

	summary, err := c.presentationService.Summary(id)
	if err != nil {
		http.Error(w, err.Error(), statusForPresentationError(err))
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ExportXML devuelve el deck serializado a XML
func (c *PresentationController) ExportXML(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid presentation ID", http.StatusBadRequest)
		return
	}

	data, err := c.presentationService.ExportXML(id)
	if err != nil {
		http.Error(w, err.Error(), statusForPresentationError(err))
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write(data)
}

// statusForPresentationError mapea errores de dominio a códigos HTTP
func statusForPresentationError(err error) int {
	var vErrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErrs):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrPresentacionNoEncontrada),
		errors.Is(err, services.ErrMetaNoEncontrada):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEstadoPresentacion),
		errors.Is(err, services.ErrPresentacionCerrada):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
