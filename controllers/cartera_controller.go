package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"gestion/config"
	"gestion/database"
	"gestion/middleware"
	"gestion/services"
)

// CarteraController maneja créditos, convenios y boletas
type CarteraController struct {
	carteraService *services.CarteraService
}

// NewCarteraController crea un nuevo CarteraController
func NewCarteraController(db *database.Database, email *services.EmailService, cfg *config.Config) *CarteraController {
	return &CarteraController{
		carteraService: services.NewCarteraService(db.DB, email, []byte(cfg.ReceiptHMACKey)),
	}
}

// CreateCredito crea un crédito con su plan de cuotas
func (c *CarteraController) CreateCredito(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateCreditoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	credito, err := c.carteraService.CreateCredito(dto)
	if err != nil {
		http.Error(w, err.Error(), statusForCarteraError(err))
		return
	}

	writeJSON(w, http.StatusCreated, credito)
}

// GetCredito devuelve un crédito con cuotas y convenio
func (c *CarteraController) GetCredito(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid credito ID", http.StatusBadRequest)
		return
	}

	credito, err := c.carteraService.GetCredito(id)
	if err != nil {
		http.Error(w, err.Error(), statusForCarteraError(err))
		return
	}

	writeJSON(w, http.StatusOK, credito)
}

// GetCreditosByTitular lista los créditos de un titular
func (c *CarteraController) GetCreditosByTitular(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid titular ID", http.StatusBadRequest)
		return
	}

	creditos, err := c.carteraService.GetCreditosByTitular(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, creditos)
}

// PreviewAsignacion calcula el desglose de un pago sin aplicarlo; la
// pantalla de caja decide con esto si abre un modal (?monto=)
func (c *CarteraController) PreviewAsignacion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid credito ID", http.StatusBadRequest)
		return
	}

	monto, err := decimal.NewFromString(r.URL.Query().Get("monto"))
	if err != nil || monto.LessThanOrEqual(decimal.Zero) {
		http.Error(w, "Invalid monto", http.StatusBadRequest)
		return
	}

	res, err := c.carteraService.PreviewAsignacion(id, monto)
	if err != nil {
		http.Error(w, err.Error(), statusForCarteraError(err))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// RegistrarBoleta aplica un pago al crédito
func (c *CarteraController) RegistrarBoleta(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid credito ID", http.StatusBadRequest)
		return
	}

	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto services.RegistrarBoletaDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	dto.CreditoID = id
	dto.RegistradaPor = userID

	boleta, err := c.carteraService.RegistrarBoleta(dto)
	if err != nil {
		http.Error(w, err.Error(), statusForCarteraError(err))
		return
	}

	writeJSON(w, http.StatusCreated, boleta)
}

// CreateConvenio reestructura cuotas atrasadas en un convenio de pago
func (c *CarteraController) CreateConvenio(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid credito ID", http.StatusBadRequest)
		return
	}

	var dto services.CreateConvenioDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	dto.CreditoID = id

	convenio, err := c.carteraService.CreateConvenio(dto)
	if err != nil {
		http.Error(w, err.Error(), statusForCarteraError(err))
		return
	}

	writeJSON(w, http.StatusCreated, convenio)
}

// statusForCarteraError mapea errores de dominio a códigos HTTP
func statusForCarteraError(err error) int {
	var vErrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErrs):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrCreditoNoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDestinoRequerido),
		errors.Is(err, services.ErrDestinoInvalido),
		errors.Is(err, services.ErrConvenioActivo),
		errors.Is(err, services.ErrCuotasNoAtrasadas):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
