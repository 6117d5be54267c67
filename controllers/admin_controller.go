package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gestion/database"
	"gestion/models"
	"gestion/services"
	"gestion/utils"
)

// AdminController agrupa las operaciones de administración
type AdminController struct {
	userService *services.UserService
}

// NewAdminController crea un nuevo AdminController
func NewAdminController(db *database.Database) *AdminController {
	return &AdminController{
		userService: services.NewUserService(db.DB),
	}
}

// GetMetrics devuelve el snapshot de métricas en proceso
func (c *AdminController) GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, utils.GetMetrics().GetMetricsSnapshot())
}

// SetUserRol cambia el rol de un usuario
func (c *AdminController) SetUserRol(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Rol models.Rol `json:"rol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := c.userService.SetRol(id, body.Rol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, c.userService.ToDTO(user))
}
