package controllers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"gestion/config"
	"gestion/database"
	"gestion/services"
)

// AuthController maneja registro e inicio de sesión
type AuthController struct {
	userService *services.UserService
	validate    *validator.Validate
	config      *config.Config
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignUpRequest struct {
	Nombre   string `json:"nombre" validate:"required,min=2,max=50"`
	Apellido string `json:"apellido" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password"`
}

type AuthResponse struct {
	Token string           `json:"token"`
	User  services.UserDTO `json:"user"`
}

// NewAuthController crea un nuevo AuthController
func NewAuthController(db *database.Database, cfg *config.Config) *AuthController {
	validate := validator.New()

	// Validación propia de contraseñas: al menos un dígito, una
	// mayúscula, una minúscula y un símbolo
	validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
		hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
		hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
		hasSpecial := regexp.MustCompile(`[!@#$%^&*]`).MatchString(password)
		return hasNumber && hasUpper && hasLower && hasSpecial
	})

	return &AuthController{
		userService: services.NewUserService(db.DB),
		validate:    validate,
		config:      cfg,
	}
}

// GetJWTKey devuelve la clave de firma configurada
func (c *AuthController) GetJWTKey() string {
	return c.config.JWT.SecretKey
}

// SignUp registra un usuario nuevo
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		http.Error(w, validationErrors.Error(), http.StatusBadRequest)
		return
	}

	user, err := c.userService.CreateUserInternal(services.CreateUserRequest{
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := c.issueToken(user.ID.String(), user.Email, string(user.Rol))
	if err != nil {
		http.Error(w, "Could not issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AuthResponse{
		Token: token,
		User:  c.userService.ToDTO(user),
	})
}

// SignIn inicia sesión y devuelve el token
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		http.Error(w, validationErrors.Error(), http.StatusBadRequest)
		return
	}

	user, err := c.userService.FindByEmail(req.Email)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := c.issueToken(user.ID.String(), user.Email, string(user.Rol))
	if err != nil {
		http.Error(w, "Could not issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Token: token,
		User:  c.userService.ToDTO(user),
	})
}

// issueToken firma un JWT con usuario, email y rol
func (c *AuthController) issueToken(userID, email, rol string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"rol":     rol,
		"exp":     time.Now().Add(time.Duration(c.config.JWT.ExpiresIn) * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.config.JWT.SecretKey))
}
