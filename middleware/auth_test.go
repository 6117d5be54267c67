package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gestion/models"
)

var testKey = []byte("clave-de-prueba")

func signedToken(t *testing.T, userID, email, rol string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"rol":     rol,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	userID := uuid.New()
	var gotID uuid.UUID
	var gotRol models.Rol

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = r.Context().Value("user_id").(uuid.UUID)
		gotRol, _ = r.Context().Value("rol").(models.Rol)
	})

	req := httptest.NewRequest("GET", "/api/goals", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, userID.String(), "ana@ejemplo.com", "gerente"))
	rr := httptest.NewRecorder()

	AuthMiddleware(testKey)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, se esperaba 200", rr.Code)
	}
	if gotID != userID {
		t.Errorf("user_id en contexto = %v, se esperaba %v", gotID, userID)
	}
	if gotRol != models.RolGerente {
		t.Errorf("rol en contexto = %v, se esperaba gerente", gotRol)
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("el handler no debería ejecutarse sin token")
	})

	req := httptest.NewRequest("GET", "/api/goals", nil)
	rr := httptest.NewRecorder()

	AuthMiddleware(testKey)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, se esperaba 401", rr.Code)
	}
}

func TestAuthMiddlewareBadSignature(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/goals", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, uuid.NewString(), "x@x.com", "usuario"))
	rr := httptest.NewRecorder()

	otherKey := []byte("otra-clave")
	AuthMiddleware(otherKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, se esperaba 401", rr.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(models.RolAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func(rol models.Rol) *httptest.ResponseRecorder {
		req := httptest.NewRequest("DELETE", "/api/admin/goals/x", nil)
		ctx := context.WithValue(req.Context(), "rol", rol)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))
		return rr
	}

	if rr := request(models.RolAdmin); rr.Code != http.StatusOK {
		t.Errorf("admin: status = %d, se esperaba 200", rr.Code)
	}
	if rr := request(models.RolUsuario); rr.Code != http.StatusForbidden {
		t.Errorf("usuario: status = %d, se esperaba 403", rr.Code)
	}
}
