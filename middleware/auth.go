package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gestion/models"
)

// AuthMiddleware valida el token JWT y carga usuario, email y rol en el
// contexto de la petición
func AuthMiddleware(jwtKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			// Quitamos el prefijo "Bearer " si viene
			if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
				tokenString = tokenString[7:]
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return jwtKey, nil
			})
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			rawID, ok := claims["user_id"].(string)
			if !ok {
				http.Error(w, "Invalid user_id in token", http.StatusUnauthorized)
				return
			}
			userID, err := uuid.Parse(rawID)
			if err != nil {
				http.Error(w, "Invalid user_id in token", http.StatusUnauthorized)
				return
			}

			email, _ := claims["email"].(string)
			rol, _ := claims["rol"].(string)

			r.Header.Set("X-User-ID", userID.String())

			ctx := r.Context()
			ctx = context.WithValue(ctx, "user_id", userID)
			ctx = context.WithValue(ctx, "email", email)
			ctx = context.WithValue(ctx, "rol", models.Rol(rol))
			r = r.WithContext(ctx)

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole deja pasar solo a los roles indicados; protege las
// pantallas de administración
func RequireRole(roles ...models.Rol) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rol, ok := r.Context().Value("rol").(models.Rol)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, allowed := range roles {
				if rol == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "Access denied", http.StatusForbidden)
		})
	}
}

// GetUserFromContext obtiene el usuario autenticado del contexto
func GetUserFromContext(r *http.Request) (uuid.UUID, string, error) {
	userID, ok := r.Context().Value("user_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("user_id not found in context")
	}

	email, ok := r.Context().Value("email").(string)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("email not found in context")
	}

	return userID, email, nil
}
