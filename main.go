package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gestion/config"
	"gestion/controllers"
	"gestion/database"
	"gestion/middleware"
	"gestion/models"
	"gestion/services"
	"gestion/utils"
)

const rateLimit = 100

func initMoraScheduler(cfg *config.Config, db *database.Database, emailService *services.EmailService) {
	scheduler := services.NewMoraSchedulerService(db.DB, emailService, cfg.Mora.Rate, cfg.Mora.CheckInterval)
	scheduler.Start()
	log.Println("Planificador de mora iniciado")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func main() {
	// Configuración
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Error al cargar la configuración: %v", err)
	}

	// Base de datos
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Error al conectar a la base de datos: %v", err)
	}

	// Servicios compartidos
	emailService := services.NewEmailService(cfg)
	progress := services.DefaultProgressConfig(cfg)

	// Planificador de mora
	initMoraScheduler(cfg, db, emailService)

	// Router
	router := mux.NewRouter()

	// Controladores
	authController := controllers.NewAuthController(db, cfg)
	goalController := controllers.NewGoalController(db, progress)
	presentationController := controllers.NewPresentationController(db, emailService, progress)
	carteraController := controllers.NewCarteraController(db, emailService, cfg)
	adminController := controllers.NewAdminController(db)

	// Middlewares globales
	limiter := utils.NewRateLimiter(rateLimit, time.Minute)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RateLimitMiddleware(limiter, rateLimit))

	router.HandleFunc("/health", healthHandler).Methods("GET")

	// Rutas públicas de autenticación
	router.HandleFunc("/api/auth/signUp", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")

	// Rutas protegidas
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware)

	// Metas mensuales
	protected.HandleFunc("/goals", goalController.CreateGoal).Methods("POST")
	protected.HandleFunc("/goals", goalController.GetGoalsByPeriod).Methods("GET")
	protected.HandleFunc("/goals/bulk", goalController.BulkAssign).Methods("POST")
	protected.HandleFunc("/goals/{id}", goalController.UpdateGoal).Methods("PUT")
	protected.HandleFunc("/users/{id}/goals", goalController.GetGoalsByUser).Methods("GET")
	protected.HandleFunc("/templates", goalController.GetTemplates).Methods("GET")

	// Presentaciones
	protected.HandleFunc("/presentations", presentationController.Create).Methods("POST")
	protected.HandleFunc("/presentations", presentationController.List).Methods("GET")
	protected.HandleFunc("/presentations/{id}", presentationController.Get).Methods("GET")
	protected.HandleFunc("/presentations/{id}", presentationController.Delete).Methods("DELETE")
	protected.HandleFunc("/presentations/{id}/status", presentationController.Transition).Methods("PUT")
	protected.HandleFunc("/presentations/{id}/submissions", presentationController.SubmitGoal).Methods("POST")
	protected.HandleFunc("/presentations/{id}/submissions/bulk", presentationController.BulkSubmit).Methods("POST")
	protected.HandleFunc("/presentations/{id}/deck", presentationController.Deck).Methods("GET")
	protected.HandleFunc("/presentations/{id}/summary", presentationController.Summary).Methods("GET")
	protected.HandleFunc("/presentations/{id}/export.xml", presentationController.ExportXML).Methods("GET")

	// Cartera
	protected.HandleFunc("/creditos", carteraController.CreateCredito).Methods("POST")
	protected.HandleFunc("/creditos/{id}", carteraController.GetCredito).Methods("GET")
	protected.HandleFunc("/titulares/{id}/creditos", carteraController.GetCreditosByTitular).Methods("GET")
	protected.HandleFunc("/creditos/{id}/asignacion", carteraController.PreviewAsignacion).Methods("GET")
	protected.HandleFunc("/creditos/{id}/boletas", carteraController.RegistrarBoleta).Methods("POST")
	protected.HandleFunc("/creditos/{id}/convenios", carteraController.CreateConvenio).Methods("POST")

	// Administración: plantillas, borrado de metas, roles y métricas
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireRole(models.RolAdmin))
	admin.HandleFunc("/templates", goalController.CreateTemplate).Methods("POST")
	admin.HandleFunc("/goals/{id}", goalController.DeleteGoal).Methods("DELETE")
	admin.HandleFunc("/users/{id}/rol", adminController.SetUserRol).Methods("PUT")
	admin.HandleFunc("/metrics", adminController.GetMetrics).Methods("GET")

	// Servidor
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Servidor escuchando en el puerto %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Error al iniciar el servidor: %v", err)
	}
}
