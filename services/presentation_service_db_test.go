package services

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gestion/models"
)

// openTestDB abre una base sqlite en memoria con el esquema mínimo de
// presentaciones. El DDL se escribe a mano porque los defaults de uuid
// del esquema productivo son de postgres; los IDs los genera el hook
// BeforeCreate de cada modelo.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("no se pudo abrir la base de prueba: %v", err)
	}

	ddl := []string{
		`CREATE TABLE presentations (
			id text PRIMARY KEY,
			nombre text NOT NULL,
			subtitulo text,
			mes integer NOT NULL,
			anio integer NOT NULL,
			status text NOT NULL DEFAULT 'draft',
			created_at datetime DEFAULT CURRENT_TIMESTAMP,
			updated_at datetime DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE monthly_goals (
			id text PRIMARY KEY,
			user_id text NOT NULL,
			template_id text,
			mes integer NOT NULL,
			anio integer NOT NULL,
			descripcion text,
			target_value numeric NOT NULL,
			achieved_value numeric NOT NULL DEFAULT 0,
			status text NOT NULL DEFAULT 'pending',
			created_at datetime DEFAULT CURRENT_TIMESTAMP,
			updated_at datetime DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE goal_submissions (
			id text PRIMARY KEY,
			presentation_id text NOT NULL,
			goal_id text NOT NULL,
			submitted_value numeric NOT NULL,
			notas text,
			created_at datetime DEFAULT CURRENT_TIMESTAMP,
			updated_at datetime DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (presentation_id, goal_id)
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("no se pudo crear el esquema de prueba: %v", err)
		}
	}

	return db
}

func crearMetaDePrueba(t *testing.T, db *gorm.DB, target float64) *models.MonthlyGoal {
	t.Helper()

	goal := &models.MonthlyGoal{
		UserID:      uuid.New(),
		Mes:         1,
		Anio:        2025,
		Descripcion: "Ventas",
		TargetValue: target,
		Status:      models.GoalStatusPending,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("no se pudo crear la meta: %v", err)
	}
	return goal
}

func TestBulkSubmitAtomico(t *testing.T) {
	db := openTestDB(t)
	svc := NewPresentationService(db, nil, ProgressConfig{SuccessThreshold: 80, WarningThreshold: 50})

	p, err := svc.Create(CreatePresentationDTO{Nombre: "Metas Enero", Mes: 1, Anio: 2025})
	if err != nil {
		t.Fatalf("no se pudo crear la presentación: %v", err)
	}

	goalA := crearMetaDePrueba(t, db, 100)
	goalB := crearMetaDePrueba(t, db, 100)

	// Un lote con una meta inexistente no deja nada persistido: ni el
	// envío válido que lo precede ni el avance desnormalizado de su meta
	_, err = svc.BulkSubmit(p.ID, BulkSubmitDTO{Submissions: []SubmitGoalDTO{
		{GoalID: goalA.ID, SubmittedValue: 100},
		{GoalID: uuid.New(), SubmittedValue: 50},
	}})
	if !errors.Is(err, ErrMetaNoEncontrada) {
		t.Fatalf("err = %v, se esperaba ErrMetaNoEncontrada", err)
	}

	var count int64
	if err := db.Model(&models.GoalSubmission{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("el lote fallido no debe dejar envíos, hay %d", count)
	}

	var recargada models.MonthlyGoal
	if err := db.First(&recargada, "id = ?", goalA.ID).Error; err != nil {
		t.Fatal(err)
	}
	if recargada.AchievedValue != 0 || recargada.Status != models.GoalStatusPending {
		t.Errorf("la meta del envío válido no debe cambiar: avance=%v estado=%s",
			recargada.AchievedValue, recargada.Status)
	}

	// El mismo lote corregido entra completo
	subs, err := svc.BulkSubmit(p.ID, BulkSubmitDTO{Submissions: []SubmitGoalDTO{
		{GoalID: goalA.ID, SubmittedValue: 100},
		{GoalID: goalB.ID, SubmittedValue: 50},
	}})
	if err != nil {
		t.Fatalf("el lote válido falló: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("se esperaban 2 envíos, hay %d", len(subs))
	}

	if err := db.First(&recargada, "id = ?", goalA.ID).Error; err != nil {
		t.Fatal(err)
	}
	if recargada.AchievedValue != 100 || recargada.Status != models.GoalStatusCompleted {
		t.Errorf("la meta debe absorber el envío: avance=%v estado=%s",
			recargada.AchievedValue, recargada.Status)
	}
}
