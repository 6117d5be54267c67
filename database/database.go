package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gestion/config"
	"gestion/models"
)

// Database representa la conexión a la base de datos
type Database struct {
	DB *gorm.DB
}

// NewDatabase abre la conexión, corre las migraciones SQL y la migración
// automática de modelos
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.DBName,
	)

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("error al conectar a la base de datos: %v", err)
	}

	// Pool de conexiones
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error al obtener el pool de conexiones: %v", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("error al ejecutar las migraciones SQL: %v", err)
	}

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("error en la migración automática de modelos: %v", err)
	}

	return &Database{DB: db}, nil
}

// GetDB devuelve la instancia de GORM
func (d *Database) GetDB() *gorm.DB {
	return d.DB
}

// Close cierra la conexión
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// runMigrations ejecuta las migraciones SQL del directorio migrations
func runMigrations(cfg *config.Config) error {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.DBName,
	)

	m, err := migrate.New(
		"file://migrations",
		dsn,
	)
	if err != nil {
		return fmt.Errorf("error al crear la migración: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("error al ejecutar las migraciones: %v", err)
	}

	return nil
}

// autoMigrate migra automáticamente los modelos
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Department{},
		&models.Area{},
		&models.User{},
		&models.GoalTemplate{},
		&models.MonthlyGoal{},
		&models.Presentation{},
		&models.GoalSubmission{},
		&models.Credito{},
		&models.Cuota{},
		&models.ConvenioPago{},
		&models.Boleta{},
	)
	if err != nil {
		return fmt.Errorf("error en la migración automática: %v", err)
	}

	return nil
}
