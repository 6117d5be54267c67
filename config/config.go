package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config representa la configuración de la aplicación
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // en horas
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	// Umbrales por defecto para el cálculo de avance de metas.
	// Se pasan explícitamente a los servicios, no se leen como globales.
	Progress struct {
		SuccessThreshold float64
		WarningThreshold float64
	}
	// Parámetros de mora de cartera
	Mora struct {
		Rate          float64 // fracción de la cuota que se recarga al vencer
		CheckInterval int     // en horas
	}
	ReceiptHMACKey string // clave para el código de verificación de boletas
}

// NewConfig crea una nueva instancia de configuración leyendo el entorno
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Valores por defecto
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gestion_db")
	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "your-email@gmail.com")
	v.SetDefault("SMTP_PASSWORD", "your-app-password")
	v.SetDefault("SMTP_FROM", "your-email@gmail.com")
	v.SetDefault("PROGRESS_SUCCESS_THRESHOLD", 80.0)
	v.SetDefault("PROGRESS_WARNING_THRESHOLD", 50.0)
	v.SetDefault("MORA_RATE", 0.05)
	v.SetDefault("MORA_CHECK_INTERVAL", 8)
	v.SetDefault("RECEIPT_HMAC_KEY", "your-receipt-hmac-key-here")

	cfg := &Config{}

	cfg.Server.Port = v.GetInt("SERVER_PORT")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")

	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	cfg.Progress.SuccessThreshold = v.GetFloat64("PROGRESS_SUCCESS_THRESHOLD")
	cfg.Progress.WarningThreshold = v.GetFloat64("PROGRESS_WARNING_THRESHOLD")
	if cfg.Progress.WarningThreshold > cfg.Progress.SuccessThreshold {
		return nil, fmt.Errorf("umbral de advertencia (%.2f) mayor que el de éxito (%.2f)",
			cfg.Progress.WarningThreshold, cfg.Progress.SuccessThreshold)
	}

	cfg.Mora.Rate = v.GetFloat64("MORA_RATE")
	if cfg.Mora.Rate < 0 {
		return nil, fmt.Errorf("tasa de mora inválida: %.4f", cfg.Mora.Rate)
	}
	cfg.Mora.CheckInterval = v.GetInt("MORA_CHECK_INTERVAL")

	cfg.ReceiptHMACKey = v.GetString("RECEIPT_HMAC_KEY")

	return cfg, nil
}
