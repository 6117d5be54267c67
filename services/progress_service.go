package services

import (
	"math"

	"gestion/config"
	"gestion/models"
)

// ProgressStatus es el semáforo de avance de una meta
type ProgressStatus string

const (
	ProgressStatusSuccess ProgressStatus = "success"
	ProgressStatusWarning ProgressStatus = "warning"
	ProgressStatusDanger  ProgressStatus = "danger"
)

// ProgressConfig agrupa los umbrales de avance. Los umbrales son cotas
// inferiores inclusivas.
type ProgressConfig struct {
	SuccessThreshold float64
	WarningThreshold float64
}

// DefaultProgressConfig construye los umbrales desde la configuración
func DefaultProgressConfig(cfg *config.Config) ProgressConfig {
	return ProgressConfig{
		SuccessThreshold: cfg.Progress.SuccessThreshold,
		WarningThreshold: cfg.Progress.WarningThreshold,
	}
}

// ProgressResult es el resultado del cálculo de avance
type ProgressResult struct {
	Percentage float64        `json:"percentage"`
	Status     ProgressStatus `json:"status"`
}

// Percentage es el único formateador de porcentajes del sistema:
// achieved/target*100 redondeado a `decimals` decimales, con redondeo de
// mitades alejándose de cero. Las tarjetas de empleados lo usan con 0
// decimales y el semáforo de avance con 2.
//
// Convención para target <= 0: el porcentaje es 0. La creación de metas
// rechaza targets no positivos, así que esto solo aplica a filas legadas.
func Percentage(achieved, target float64, decimals int) float64 {
	if target <= 0 {
		return 0
	}
	return roundTo(achieved/target*100, decimals)
}

// roundTo redondea a n decimales con mitades alejándose de cero
func roundTo(v float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(v*shift) / shift
}

// CalculateProgress calcula el porcentaje de avance y su estado.
// Función pura; no toca la base de datos.
func CalculateProgress(achieved, target float64, cfg ProgressConfig) ProgressResult {
	pct := Percentage(achieved, target, 2)

	status := ProgressStatusDanger
	if pct >= cfg.SuccessThreshold {
		status = ProgressStatusSuccess
	} else if pct >= cfg.WarningThreshold {
		status = ProgressStatusWarning
	}

	return ProgressResult{Percentage: pct, Status: status}
}

// thresholdsFor devuelve los umbrales de la plantilla de la meta, o los
// configurados por defecto si la meta no tiene plantilla
func thresholdsFor(goal *models.MonthlyGoal, fallback ProgressConfig) ProgressConfig {
	if goal.Template != nil {
		return ProgressConfig{
			SuccessThreshold: goal.Template.SuccessThreshold,
			WarningThreshold: goal.Template.WarningThreshold,
		}
	}
	return fallback
}

// goalStatusFor deriva el estado de la meta a partir del valor enviado
func goalStatusFor(achieved, target float64) models.GoalStatus {
	switch {
	case target > 0 && achieved >= target:
		return models.GoalStatusCompleted
	case achieved > 0:
		return models.GoalStatusInProgress
	default:
		return models.GoalStatusPending
	}
}
