package services

import "testing"

var defaultThresholds = ProgressConfig{SuccessThreshold: 80, WarningThreshold: 50}

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name       string
		achieved   float64
		target     float64
		percentage float64
		status     ProgressStatus
	}{
		{"exactamente en el umbral de éxito", 80, 100, 80.00, ProgressStatusSuccess},
		{"exactamente en el umbral de advertencia", 50, 100, 50.00, ProgressStatusWarning},
		{"justo debajo de advertencia", 49.99, 100, 49.99, ProgressStatusDanger},
		{"sobrecumplimiento", 150, 100, 150.00, ProgressStatusSuccess},
		{"cero logrado", 0, 100, 0.00, ProgressStatusDanger},
		{"redondeo a dos decimales", 1, 3, 33.33, ProgressStatusDanger},
		// 1/32 da 3.125%: la mitad exacta redondea hacia arriba, no al par
		{"mitad redondea alejándose de cero", 1, 32, 3.13, ProgressStatusDanger},
		{"target cero queda en cero por convención", 50, 0, 0.00, ProgressStatusDanger},
		{"target negativo queda en cero por convención", 50, -10, 0.00, ProgressStatusDanger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateProgress(tt.achieved, tt.target, defaultThresholds)
			if got.Percentage != tt.percentage {
				t.Errorf("porcentaje = %v, se esperaba %v", got.Percentage, tt.percentage)
			}
			if got.Status != tt.status {
				t.Errorf("estado = %v, se esperaba %v", got.Status, tt.status)
			}
		})
	}
}

func TestCalculateProgressMonotonic(t *testing.T) {
	// Con target fijo, el porcentaje no decrece al crecer lo logrado
	prev := -1.0
	for achieved := 0.0; achieved <= 200; achieved += 7.3 {
		got := CalculateProgress(achieved, 120, defaultThresholds)
		if got.Percentage < prev {
			t.Fatalf("porcentaje decreció: %v < %v con achieved=%v", got.Percentage, prev, achieved)
		}
		prev = got.Percentage
	}
}

func TestCalculateProgressCustomThresholds(t *testing.T) {
	cfg := ProgressConfig{SuccessThreshold: 90, WarningThreshold: 70}

	if got := CalculateProgress(85, 100, cfg); got.Status != ProgressStatusWarning {
		t.Errorf("con umbral 90, 85%% debería ser warning, fue %v", got.Status)
	}
	if got := CalculateProgress(90, 100, cfg); got.Status != ProgressStatusSuccess {
		t.Errorf("el umbral es inclusivo, 90%% debería ser success, fue %v", got.Status)
	}
}

func TestPercentageDecimals(t *testing.T) {
	// Misma fórmula, precisión según el sitio de llamada: las tarjetas
	// usan 0 decimales y el semáforo 2
	if got := Percentage(2, 3, 0); got != 67 {
		t.Errorf("con 0 decimales = %v, se esperaba 67", got)
	}
	if got := Percentage(2, 3, 2); got != 66.67 {
		t.Errorf("con 2 decimales = %v, se esperaba 66.67", got)
	}
	if got := Percentage(1, 2, 0); got != 50 {
		t.Errorf("con 0 decimales = %v, se esperaba 50", got)
	}
}
