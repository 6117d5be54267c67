package services

import (
	"testing"

	"gestion/models"
)

func TestMarcarAtrasadaAplicaMoraUnaVez(t *testing.T) {
	s := NewMoraSchedulerService(nil, nil, 0.05, 8)

	cuota := models.Cuota{
		Monto:       dec("1000.00"),
		MontoPagado: dec("200.00"),
		Estado:      models.CuotaEstadoPendiente,
	}

	if !s.marcarAtrasada(&cuota) {
		t.Fatal("una cuota pendiente vencida debe pasar a atrasada")
	}
	if cuota.Estado != models.CuotaEstadoAtrasada {
		t.Errorf("estado = %v, se esperaba ATRASADA", cuota.Estado)
	}
	// 5% sobre el saldo de 800.00
	if !cuota.Mora.Equal(dec("40.00")) {
		t.Errorf("mora = %s, se esperaba 40.00", cuota.Mora)
	}

	// Una segunda corrida no recarga de nuevo
	if s.marcarAtrasada(&cuota) {
		t.Error("una cuota ya atrasada no debe procesarse otra vez")
	}
	if !cuota.Mora.Equal(dec("40.00")) {
		t.Errorf("la mora se recargó dos veces: %s", cuota.Mora)
	}
}

func TestMarcarAtrasadaIgnoraCuotasFueraDelPlan(t *testing.T) {
	s := NewMoraSchedulerService(nil, nil, 0.05, 8)

	for _, estado := range []models.CuotaEstado{
		models.CuotaEstadoValidada,
		models.CuotaEstadoReinicio,
		models.CuotaEstadoCapital,
	} {
		cuota := models.Cuota{Monto: dec("1000.00"), Estado: estado}
		if s.marcarAtrasada(&cuota) {
			t.Errorf("una cuota en %s no debe procesarse", estado)
		}
		if !cuota.Mora.IsZero() {
			t.Errorf("una cuota en %s no debe acumular mora: %s", estado, cuota.Mora)
		}
	}
}
