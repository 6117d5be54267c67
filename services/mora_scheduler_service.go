package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gestion/models"
	"gestion/utils"
)

// MoraSchedulerService marca las cuotas vencidas y les recarga la mora
// configurada. La mora se aplica una sola vez por cuota, en la transición
// PENDIENTE -> ATRASADA.
type MoraSchedulerService struct {
	db       *gorm.DB
	email    *EmailService
	rate     decimal.Decimal
	interval time.Duration
}

// NewMoraSchedulerService crea un nuevo MoraSchedulerService
func NewMoraSchedulerService(db *gorm.DB, email *EmailService, rate float64, intervalHours int) *MoraSchedulerService {
	return &MoraSchedulerService{
		db:       db,
		email:    email,
		rate:     decimal.NewFromFloat(rate),
		interval: time.Duration(intervalHours) * time.Hour,
	}
}

// Start lanza el ciclo del planificador
func (s *MoraSchedulerService) Start() {
	ticker := time.NewTicker(s.interval)
	go func() {
		for range ticker.C {
			if err := s.ProcessOverdue(); err != nil {
				utils.LogError("Error al procesar cuotas vencidas: %v", err)
			}
		}
	}()
}

// ProcessOverdue pasa a ATRASADA toda cuota pendiente ya vencida y le
// recarga la mora. Una corrida por lote, en una transacción.
func (s *MoraSchedulerService) ProcessOverdue() error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var cuotas []models.Cuota
	err := tx.
		Where("estado = ? AND fecha_vencimiento < ?", models.CuotaEstadoPendiente, time.Now()).
		Preload("Credito").
		Preload("Credito.Titular").
		Find(&cuotas).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	for i := range cuotas {
		if err := s.markOverdue(tx, &cuotas[i]); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	// Los avisos van fuera de la transacción
	for i := range cuotas {
		cuota := cuotas[i]
		go func() {
			if err := s.email.SendCuotaVencida(cuota.Credito.Titular.Email, cuota.Numero, cuota.Monto, cuota.Mora); err != nil {
				utils.LogError("No se pudo avisar la cuota vencida %s: %v", cuota.ID, err)
			}
		}()
	}

	if len(cuotas) > 0 {
		utils.LogInfo("Se marcaron %d cuotas como atrasadas", len(cuotas))
	}

	return nil
}

// markOverdue persiste la transición de una cuota vencida
func (s *MoraSchedulerService) markOverdue(tx *gorm.DB, cuota *models.Cuota) error {
	if !s.marcarAtrasada(cuota) {
		return nil
	}
	return tx.Save(cuota).Error
}

// marcarAtrasada aplica la transición PENDIENTE -> ATRASADA y recarga la
// mora sobre el saldo. Devuelve false si la cuota ya no está pendiente:
// la mora se aplica una sola vez por cuota.
func (s *MoraSchedulerService) marcarAtrasada(cuota *models.Cuota) bool {
	if cuota.Estado != models.CuotaEstadoPendiente {
		return false
	}
	cuota.Estado = models.CuotaEstadoAtrasada
	cuota.Mora = cuota.Monto.Sub(cuota.MontoPagado).Mul(s.rate).Round(2)
	return true
}
