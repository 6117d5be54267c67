package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditoStatus representa el estado de un crédito
type CreditoStatus string

const (
	CreditoStatusActivo    CreditoStatus = "ACTIVO"
	CreditoStatusPagado    CreditoStatus = "PAGADO"
	CreditoStatusCancelado CreditoStatus = "CANCELADO"
)

// Credito representa un crédito de cartera con su saldo corriente
type Credito struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TitularID    uuid.UUID       `gorm:"column:titular_id;type:uuid;not null;index"`
	Titular      User            `gorm:"foreignKey:TitularID"`
	MontoTotal   decimal.Decimal `gorm:"column:monto_total;type:decimal(12,2);not null"`
	CuotaMensual decimal.Decimal `gorm:"column:cuota_mensual;type:decimal(12,2);not null"`
	// Saldo pendiente del crédito; baja con cada pago a cuota, convenio
	// o capital
	DeudaTotal  decimal.Decimal `gorm:"column:deuda_total;type:decimal(12,2);not null"`
	Status      CreditoStatus   `gorm:"column:status;type:varchar(20);not null;default:'ACTIVO'"`
	Cuotas      []Cuota         `gorm:"foreignKey:CreditoID"`
	Convenio    *ConvenioPago   `gorm:"foreignKey:CreditoID"`
	FechaInicio time.Time       `gorm:"column:fecha_inicio;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Credito) TableName() string {
	return "creditos"
}

// CuotaEstado representa el estado de una cuota
type CuotaEstado string

const (
	CuotaEstadoPendiente CuotaEstado = "PENDIENTE"
	CuotaEstadoAtrasada  CuotaEstado = "ATRASADA"
	CuotaEstadoValidada  CuotaEstado = "VALIDADA"
	CuotaEstadoCapital   CuotaEstado = "CAPITAL"
	// Cuota absorbida por un convenio de pago; sale del plan regular
	CuotaEstadoReinicio CuotaEstado = "REINICIO"
)

// Cuota es una cuota mensual de un crédito
type Cuota struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditoID   uuid.UUID       `gorm:"column:credito_id;type:uuid;not null;index"`
	Credito     Credito         `gorm:"foreignKey:CreditoID"`
	Numero      int             `gorm:"column:numero;not null"`
	Monto       decimal.Decimal `gorm:"column:monto;type:decimal(12,2);not null"`
	MontoPagado decimal.Decimal `gorm:"column:monto_pagado;type:decimal(12,2);not null;default:0"`
	// Mora acumulada al vencer; se recarga una sola vez, al pasar de
	// PENDIENTE a ATRASADA
	Mora             decimal.Decimal `gorm:"column:mora;type:decimal(12,2);not null;default:0"`
	Estado           CuotaEstado     `gorm:"column:estado;type:varchar(20);not null;default:'PENDIENTE'"`
	FechaVencimiento time.Time       `gorm:"column:fecha_vencimiento;not null"`
	FechaPago        *time.Time      `gorm:"column:fecha_pago"`
	CreatedAt        time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Cuota) TableName() string {
	return "cuotas"
}

// ConvenioPago es un plan de reestructuración sobre cuotas atrasadas de
// un crédito, con su propia cuota mensual y contadores de avance
type ConvenioPago struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditoID     uuid.UUID       `gorm:"column:credito_id;type:uuid;not null;index"`
	CuotaMensual  decimal.Decimal `gorm:"column:cuota_mensual;type:decimal(12,2);not null"`
	MontoTotal    decimal.Decimal `gorm:"column:monto_total;type:decimal(12,2);not null"`
	MontoPagado   decimal.Decimal `gorm:"column:monto_pagado;type:decimal(12,2);not null;default:0"`
	CuotasTotales int             `gorm:"column:cuotas_totales;not null"`
	CuotasPagadas int             `gorm:"column:cuotas_pagadas;not null;default:0"`
	Activo        bool            `gorm:"column:activo;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (ConvenioPago) TableName() string {
	return "convenios_pago"
}

// Boleta registra un pago entrante y cómo quedó repartido
type Boleta struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditoID uuid.UUID       `gorm:"column:credito_id;type:uuid;not null;index"`
	Credito   Credito         `gorm:"foreignKey:CreditoID"`
	CuotaID   *uuid.UUID      `gorm:"column:cuota_id;type:uuid;index"`
	Monto     decimal.Decimal `gorm:"column:monto;type:decimal(12,2);not null"`
	// Desglose de la asignación
	AplicadoMora     decimal.Decimal `gorm:"column:aplicado_mora;type:decimal(12,2);not null;default:0"`
	AplicadoConvenio decimal.Decimal `gorm:"column:aplicado_convenio;type:decimal(12,2);not null;default:0"`
	AplicadoCuota    decimal.Decimal `gorm:"column:aplicado_cuota;type:decimal(12,2);not null;default:0"`
	AplicadoCapital  decimal.Decimal `gorm:"column:aplicado_capital;type:decimal(12,2);not null;default:0"`
	AplicadoOtros    decimal.Decimal `gorm:"column:aplicado_otros;type:decimal(12,2);not null;default:0"`
	// Código HMAC que se imprime en el recibo para verificación
	CodigoVerificacion string    `gorm:"column:codigo_verificacion;size:64"`
	RegistradaPor      uuid.UUID `gorm:"column:registrada_por;type:uuid"`
	CreatedAt          time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Boleta) TableName() string {
	return "boletas"
}

// AplicadoADeuda suma lo que la boleta descuenta de la deuda del
// crédito: cuota, convenio y capital. La mora y "otros" no la reducen.
func (b *Boleta) AplicadoADeuda() decimal.Decimal {
	return b.AplicadoCuota.Add(b.AplicadoConvenio).Add(b.AplicadoCapital)
}
