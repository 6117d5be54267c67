package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gestion/models"
	"gestion/utils"
)

// Errores de dominio de cartera
var (
	ErrCreditoNoEncontrado = errors.New("crédito no encontrado")
	ErrDestinoRequerido    = errors.New("el pago requiere elegir destino para el excedente")
	ErrDestinoInvalido     = errors.New("destino de excedente inválido para este pago")
	ErrConvenioActivo      = errors.New("el crédito ya tiene un convenio activo")
	ErrCuotasNoAtrasadas   = errors.New("el convenio solo puede cubrir cuotas atrasadas")
)

// ModalMode indica qué decisión debe tomar el usuario antes de aplicar
// el pago
type ModalMode string

const (
	// el pago se aplica directo, sin intervención
	ModalModeNone ModalMode = ""
	// el pago supera lo adeudado; hay que elegir destino del excedente
	ModalModeExcedente ModalMode = "excedente"
	// la cuota vigente ya estaba pagada; hay que elegir destino del total
	ModalModePagada ModalMode = "pagada"
)

// DestinoExcedente es el destino elegible para un excedente
type DestinoExcedente string

const (
	DestinoCapital   DestinoExcedente = "capital"
	DestinoSiguiente DestinoExcedente = "siguiente"
	DestinoOtros     DestinoExcedente = "otros"
)

// AllocationInput son los montos que participan de la decisión de
// asignación de un pago
type AllocationInput struct {
	MontoBoleta    decimal.Decimal
	CuotaActual    decimal.Decimal
	CuotaPagada    bool
	ConvenioActivo bool
	CuotaConvenio  decimal.Decimal
	Mora           decimal.Decimal
}

// AllocationResult es el desglose decidido para un pago
type AllocationResult struct {
	Mora      decimal.Decimal `json:"mora"`
	Convenio  decimal.Decimal `json:"convenio"`
	Cuota     decimal.Decimal `json:"cuota"`
	Otros     decimal.Decimal `json:"otros"`
	Excedente decimal.Decimal `json:"excedente"`
	TotalDue  decimal.Decimal `json:"total_adeudado"`
	Modal     ModalMode       `json:"modal,omitempty"`
	// Destinos elegibles cuando Modal != ""
	Opciones []DestinoExcedente `json:"opciones,omitempty"`
}

// AllocatePago decide cómo repartir un pago entrante. Función pura.
//
// El total adeudado es cuota vigente + cuota de convenio (si hay convenio
// activo) + mora. La prioridad de asignación es mora, convenio, cuota.
// La frontera excedente/exacto está centralizada acá: estrictamente mayor
// al total adeudado abre el modal de excedente; la igualdad exacta es
// liquidación completa sin modal. Si la cuota vigente ya estaba pagada,
// el modal ofrece solo capital o cuota siguiente para el monto completo.
func AllocatePago(in AllocationInput) AllocationResult {
	if in.CuotaPagada {
		return AllocationResult{
			Excedente: in.MontoBoleta,
			Modal:     ModalModePagada,
			Opciones:  []DestinoExcedente{DestinoCapital, DestinoSiguiente},
		}
	}

	totalDue := in.CuotaActual.Add(in.Mora)
	if in.ConvenioActivo {
		totalDue = totalDue.Add(in.CuotaConvenio)
	}

	res := AllocationResult{TotalDue: totalDue}

	if in.MontoBoleta.GreaterThan(totalDue) {
		res.Mora = in.Mora
		res.Cuota = in.CuotaActual
		if in.ConvenioActivo {
			res.Convenio = in.CuotaConvenio
		}
		res.Excedente = in.MontoBoleta.Sub(totalDue)
		res.Modal = ModalModeExcedente
		res.Opciones = []DestinoExcedente{DestinoCapital, DestinoSiguiente, DestinoOtros}
		return res
	}

	// Pago exacto o parcial: se asigna en orden de prioridad, sin modal
	restante := in.MontoBoleta

	res.Mora = decimal.Min(restante, in.Mora)
	restante = restante.Sub(res.Mora)

	if in.ConvenioActivo {
		res.Convenio = decimal.Min(restante, in.CuotaConvenio)
		restante = restante.Sub(res.Convenio)
	}

	res.Cuota = decimal.Min(restante, in.CuotaActual)
	restante = restante.Sub(res.Cuota)

	// Con monto <= total adeudado esto solo puede ser cero, pero el
	// remanente declarado va a "otros"
	res.Otros = restante

	return res
}

// DTOs de cartera

type CreateCreditoDTO struct {
	TitularID    uuid.UUID       `json:"titular_id" validate:"required"`
	MontoTotal   decimal.Decimal `json:"monto_total" validate:"required"`
	CuotaMensual decimal.Decimal `json:"cuota_mensual" validate:"required"`
	NumCuotas    int             `json:"num_cuotas" validate:"required,gt=0"`
}

type CreateConvenioDTO struct {
	CreditoID    uuid.UUID       `json:"-"`
	CuotaIDs     []uuid.UUID     `json:"cuota_ids" validate:"required,min=1"`
	CuotaMensual decimal.Decimal `json:"cuota_mensual" validate:"required"`
	NumCuotas    int             `json:"num_cuotas" validate:"required,gt=0"`
}

type RegistrarBoletaDTO struct {
	CreditoID     uuid.UUID        `json:"-"`
	RegistradaPor uuid.UUID        `json:"-"`
	Monto         decimal.Decimal  `json:"monto" validate:"required"`
	Destino       DestinoExcedente `json:"destino,omitempty" validate:"omitempty,oneof=capital siguiente otros"`
}

type BoletaResponseDTO struct {
	ID                 uuid.UUID        `json:"id"`
	CreditoID          uuid.UUID        `json:"credito_id"`
	Monto              decimal.Decimal  `json:"monto"`
	Asignacion         AllocationResult `json:"asignacion"`
	DeudaTotal         decimal.Decimal  `json:"deuda_total"`
	CodigoVerificacion string           `json:"codigo_verificacion"`
}

// CarteraService maneja créditos, cuotas, convenios y boletas
type CarteraService struct {
	db             *gorm.DB
	validator      *validator.Validate
	email          *EmailService
	receiptHMACKey []byte
}

// NewCarteraService crea un nuevo CarteraService
func NewCarteraService(db *gorm.DB, email *EmailService, receiptHMACKey []byte) *CarteraService {
	return &CarteraService{
		db:             db,
		validator:      validator.New(),
		email:          email,
		receiptHMACKey: receiptHMACKey,
	}
}

// CreateCredito crea un crédito con su plan de cuotas mensuales
func (s *CarteraService) CreateCredito(dto CreateCreditoDTO) (*models.Credito, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}
	if dto.MontoTotal.LessThanOrEqual(decimal.Zero) || dto.CuotaMensual.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("los montos del crédito deben ser mayores a 0")
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var titular models.User
	if err := tx.First(&titular, "id = ?", dto.TitularID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("titular no encontrado")
		}
		return nil, err
	}

	inicio := time.Now()
	credito := &models.Credito{
		TitularID:    dto.TitularID,
		MontoTotal:   dto.MontoTotal,
		CuotaMensual: dto.CuotaMensual,
		DeudaTotal:   dto.MontoTotal,
		Status:       models.CreditoStatusActivo,
		FechaInicio:  inicio,
	}
	if err := tx.Create(credito).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// Generamos el plan de cuotas mensuales
	for i := 0; i < dto.NumCuotas; i++ {
		cuota := models.Cuota{
			CreditoID:        credito.ID,
			Numero:           i + 1,
			Monto:            dto.CuotaMensual,
			MontoPagado:      decimal.Zero,
			Mora:             decimal.Zero,
			Estado:           models.CuotaEstadoPendiente,
			FechaVencimiento: inicio.AddDate(0, i+1, 0),
		}
		if err := tx.Create(&cuota).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetCredito(credito.ID)
}

// GetCredito devuelve un crédito con sus cuotas y convenio
func (s *CarteraService) GetCredito(id uuid.UUID) (*models.Credito, error) {
	var credito models.Credito
	err := s.db.
		Preload("Titular").
		Preload("Cuotas", func(db *gorm.DB) *gorm.DB {
			return db.Order("numero ASC")
		}).
		Preload("Convenio").
		First(&credito, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreditoNoEncontrado
		}
		return nil, err
	}
	return &credito, nil
}

// GetCreditosByTitular lista los créditos de un titular
func (s *CarteraService) GetCreditosByTitular(titularID uuid.UUID) ([]models.Credito, error) {
	var creditos []models.Credito
	err := s.db.
		Preload("Cuotas", func(db *gorm.DB) *gorm.DB {
			return db.Order("numero ASC")
		}).
		Preload("Convenio").
		Where("titular_id = ?", titularID).
		Order("created_at DESC").
		Find(&creditos).Error
	return creditos, err
}

// cuotaVigente devuelve la primera cuota no liquidada del crédito, en
// orden de numeración. Las cuotas en REINICIO quedan fuera del plan.
func cuotaVigente(cuotas []models.Cuota) *models.Cuota {
	for i := range cuotas {
		switch cuotas[i].Estado {
		case models.CuotaEstadoPendiente, models.CuotaEstadoAtrasada:
			return &cuotas[i]
		}
	}
	return nil
}

// siguienteCuota devuelve la cuota posterior a la vigente
func siguienteCuota(cuotas []models.Cuota, vigente *models.Cuota) *models.Cuota {
	for i := range cuotas {
		switch cuotas[i].Estado {
		case models.CuotaEstadoPendiente, models.CuotaEstadoAtrasada:
			if cuotas[i].Numero > vigente.Numero {
				return &cuotas[i]
			}
		}
	}
	return nil
}

// PreviewAsignacion calcula el desglose de un pago sin aplicarlo; es lo
// que la pantalla de caja consulta para decidir si abre un modal
func (s *CarteraService) PreviewAsignacion(creditoID uuid.UUID, monto decimal.Decimal) (*AllocationResult, error) {
	credito, err := s.GetCredito(creditoID)
	if err != nil {
		return nil, err
	}

	in, err := allocationInputFor(credito, monto)
	if err != nil {
		return nil, err
	}

	res := AllocatePago(*in)
	return &res, nil
}

// allocationInputFor arma la entrada del asignador desde el estado del
// crédito
func allocationInputFor(credito *models.Credito, monto decimal.Decimal) (*AllocationInput, error) {
	vigente := cuotaVigente(credito.Cuotas)

	in := &AllocationInput{MontoBoleta: monto}

	if vigente == nil {
		// Sin cuota por cobrar: el plan está al día, mismo tratamiento
		// que una cuota ya pagada
		in.CuotaPagada = true
		return in, nil
	}

	in.CuotaActual = vigente.Monto.Sub(vigente.MontoPagado)
	in.Mora = vigente.Mora

	if credito.Convenio != nil && credito.Convenio.Activo {
		in.ConvenioActivo = true
		in.CuotaConvenio = credito.Convenio.CuotaMensual
	}

	return in, nil
}

// RegistrarBoleta aplica un pago al crédito en una transacción. Si la
// asignación requiere decisión (modal), el DTO debe traer el destino
// elegido; si no lo trae la operación se rechaza sin escribir nada.
func (s *CarteraService) RegistrarBoleta(dto RegistrarBoletaDTO) (*BoletaResponseDTO, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}
	if dto.Monto.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("el monto de la boleta debe ser mayor a 0")
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var credito models.Credito
	err := tx.
		Preload("Titular").
		Preload("Cuotas", func(db *gorm.DB) *gorm.DB {
			return db.Order("numero ASC")
		}).
		Preload("Convenio").
		First(&credito, "id = ?", dto.CreditoID).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreditoNoEncontrado
		}
		return nil, err
	}

	in, err := allocationInputFor(&credito, dto.Monto)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	res := AllocatePago(*in)

	if res.Modal != ModalModeNone {
		if dto.Destino == "" {
			tx.Rollback()
			return nil, ErrDestinoRequerido
		}
		if !destinoPermitido(res.Opciones, dto.Destino) {
			tx.Rollback()
			return nil, ErrDestinoInvalido
		}
	}

	boleta := models.Boleta{
		CreditoID:        credito.ID,
		Monto:            dto.Monto,
		AplicadoMora:     res.Mora,
		AplicadoConvenio: res.Convenio,
		AplicadoCuota:    res.Cuota,
		AplicadoCapital:  decimal.Zero,
		AplicadoOtros:    res.Otros,
		RegistradaPor:    dto.RegistradaPor,
	}

	vigente := cuotaVigente(credito.Cuotas)

	// Aplicamos el desglose base sobre la cuota vigente
	if vigente != nil {
		if res.Mora.IsPositive() {
			vigente.Mora = vigente.Mora.Sub(res.Mora)
		}
		if res.Cuota.IsPositive() {
			vigente.MontoPagado = vigente.MontoPagado.Add(res.Cuota)
		}
		if vigente.MontoPagado.GreaterThanOrEqual(vigente.Monto) && vigente.Mora.LessThanOrEqual(decimal.Zero) {
			now := time.Now()
			vigente.Estado = models.CuotaEstadoValidada
			vigente.FechaPago = &now
		}
		boleta.CuotaID = &vigente.ID
		if err := tx.Save(vigente).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Avance del convenio
	if res.Convenio.IsPositive() && credito.Convenio != nil {
		avanzarConvenio(credito.Convenio, res.Convenio)
		if err := tx.Save(credito.Convenio).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Destino elegido para el excedente (o el monto completo en el caso
	// de cuota ya pagada)
	if res.Modal != ModalModeNone && res.Excedente.IsPositive() {
		objetivo, err := aplicarExcedente(&credito, &boleta, res.Excedente, dto.Destino, vigente)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if objetivo != nil {
			if err := tx.Save(objetivo).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	// La deuda baja por lo efectivamente aplicado a cuota, convenio y
	// capital, incluido un excedente derivado a la cuota siguiente
	credito.DeudaTotal = credito.DeudaTotal.Sub(boleta.AplicadoADeuda())
	if credito.DeudaTotal.LessThanOrEqual(decimal.Zero) {
		credito.DeudaTotal = decimal.Zero
		credito.Status = models.CreditoStatusPagado
	}
	if err := tx.Save(&credito).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	boleta.CodigoVerificacion = utils.GenerateHMAC(
		fmt.Sprintf("%s|%s|%d", credito.ID, dto.Monto.StringFixed(2), time.Now().Unix()),
		s.receiptHMACKey,
	)
	if err := tx.Create(&boleta).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordBoleta(nil)

	// El recibo por correo no bloquea el registro del pago
	go func(email string, monto decimal.Decimal, codigo string) {
		if err := s.email.SendBoletaReceipt(email, monto, codigo); err != nil {
			utils.LogError("No se pudo enviar el recibo de boleta: %v", err)
		}
	}(credito.Titular.Email, dto.Monto, boleta.CodigoVerificacion)

	return &BoletaResponseDTO{
		ID:                 boleta.ID,
		CreditoID:          credito.ID,
		Monto:              dto.Monto,
		Asignacion:         res,
		DeudaTotal:         credito.DeudaTotal,
		CodigoVerificacion: boleta.CodigoVerificacion,
	}, nil
}

// avanzarConvenio acumula un pago sobre el convenio. Las cuotas pagadas
// se derivan del acumulado, así dos pagos parciales que juntos cubren
// una cuota también avanzan el contador; el convenio se cierra al
// completar sus cuotas o su monto total.
func avanzarConvenio(conv *models.ConvenioPago, pago decimal.Decimal) {
	conv.MontoPagado = conv.MontoPagado.Add(pago)

	if conv.CuotaMensual.IsPositive() {
		pagadas := int(conv.MontoPagado.Div(conv.CuotaMensual).IntPart())
		if pagadas > conv.CuotasTotales {
			pagadas = conv.CuotasTotales
		}
		conv.CuotasPagadas = pagadas
	}

	if conv.CuotasPagadas >= conv.CuotasTotales || conv.MontoPagado.GreaterThanOrEqual(conv.MontoTotal) {
		conv.Activo = false
	}
}

// aplicarExcedente ejecuta el destino elegido sobre los modelos en
// memoria y devuelve la cuota que haya que persistir, si la hay
func aplicarExcedente(credito *models.Credito, boleta *models.Boleta, excedente decimal.Decimal, destino DestinoExcedente, vigente *models.Cuota) (*models.Cuota, error) {
	switch destino {
	case DestinoCapital:
		boleta.AplicadoCapital = excedente
		return nil, nil
	case DestinoSiguiente:
		var objetivo *models.Cuota
		if vigente != nil {
			objetivo = siguienteCuota(credito.Cuotas, vigente)
		} else {
			objetivo = cuotaVigente(credito.Cuotas)
		}
		if objetivo == nil {
			// No queda cuota futura: el excedente se retiene en otros
			boleta.AplicadoOtros = boleta.AplicadoOtros.Add(excedente)
			return nil, nil
		}
		objetivo.MontoPagado = objetivo.MontoPagado.Add(excedente)
		if objetivo.MontoPagado.GreaterThanOrEqual(objetivo.Monto) {
			now := time.Now()
			objetivo.Estado = models.CuotaEstadoValidada
			objetivo.FechaPago = &now
		}
		boleta.AplicadoCuota = boleta.AplicadoCuota.Add(excedente)
		return objetivo, nil
	case DestinoOtros:
		boleta.AplicadoOtros = boleta.AplicadoOtros.Add(excedente)
		return nil, nil
	default:
		return nil, ErrDestinoInvalido
	}
}

func destinoPermitido(opciones []DestinoExcedente, destino DestinoExcedente) bool {
	for _, o := range opciones {
		if o == destino {
			return true
		}
	}
	return false
}

// CreateConvenio reestructura cuotas atrasadas en un convenio de pago
func (s *CarteraService) CreateConvenio(dto CreateConvenioDTO) (*models.ConvenioPago, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var credito models.Credito
	if err := tx.Preload("Convenio").First(&credito, "id = ?", dto.CreditoID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreditoNoEncontrado
		}
		return nil, err
	}

	if credito.Convenio != nil && credito.Convenio.Activo {
		tx.Rollback()
		return nil, ErrConvenioActivo
	}

	var cuotas []models.Cuota
	if err := tx.Where("id IN ? AND credito_id = ?", dto.CuotaIDs, dto.CreditoID).Find(&cuotas).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(cuotas) != len(dto.CuotaIDs) {
		tx.Rollback()
		return nil, errors.New("alguna cuota indicada no pertenece al crédito")
	}

	total := decimal.Zero
	for i := range cuotas {
		if cuotas[i].Estado != models.CuotaEstadoAtrasada {
			tx.Rollback()
			return nil, ErrCuotasNoAtrasadas
		}
		total = total.Add(cuotas[i].Monto.Sub(cuotas[i].MontoPagado)).Add(cuotas[i].Mora)
	}

	// Las cuotas absorbidas salen del plan regular
	for i := range cuotas {
		cuotas[i].Estado = models.CuotaEstadoReinicio
		if err := tx.Save(&cuotas[i]).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	convenio := &models.ConvenioPago{
		CreditoID:     dto.CreditoID,
		CuotaMensual:  dto.CuotaMensual,
		MontoTotal:    total,
		MontoPagado:   decimal.Zero,
		CuotasTotales: dto.NumCuotas,
		CuotasPagadas: 0,
		Activo:        true,
	}
	if err := tx.Create(convenio).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return convenio, nil
}
