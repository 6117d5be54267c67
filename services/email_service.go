package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"gestion/config"
)

// EmailService envía las notificaciones por correo
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	// destinatario de los avisos de gestión (presentaciones)
	management string
}

// NewEmailService crea un nuevo EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer:     dialer,
		from:       cfg.SMTP.From,
		management: cfg.SMTP.From,
	}
}

// SendEmail envía un correo
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("error al enviar el correo: %v", err)
	}

	return nil
}

// SendBoletaReceipt envía el recibo de una boleta con su código de
// verificación
func (s *EmailService) SendBoletaReceipt(to string, monto decimal.Decimal, codigo string) error {
	subject := "Recibo de pago"
	body := fmt.Sprintf(`
		<h2>Recibo de pago</h2>
		<p>Monto: %s</p>
		<p>Fecha: %s</p>
		<p>Código de verificación: %s</p>
		<p>Conserve este código para cualquier consulta sobre su pago.</p>
	`, monto.StringFixed(2), time.Now().Format("02/01/2006 15:04:05"), codigo)

	return s.SendEmail(to, subject, body)
}

// SendCuotaVencida avisa al titular que una cuota pasó a mora
func (s *EmailService) SendCuotaVencida(to string, numero int, monto, mora decimal.Decimal) error {
	subject := fmt.Sprintf("Cuota %d vencida", numero)
	body := fmt.Sprintf(`
		<h2>Cuota vencida</h2>
		<p>Su cuota %d por %s venció y generó un recargo de mora de %s.</p>
		<p>Puede regularizarla en cualquier punto de pago o consultar por un convenio de pago.</p>
	`, numero, monto.StringFixed(2), mora.StringFixed(2))

	return s.SendEmail(to, subject, body)
}

// SendPresentationPresented avisa a gestión que la presentación del
// período quedó presentada
func (s *EmailService) SendPresentationPresented(nombre string, mes, anio int) error {
	subject := fmt.Sprintf("Presentación presentada: %s", nombre)
	body := fmt.Sprintf(`
		<h2>Presentación presentada</h2>
		<p>La presentación <b>%s</b> del período %02d/%d quedó marcada como presentada.</p>
		<p>A partir de ahora no admite más envíos de metas.</p>
	`, nombre, mes, anio)

	return s.SendEmail(s.management, subject, body)
}
