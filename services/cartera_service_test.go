package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"gestion/models"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAllocatePagoExacto(t *testing.T) {
	// cuota + mora exactos: liquidación completa, sin modal
	res := AllocatePago(AllocationInput{
		MontoBoleta: dec("1100.00"),
		CuotaActual: dec("1000.00"),
		Mora:        dec("100.00"),
	})

	if res.Modal != ModalModeNone {
		t.Errorf("pago exacto no debe abrir modal, abrió %q", res.Modal)
	}
	if !res.Mora.Equal(dec("100.00")) {
		t.Errorf("aplicado a mora = %s, se esperaba 100.00", res.Mora)
	}
	if !res.Cuota.Equal(dec("1000.00")) {
		t.Errorf("aplicado a cuota = %s, se esperaba 1000.00", res.Cuota)
	}
	if !res.Excedente.IsZero() {
		t.Errorf("excedente = %s, se esperaba 0", res.Excedente)
	}
}

func TestAllocatePagoExcedente(t *testing.T) {
	res := AllocatePago(AllocationInput{
		MontoBoleta: dec("1150.00"),
		CuotaActual: dec("1000.00"),
		Mora:        dec("100.00"),
	})

	if res.Modal != ModalModeExcedente {
		t.Fatalf("modal = %q, se esperaba excedente", res.Modal)
	}
	if !res.Excedente.Equal(dec("50.00")) {
		t.Errorf("excedente = %s, se esperaba 50.00", res.Excedente)
	}

	// El excedente ofrece capital, siguiente y otros
	want := []DestinoExcedente{DestinoCapital, DestinoSiguiente, DestinoOtros}
	if len(res.Opciones) != len(want) {
		t.Fatalf("opciones = %v", res.Opciones)
	}
	for i, o := range want {
		if res.Opciones[i] != o {
			t.Errorf("opción %d = %q, se esperaba %q", i, res.Opciones[i], o)
		}
	}
}

func TestAllocatePagoParcial(t *testing.T) {
	// Pago insuficiente: prioridad mora, convenio, cuota; sin modal
	res := AllocatePago(AllocationInput{
		MontoBoleta:    dec("600.00"),
		CuotaActual:    dec("1000.00"),
		Mora:           dec("100.00"),
		ConvenioActivo: true,
		CuotaConvenio:  dec("400.00"),
	})

	if res.Modal != ModalModeNone {
		t.Errorf("pago parcial no debe abrir modal, abrió %q", res.Modal)
	}
	if !res.Mora.Equal(dec("100.00")) {
		t.Errorf("la mora se cubre primero: %s", res.Mora)
	}
	if !res.Convenio.Equal(dec("400.00")) {
		t.Errorf("el convenio va segundo: %s", res.Convenio)
	}
	if !res.Cuota.Equal(dec("100.00")) {
		t.Errorf("el resto va a la cuota: %s", res.Cuota)
	}
	if !res.Otros.IsZero() {
		t.Errorf("otros = %s, se esperaba 0", res.Otros)
	}
	if !res.Excedente.IsZero() {
		t.Errorf("excedente = %s, se esperaba 0", res.Excedente)
	}
}

func TestAllocatePagoConvenioEnTotal(t *testing.T) {
	// Con convenio activo el total adeudado lo incluye
	res := AllocatePago(AllocationInput{
		MontoBoleta:    dec("1500.00"),
		CuotaActual:    dec("1000.00"),
		Mora:           dec("100.00"),
		ConvenioActivo: true,
		CuotaConvenio:  dec("400.00"),
	})

	if !res.TotalDue.Equal(dec("1500.00")) {
		t.Errorf("total adeudado = %s, se esperaba 1500.00", res.TotalDue)
	}
	if res.Modal != ModalModeNone {
		t.Errorf("igualdad exacta no abre modal, abrió %q", res.Modal)
	}
}

func TestAllocatePagoFronteraEstricta(t *testing.T) {
	// La frontera es estrictamente mayor: un centavo por encima abre modal
	base := AllocationInput{
		CuotaActual: dec("1000.00"),
		Mora:        dec("0.00"),
	}

	base.MontoBoleta = dec("1000.00")
	if res := AllocatePago(base); res.Modal != ModalModeNone {
		t.Errorf("monto igual al adeudado no abre modal, abrió %q", res.Modal)
	}

	base.MontoBoleta = dec("1000.01")
	if res := AllocatePago(base); res.Modal != ModalModeExcedente {
		t.Errorf("un centavo de más debe abrir modal, fue %q", res.Modal)
	}
}

func TestAllocatePagoCuotaPagada(t *testing.T) {
	// Cuota vigente ya pagada: modal pagada sea cual sea el monto
	for _, monto := range []string{"1.00", "1000.00", "99999.99"} {
		res := AllocatePago(AllocationInput{
			MontoBoleta: dec(monto),
			CuotaPagada: true,
		})

		if res.Modal != ModalModePagada {
			t.Errorf("monto %s: modal = %q, se esperaba pagada", monto, res.Modal)
		}
		if !res.Excedente.Equal(dec(monto)) {
			t.Errorf("monto %s: excedente = %s, debe ser el monto completo", monto, res.Excedente)
		}

		// Solo capital y siguiente; otros no es destino válido acá
		want := []DestinoExcedente{DestinoCapital, DestinoSiguiente}
		if len(res.Opciones) != len(want) {
			t.Fatalf("opciones = %v", res.Opciones)
		}
		for i, o := range want {
			if res.Opciones[i] != o {
				t.Errorf("opción %d = %q, se esperaba %q", i, res.Opciones[i], o)
			}
		}
	}
}

func TestDestinoPermitido(t *testing.T) {
	opciones := []DestinoExcedente{DestinoCapital, DestinoSiguiente}

	if !destinoPermitido(opciones, DestinoCapital) {
		t.Error("capital debería estar permitido")
	}
	if destinoPermitido(opciones, DestinoOtros) {
		t.Error("otros no debería estar permitido")
	}
}

func TestAvanzarConvenioPagosParciales(t *testing.T) {
	conv := &models.ConvenioPago{
		CuotaMensual:  dec("400.00"),
		MontoTotal:    dec("800.00"),
		MontoPagado:   decimal.Zero,
		CuotasTotales: 2,
		Activo:        true,
	}

	avanzarConvenio(conv, dec("200.00"))
	if conv.CuotasPagadas != 0 {
		t.Errorf("medio pago no completa cuota: pagadas = %d", conv.CuotasPagadas)
	}

	// Dos pagos parciales que juntos cubren la cuota avanzan el contador
	avanzarConvenio(conv, dec("200.00"))
	if conv.CuotasPagadas != 1 {
		t.Errorf("dos parciales cubren una cuota: pagadas = %d", conv.CuotasPagadas)
	}
	if !conv.Activo {
		t.Error("el convenio sigue activo con cuotas pendientes")
	}

	avanzarConvenio(conv, dec("400.00"))
	if conv.CuotasPagadas != 2 {
		t.Errorf("pagadas = %d, se esperaban 2", conv.CuotasPagadas)
	}
	if conv.Activo {
		t.Error("el convenio completo debe desactivarse")
	}
}

func TestAvanzarConvenioCierraPorMontoTotal(t *testing.T) {
	// El total no es múltiplo de la cuota: al cubrirlo el convenio cierra
	// aunque la última cuota haya quedado corta
	conv := &models.ConvenioPago{
		CuotaMensual:  dec("400.00"),
		MontoTotal:    dec("700.00"),
		MontoPagado:   decimal.Zero,
		CuotasTotales: 2,
		Activo:        true,
	}

	avanzarConvenio(conv, dec("700.00"))
	if conv.Activo {
		t.Error("cubierto el monto total el convenio debe desactivarse")
	}
}

func TestAplicarExcedenteSiguienteCuentaEnDeuda(t *testing.T) {
	credito := models.Credito{
		Cuotas: []models.Cuota{
			{Numero: 1, Monto: dec("1000.00"), MontoPagado: dec("1000.00"), Estado: models.CuotaEstadoValidada},
			{Numero: 2, Monto: dec("1000.00"), Estado: models.CuotaEstadoPendiente},
			{Numero: 3, Monto: dec("1000.00"), Estado: models.CuotaEstadoPendiente},
		},
	}
	vigente := &credito.Cuotas[1]

	boleta := models.Boleta{
		AplicadoMora:  dec("100.00"),
		AplicadoCuota: dec("1000.00"),
	}

	objetivo, err := aplicarExcedente(&credito, &boleta, dec("50.00"), DestinoSiguiente, vigente)
	if err != nil {
		t.Fatal(err)
	}
	if objetivo == nil || objetivo.Numero != 3 {
		t.Fatalf("el excedente debe ir a la cuota 3, fue a %+v", objetivo)
	}
	if !objetivo.MontoPagado.Equal(dec("50.00")) {
		t.Errorf("monto pagado de la cuota siguiente = %s", objetivo.MontoPagado)
	}

	// El excedente derivado a cuota descuenta deuda; la mora no
	if !boleta.AplicadoADeuda().Equal(dec("1050.00")) {
		t.Errorf("aplicado a deuda = %s, se esperaba 1050.00", boleta.AplicadoADeuda())
	}
}

func TestAplicarExcedenteCapitalCuentaEnDeuda(t *testing.T) {
	boleta := models.Boleta{AplicadoCuota: dec("1000.00")}
	credito := models.Credito{}

	objetivo, err := aplicarExcedente(&credito, &boleta, dec("250.00"), DestinoCapital, nil)
	if err != nil {
		t.Fatal(err)
	}
	if objetivo != nil {
		t.Errorf("capital no toca cuotas, devolvió %+v", objetivo)
	}
	if !boleta.AplicadoCapital.Equal(dec("250.00")) {
		t.Errorf("aplicado a capital = %s", boleta.AplicadoCapital)
	}
	if !boleta.AplicadoADeuda().Equal(dec("1250.00")) {
		t.Errorf("aplicado a deuda = %s, se esperaba 1250.00", boleta.AplicadoADeuda())
	}
}

func TestAplicarExcedenteOtrosNoCuentaEnDeuda(t *testing.T) {
	boleta := models.Boleta{AplicadoCuota: dec("1000.00")}
	credito := models.Credito{}

	if _, err := aplicarExcedente(&credito, &boleta, dec("50.00"), DestinoOtros, nil); err != nil {
		t.Fatal(err)
	}
	if !boleta.AplicadoOtros.Equal(dec("50.00")) {
		t.Errorf("aplicado a otros = %s", boleta.AplicadoOtros)
	}
	if !boleta.AplicadoADeuda().Equal(dec("1000.00")) {
		t.Errorf("otros no reduce deuda: aplicado a deuda = %s", boleta.AplicadoADeuda())
	}
}
