package utils

import "testing"

func TestGenerateHMACDeterminista(t *testing.T) {
	key := []byte("clave-recibos")

	a := GenerateHMAC("credito|1000.00|1756684800", key)
	b := GenerateHMAC("credito|1000.00|1756684800", key)

	if a == "" {
		t.Fatal("el código no puede ser vacío")
	}
	if a != b {
		t.Error("mismos datos y clave deben dar el mismo código")
	}
}

func TestValidateHMAC(t *testing.T) {
	key := []byte("clave-recibos")
	data := "credito|1000.00|1756684800"
	mac := GenerateHMAC(data, key)

	if !ValidateHMAC(data, mac, key) {
		t.Error("el código generado debe validar")
	}
	if ValidateHMAC("credito|9999.00|1756684800", mac, key) {
		t.Error("datos alterados no deben validar")
	}
	if ValidateHMAC(data, mac, []byte("otra-clave")) {
		t.Error("otra clave no debe validar")
	}
}
