package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// GenerateHMAC crea el HMAC de los datos con la clave dada. Se usa para
// el código de verificación impreso en los recibos de boletas.
func GenerateHMAC(data string, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateHMAC verifica un HMAC en tiempo constante
func ValidateHMAC(data string, mac string, key []byte) bool {
	expected := GenerateHMAC(data, key)
	return hmac.Equal([]byte(mac), []byte(expected))
}
