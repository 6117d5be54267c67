package utils

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("la petición %d debería estar permitida", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("la cuarta petición debería rechazarse")
	}

	// Otra clave tiene su propio contador
	if !rl.Allow("10.0.0.2") {
		t.Error("otra IP no debe verse afectada")
	}
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	rl.Allow("10.0.0.1")
	if rl.Allow("10.0.0.1") {
		t.Fatal("el límite debería estar agotado")
	}

	rl.Reset("10.0.0.1")
	if !rl.Allow("10.0.0.1") {
		t.Error("tras el reset la petición debería pasar")
	}
}

func TestRateLimiterGetRemaining(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	if got := rl.GetRemaining("10.0.0.1"); got != 5 {
		t.Errorf("restantes = %d, se esperaba 5", got)
	}

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")

	if got := rl.GetRemaining("10.0.0.1"); got != 3 {
		t.Errorf("restantes = %d, se esperaba 3", got)
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	rl.Allow("10.0.0.1")
	if rl.Allow("10.0.0.1") {
		t.Fatal("el límite debería estar agotado")
	}

	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Error("pasada la ventana la petición debería permitirse")
	}
}
