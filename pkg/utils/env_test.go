package utils

import (
	"os"
	"testing"
)

func TestEnvOrDefault(t *testing.T) {
	const key = "POSNET_TEST_ENV_STRING"
	os.Unsetenv(key)
	clearEnvCache(key)
	if got := EnvOrDefault(key, "fallback"); got != "fallback" {
		t.Fatalf("got %q, want fallback", got)
	}
	os.Setenv(key, "value")
	clearEnvCache(key)
	if got := EnvOrDefault(key, "fallback"); got != "value" {
		t.Fatalf("got %q, want value", got)
	}
}

func TestEnvOrDefaultInt(t *testing.T) {
	const key = "POSNET_TEST_ENV_INT"
	os.Setenv(key, "42")
	clearEnvCache(key)
	if got := EnvOrDefaultInt(key, 0); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	os.Setenv(key, "not-a-number")
	clearEnvCache(key)
	if got := EnvOrDefaultInt(key, 7); got != 7 {
		t.Fatalf("got %d, want fallback 7", got)
	}
}
