package main

import (
	"testing"
)

func TestGetEnvReturnsValueWhenSet(t *testing.T) {
	const key = "TEST_GETENV_SET"
	const expected = "custom-value"

	t.Setenv(key, expected)

	if result := getEnv(key, "fallback"); result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestGetEnvReturnsFallbackWhenUnset(t *testing.T) {
	const fallback = "default-value"

	if result := getEnv("TEST_GETENV_UNSET", fallback); result != fallback {
		t.Errorf("expected fallback %q, got %q", fallback, result)
	}
}

func TestGetEnvInt64(t *testing.T) {
	t.Setenv("TEST_GETENV_INT", "4096")
	if result := getEnvInt64("TEST_GETENV_INT", 1); result != 4096 {
		t.Errorf("expected 4096, got %d", result)
	}

	t.Setenv("TEST_GETENV_INT_BAD", "not-a-number")
	if result := getEnvInt64("TEST_GETENV_INT_BAD", 7); result != 7 {
		t.Errorf("expected fallback 7 for unparseable value, got %d", result)
	}
}
