package config

import (
	"os"
	"testing"
	"time"

	"quizwhiz-backend/internal/quizgen"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestGetEnvAsFloatOrDefault(t *testing.T) {
	t.Setenv("TEST_FLOAT_1", "0.25")
	t.Setenv("TEST_FLOAT_2", "half")

	if got := getEnvAsFloatOrDefault("TEST_FLOAT_1", 0.5); got != 0.25 {
		t.Errorf("Expected 0.25, got %v", got)
	}
	if got := getEnvAsFloatOrDefault("TEST_FLOAT_2", 0.5); got != 0.5 {
		t.Errorf("Expected default 0.5, got %v", got)
	}
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	t.Setenv("TEST_DUR_1", "90m")
	t.Setenv("TEST_DUR_2", "-1h")
	t.Setenv("TEST_DUR_3", "soon")

	if got := getEnvAsDurationOrDefault("TEST_DUR_1", time.Hour); got != 90*time.Minute {
		t.Errorf("Expected 90m, got %v", got)
	}
	if got := getEnvAsDurationOrDefault("TEST_DUR_2", time.Hour); got != time.Hour {
		t.Errorf("Expected default for negative duration, got %v", got)
	}
	if got := getEnvAsDurationOrDefault("TEST_DUR_3", time.Hour); got != time.Hour {
		t.Errorf("Expected default for invalid duration, got %v", got)
	}
}

func TestGetEnvAsListOrDefault(t *testing.T) {
	t.Setenv("TEST_LIST_1", " a@x.ma , ,b@x.ma")
	t.Setenv("TEST_LIST_2", " , ")

	got := getEnvAsListOrDefault("TEST_LIST_1", nil)
	if len(got) != 2 || got[0] != "a@x.ma" || got[1] != "b@x.ma" {
		t.Errorf("Unexpected list %q", got)
	}
	if got := getEnvAsListOrDefault("TEST_LIST_2", []string{"d"}); len(got) != 1 || got[0] != "d" {
		t.Errorf("Expected default list, got %q", got)
	}
}

func TestGenerationOptions(t *testing.T) {
	cfg := &Config{
		QuizPDFMin: 5, QuizPDFMax: 2000,
		QuizTopicMin: 5, QuizTopicMax: 50,
		FlashFactsMin: 1, FlashFactsMax: 10,
		UndercountWarnRatio: 0.4,
		EmptyPolicy:         "empty",
		FlashFactDenyList:   []string{"n/a"},
		ContentLanguage:     "Arabic",
	}

	opts := cfg.GenerationOptions()

	if opts.DocumentQuizBounds.Max != 2000 || opts.FlashFactBounds.Max != 10 {
		t.Errorf("Unexpected bounds %+v", opts)
	}
	if opts.EmptyPolicy != quizgen.PolicyEmpty {
		t.Errorf("Expected empty policy, got %q", opts.EmptyPolicy)
	}
	if len(opts.DenyList) != len(quizgen.DefaultDenyList)+1 || opts.DenyList[len(opts.DenyList)-1] != "n/a" {
		t.Errorf("Expected configured phrase appended to defaults, got %q", opts.DenyList)
	}
	if opts.Language != "Arabic" || opts.WarnRatio != 0.4 {
		t.Errorf("Unexpected options %+v", opts)
	}

	cfg.EmptyPolicy = "bogus"
	if cfg.GenerationOptions().EmptyPolicy != quizgen.PolicyFail {
		t.Error("Expected unknown policy to fall back to fail")
	}
}

func TestIsAdminEmail(t *testing.T) {
	cfg := &Config{AdminEmails: []string{"Admin@QuizWhiz.ma"}}
	if !cfg.IsAdminEmail(" admin@quizwhiz.ma ") {
		t.Error("Expected case-insensitive admin match")
	}
	if cfg.IsAdminEmail("user@quizwhiz.ma") {
		t.Error("Expected non-admin email to be rejected")
	}
}
