package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SYMBOLS", "")
	t.Setenv("FORECAST_DAYS", "")
	t.Setenv("SEASONAL_MODEL_ENABLED", "")
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("OLLAMA_MODEL", "")
	t.Setenv("ANALYSIS_HOUR_UTC", "")

	cfg := Load()

	if cfg.RedisURL != "localhost:6379" {
		t.Errorf("RedisURL default = %q", cfg.RedisURL)
	}
	if len(cfg.Symbols) != 3 || cfg.Symbols[0] != "GOOGL" {
		t.Errorf("Symbols default = %v", cfg.Symbols)
	}
	if cfg.ForecastDays != 10 {
		t.Errorf("ForecastDays default = %d", cfg.ForecastDays)
	}
	if !cfg.SeasonalModelEnabled {
		t.Error("SeasonalModelEnabled should default to true")
	}
	if cfg.OllamaBaseURL != "http://localhost:11434" {
		t.Errorf("OllamaBaseURL default = %q", cfg.OllamaBaseURL)
	}
	if cfg.OllamaModel != "deepseek-r1:8b" {
		t.Errorf("OllamaModel default = %q", cfg.OllamaModel)
	}
	if cfg.HistoryDays != 365 {
		t.Errorf("HistoryDays default = %d", cfg.HistoryDays)
	}
	if cfg.AnalysisHourUTC != 9 {
		t.Errorf("AnalysisHourUTC default = %d", cfg.AnalysisHourUTC)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "nvda, tsla")
	t.Setenv("FORECAST_DAYS", "30")
	t.Setenv("SEASONAL_MODEL_ENABLED", "false")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("QUOTE_POLL_SECS", "120")

	cfg := Load()

	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "NVDA" || cfg.Symbols[1] != "TSLA" {
		t.Errorf("Symbols = %v", cfg.Symbols)
	}
	if cfg.ForecastDays != 30 {
		t.Errorf("ForecastDays = %d", cfg.ForecastDays)
	}
	if cfg.SeasonalModelEnabled {
		t.Error("SEASONAL_MODEL_ENABLED=false not honored")
	}
	if cfg.LLMTemperature != 0.2 {
		t.Errorf("LLMTemperature = %v", cfg.LLMTemperature)
	}
	if cfg.QuotePollSecs != 120 {
		t.Errorf("QuotePollSecs = %d", cfg.QuotePollSecs)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("FORECAST_DAYS", "-5")
	t.Setenv("ANALYSIS_HOUR_UTC", "27")
	t.Setenv("LLM_TEMPERATURE", "nine")

	cfg := Load()

	if cfg.ForecastDays != 10 {
		t.Errorf("negative FORECAST_DAYS should keep default, got %d", cfg.ForecastDays)
	}
	if cfg.AnalysisHourUTC != 9 {
		t.Errorf("out-of-range ANALYSIS_HOUR_UTC should keep default, got %d", cfg.AnalysisHourUTC)
	}
	if cfg.LLMTemperature != 0.7 {
		t.Errorf("unparseable LLM_TEMPERATURE should keep default, got %v", cfg.LLMTemperature)
	}
}
