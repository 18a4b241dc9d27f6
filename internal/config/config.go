package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL      string
	RedisURL         string
	TelegramBotToken string

	Symbols     []string
	HistoryDays int

	OllamaBaseURL  string
	OllamaModel    string
	OpenAIAPIKey   string
	OpenAIModel    string
	LLMTemperature float64
	LLMMaxTokens   int

	ForecastDays         int
	SeasonalModelEnabled bool

	NewsMaxArticles  int
	NewsLookbackDays int

	AnalysisHourUTC int
	QuotePollSecs   int

	ReportOutputDir string

	APIKey         string
	SSHPort        int
	SSHHostKeyPath string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		APIKey:           os.Getenv("API_KEY"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}

	cfg.Symbols = []string{"GOOGL", "MSFT", "AAPL"}
	if v := strings.TrimSpace(os.Getenv("SYMBOLS")); v != "" {
		var symbols []string
		for _, s := range strings.Split(v, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				symbols = append(symbols, s)
			}
		}
		if len(symbols) > 0 {
			cfg.Symbols = symbols
		}
	}

	cfg.HistoryDays = 365
	if v := strings.TrimSpace(os.Getenv("HISTORY_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryDays = n
		}
	}

	cfg.OllamaBaseURL = strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL"))
	if cfg.OllamaBaseURL == "" {
		cfg.OllamaBaseURL = "http://localhost:11434"
	}

	cfg.OllamaModel = strings.TrimSpace(os.Getenv("OLLAMA_MODEL"))
	if cfg.OllamaModel == "" {
		cfg.OllamaModel = "deepseek-r1:8b"
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.LLMTemperature = 0.7
	if v := strings.TrimSpace(os.Getenv("LLM_TEMPERATURE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 && n <= 1 {
			cfg.LLMTemperature = n
		}
	}

	cfg.LLMMaxTokens = 4000
	if v := strings.TrimSpace(os.Getenv("LLM_MAX_TOKENS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LLMMaxTokens = n
		}
	}

	cfg.ForecastDays = 10
	if v := strings.TrimSpace(os.Getenv("FORECAST_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ForecastDays = n
		}
	}

	cfg.SeasonalModelEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("SEASONAL_MODEL_ENABLED")), "false")

	cfg.NewsMaxArticles = 10
	if v := strings.TrimSpace(os.Getenv("NEWS_MAX_ARTICLES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsMaxArticles = n
		}
	}

	cfg.NewsLookbackDays = 7
	if v := strings.TrimSpace(os.Getenv("NEWS_LOOKBACK_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsLookbackDays = n
		}
	}

	cfg.AnalysisHourUTC = 9
	if v := strings.TrimSpace(os.Getenv("ANALYSIS_HOUR_UTC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 23 {
			cfg.AnalysisHourUTC = n
		}
	}

	cfg.QuotePollSecs = 60
	if v := strings.TrimSpace(os.Getenv("QUOTE_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.QuotePollSecs = n
		}
	}

	cfg.ReportOutputDir = strings.TrimSpace(os.Getenv("REPORT_OUTPUT_DIR"))
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "reports"
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOSTKEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/stocksage_host_key"
	}

	if cfg.OpenAIAPIKey == "" {
		log.Println("OPENAI_API_KEY not set, analyst agents will use Ollama only")
	}

	return cfg
}
