package config

import "os"

type Config struct {
	Port     string
	LogLevel string
	DataPath string

	FinnhubAPIKey       string
	AlphaVantageAPIKey  string
	IndianAPIKey        string
	FinnhubBaseURL      string
	AlphaVantageBaseURL string
	IndianAPIBaseURL    string
}

func New() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: os.Getenv("LOGLEVEL"),
		DataPath: getEnv("DATAPATH", "finboard.db"),

		FinnhubAPIKey:       os.Getenv("FINNHUB_API_KEY"),
		AlphaVantageAPIKey:  os.Getenv("ALPHAVANTAGE_API_KEY"),
		IndianAPIKey:        os.Getenv("INDIAN_API_KEY"),
		FinnhubBaseURL:      getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		AlphaVantageBaseURL: getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
		IndianAPIBaseURL:    getEnv("INDIAN_API_BASE_URL", "https://stock.indianapi.in"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
