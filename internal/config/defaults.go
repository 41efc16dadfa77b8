package config

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			PlannerTemperature:     0.1,
			SynthesizerTemperature: 0.7,
			MaxTokens:              2048,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxRetries:  2,
			TimeoutSecs: 120,
		},
		Gateway: GatewayConfig{
			BaseURL:     "http://localhost:3000",
			TimeoutSecs: 30,
			Concurrency: 1,
		},
		Security: SecurityConfig{
			Redaction: RedactionConfig{
				Enabled:      true,
				RedactEmails: true,
				RedactTokens: true,
			},
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 7420,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
