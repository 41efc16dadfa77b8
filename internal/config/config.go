package config

import "time"

// Config is the top-level application configuration.
type Config struct {
	Agent       AgentConfig    `json:"agent" yaml:"agent"`
	LLM         LLMConfig      `json:"llm" yaml:"llm"`
	FallbackLLM *LLMConfig     `json:"fallback_llm,omitempty" yaml:"fallback_llm,omitempty"`
	Gateway     GatewayConfig  `json:"gateway" yaml:"gateway"`
	Security    SecurityConfig `json:"security" yaml:"security"`
	History     HistoryConfig  `json:"history" yaml:"history"`
	Server      ServerConfig   `json:"server" yaml:"server"`
	Log         LogConfig      `json:"log" yaml:"log"`
}

type AgentConfig struct {
	PlannerTemperature     float64 `json:"planner_temperature" yaml:"planner_temperature"`
	SynthesizerTemperature float64 `json:"synthesizer_temperature" yaml:"synthesizer_temperature"`
	MaxTokens              int     `json:"max_tokens" yaml:"max_tokens"`
}

type LLMConfig struct {
	Provider    string `json:"provider" yaml:"provider"`
	Model       string `json:"model" yaml:"model"`
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	MaxRetries  int    `json:"max_retries" yaml:"max_retries"`
	TimeoutSecs int    `json:"timeout_secs" yaml:"timeout_secs"`
}

// Timeout returns the request timeout, or zero when unset.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

type GatewayConfig struct {
	BaseURL     string `json:"base_url" yaml:"base_url"`
	Token       string `json:"token,omitempty" yaml:"token,omitempty"`
	TimeoutSecs int    `json:"timeout_secs" yaml:"timeout_secs"`
	Concurrency int    `json:"concurrency" yaml:"concurrency"`
}

// Timeout returns the per-request gateway timeout.
func (c GatewayConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

type SecurityConfig struct {
	Redaction RedactionConfig `json:"redaction" yaml:"redaction"`
}

type RedactionConfig struct {
	Enabled      bool `json:"enabled" yaml:"enabled"`
	RedactEmails bool `json:"redact_emails" yaml:"redact_emails"`
	RedactTokens bool `json:"redact_tokens" yaml:"redact_tokens"`
}

type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}
