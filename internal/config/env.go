package config

import "os"

// Environment variables consulted by ApplyEnv.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvGatewayToken = "REPOLENS_GATEWAY_TOKEN"
	EnvGatewayURL   = "REPOLENS_GATEWAY_URL"
)

// ApplyEnv overlays credentials and endpoints from the environment.
// Values already present in cfg win over the environment, except the
// gateway URL which is always taken from REPOLENS_GATEWAY_URL when set.
func ApplyEnv(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKey(cfg.LLM.Provider)
	}
	if cfg.FallbackLLM != nil && cfg.FallbackLLM.APIKey == "" {
		cfg.FallbackLLM.APIKey = providerKey(cfg.FallbackLLM.Provider)
	}
	if cfg.Gateway.Token == "" {
		if v := os.Getenv(EnvGatewayToken); v != "" {
			cfg.Gateway.Token = v
		} else {
			cfg.Gateway.Token = os.Getenv(EnvGitHubToken)
		}
	}
	if v := os.Getenv(EnvGatewayURL); v != "" {
		cfg.Gateway.BaseURL = v
	}
}

func providerKey(provider string) string {
	if provider == "anthropic" {
		return os.Getenv(EnvAnthropicKey)
	}
	return os.Getenv(EnvOpenAIKey)
}
