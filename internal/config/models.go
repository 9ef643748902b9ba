package config

import (
	"time"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider    string
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// AnthropicConfig represents the configuration for the Anthropic API
type AnthropicConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float64
	BaseURL     string
}

// ClassifierConfig represents the configuration for the URL verdict provider
type ClassifierConfig struct {
	Type           string
	BenignLabel    string
	PhishingLabel  string
	Threshold      float64
	TrustedDomains []string
	Endpoint       string
	Timeout        time.Duration
}

// ThreatIntelConfig represents the configuration for the Safe Browsing lookup
type ThreatIntelConfig struct {
	APIKey        string
	Endpoint      string
	ClientID      string
	ClientVersion string
	Timeout       time.Duration
}

// ServerConfig represents the configuration for the HTTP API
type ServerConfig struct {
	ListenAddress      string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
	BodyLimit          string
}

// CacheConfig represents the configuration for the verdict cache
type CacheConfig struct {
	Enabled         bool
	Type            string
	TTL             time.Duration
	CleanupSchedule string
	SQLitePath      string
	MySQLDSN        string
}

// SMTPConfig represents the configuration for the SMTP content filter
type SMTPConfig struct {
	Enabled         bool
	ListenAddress   string
	BlockPhishing   bool
	RelayEnabled    bool
	RelayAddress    string
	RelayPort       int
	ModifySubject   bool
	SubjectPrefix   string
	AnalysisTimeout time.Duration
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:    c.GetString("llm.provider"),
		MaxBodySize: c.GetInt("llm.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetAnthropic returns the Anthropic configuration
func (c *Config) GetAnthropic() AnthropicConfig {
	return AnthropicConfig{
		APIKey:      c.GetString("anthropic.api_key"),
		ModelName:   c.GetString("anthropic.model_name"),
		MaxTokens:   c.GetInt("anthropic.max_tokens"),
		Temperature: c.GetFloat64("anthropic.temperature"),
		BaseURL:     c.GetString("anthropic.base_url"),
	}
}

// GetClassifier returns the URL classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Type:           c.GetString("classifier.type"),
		BenignLabel:    c.GetString("classifier.benign_label"),
		PhishingLabel:  c.GetString("classifier.phishing_label"),
		Threshold:      c.GetFloat64("classifier.threshold"),
		TrustedDomains: c.GetStringSlice("classifier.trusted_domains"),
		Endpoint:       c.GetString("classifier.endpoint"),
		Timeout:        c.durationOr("classifier.timeout", 10*time.Second),
	}
}

// GetThreatIntel returns the threat intelligence configuration
func (c *Config) GetThreatIntel() ThreatIntelConfig {
	return ThreatIntelConfig{
		APIKey:        c.GetString("threat_intel.api_key"),
		Endpoint:      c.GetString("threat_intel.endpoint"),
		ClientID:      c.GetString("threat_intel.client_id"),
		ClientVersion: c.GetString("threat_intel.client_version"),
		Timeout:       c.durationOr("threat_intel.timeout", 10*time.Second),
	}
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:      c.GetString("server.listen_address"),
		CORSAllowedOrigins: c.GetStringSlice("server.cors_allowed_origins"),
		ShutdownTimeout:    c.durationOr("server.shutdown_timeout", 10*time.Second),
		BodyLimit:          c.GetString("server.body_limit"),
	}
}

// GetCache returns the verdict cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Enabled:         c.GetBool("cache.enabled"),
		Type:            c.GetString("cache.type"),
		TTL:             c.durationOr("cache.ttl", 24*time.Hour),
		CleanupSchedule: c.GetString("cache.cleanup_schedule"),
		SQLitePath:      c.GetString("cache.sqlite_path"),
		MySQLDSN:        c.GetString("cache.mysql_dsn"),
	}
}

// GetSMTP returns the SMTP filter configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:         c.GetBool("smtp.enabled"),
		ListenAddress:   c.GetString("smtp.listen_address"),
		BlockPhishing:   c.GetBool("smtp.block_phishing"),
		RelayEnabled:    c.GetBool("smtp.relay_enabled"),
		RelayAddress:    c.GetString("smtp.relay_address"),
		RelayPort:       c.GetInt("smtp.relay_port"),
		ModifySubject:   c.GetBool("smtp.modify_subject"),
		SubjectPrefix:   c.GetString("smtp.subject_prefix"),
		AnalysisTimeout: c.durationOr("smtp.analysis_timeout", 30*time.Second),
	}
}

func (c *Config) durationOr(key string, fallback time.Duration) time.Duration {
	d, err := c.GetDuration(key)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
