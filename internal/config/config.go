package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jobtrail-utils/internal/logging/types"
)

// ProviderConfig holds the per-provider invocation settings. Timeout
// bounds a single provider call; MaxRetries is the retry budget the
// orchestrator grants that provider before falling back.
type ProviderConfig struct {
	Enabled     bool          `yaml:"enabled"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	LLM struct {
		Primary       string                    `yaml:"primary"`
		FallbackOrder []string                  `yaml:"fallback_order"`
		Providers     map[string]ProviderConfig `yaml:"providers"`
	} `yaml:"llm"`

	Retry struct {
		BaseDelay time.Duration `yaml:"base_delay"`
	} `yaml:"retry"`

	CircuitBreaker struct {
		FailureThreshold int           `yaml:"failure_threshold"`
		SuccessThreshold int           `yaml:"success_threshold"`
		OpenTimeout      time.Duration `yaml:"open_timeout"`
	} `yaml:"circuit_breaker"`

	Cache struct {
		Backend   string `yaml:"backend"` // memory or redis
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"cache"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"redis"`

	Scraper struct {
		UserAgent      string        `yaml:"user_agent"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		HeadlessMode   bool          `yaml:"headless_mode"`
		StealthMode    bool          `yaml:"stealth_mode"`
		RateLimit      int           `yaml:"rate_limit"` // requests per minute per domain
		MaxContentSize int           `yaml:"max_content_size"`
	} `yaml:"scraper"`

	Firecrawl struct {
		APIKey  string        `yaml:"api_key"`
		APIURL  string        `yaml:"api_url"`
		Timeout time.Duration `yaml:"timeout"`
		Formats []string      `yaml:"formats"`
	} `yaml:"firecrawl"`

	Logging struct {
		Level    string                `yaml:"level"`
		Format   string                `yaml:"format"`
		Adapters []types.AdapterConfig `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}
	config.setDefaults()

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()

	return config, nil
}

func (c *Config) setDefaults() {
	c.Server.Port = 8080
	c.Server.Host = "0.0.0.0"
	c.Server.ReadTimeout = 30 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.IdleTimeout = 60 * time.Second

	c.LLM.Primary = "claude"
	c.LLM.FallbackOrder = []string{"claude", "gemini", "ollama"}
	c.LLM.Providers = map[string]ProviderConfig{
		"claude": {
			Enabled:     true,
			Model:       "claude-3-7-sonnet-latest",
			MaxTokens:   8192,
			Temperature: 0.1,
			Timeout:     60 * time.Second,
			MaxRetries:  3,
		},
		"gemini": {
			Enabled:    true,
			Model:      "gemini-2.0-flash",
			Timeout:    60 * time.Second,
			MaxRetries: 3,
		},
		"ollama": {
			Enabled:    false,
			Model:      "llama3.1",
			BaseURL:    "http://localhost:11434",
			Timeout:    300 * time.Second,
			MaxRetries: 1,
		},
	}

	c.Retry.BaseDelay = 500 * time.Millisecond

	c.CircuitBreaker.FailureThreshold = 5
	c.CircuitBreaker.SuccessThreshold = 2
	c.CircuitBreaker.OpenTimeout = 60 * time.Second

	c.Cache.Backend = "memory"
	c.Cache.KeyPrefix = "extract:result:"

	c.Redis.URL = "redis://localhost:6379"
	c.Redis.Timeout = 5 * time.Second

	c.Scraper.RequestTimeout = 30 * time.Second
	c.Scraper.HeadlessMode = true
	c.Scraper.StealthMode = true
	c.Scraper.RateLimit = 60
	c.Scraper.MaxContentSize = 2 << 20 // 2MB of page text
	c.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	c.Firecrawl.APIURL = "https://api.firecrawl.dev"
	c.Firecrawl.Timeout = 60 * time.Second
	c.Firecrawl.Formats = []string{"markdown"}

	c.Logging.Level = "info"
	c.Logging.Format = "json"
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if primary := os.Getenv("LLM_PRIMARY_PROVIDER"); primary != "" {
		c.LLM.Primary = primary
	}

	if order := os.Getenv("LLM_FALLBACK_ORDER"); order != "" {
		parts := strings.Split(order, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		c.LLM.FallbackOrder = parts
	}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		c.setProviderAPIKey("claude", apiKey)
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		c.setProviderAPIKey("gemini", apiKey)
	}

	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		p := c.LLM.Providers["ollama"]
		p.BaseURL = baseURL
		p.Enabled = true
		c.LLM.Providers["ollama"] = p
	}

	if firecrawlAPIKey := os.Getenv("FIRECRAWL_API_KEY"); firecrawlAPIKey != "" {
		c.Firecrawl.APIKey = firecrawlAPIKey
	}

	if firecrawlAPIURL := os.Getenv("FIRECRAWL_API_URL"); firecrawlAPIURL != "" {
		c.Firecrawl.APIURL = firecrawlAPIURL
	}

	if backend := os.Getenv("CACHE_BACKEND"); backend != "" {
		c.Cache.Backend = backend
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}
}

func (c *Config) setProviderAPIKey(name, key string) {
	p := c.LLM.Providers[name]
	p.APIKey = key
	c.LLM.Providers[name] = p
}

// Provider returns the configuration for a provider, falling back to
// zero values for unknown names.
func (c *Config) Provider(name string) ProviderConfig {
	return c.LLM.Providers[name]
}
