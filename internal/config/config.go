package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoggingAdapter configures a single log output adapter
type LoggingAdapter struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
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

	Workers struct {
		PoolSize  int           `yaml:"pool_size"`
		QueueSize int           `yaml:"queue_size"`
		RateLimit int           `yaml:"rate_limit"` // match runs per minute per job
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"workers"`

	Matching struct {
		DefaultK          int           `yaml:"default_k"`
		MaxK              int           `yaml:"max_k"`
		MinScore          float64       `yaml:"min_score"`
		MMRLambda         float64       `yaml:"mmr_lambda"`
		MMRThreshold      float64       `yaml:"mmr_threshold"`
		ExploreMultiplier float64       `yaml:"explore_multiplier"`
		MaxPoolSize       int           `yaml:"max_pool_size"`
		RunCacheTTL       time.Duration `yaml:"run_cache_ttl"`
	} `yaml:"matching"`

	Database struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"database"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"redis"`

	Logging struct {
		Level    string           `yaml:"level"`
		Format   string           `yaml:"format"`
		Adapters []LoggingAdapter `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Workers.PoolSize = 4
	config.Workers.QueueSize = 64
	config.Workers.RateLimit = 30
	config.Workers.Timeout = 30 * time.Second

	config.Matching.DefaultK = 10
	config.Matching.MaxK = 50
	config.Matching.MinScore = 0.4
	config.Matching.MMRLambda = 0.6
	config.Matching.MMRThreshold = 0.15
	config.Matching.ExploreMultiplier = 0.7
	config.Matching.MaxPoolSize = 500
	config.Matching.RunCacheTTL = 24 * time.Hour

	config.Database.Timeout = 10 * time.Second

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			// Expand environment variables in the YAML content
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
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

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.Database.URL = dbURL
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

	if defaultK := os.Getenv("MATCHING_DEFAULT_K"); defaultK != "" {
		if k, err := strconv.Atoi(defaultK); err == nil && k > 0 {
			c.Matching.DefaultK = k
		}
	}

	if maxPool := os.Getenv("MATCHING_MAX_POOL_SIZE"); maxPool != "" {
		if n, err := strconv.Atoi(maxPool); err == nil && n > 0 {
			c.Matching.MaxPoolSize = n
		}
	}

	if ttl := os.Getenv("MATCHING_RUN_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			c.Matching.RunCacheTTL = d
		}
	}

	if poolSize := os.Getenv("WORKER_POOL_SIZE"); poolSize != "" {
		if n, err := strconv.Atoi(poolSize); err == nil && n > 0 {
			c.Workers.PoolSize = n
		}
	}

	if rateLimit := os.Getenv("WORKER_RATE_LIMIT"); rateLimit != "" {
		if n, err := strconv.Atoi(rateLimit); err == nil && n > 0 {
			c.Workers.RateLimit = n
		}
	}
}
