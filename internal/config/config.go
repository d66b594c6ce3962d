// Package config загружает конфигурацию сервисов Mentor.
//
// Порядок: YAML-файл (путь из MENTOR_CONFIG, опционально), затем .env,
// затем переменные окружения, затем значения по умолчанию.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath — переменная с путём к YAML-файлу.
const EnvConfigPath = "MENTOR_CONFIG"

// Config — конфигурация сервисов.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	AMQP     AMQPConfig     `yaml:"amqp"`
	Redis    RedisConfig    `yaml:"redis"`
	LLM      LLMConfig      `yaml:"llm"`
	Agents   AgentsConfig   `yaml:"agents"`
	Worker   WorkerConfig   `yaml:"worker"`
	MCP      MCPConfig      `yaml:"mcp"`
}

// HTTPConfig — параметры API сервера.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig — подключение к PostgreSQL. Пустой URL отключает историю.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

// AMQPConfig — подключение к RabbitMQ. Пустой URL отключает очередь.
type AMQPConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig — кэш анализа. Пустой Addr отключает кэш.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// LLMConfig — chat-completions провайдер. Без APIKey работает эвристика.
type LLMConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// AgentsConfig — параметры обработчиков.
type AgentsConfig struct {
	ScheduleCron  string `yaml:"schedule_cron"`
	QuestionCount int    `yaml:"question_count"`
}

// WorkerConfig — параметры consumer'а.
type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
	Prefetch    int `yaml:"prefetch"`
}

// MCPConfig — транспорт mentor-mcp: stdio или sse.
type MCPConfig struct {
	Transport string `yaml:"transport"`
	Addr      string `yaml:"addr"`
	BaseURL   string `yaml:"base_url"`
}

// Load читает конфигурацию. Отсутствующий .env не ошибка,
// отсутствующий файл из MENTOR_CONFIG — ошибка.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFile читает только YAML-файл и применяет значения по умолчанию.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv переопределяет значения из окружения.
func (c *Config) applyEnv() error {
	setString(&c.HTTP.Addr, "HTTP_ADDR")
	setString(&c.Database.URL, "DB_URL")
	setString(&c.AMQP.URL, "AMQP_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.Agents.ScheduleCron, "SCHEDULE_CRON")
	setString(&c.MCP.Transport, "MCP_TRANSPORT")
	setString(&c.MCP.Addr, "MCP_ADDR")
	setString(&c.MCP.BaseURL, "MCP_BASE_URL")

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = d
	}

	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WORKER_CONCURRENCY: %w", err)
		}
		c.Worker.Concurrency = n
	}

	return nil
}

// applyDefaults заполняет незаданные поля.
func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = time.Hour
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 15 * time.Second
	}
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = 4
	}
	if c.Worker.Prefetch <= 0 {
		c.Worker.Prefetch = 1
	}
	if c.MCP.Transport == "" {
		c.MCP.Transport = "stdio"
	}
	if c.MCP.Addr == "" {
		c.MCP.Addr = ":8090"
	}
	if c.MCP.BaseURL == "" {
		c.MCP.BaseURL = "http://localhost" + c.MCP.Addr
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
