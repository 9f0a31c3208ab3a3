package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"employee-directory/internal/logger"
	"employee-directory/internal/sftpclient"
)

type Config struct {
	Logger    logger.Config     `yaml:"logger"`
	HTTP      HTTPConfig        `yaml:"http"`
	Directory DirectoryConfig   `yaml:"directory"`
	Contacts  ContactsConfig    `yaml:"contacts"`
	SFTP      sftpclient.Config `yaml:"sftp"`
}

// HTTPConfig is the API server side of directory-server.
type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout         time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DirectoryConfig describes the office endpoints and how they are fetched.
type DirectoryConfig struct {
	TallinnURL   string        `yaml:"tallinn_url" env:"TALLINN_URL" env-default:"https://tallinn-jobapp.aw.ee/employee_list/"`
	TartuURL     string        `yaml:"tartu_url" env:"TARTU_URL" env-default:"https://tartu-jobapp.aw.ee/employee_list/"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT" env-default:"30s"`
	// MaxAttempts > 1 enables retries on transient failures.
	MaxAttempts int  `yaml:"max_attempts" env:"FETCH_MAX_ATTEMPTS" env-default:"1"`
	Parallel    bool `yaml:"parallel" env:"FETCH_PARALLEL" env-default:"false"`
	// RefreshInterval drives periodic cycles in directory-server. Zero disables them.
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"REFRESH_INTERVAL" env-default:"0s"`
}

type ContactsConfig struct {
	// CSVPath points at an address book export. Empty disables matching.
	CSVPath string `yaml:"csv_path" env:"CONTACTS_CSV"`
	// Watch reloads the file on change while a long-running process is up.
	Watch bool `yaml:"watch" env:"CONTACTS_WATCH" env-default:"false"`
}

// Location is one office endpoint, in fetch order.
type Location struct {
	Name string
	URL  string
}

func (d DirectoryConfig) Locations() []Location {
	return []Location{
		{Name: "tallinn", URL: d.TallinnURL},
		{Name: "tartu", URL: d.TartuURL},
	}
}

// Load reads configuration from the environment only.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

// New reads a YAML file at path; environment variables override it.
func New(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &cfg, nil
}
