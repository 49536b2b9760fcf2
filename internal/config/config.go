package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/starpass-mcp/internal/clarity"
	"github.com/rxtech-lab/starpass-mcp/internal/constants"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the optional YAML file.
const PathEnv = "STARPASS_CONFIG"

// Config holds everything the binaries need to wire the services.
type Config struct {
	Port            int           `yaml:"port" validate:"gte=0,lte=65535"`
	BaseURL         string        `yaml:"baseUrl" validate:"omitempty,url"`
	PostgresURL     string        `yaml:"postgresUrl"`
	Network         string        `yaml:"network" validate:"oneof=mainnet testnet"`
	APIURL          string        `yaml:"apiUrl" validate:"required,url"`
	ContractAddress string        `yaml:"contractAddress" validate:"required,alphanum"`
	ContractName    string        `yaml:"contractName" validate:"required,max=128"`
	AppName         string        `yaml:"appName" validate:"required"`
	AppIconURL      string        `yaml:"appIconUrl" validate:"omitempty,url"`
	JWTSecret       string        `yaml:"jwtSecret"`
	SessionTTL      time.Duration `yaml:"sessionTTL" validate:"gt=0"`
}

func Default() Config {
	return Config{
		Network:         constants.NetworkMainnet,
		ContractAddress: constants.DefaultContractAddress,
		ContractName:    constants.DefaultContractName,
		AppName:         constants.DefaultAppName,
		SessionTTL:      30 * time.Minute,
	}
}

// Load reads defaults, then the YAML file at path (or $STARPASS_CONFIG), then
// environment variables, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL(cfg.Network)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultAPIURL(network string) string {
	if network == constants.NetworkTestnet {
		return constants.DefaultTestnetAPIURL
	}
	return constants.DefaultMainnetAPIURL
}

func applyEnvOverrides(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", raw, err)
		}
		cfg.Port = port
	}
	setString("BASE_URL", &cfg.BaseURL)
	setString("POSTGRES_URL", &cfg.PostgresURL)
	setString("STACKS_NETWORK", &cfg.Network)
	setString("STACKS_API_URL", &cfg.APIURL)
	setString("CONTRACT_ADDRESS", &cfg.ContractAddress)
	setString("CONTRACT_NAME", &cfg.ContractName)
	setString("APP_NAME", &cfg.AppName)
	setString("APP_ICON_URL", &cfg.AppIconURL)
	setString("JWT_SECRET", &cfg.JWTSecret)
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL %q: %w", raw, err)
		}
		cfg.SessionTTL = ttl
	}
	return nil
}

// Validate checks field constraints and that the contract address matches the
// configured network.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	version, _, err := clarity.DecodeAddress(c.ContractAddress)
	if err != nil {
		return fmt.Errorf("invalid configuration: contract address: %w", err)
	}
	mainnet := version == clarity.AddressVersionMainnetSingleSig || version == clarity.AddressVersionMainnetMultiSig
	if mainnet != (c.Network == constants.NetworkMainnet) {
		return errors.New("invalid configuration: contract address does not belong to network " + c.Network)
	}
	return nil
}

// AppIcon returns the icon URL shown by the wallet. Without an explicit URL
// the icon is served by this process.
func (c Config) AppIcon(serverPort int) string {
	if c.AppIconURL != "" {
		return c.AppIconURL
	}
	base := c.BaseURL
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", serverPort)
	}
	icon, err := url.JoinPath(base, constants.DefaultAppIconPath)
	if err != nil {
		return constants.DefaultAppIconPath
	}
	return icon
}
