package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"storj.io/vob-portal/pkg/portalapi"
	"storj.io/vob-portal/pkg/portaldb"
)

// DefaultPath is where the config file is looked up when none is given.
const DefaultPath = "~/.vobportal.toml"

type MissingFieldsError = toml.StrictMissingError

type Config struct {
	Server Server `toml:"server"`
	Client Client `toml:"client"`
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// LoadOptional loads path, returning the defaults when the file does not
// exist.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func Default() Config {
	const (
		defaultListen         = "127.0.0.1:8000"
		defaultDBPath         = "vob.db"
		defaultRequestTimeout = Duration(10 * time.Second)

		defaultVOBLimit        = 50
		defaultRowsLimit       = 500
		defaultRowsCacheExpiry = Duration(30 * time.Second)
	)

	return Config{
		Server: Server{
			Listen:         defaultListen,
			DBPath:         defaultDBPath,
			VOBMaxLimit:    portaldb.DefaultVOBMaxLimit,
			RowsMaxLimit:   portaldb.DefaultRowsMaxLimit,
			RequestTimeout: defaultRequestTimeout,
		},
		Client: Client{
			APIURL:          portalapi.DefaultAPIURL,
			VOBLimit:        defaultVOBLimit,
			RowsLimit:       defaultRowsLimit,
			RowsCacheExpiry: defaultRowsCacheExpiry,
		},
	}
}

func Parse(data []byte) (Config, error) {
	config := Default()

	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Client.VOBLimit <= 0 {
		return Config{}, errors.New("client.vob_limit must be positive")
	}
	if config.Client.RowsLimit <= 0 {
		return Config{}, errors.New("client.rows_limit must be positive")
	}

	return config, nil
}

func DumpUnknownFields(err error) string {
	var sme *toml.StrictMissingError
	if errors.As(err, &sme) {
		return sme.String()
	}
	return ""
}
