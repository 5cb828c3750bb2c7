package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/flagx"
	"github.com/dmitrijs2005/cloudstore/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "10s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct.
type JsonConfig struct {
	RunAddr         string         `json:"run_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	UploadDir       string         `json:"upload_dir"`
	BcryptCost      int            `json:"bcrypt_cost"`
	CORSOrigin      string         `json:"cors_origin"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config
// command-line flags; if neither is set, no JSON file is loaded.
//
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.RunAddr = c.RunAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.UploadDir = c.UploadDir
	config.BcryptCost = c.BcryptCost
	config.CORSOrigin = c.CORSOrigin
	config.ShutdownTimeout = time.Duration(c.ShutdownTimeout.Duration)
}
