package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings for the server.
type Config struct {
	Addr       string
	SchemaFile string
	Pretty     bool
	Timeout    time.Duration

	MongoURI      string
	MongoDatabase string

	OTelEndpoint string
	OTelService  string
}

// Default returns the built-in settings used when nothing else is set.
func Default() Config {
	return Config{
		Addr:          ":8080",
		SchemaFile:    "schema.graphql",
		Timeout:       30 * time.Second,
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "mongograph",
		OTelService:   "mongograph",
	}
}

// Load reads config.yaml from configPath (if present) and applies
// environment overrides with the MONGOGRAPH_ prefix.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("MONGOGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("server.addr")
	v.BindEnv("server.schema")
	v.BindEnv("server.pretty")
	v.BindEnv("server.timeout")
	v.BindEnv("mongo.uri")
	v.BindEnv("mongo.database")
	v.BindEnv("otel.endpoint")
	v.BindEnv("otel.service")

	// Missing config.yaml is fine; defaults and env vars still apply.
	_ = v.ReadInConfig()

	if v.IsSet("server.addr") {
		cfg.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.schema") {
		cfg.SchemaFile = v.GetString("server.schema")
	}
	if v.IsSet("server.pretty") {
		cfg.Pretty = v.GetBool("server.pretty")
	}
	if v.IsSet("server.timeout") {
		cfg.Timeout = v.GetDuration("server.timeout")
	}
	if v.IsSet("mongo.uri") {
		cfg.MongoURI = v.GetString("mongo.uri")
	}
	if v.IsSet("mongo.database") {
		cfg.MongoDatabase = v.GetString("mongo.database")
	}
	if v.IsSet("otel.endpoint") {
		cfg.OTelEndpoint = v.GetString("otel.endpoint")
	}
	if v.IsSet("otel.service") {
		cfg.OTelService = v.GetString("otel.service")
	}

	return cfg, nil
}
