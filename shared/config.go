package shared

import (
	"encoding/json"
	"github.com/tailscale/hujson"
	"log"
	"os"
)

const (
	configVarName  = "CONFIG"                      // If set, will load config.json from this path and not from devConfigPath
	secretsVarName = "SECRETS"                     // If set, will load secrets.json from this path and not from devSecretsPath
	devConfigPath  = "../../dev/config.dev.jsonc"  // Path to config.json in development environment
	devSecretsPath = "../../dev/secrets.dev.jsonc" // Path to config.json in development environment
)

type Config struct {
	Secrets         Secrets    `json:"-"`
	LogFile         string     `json:"log_file"`
	LogLevel        string     `json:"log_level"`
	ServicePort     uint       `json:"service_port"`
	Host            string     `json:"host"`
	DbFile          string     `json:"db_file"`
	LookupChunkSize int        `json:"lookup_chunk_size"`
	LookupParallel  int        `json:"lookup_parallel"`
	Accounts        []*Account `json:"accounts"`
}

// Account identifies one signed-in remote identity whose timelines we mirror.
type Account struct {
	Key        string `json:"key"`      // Local account key, e.g. "main-masto"
	Platform   string `json:"platform"` // "twitter" or "mastodon"
	Domain     string `json:"domain"`   // e.g. "twitter.com" or "genart.social"
	UserID     string `json:"user_id"`  // Remote ID of "me" on that platform
	APIBaseUrl string `json:"api_base_url"`
	SigKeyId   string `json:"sig_key_id"` // Key ID advertised in signed lookup requests; empty disables signing
}

type Secrets struct {
	ApiKeys     []string `json:"api_keys"`
	MetricsAuth string   `json:"metrics_auth"`
	SigPrivKey  string   `json:"sig_priv_key"` // PEM; used for Mastodon authorized-fetch lookups
}

func LoadConfig() *Config {

	// Where are our config and secrets files?
	cfgPath := os.Getenv(configVarName)
	if len(cfgPath) == 0 {
		cfgPath = devConfigPath
	}
	secretsPath := os.Getenv(secretsVarName)
	if len(secretsPath) == 0 {
		secretsPath = devSecretsPath
	}

	// Read config file
	var config Config
	mustDeserializeFile(cfgPath, &config)
	// Read secrets member from secrets file
	mustDeserializeFile(secretsPath, &config.Secrets)

	if config.LookupChunkSize <= 0 {
		config.LookupChunkSize = 100
	}
	if config.LookupParallel <= 0 {
		config.LookupParallel = 4
	}

	return &config
}

func (cfg *Config) GetAccount(key string) *Account {
	for _, acct := range cfg.Accounts {
		if acct.Key == key {
			return acct
		}
	}
	return nil
}

func mustDeserializeFile[T any](fileName string, obj *T) {
	var err error
	var cfgJson []byte
	cfgJson, err = os.ReadFile(fileName)
	if err != nil {
		log.Fatal(err)
	}
	// JSONC => JSON
	cfgJson, err = standardizeJSON(cfgJson)
	if err != nil {
		log.Fatal(err)
	}
	// Parse
	if err := json.Unmarshal(cfgJson, obj); err != nil {
		log.Fatal(err)
	}
}

func standardizeJSON(b []byte) ([]byte, error) {
	ast, err := hujson.Parse(b)
	if err != nil {
		return b, err
	}
	ast.Standardize()
	return ast.Pack(), nil
}
