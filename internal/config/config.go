package config

import (
	"fmt"
	"os"
	"path/filepath"

	appconfig "github.com/lockstep-network/lockstep/internal/app-config"
	"github.com/spf13/viper"
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	RpcUser     string
	RpcPassword string

	AppConfig *appconfig.Config
}

var (
	Datadir       = "DATADIR"
	Port          = "PORT"
	LogLevel      = "LOG_LEVEL"
	DbType        = "DB_TYPE"
	LedgerType    = "LEDGER_TYPE"
	SchedulerType = "SCHEDULER_TYPE"
	RpcUser       = "RPC_USER"
	RpcPassword   = "RPC_PASSWORD"

	defaultDatadir       = appDataDir("lockstepd")
	defaultPort          = 7070
	defaultLogLevel      = 4
	defaultDbType        = "badger"
	defaultLedgerType    = "inmemory"
	defaultSchedulerType = "gocron"
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("LOCKSTEP")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, defaultPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(LedgerType, defaultLedgerType)
	viper.SetDefault(SchedulerType, defaultSchedulerType)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	dbDir := filepath.Join(viper.GetString(Datadir), "db")

	return &Config{
		Datadir:     viper.GetString(Datadir),
		Port:        viper.GetUint32(Port),
		LogLevel:    viper.GetInt(LogLevel),
		RpcUser:     viper.GetString(RpcUser),
		RpcPassword: viper.GetString(RpcPassword),
		AppConfig: &appconfig.Config{
			DbType:        viper.GetString(DbType),
			DbDir:         dbDir,
			LedgerType:    viper.GetString(LedgerType),
			SchedulerType: viper.GetString(SchedulerType),
		},
	}, nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}
