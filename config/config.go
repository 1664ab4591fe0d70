// Ininicializing common application configuration
package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
}

type ServerConfig struct {
	AppVersion   string `json:"appVersion"`
	Host         string `json:"host" validate:"required"`
	Port         string `json:"port" validate:"required"`
	Timeout      time.Duration
	Idle_timeout time.Duration
	Env          string `json:"environment"`
	Mode         string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type SchedulerConfig struct {
	ReminderCron string `mapstructure:"reminder_cron"`
	Timezone     string `mapstructure:"timezone"`
	QueuePrefix  string `mapstructure:"queue_prefix"`
}

// DashboardConfig gates the scheduling dashboard. Loaded once at startup,
// read-only at request time.
type DashboardConfig struct {
	Enabled                 bool   `mapstructure:"enabled"`
	Path                    string `mapstructure:"path"`
	Name                    string `mapstructure:"name"`
	Username                string `mapstructure:"username"`
	Password                string `mapstructure:"password"`
	EnableBasicAuth         bool   `mapstructure:"enable_basic_auth"`
	AllowAuthenticatedUsers bool   `mapstructure:"allow_authenticated_users"`
}

type ReminderConfig struct {
	WarningRatio float64 `mapstructure:"warning_ratio"`
	GroupName    string  `mapstructure:"group_name"`
	BatchSize    int     `mapstructure:"batch_size"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		log.Fatalf("unable to decode config into struct, %v", err)
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	// Scheduler defaults
	v.SetDefault("scheduler.reminder_cron", "0 0 9 * * ?")
	v.SetDefault("scheduler.timezone", "")
	v.SetDefault("scheduler.queue_prefix", "reminderhub")

	// Dashboard defaults
	v.SetDefault("dashboard.enabled", true)
	v.SetDefault("dashboard.path", "/dashboard")
	v.SetDefault("dashboard.name", "ReminderHub")
	v.SetDefault("dashboard.enable_basic_auth", true)
	v.SetDefault("dashboard.allow_authenticated_users", true)

	// Reminder defaults
	v.SetDefault("reminder.warning_ratio", 0.8)
	v.SetDefault("reminder.group_name", "Reminders")
	v.SetDefault("reminder.batch_size", 100)
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
