package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Service       ServiceConfig       `mapstructure:"service"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	MDM           MDMConfig           `mapstructure:"mdm"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

type ServiceConfig struct {
	Port string `mapstructure:"port"`
}

type SchedulerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	SweepSpec    string        `mapstructure:"sweepSpec"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	JobTimeout   time.Duration `mapstructure:"jobTimeout"`
	ReportsDir   string        `mapstructure:"reportsDir"`
	TempDir      string        `mapstructure:"tempDir"`
	Timezone     string        `mapstructure:"timezone"`
}

type MDMConfig struct {
	BaseURL      string `mapstructure:"baseUrl"`
	TokenURL     string `mapstructure:"tokenUrl"`
	ClientID     string `mapstructure:"clientId"`
	ClientSecret string `mapstructure:"clientSecret"`
}

type StorageConfig struct {
	Configurations []StorageConfiguration `mapstructure:"configurations"`
}

// StorageConfiguration is one named upload destination. AuthMode
// selects how credentials are resolved: "sharedKey" uses the inline
// key pair, "sessionToken" adds the temporary session token, and
// "secretRef" pulls the key pair from AWS Secrets Manager.
type StorageConfiguration struct {
	Name            string `mapstructure:"name"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	AuthMode        string `mapstructure:"authMode"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	SessionToken    string `mapstructure:"sessionToken"`
	SecretRef       string `mapstructure:"secretRef"`
}

type NotificationsConfig struct {
	WebhookURL      string `mapstructure:"webhookUrl"`
	MessageTemplate string `mapstructure:"messageTemplate"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config

	viper.AddConfigPath(path)
	viper.SetConfigName("appsettings")
	viper.SetConfigType("yaml")

	viper.SetDefault("service.port", "8000")
	viper.SetDefault("scheduler.sweepSpec", "@every 5m")
	viper.SetDefault("scheduler.pollInterval", 10*time.Second)
	viper.SetDefault("scheduler.jobTimeout", 20*time.Minute)
	viper.SetDefault("scheduler.timezone", "Local")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
