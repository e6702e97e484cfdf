package shared

import "time"

type ServerConfig struct {
	Instantdoc InstantdocConfig `mapstructure:"instantdoc" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Google     GoogleConfig     `mapstructure:"google"`
	Twilio     TwilioConfig     `mapstructure:"twilio"`
}

type InstantdocConfig struct {
	PrivateKeyPem string         `mapstructure:"privateKeyPem" validate:"required"`
	Workers       int            `mapstructure:"workers" validate:"omitempty,min=1"`
	Cron          CronConfig     `mapstructure:"cron" validate:"required"`
	Listener      ListenerConfig `mapstructure:"listener" validate:"required"`
}

// DatabaseConfig selects the gorm dialector. 'sqlite' needs a PassPhrase,
// 'mysql' and 'postgres' need a DSN.
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver" validate:"required,oneof=sqlite mysql postgres"`
	DSN        string `mapstructure:"dsn"`
	PassPhrase string `mapstructure:"passPhrase"`
}

type GeminiConfig struct {
	APIKey  string        `mapstructure:"apiKey"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	MapsAPIKey             string        `mapstructure:"mapsApiKey"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type TwilioConfig struct {
	AccountSid          string `mapstructure:"accountSid"`
	AuthToken           string `mapstructure:"authToken"`
	MessagingServiceSid string `mapstructure:"messagingServiceSid"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone" validate:"required"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required"`
}

type StorageConfig struct {
	Bucket         string `mapstructure:"bucket" validate:"required_with=EnableBackup"`
	Prefix         string `mapstructure:"prefix"`
	BackupSchedule string `mapstructure:"backupSchedule" validate:"required_with=EnableBackup"`
	EnableBackup   bool   `mapstructure:"enableBackup"`
}
