package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Agent        AgentConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Printing     PrintingConfig
	RabbitMQ     RabbitMQConfig
	Bridge       BridgeConfig
	PrintersFile string
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
	Issuer      string
}

// AgentConfig is the credential of the single terminal configured through the
// environment. More terminals can be listed in PRINTERS_FILE.
type AgentConfig struct {
	ClientID string
	KeyHash  string
	Scopes   []string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// PrintingConfig tunes dispatch and device writes.
type PrintingConfig struct {
	Timeout          time.Duration
	ConnectTimeout   time.Duration
	USBChunkSize     int
	USBVendors       []uint16
	BluetoothChunk   int
	BluetoothDelay   time.Duration
	SerialChunkSize  int
	ScanTimeout      time.Duration
	BillSequence     string
	BillNumberStart  int64
	BusinessName     string
	BusinessAddress  string
	BusinessPhone    string
	BusinessGSTIN    string
	BusinessFSSAI    string
	BusinessFooter   string
	CurrencySymbol   string
	ShowGST          bool
	PureVeg          bool
	PrintJobLogLimit int
}

type RabbitMQConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
	Queue    string
}

// BridgeConfig selects how network and system printers are reached:
// "local" drives them from this process, "remote" forwards to another agent,
// "none" leaves only direct USB, Bluetooth and serial printing.
type BridgeConfig struct {
	Mode      string
	RemoteURL string
	Token     string
	Timeout   time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		slog.Warn(".env file not found, using environment variables", "error", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "posprint")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_ENABLED", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "posprint")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_ISSUER", "posprint")
	viper.SetDefault("AGENT_SCOPES", "print")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("PRINT_TIMEOUT", "20s")
	viper.SetDefault("PRINT_CONNECT_TIMEOUT", "10s")
	viper.SetDefault("PRINT_USB_CHUNK", 64)
	viper.SetDefault("PRINT_BT_CHUNK", 20)
	viper.SetDefault("PRINT_BT_DELAY", "20ms")
	viper.SetDefault("PRINT_SERIAL_CHUNK", 256)
	viper.SetDefault("PRINT_SCAN_TIMEOUT", "5s")
	viper.SetDefault("PRINT_BILL_SEQUENCE", "bill")
	viper.SetDefault("PRINT_BILL_START", 0)
	viper.SetDefault("PRINT_JOB_LOG_LIMIT", 500)
	viper.SetDefault("BUSINESS_FOOTER", "Thank you! Visit again")
	viper.SetDefault("BUSINESS_CURRENCY", "₹")
	viper.SetDefault("BUSINESS_SHOW_GST", true)
	viper.SetDefault("RABBITMQ_ENABLED", false)
	viper.SetDefault("RABBITMQ_HOST", "localhost")
	viper.SetDefault("RABBITMQ_PORT", 5672)
	viper.SetDefault("RABBITMQ_USER", "guest")
	viper.SetDefault("RABBITMQ_PASSWORD", "guest")
	viper.SetDefault("RABBITMQ_VHOST", "/")
	viper.SetDefault("RABBITMQ_QUEUE", "print.jobs")
	viper.SetDefault("BRIDGE_MODE", "local")
	viper.SetDefault("BRIDGE_TIMEOUT", "30s")
	viper.SetDefault("PRINTERS_FILE", "printers.yaml")

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Enabled:  viper.GetBool("DB_ENABLED"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			Issuer:      viper.GetString("JWT_ISSUER"),
		},
		Agent: AgentConfig{
			ClientID: viper.GetString("AGENT_CLIENT_ID"),
			KeyHash:  viper.GetString("AGENT_KEY_HASH"),
			Scopes:   splitList(viper.GetString("AGENT_SCOPES")),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Printing: PrintingConfig{
			Timeout:          viper.GetDuration("PRINT_TIMEOUT"),
			ConnectTimeout:   viper.GetDuration("PRINT_CONNECT_TIMEOUT"),
			USBChunkSize:     viper.GetInt("PRINT_USB_CHUNK"),
			USBVendors:       parseVendorIDs(viper.GetString("PRINT_USB_VENDORS")),
			BluetoothChunk:   viper.GetInt("PRINT_BT_CHUNK"),
			BluetoothDelay:   viper.GetDuration("PRINT_BT_DELAY"),
			SerialChunkSize:  viper.GetInt("PRINT_SERIAL_CHUNK"),
			ScanTimeout:      viper.GetDuration("PRINT_SCAN_TIMEOUT"),
			BillSequence:     viper.GetString("PRINT_BILL_SEQUENCE"),
			BillNumberStart:  viper.GetInt64("PRINT_BILL_START"),
			PrintJobLogLimit: viper.GetInt("PRINT_JOB_LOG_LIMIT"),
			BusinessName:     viper.GetString("BUSINESS_NAME"),
			BusinessAddress:  viper.GetString("BUSINESS_ADDRESS"),
			BusinessPhone:    viper.GetString("BUSINESS_PHONE"),
			BusinessGSTIN:    viper.GetString("BUSINESS_GSTIN"),
			BusinessFSSAI:    viper.GetString("BUSINESS_FSSAI"),
			BusinessFooter:   viper.GetString("BUSINESS_FOOTER"),
			CurrencySymbol:   viper.GetString("BUSINESS_CURRENCY"),
			ShowGST:          viper.GetBool("BUSINESS_SHOW_GST"),
			PureVeg:          viper.GetBool("BUSINESS_PURE_VEG"),
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:  viper.GetBool("RABBITMQ_ENABLED"),
			Host:     viper.GetString("RABBITMQ_HOST"),
			Port:     viper.GetInt("RABBITMQ_PORT"),
			User:     viper.GetString("RABBITMQ_USER"),
			Password: viper.GetString("RABBITMQ_PASSWORD"),
			VHost:    viper.GetString("RABBITMQ_VHOST"),
			Queue:    viper.GetString("RABBITMQ_QUEUE"),
		},
		Bridge: BridgeConfig{
			Mode:      strings.ToLower(viper.GetString("BRIDGE_MODE")),
			RemoteURL: viper.GetString("BRIDGE_REMOTE_URL"),
			Token:     viper.GetString("BRIDGE_TOKEN"),
			Timeout:   viper.GetDuration("BRIDGE_TIMEOUT"),
		},
		PrintersFile: viper.GetString("PRINTERS_FILE"),
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseVendorIDs reads a comma separated list of hex USB vendor ids such as
// "1a86,0x0dd4". Entries that do not parse are skipped.
func parseVendorIDs(s string) []uint16 {
	var out []uint16
	for _, part := range splitList(s) {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(part), "0x"), 16, 16)
		if err != nil {
			continue
		}
		out = append(out, uint16(v))
	}
	return out
}
