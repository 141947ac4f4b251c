package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Printer    PrinterConfig
	Render     RenderConfig
	Shop       ShopConfig
	Loyalty    LoyaltyConfig
	Settlement SettlementConfig
	Artifacts  ArtifactsConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	PrintRequests int
	Window        time.Duration
}

type PrinterConfig struct {
	Address    string
	Timeout    time.Duration
	FeedLines  int
	CutEnabled bool
}

type RenderConfig struct {
	FontPaths []string
	FontSize  float64
	LogoPath  string
}

type ShopConfig struct {
	Name     string
	Address  string
	Phone    string
	Timezone string
}

type LoyaltyConfig struct {
	PointValue float64 // currency value of one redeemed point
}

type SettlementConfig struct {
	TrustClientTotals bool
}

type ArtifactsConfig struct {
	BucketURL string
}

// DefaultFontPaths lists Thai-capable fonts in priority order
var DefaultFontPaths = []string{
	"fonts/Sarabun-Regular.ttf",
	"fonts/THSarabunNew.ttf",
	"/usr/share/fonts/truetype/tlwg/Garuda.ttf",
	"/usr/share/fonts/truetype/tlwg/Loma.ttf",
	"/usr/share/fonts/truetype/noto/NotoSansThai-Regular.ttf",
	"/usr/share/fonts/noto/NotoSansThai-Regular.ttf",
	"/Library/Fonts/Thonburi.ttf",
	"C:\\Windows\\Fonts\\tahoma.ttf",
}

func Load() *Config {
	// .env values are pushed into the process environment first so that
	// AutomaticEnv sees them even when viper cannot parse the file.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", "http://localhost:5173,https://localhost:5173")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_DATABASE", "tookjai")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_PRINT_REQUESTS", 30)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("PRINTER_ADDRESS", "192.168.1.250:9100")
	viper.SetDefault("PRINTER_TIMEOUT", "5s")
	viper.SetDefault("PRINTER_FEED_LINES", 6)
	viper.SetDefault("PRINTER_CUT_ENABLED", true)
	viper.SetDefault("RENDER_FONT_PATHS", strings.Join(DefaultFontPaths, ","))
	viper.SetDefault("RENDER_FONT_SIZE", 26)
	viper.SetDefault("RENDER_LOGO_PATH", "assets/logo.png")
	viper.SetDefault("SHOP_NAME", "ถูกใจการค้า")
	viper.SetDefault("SHOP_ADDRESS", "526 ม.11 ต.บางตาเถร อ.สองพี่น้อง จ.สุพรรณบุรี 72110")
	viper.SetDefault("SHOP_PHONE", "089-999-8888")
	viper.SetDefault("SHOP_TIMEZONE", "Asia/Bangkok")
	viper.SetDefault("LOYALTY_POINT_VALUE", 1.0)
	viper.SetDefault("SETTLEMENT_TRUST_CLIENT_TOTALS", true)
	viper.SetDefault("ARTIFACTS_BUCKET_URL", "file:///var/lib/tookjai/receipts?create_dir=true")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("SERVER_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			PrintRequests: viper.GetInt("RATE_LIMIT_PRINT_REQUESTS"),
			Window:        viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Printer: PrinterConfig{
			Address:    viper.GetString("PRINTER_ADDRESS"),
			Timeout:    viper.GetDuration("PRINTER_TIMEOUT"),
			FeedLines:  viper.GetInt("PRINTER_FEED_LINES"),
			CutEnabled: viper.GetBool("PRINTER_CUT_ENABLED"),
		},
		Render: RenderConfig{
			FontPaths: splitList(viper.GetString("RENDER_FONT_PATHS")),
			FontSize:  viper.GetFloat64("RENDER_FONT_SIZE"),
			LogoPath:  viper.GetString("RENDER_LOGO_PATH"),
		},
		Shop: ShopConfig{
			Name:     viper.GetString("SHOP_NAME"),
			Address:  viper.GetString("SHOP_ADDRESS"),
			Phone:    viper.GetString("SHOP_PHONE"),
			Timezone: viper.GetString("SHOP_TIMEZONE"),
		},
		Loyalty: LoyaltyConfig{
			PointValue: viper.GetFloat64("LOYALTY_POINT_VALUE"),
		},
		Settlement: SettlementConfig{
			TrustClientTotals: viper.GetBool("SETTLEMENT_TRUST_CLIENT_TOTALS"),
		},
		Artifacts: ArtifactsConfig{
			BucketURL: viper.GetString("ARTIFACTS_BUCKET_URL"),
		},
	}
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// Location returns the shop time zone, falling back to the local zone when
// the name is empty or unknown
func (c ShopConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: Unknown shop timezone %q: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
