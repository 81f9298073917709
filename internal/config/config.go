package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Contact sender modes.
const (
	SenderStore    = "store"
	SenderSMTP     = "smtp"
	SenderSimulate = "simulate"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	SMTP struct {
		Host     string
		Port     string
		User     string
		Password string
		To       string
	}
	Contact struct {
		Sender      string
		ResetDelay  time.Duration
		IdleTTL     time.Duration
		SendTimeout time.Duration
	}
	ContentPath     string
	AdminEmail      string
	SessionLifetime time.Duration
	InsecureCookies bool
}

// AdminEnabled reports whether enough OIDC settings are present to mount
// the admin inbox.
func (c *Config) AdminEnabled() bool {
	return c.OIDC.Issuer != ""
}

// Load reads config from environment (PORTFOLIO_ prefix) and optional portfolio.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("portfolio")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "portfolio.db")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("contact.sender", SenderStore)
	v.SetDefault("contact.reset_delay", "5s")
	v.SetDefault("contact.idle_ttl", "30m")
	v.SetDefault("contact.send_timeout", "15s")
	v.SetDefault("smtp.port", "587")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.SMTP.Host = v.GetString("smtp.host")
	cfg.SMTP.Port = v.GetString("smtp.port")
	cfg.SMTP.User = v.GetString("smtp.user")
	cfg.SMTP.Password = v.GetString("smtp.password")
	cfg.SMTP.To = v.GetString("smtp.to")
	cfg.Contact.Sender = v.GetString("contact.sender")
	cfg.ContentPath = v.GetString("content.path")
	cfg.AdminEmail = v.GetString("admin_email")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	durations := []struct {
		key, env string
		dst      *time.Duration
	}{
		{"session.lifetime", "PORTFOLIO_SESSION_LIFETIME", &cfg.SessionLifetime},
		{"contact.reset_delay", "PORTFOLIO_CONTACT_RESET_DELAY", &cfg.Contact.ResetDelay},
		{"contact.idle_ttl", "PORTFOLIO_CONTACT_IDLE_TTL", &cfg.Contact.IdleTTL},
		{"contact.send_timeout", "PORTFOLIO_CONTACT_SEND_TIMEOUT", &cfg.Contact.SendTimeout},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.env, err)
		}
		*d.dst = parsed
	}

	switch cfg.Contact.Sender {
	case SenderStore, SenderSimulate:
	case SenderSMTP:
		if cfg.SMTP.Host == "" || cfg.SMTP.User == "" || cfg.SMTP.Password == "" || cfg.SMTP.To == "" {
			return nil, fmt.Errorf("PORTFOLIO_SMTP_HOST, _USER, _PASSWORD and _TO are required when PORTFOLIO_CONTACT_SENDER=smtp")
		}
	default:
		return nil, fmt.Errorf("PORTFOLIO_CONTACT_SENDER must be one of store, smtp, simulate (got %q)", cfg.Contact.Sender)
	}

	if cfg.AdminEnabled() {
		if cfg.OIDC.ClientID == "" {
			return nil, fmt.Errorf("PORTFOLIO_OIDC_CLIENT_ID is required when PORTFOLIO_OIDC_ISSUER is set")
		}
		if cfg.OIDC.ClientSecret == "" {
			return nil, fmt.Errorf("PORTFOLIO_OIDC_CLIENT_SECRET is required when PORTFOLIO_OIDC_ISSUER is set")
		}
		if cfg.OIDC.RedirectURL == "" {
			return nil, fmt.Errorf("PORTFOLIO_OIDC_REDIRECT_URL is required when PORTFOLIO_OIDC_ISSUER is set")
		}
		if cfg.AdminEmail == "" {
			return nil, fmt.Errorf("PORTFOLIO_ADMIN_EMAIL is required when PORTFOLIO_OIDC_ISSUER is set")
		}
	}

	return cfg, nil
}
