package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" envDefault:"10"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	// Politica de OTP y registro. MinAge es configurable porque el
	// limite legal depende del mercado.
	OTPTTLMinutes      int `env:"OTP_TTL_MINUTES" envDefault:"10"`
	OTPRequestsPerHour int `env:"OTP_REQUESTS_PER_HOUR" envDefault:"5"`
	MinAge             int `env:"MIN_AGE" envDefault:"18"`
	MaxAge             int `env:"MAX_AGE" envDefault:"100"`

	CloudinaryURL string `env:"CLOUDINARY_URL"`
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadBaseURL string `env:"UPLOAD_BASE_URL" envDefault:"/uploads"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
