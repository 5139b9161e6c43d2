package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug        bool
		TestMode     bool
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		AppName      string
		SecretKey    string
		RollbarToken string

		API    APIConfig
		Portal PortalConfig
		Server ServerConfig
	}

	// APIConfig points the portal at the school-administration backend.
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	PortalConfig struct {
		LoginPath   string
		LandingPath string
		TokenFile   string
	}

	// ServerConfig configures the dev auth stub server.
	ServerConfig struct {
		Addr               string
		JWTExpirationDelta time.Duration
	}
)

var Conf *Config

func init() {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Shule")
	v.SetDefault("secretKey", "x)#*c2(#yg4h^$cegm2emypoq5-wer)enb$+57=dz&uoxh2(h!")
	v.SetDefault("apiBaseURL", "http://localhost:8000")
	v.SetDefault("apiTimeout", 15*time.Second)
	v.SetDefault("loginPath", "/login")
	v.SetDefault("landingPath", "/dashboard")
	v.SetDefault("tokenFile", filepath.Join(homeDir(), ".shule", "token"))
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("jwtExpirationDelta", 24*time.Hour)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL: v.GetString("apiBaseURL"),
			Timeout: v.GetDuration("apiTimeout"),
		},
		Portal: PortalConfig{
			LoginPath:   v.GetString("loginPath"),
			LandingPath: v.GetString("landingPath"),
			TokenFile:   v.GetString("tokenFile"),
		},
		Server: ServerConfig{
			Addr:               v.GetString("serverAddr"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
