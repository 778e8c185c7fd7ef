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
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		AppName  string

		API      APIConfig
		Firebase FirebaseConfig
		Rollbar  RollbarConfig
	}

	APIConfig struct {
		// BaseURL of the EduSystem backend, without a trailing slash.
		BaseURL string
		// PageSize is the number of posts fetched per feed page.
		PageSize int
		// ListTimeout bounds a single feed page fetch; on expiry the
		// enhanced endpoint is abandoned and the basic one is tried.
		ListTimeout time.Duration
		// RequestTimeout applies to every other API call.
		RequestTimeout time.Duration
	}

	FirebaseConfig struct {
		APIKey      string
		SignInURL   string // identity toolkit base; override for tests
		TokenURL    string // secure token base; override for tests
		TokenLeeway time.Duration
	}

	RollbarConfig struct {
		Token string
	}
)

func NewConfig(build string) *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "EduSystem")
	conf.SetDefault("apiBaseUrl", "http://localhost:8000")
	conf.SetDefault("apiPageSize", 20)
	conf.SetDefault("apiListTimeout", 10*time.Second)
	conf.SetDefault("apiRequestTimeout", 30*time.Second)
	conf.SetDefault("firebaseApiKey", "")
	conf.SetDefault("firebaseSignInUrl", "https://identitytoolkit.googleapis.com/v1")
	conf.SetDefault("firebaseTokenUrl", "https://securetoken.googleapis.com/v1")
	conf.SetDefault("firebaseTokenLeeway", time.Minute)
	conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: conf.GetBool("testMode"),
		Env:      env,
		Build:    build,
		AppName:  conf.GetString("appName"),
		API: APIConfig{
			// some proxies 404 on "//api"; strip trailing slashes once here
			BaseURL:        strings.TrimRight(conf.GetString("apiBaseUrl"), "/"),
			PageSize:       conf.GetInt("apiPageSize"),
			ListTimeout:    conf.GetDuration("apiListTimeout"),
			RequestTimeout: conf.GetDuration("apiRequestTimeout"),
		},
		Firebase: FirebaseConfig{
			APIKey:      conf.GetString("firebaseApiKey"),
			SignInURL:   strings.TrimRight(conf.GetString("firebaseSignInUrl"), "/"),
			TokenURL:    strings.TrimRight(conf.GetString("firebaseTokenUrl"), "/"),
			TokenLeeway: conf.GetDuration("firebaseTokenLeeway"),
		},
		Rollbar: RollbarConfig{
			Token: conf.GetString("rollbarToken"),
		},
	}
}
