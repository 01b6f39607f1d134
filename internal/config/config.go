package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment. It is loaded once at
// process start and passed around by value; nothing mutates it afterwards.
type Config struct {
	FalKey       string // FAL_KEY, credential for the hosted generation API
	LoraBaseURL  string // SAFETENSORS_URL, prefix for shorthand LoRA names
	ImageBaseURL string // SOURCE_IMAGE_URL, prefix for shorthand image names
	PromptsDir   string // PROMPTS_DIR, where --promptfile lookups happen
}

// Load reads configuration from the environment, honoring a .env file in the
// working directory when present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		FalKey:       os.Getenv("FAL_KEY"),
		LoraBaseURL:  os.Getenv("SAFETENSORS_URL"),
		ImageBaseURL: os.Getenv("SOURCE_IMAGE_URL"),
		PromptsDir:   os.Getenv("PROMPTS_DIR"),
	}
	if cfg.PromptsDir == "" {
		cfg.PromptsDir = "prompts"
	}
	return cfg
}

// RequireKey reports whether the API credential is available. Dry runs never
// call this; real requests fail here before any network traffic.
func (c Config) RequireKey() error {
	if c.FalKey == "" {
		return errors.New("FAL_KEY is not set")
	}
	return nil
}
