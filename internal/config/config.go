package config

import "os"

// Config holds all settings of the contacts manager. Every value comes from
// an environment variable and has a default suitable for local development.
type Config struct {
	Port       string
	DBUser     string
	DBPassword string
	DBHost     string
	UploadDir  string
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:       get("PORT", "8080"),
		DBUser:     get("DBUSER", "root"),
		DBPassword: get("DBPWD", ""),
		DBHost:     get("DBHOST", "localhost"),
		UploadDir:  get("UPLOAD_DIR", "uploads"),
	}
}

func get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
