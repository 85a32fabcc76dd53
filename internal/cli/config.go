package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	SessionID   string
	SessionFile string
	Output      string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("SLOTCTL_SERVER", "http://localhost:8080"),
		SessionID:   os.Getenv("SLOTCTL_SESSION"),
		SessionFile: getEnvOrDefault("SLOTCTL_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
	}
}

// LoadSession loads the session ID from file if not already set
func (c *Config) LoadSession() error {
	if c.SessionID != "" {
		return nil
	}

	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No session file is fine
		}
		return err
	}

	c.SessionID = string(data)
	return nil
}

// SaveSession saves the session ID to the session file
func (c *Config) SaveSession(sessionID string) error {
	c.SessionID = sessionID

	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.SessionFile, []byte(sessionID), 0600)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".slotctl/session"
	}
	return filepath.Join(home, ".slotctl", "session")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
