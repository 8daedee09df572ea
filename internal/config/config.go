package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Subsonic-compatible server
	ServerURL      string
	Username       string
	Password       string
	APIVersion     string
	ClientName     string
	EndpointSuffix string
	TLSVerify      bool
	RequestTimeout time.Duration

	// Songs per library shuffle. 0 shuffles the whole library.
	MaxShuffle int

	// Percent per volume up/down
	VolumeStep int

	// Added to a track's length before the daemon forces an advance
	EndGrace time.Duration

	// mpv binary, overridable with SIMPLAY_MPV
	MPVPath string

	History HistoryConfig
	Discord DiscordConfig
}

// HistoryConfig controls the local play journal
type HistoryConfig struct {
	Enabled bool
}

// DiscordConfig controls Discord Rich Presence
type DiscordConfig struct {
	Enabled bool
	AppID   string
}

const (
	envPrefix  = "SIMPLAY"
	configName = "config"
	configType = "yaml"
)

// Load reads configuration from the config directory and environment
func Load() (*Config, error) {
	return load(ConfigDir())
}

func load(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("mpv_path", envPrefix+"_MPV", envPrefix+"_MPV_PATH")

	// The file is optional; a present but broken one is an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		ServerURL:      strings.TrimRight(strings.TrimSpace(v.GetString("server_url")), "/"),
		Username:       v.GetString("username"),
		Password:       v.GetString("password"),
		APIVersion:     v.GetString("api_version"),
		ClientName:     v.GetString("client_name"),
		EndpointSuffix: v.GetString("endpoint_suffix"),
		TLSVerify:      v.GetBool("tls_verify"),
		RequestTimeout: time.Duration(v.GetInt("request_timeout_seconds")) * time.Second,
		MaxShuffle:     v.GetInt("max_shuffle"),
		VolumeStep:     v.GetInt("volume_step"),
		EndGrace:       time.Duration(v.GetInt("end_grace_ms")) * time.Millisecond,
		MPVPath:        v.GetString("mpv_path"),
		History: HistoryConfig{
			Enabled: v.GetBool("history.enabled"),
		},
		Discord: DiscordConfig{
			Enabled: v.GetBool("discord.enabled"),
			AppID:   v.GetString("discord.app_id"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_url", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("api_version", "1.16.1")
	v.SetDefault("client_name", "simplay")
	v.SetDefault("endpoint_suffix", "view")
	v.SetDefault("tls_verify", true)
	v.SetDefault("request_timeout_seconds", 20)
	v.SetDefault("max_shuffle", 0)
	v.SetDefault("volume_step", 5)
	v.SetDefault("end_grace_ms", 500)
	v.SetDefault("mpv_path", "mpv")
	v.SetDefault("history.enabled", true)
	v.SetDefault("discord.enabled", false)
	v.SetDefault("discord.app_id", "")
}

// Validate reports the first setting that prevents the daemon from running
func (c *Config) Validate() error {
	switch {
	case c.ServerURL == "":
		return errors.New("server_url is not set (run 'simplay configure')")
	case c.Username == "":
		return errors.New("username is not set (run 'simplay configure')")
	case c.Password == "":
		return errors.New("password is not set (run 'simplay configure')")
	case c.MaxShuffle < 0:
		return fmt.Errorf("max_shuffle must be 0 or more, got %d", c.MaxShuffle)
	case c.VolumeStep < 1 || c.VolumeStep > 100:
		return fmt.Errorf("volume_step must be between 1 and 100, got %d", c.VolumeStep)
	case c.EndGrace < 0:
		return fmt.Errorf("end_grace_ms must not be negative, got %d", c.EndGrace.Milliseconds())
	case c.Discord.Enabled && c.Discord.AppID == "":
		return errors.New("discord.app_id is required when discord.enabled is set")
	}
	return nil
}

// Save writes configuration to the config file. The file holds the server
// password, so it is readable by the owner only.
func (c *Config) Save() error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return c.saveTo(filepath.Join(dir, configName+"."+configType))
}

func (c *Config) saveTo(path string) error {
	v := viper.New()

	v.Set("server_url", c.ServerURL)
	v.Set("username", c.Username)
	v.Set("password", c.Password)
	v.Set("api_version", c.APIVersion)
	v.Set("client_name", c.ClientName)
	v.Set("endpoint_suffix", c.EndpointSuffix)
	v.Set("tls_verify", c.TLSVerify)
	v.Set("request_timeout_seconds", int(c.RequestTimeout/time.Second))
	v.Set("max_shuffle", c.MaxShuffle)
	v.Set("volume_step", c.VolumeStep)
	v.Set("end_grace_ms", c.EndGrace.Milliseconds())
	v.Set("mpv_path", c.MPVPath)
	v.Set("history.enabled", c.History.Enabled)
	v.Set("discord.enabled", c.Discord.Enabled)
	v.Set("discord.app_id", c.Discord.AppID)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// ConfigDir returns $XDG_CONFIG_HOME/simplay, falling back to ~/.config/simplay
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "simplay")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "simplay")
}

// DataDir returns $XDG_DATA_HOME/simplay, falling back to ~/.local/share/simplay
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "simplay")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "simplay")
}

// RuntimeDir holds the daemon's sockets. It lives under $XDG_RUNTIME_DIR
// when set and in the config directory otherwise.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "simplay")
	}
	return ConfigDir()
}

// SocketPath returns the control socket path
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "simplay.sock")
}

// PlayerSocketPath returns the mpv IPC socket path
func PlayerSocketPath() string {
	return filepath.Join(RuntimeDir(), "simplay-mpv.sock")
}

// HistoryPath returns the play journal database path
func HistoryPath() string {
	return filepath.Join(DataDir(), "history.db")
}

// LogDir returns where service managers write daemon logs
func LogDir() string {
	return filepath.Join(DataDir(), "logs")
}
