package daemon

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// ServiceLabel names the launchd job and the systemd unit.
const ServiceLabel = "com.simplay.daemon"

// SystemdUnitName is the user unit file name.
const SystemdUnitName = "simplay.service"

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.BinaryPath}}</string>
		<string>daemon</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>{{.LogPath}}/simplay.log</string>
	<key>StandardErrorPath</key>
	<string>{{.LogPath}}/simplay.err</string>
	<key>WorkingDirectory</key>
	<string>{{.WorkingDirectory}}</string>
	<key>EnvironmentVariables</key>
	<dict>
		<key>PATH</key>
		<string>/opt/homebrew/bin:/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin</string>
	</dict>
</dict>
</plist>
`

const systemdTemplate = `[Unit]
Description=simplay music daemon
After=network-online.target sound.target
Wants=network-online.target

[Service]
Type=simple
ExecStart={{.BinaryPath}} daemon
WorkingDirectory={{.WorkingDirectory}}
Restart=on-failure
RestartSec=5
StandardOutput=append:{{.LogPath}}/simplay.log
StandardError=append:{{.LogPath}}/simplay.err

[Install]
WantedBy=default.target
`

// ServiceConfig holds the values substituted into service definitions
type ServiceConfig struct {
	BinaryPath       string
	LogPath          string
	WorkingDirectory string
}

// GeneratePlist renders a launchd agent definition.
func GeneratePlist(config ServiceConfig) (string, error) {
	return render("plist", plistTemplate, config)
}

// GenerateSystemdUnit renders a systemd user unit.
func GenerateSystemdUnit(config ServiceConfig) (string, error) {
	return render("systemd", systemdTemplate, config)
}

func render(name, text string, config ServiceConfig) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}

	data := struct {
		ServiceConfig
		Label string
	}{config, ServiceLabel}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.String(), nil
}

// PlistPath returns where the launchd agent is installed
func PlistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, "Library", "LaunchAgents", ServiceLabel+".plist"), nil
}

// SystemdUnitPath returns where the systemd user unit is installed
func SystemdUnitPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "systemd", "user", SystemdUnitName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "systemd", "user", SystemdUnitName), nil
}
