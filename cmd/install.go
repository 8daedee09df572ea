package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jfmyers9/simplay/internal/config"
	"github.com/jfmyers9/simplay/internal/daemon"
	"github.com/spf13/cobra"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the simplay daemon as a user service",
	Long: `Install the simplay daemon so it starts automatically on login.

On Linux this writes a systemd user unit to ~/.config/systemd/user/ and
enables it with systemctl --user. On macOS it writes a launchd agent to
~/Library/LaunchAgents/ and loads it with launchctl.

Both restart the daemon if it exits with an error, for example when mpv
goes away.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

// serviceManager abstracts the init system for the current platform.
type serviceManager struct {
	name     string
	path     func() (string, error)
	generate func(daemon.ServiceConfig) (string, error)
	load     func(path string) error
	unload   func(path string) error
	hint     string
}

func currentServiceManager() (serviceManager, error) {
	switch runtime.GOOS {
	case "linux":
		return serviceManager{
			name:     "systemd",
			path:     daemon.SystemdUnitPath,
			generate: daemon.GenerateSystemdUnit,
			load:     systemdEnable,
			unload:   systemdDisable,
			hint:     "systemctl --user status " + daemon.SystemdUnitName,
		}, nil
	case "darwin":
		return serviceManager{
			name:     "launchd",
			path:     daemon.PlistPath,
			generate: daemon.GeneratePlist,
			load:     launchdLoad,
			unload:   launchdUnload,
			hint:     "launchctl list | grep simplay",
		}, nil
	default:
		return serviceManager{}, fmt.Errorf("service install is not supported on %s", runtime.GOOS)
	}
}

func runInstall(cmd *cobra.Command, args []string) error {
	mgr, err := currentServiceManager()
	if err != nil {
		return err
	}

	binaryPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	binaryPath, err = filepath.EvalSymlinks(binaryPath)
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	logPath := config.LogDir()
	if err := os.MkdirAll(logPath, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	content, err := mgr.generate(daemon.ServiceConfig{
		BinaryPath:       binaryPath,
		LogPath:          logPath,
		WorkingDirectory: home,
	})
	if err != nil {
		return fmt.Errorf("failed to generate %s service: %w", mgr.name, err)
	}

	servicePath, err := mgr.path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(servicePath), 0o755); err != nil {
		return fmt.Errorf("failed to create service directory: %w", err)
	}

	if _, err := os.Stat(servicePath); err == nil {
		fmt.Println("Daemon is already installed. Reinstalling...")
		if err := mgr.unload(servicePath); err != nil {
			fmt.Printf("Warning: failed to stop existing daemon: %v\n", err)
		}
	}

	if err := os.WriteFile(servicePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}
	fmt.Printf("✓ Installed %s service to %s\n", mgr.name, servicePath)

	if err := mgr.load(servicePath); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Println("✓ Daemon loaded and started successfully")
	fmt.Printf("✓ Logs will be written to %s\n", logPath)
	fmt.Println("\nYou can check the daemon status with:")
	fmt.Printf("  %s\n", mgr.hint)
	fmt.Println("\nTo uninstall, run:")
	fmt.Println("  simplay uninstall")
	return nil
}

func systemdEnable(string) error {
	if err := run("systemctl", "--user", "daemon-reload"); err != nil {
		return err
	}
	return run("systemctl", "--user", "enable", "--now", daemon.SystemdUnitName)
}

func systemdDisable(string) error {
	return run("systemctl", "--user", "disable", "--now", daemon.SystemdUnitName)
}

// launchdLoad bootstraps the agent into the user's GUI domain.
func launchdLoad(plistPath string) error {
	domain, err := launchdDomain()
	if err != nil {
		return err
	}
	return run("launchctl", "bootstrap", domain, plistPath)
}

func launchdUnload(string) error {
	domain, err := launchdDomain()
	if err != nil {
		return err
	}
	return run("launchctl", "bootout", domain+"/"+daemon.ServiceLabel)
}

func launchdDomain() (string, error) {
	out, err := exec.Command("id", "-u").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get user ID: %w", err)
	}
	return "gui/" + strings.TrimSpace(string(out)), nil
}

func run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s %s: %s", name, strings.Join(args, " "), msg)
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}
