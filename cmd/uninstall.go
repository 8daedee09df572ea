package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// uninstallCmd represents the uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the simplay daemon user service",
	Long: `Stop the simplay daemon and remove the systemd unit or launchd agent
written by 'simplay install'.

After uninstalling, the daemon will no longer run automatically on login.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := currentServiceManager()
		if err != nil {
			return err
		}

		servicePath, err := mgr.path()
		if err != nil {
			return err
		}
		if _, err := os.Stat(servicePath); os.IsNotExist(err) {
			fmt.Println("Daemon is not installed (service file not found)")
			return nil
		}

		fmt.Println("Stopping daemon...")
		if err := mgr.unload(servicePath); err != nil {
			fmt.Printf("Warning: failed to stop daemon: %v\n", err)
			fmt.Println("Continuing with service file removal...")
		} else {
			fmt.Println("✓ Daemon stopped")
		}

		if err := os.Remove(servicePath); err != nil {
			return fmt.Errorf("failed to remove service file: %w", err)
		}

		fmt.Printf("✓ Removed %s\n", servicePath)
		fmt.Println("\nThe simplay daemon has been uninstalled successfully.")
		fmt.Println("\nTo reinstall, run:")
		fmt.Println("  simplay install")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
