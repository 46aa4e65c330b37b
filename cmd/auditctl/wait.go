package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/config"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the ingestion server to be ready",
	Long: `Wait for the ingestion server to be ready by polling its health endpoint.

This command will repeatedly check /healthz until it responds successfully
or the maximum number of retries is reached.

Example:
  auditctl wait
  auditctl wait --url http://audit:8080 --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		url, _ := cmd.Flags().GetString("url")
		retries, _ := cmd.Flags().GetInt("retries")

		if url == "" {
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
				os.Exit(1)
			}
			url = "http://" + cfg.ListenAddress
		}

		if err := waitForServer(url, retries, time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Server did not become ready: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Audit server is ready")
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("url", "", "server base URL (defaults to http://<listen_address>)")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

func waitForServer(baseURL string, retries int, interval time.Duration) error {
	url := baseURL + "/healthz"
	client := &http.Client{Timeout: 2 * time.Second}

	fmt.Println("Waiting for the audit server to be ready...")

	for i := 0; i < retries; i++ {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode < 300 {
				fmt.Println()
				return nil
			}
		}

		fmt.Print(".")
		time.Sleep(interval)
	}

	fmt.Println()
	return fmt.Errorf("server is not ready after %d attempts", retries)
}
