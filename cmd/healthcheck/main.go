// Command healthcheck probes the admin API's /admin/healthz endpoint and
// exits non-zero on failure, suitable for a container HEALTHCHECK.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	addr := "http://localhost:8081/admin/healthz"
	if v := os.Getenv("ADMIN_HEALTHZ_URL"); v != "" {
		addr = v
	}

	client := http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "healthcheck failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "healthcheck failed: status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	os.Exit(0)
}
