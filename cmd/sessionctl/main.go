// Command sessionctl is an operator CLI that logs into the admin API and
// lists currently open Forward-WebSocket sessions.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type loginResponse struct {
	Token string `json:"token"`
}

type sessionView struct {
	ID          string    `json:"id"`
	PathClass   string    `json:"path_class"`
	ConnectedAt time.Time `json:"connected_at"`
}

func main() {
	_ = godotenv.Load()

	base := strings.TrimRight(envOrDefault("ADMIN_API_URL", "http://localhost:8081"), "/")
	username := envOrDefault("ADMIN_USERNAME", "admin")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD must be set")
		os.Exit(1)
	}

	client := &http.Client{Timeout: 5 * time.Second}

	token, err := login(client, base, username, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}

	sessions, err := listSessions(client, base, token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list sessions: %v\n", err)
		os.Exit(1)
	}

	if len(sessions) == 0 {
		fmt.Println("no sessions connected")
		return
	}
	for _, s := range sessions {
		fmt.Printf("%s\t%s\t%s\n", s.ID, s.PathClass, s.ConnectedAt.Format(time.RFC3339))
	}
}

func login(client *http.Client, base, username, password string) (string, error) {
	body := strings.NewReader(fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	resp, err := client.Post(base+"/admin/login", "application/json", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func listSessions(client *http.Client, base, token string) ([]sessionView, error) {
	req, err := http.NewRequest(http.MethodGet, base+"/admin/sessions", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var sessions []sessionView
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
