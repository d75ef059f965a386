package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dmfenton/Sketchpad-sub000/internal/auth"
	"github.com/dmfenton/Sketchpad-sub000/internal/config"
)

// fileCredentials is a file-backed auth collaborator: the access token
// lives in the sketchpad home, refresh goes through the REST API, and
// sign-out deletes the cached token.
type fileCredentials struct {
	cfg        *config.Config
	httpClient *http.Client
}

var _ auth.Credentials = (*fileCredentials)(nil)

func newFileCredentials(cfg *config.Config) *fileCredentials {
	return &fileCredentials{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// CurrentToken reads the cached access token.
func (f *fileCredentials) CurrentToken() (string, error) {
	data, err := os.ReadFile(f.cfg.TokenFile)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.cfg.TokenFile)
	}
	return token, nil
}

// RefreshToken implements auth.Credentials.
func (f *fileCredentials) RefreshToken(ctx context.Context) (string, bool, error) {
	current, err := f.CurrentToken()
	if err != nil {
		return "", false, fmt.Errorf("read token: %w", err)
	}

	body, err := json.Marshal(map[string]string{"token": current})
	if err != nil {
		return "", false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(f.cfg.ServerURL, "/")+"/v1/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false, fmt.Errorf("refresh: status %d", resp.StatusCode)
	}

	var parsed struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", false, fmt.Errorf("parse refresh response: %w", err)
	}
	if !parsed.Success || parsed.Token == "" {
		return "", false, nil
	}

	if err := os.WriteFile(f.cfg.TokenFile, []byte(parsed.Token+"\n"), 0600); err != nil {
		return "", false, fmt.Errorf("persist token: %w", err)
	}
	return parsed.Token, true, nil
}

// SignOut implements auth.Credentials.
func (f *fileCredentials) SignOut(context.Context) error {
	if err := os.Remove(f.cfg.TokenFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
