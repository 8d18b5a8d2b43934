package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ivmarkin/veridoc/client"
)

type sessionFile struct {
	Token       string `json:"token"`
	LastBatchID string `json:"last_batch_id"`
}

func sessionPath() string {
	if dir := os.Getenv("VERIDOC_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "session.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".veridoc-session.json"
	}
	return filepath.Join(home, ".veridoc", "session.json")
}

func loadSession() *client.Session {
	session := client.NewSession()
	raw, err := os.ReadFile(sessionPath())
	if err != nil {
		return session
	}
	var state sessionFile
	if err := json.Unmarshal(raw, &state); err != nil {
		return session
	}
	session.SetToken(state.Token)
	if state.LastBatchID != "" {
		session.SetLastBatchID(state.LastBatchID)
	}
	return session
}

func saveSession(session *client.Session) error {
	path := sessionPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	state := sessionFile{
		Token:       session.Token(),
		LastBatchID: session.LastBatchID(),
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func clearSession() error {
	err := os.Remove(sessionPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
