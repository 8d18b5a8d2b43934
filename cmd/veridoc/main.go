package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:   "veridoc",
		Short: "Submit documents for plagiarism and AI-authorship analysis",
	}

	root.PersistentFlags().String("server", getenv("VERIDOC_SERVER", "http://localhost:8080"), "API server base URL")

	root.AddCommand(
		registerCMD(),
		loginCMD(),
		logoutCMD(),
		submitCMD(),
		batchesCMD(),
		resultsCMD(),
		detectCMD(),
		dashboardCMD(),
	)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
