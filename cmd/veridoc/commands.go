package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivmarkin/veridoc/client"
	"github.com/ivmarkin/veridoc/pkg/api"
)

func newClient(cmd *cobra.Command) (*client.Client, *client.Session) {
	server, _ := cmd.Flags().GetString("server")
	session := loadSession()
	return client.New(server, client.WithSession(session)), session
}

func registerCMD() *cobra.Command {
	var email, password string
	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _ := newClient(cmd)
			if err := c.Register(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Println("account created, log in with: veridoc login")
			return nil
		},
	}
	register.Flags().StringVar(&email, "email", "", "account email")
	register.Flags().StringVar(&password, "password", "", "account password")
	_ = register.MarkFlagRequired("email")
	_ = register.MarkFlagRequired("password")
	return register
}

func loginCMD() *cobra.Command {
	var email, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Obtain an access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, session := newClient(cmd)
			if err := c.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			if err := saveSession(session); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Println("logged in")
			return nil
		},
	}
	login.Flags().StringVar(&email, "email", "", "account email")
	login.Flags().StringVar(&password, "password", "", "account password")
	_ = login.MarkFlagRequired("email")
	_ = login.MarkFlagRequired("password")
	return login
}

func logoutCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token and last batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _ := newClient(cmd)
			c.Logout()
			if err := clearSession(); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func submitCMD() *cobra.Command {
	var analysisType string
	var provider string
	var threshold float64
	submit := &cobra.Command{
		Use:   "submit [files...]",
		Short: "Submit documents as one analysis batch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, session := newClient(cmd)

			files := make([]client.File, 0, len(args))
			handles := make([]*os.File, 0, len(args))
			defer func() {
				for _, h := range handles {
					_ = h.Close()
				}
			}()
			for _, path := range args {
				handle, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open %s: %w", path, err)
				}
				handles = append(handles, handle)
				files = append(files, client.File{Name: filepath.Base(path), Content: handle})
			}

			opts := api.OptionsFor(api.AnalysisType(analysisType), api.Provider(provider), threshold)
			request, err := client.BuildAnalysisRequest(files, opts)
			if err != nil {
				return err
			}

			batchID, err := c.Submit(cmd.Context(), request)
			if err != nil {
				return err
			}
			if err := saveSession(session); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Printf("batch %s accepted (%d files)\n", batchID, len(files))
			return nil
		},
	}
	submit.Flags().StringVar(&analysisType, "type", string(api.AnalysisBoth), "analysis type: plagiarism, ai or both")
	submit.Flags().StringVar(&provider, "provider", string(api.ProviderLocal), "AI detection provider: local, openai or together")
	submit.Flags().Float64Var(&threshold, "threshold", 0.5, "AI decision threshold in [0.1, 0.9]")
	return submit
}

func batchesCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "batches",
		Short: "List submitted batches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _ := newClient(cmd)
			batches, err := c.ListBatches(cmd.Context())
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				fmt.Println("no batches yet")
				return nil
			}
			for _, batch := range batches {
				fmt.Printf("%s  %-11s %3d%%  %-10s docs=%d/%d  created=%s\n",
					batch.ID,
					batch.Status,
					batch.ProgressPercent(),
					batch.AnalysisType,
					batch.ProcessedDocs,
					batch.TotalDocs,
					batch.CreatedAt.Format("2006-01-02 15:04"),
				)
			}
			return nil
		},
	}
}

func resultsCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "results [batch-id]",
		Short: "Show per-document results for a batch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, session := newClient(cmd)

			batchID := session.LastBatchID()
			if len(args) == 1 {
				batchID = args[0]
			}
			if batchID == "" {
				return fmt.Errorf("no batch id given and no previous submission in this session")
			}

			batch, err := c.GetBatch(cmd.Context(), batchID)
			if err != nil {
				return err
			}
			results, err := c.GetResults(cmd.Context(), batchID)
			if err != nil {
				return err
			}

			fmt.Printf("batch %s: %s, %d%% processed\n", batch.ID, batch.Status, batch.ProgressPercent())
			for _, doc := range results {
				verdict := doc.Classify(batch.AIThreshold)
				fmt.Printf("  %-30s %-10s %s", doc.Filename, doc.Status, verdict.Label)
				if doc.AIAnalysis != nil && doc.AIAnalysis.Score != nil {
					fmt.Printf(" (score %.2f)", *doc.AIAnalysis.Score)
				}
				fmt.Println()
				if len(doc.PlagiarismAnalysis) == 0 && batch.AnalysisType != api.AnalysisAI {
					fmt.Println("    no matches found")
				}
				for _, match := range doc.PlagiarismAnalysis {
					fmt.Printf("    similar to %s (%.0f%%)\n", match.SimilarDocument, match.Similarity*100)
				}
			}
			return nil
		},
	}
}

func detectCMD() *cobra.Command {
	var provider string
	var threshold float64
	var fromFile string
	detect := &cobra.Command{
		Use:   "detect [text]",
		Short: "Run the AI check on a text snippet without creating a batch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _ := newClient(cmd)

			var text string
			switch {
			case fromFile != "":
				raw, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read %s: %w", fromFile, err)
				}
				text = string(raw)
			case len(args) == 1:
				text = args[0]
			default:
				return fmt.Errorf("pass text as an argument or use --file")
			}

			result, err := c.DetectText(cmd.Context(), text, api.Provider(provider), threshold)
			if err != nil {
				return err
			}
			fmt.Printf("%s: score %.2f, confidence %.2f (provider %s)\n",
				result.Label, result.Score, result.Confidence, result.Provider)
			return nil
		},
	}
	detect.Flags().StringVar(&provider, "provider", string(api.ProviderLocal), "AI detection provider")
	detect.Flags().Float64Var(&threshold, "threshold", 0.5, "AI decision threshold in [0.1, 0.9]")
	detect.Flags().StringVar(&fromFile, "file", "", "read the text from a file")
	return detect
}

func dashboardCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show usage totals for the logged-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _ := newClient(cmd)
			summary, err := c.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("batches:   %d\ndocuments: %d\n", summary.NumBatches, summary.NumDocuments)
			return nil
		},
	}
}
