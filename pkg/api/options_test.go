package api

import "testing"

func TestOptionsForAlwaysEnablesAtLeastOneCheck(t *testing.T) {
	for _, at := range []AnalysisType{AnalysisPlagiarism, AnalysisAI, AnalysisBoth} {
		opts := OptionsFor(at, ProviderLocal, 0.5)
		if !opts.CheckPlagiarism && !opts.CheckAI {
			t.Fatalf("analysis type %q derived no checks", at)
		}
	}
}

func TestOptionsForBoth(t *testing.T) {
	opts := OptionsFor(AnalysisBoth, ProviderLocal, 0.5)
	if !opts.CheckPlagiarism || !opts.CheckAI {
		t.Fatalf("both must enable plagiarism and ai, got %+v", opts)
	}
	if opts.AnalysisType() != AnalysisBoth {
		t.Fatalf("round trip lost analysis type: %q", opts.AnalysisType())
	}
}

func TestValidateThresholdBounds(t *testing.T) {
	for _, threshold := range []float64{0.0, 0.05, 0.95, 1.0} {
		opts := OptionsFor(AnalysisBoth, ProviderLocal, threshold)
		if err := opts.Validate(); err == nil {
			t.Fatalf("threshold %.2f must be rejected", threshold)
		}
	}
	for _, threshold := range []float64{0.1, 0.5, 0.9} {
		opts := OptionsFor(AnalysisBoth, ProviderLocal, threshold)
		if err := opts.Validate(); err != nil {
			t.Fatalf("threshold %.2f must be accepted: %v", threshold, err)
		}
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	opts := OptionsFor(AnalysisAI, Provider("groq"), 0.5)
	if err := opts.Validate(); err == nil {
		t.Fatalf("unknown provider must be rejected")
	}
}

func TestValidateRejectsNoChecks(t *testing.T) {
	opts := AnalysisOptions{Provider: ProviderLocal, AIThreshold: 0.5}
	if err := opts.Validate(); err == nil {
		t.Fatalf("options with no checks must be rejected")
	}
}
