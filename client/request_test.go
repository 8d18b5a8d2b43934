package client

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ivmarkin/veridoc/pkg/api"
)

func TestBuildAnalysisRequestRejectsEmptyFileSet(t *testing.T) {
	_, err := BuildAnalysisRequest(nil, api.OptionsFor(api.AnalysisBoth, api.ProviderLocal, 0.5))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestBuildAnalysisRequestRejectsEdgeThresholds(t *testing.T) {
	files := []File{{Name: "a.txt", Content: strings.NewReader("hello")}}
	for _, threshold := range []float64{0.0, 1.0} {
		_, err := BuildAnalysisRequest(files, api.OptionsFor(api.AnalysisAI, api.ProviderLocal, threshold))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("threshold %.1f: expected ErrValidation, got %v", threshold, err)
		}
	}
}

func TestBuildAnalysisRequestSerializesOptions(t *testing.T) {
	files := []File{
		{Name: "a.txt", Content: strings.NewReader("first")},
		{Name: "b.txt", Content: strings.NewReader("second")},
		{Name: "c.txt", Content: strings.NewReader("third")},
	}
	request, err := BuildAnalysisRequest(files, api.OptionsFor(api.AnalysisBoth, api.ProviderLocal, 0.5))
	if err != nil {
		t.Fatalf("BuildAnalysisRequest() error = %v", err)
	}
	if !strings.HasPrefix(request.contentType, "multipart/form-data") {
		t.Fatalf("expected multipart content type, got %s", request.contentType)
	}

	body := string(request.body)
	optionsStart := strings.Index(body, `{"provider"`)
	if optionsStart < 0 {
		t.Fatalf("options block missing from body")
	}
	optionsEnd := strings.Index(body[optionsStart:], "}")
	var opts api.AnalysisOptions
	if err := json.Unmarshal([]byte(body[optionsStart:optionsStart+optionsEnd+1]), &opts); err != nil {
		t.Fatalf("unmarshal options block: %v", err)
	}
	if !opts.CheckPlagiarism || !opts.CheckAI {
		t.Fatalf("analysis type both must enable both checks, got %+v", opts)
	}
	if opts.Provider != api.ProviderLocal || opts.AIThreshold != 0.5 {
		t.Fatalf("options not echoed: %+v", opts)
	}

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		if !strings.Contains(body, `filename="`+name+`"`) {
			t.Fatalf("file %s missing from multipart body", name)
		}
	}
}
