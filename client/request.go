package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/ivmarkin/veridoc/pkg/api"
)

// File is one local document queued for analysis.
type File struct {
	Name    string
	Content io.Reader
}

// AnalysisRequest is a transport-ready submission payload: the multipart body
// with the raw file contents plus the serialized options block.
type AnalysisRequest struct {
	body        []byte
	contentType string
	options     api.AnalysisOptions
}

func (r *AnalysisRequest) Options() api.AnalysisOptions { return r.options }

// BuildAnalysisRequest validates the local input and assembles the multipart
// payload. It performs no I/O beyond reading the provided file contents.
func BuildAnalysisRequest(files []File, opts api.AnalysisOptions) (*AnalysisRequest, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to analyze", ErrValidation)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: create form file %s: %w", ErrValidation, file.Name, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, fmt.Errorf("%w: read file %s: %w", ErrValidation, file.Name, err)
		}
	}

	optionsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal options: %w", ErrValidation, err)
	}
	if err := writer.WriteField("options", string(optionsJSON)); err != nil {
		return nil, fmt.Errorf("%w: write options field: %w", ErrValidation, err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalize multipart body: %w", ErrValidation, err)
	}

	return &AnalysisRequest{
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
		options:     opts,
	}, nil
}
