package extractor

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ivmarkin/veridoc/internal/core/domain"
)

type storageFake struct {
	objects map[string][]byte
}

func (s *storageFake) Save(ctx context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = raw
	return nil
}

func (s *storageFake) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.objects[key])), nil
}

func TestExtractPlaintext(t *testing.T) {
	storage := &storageFake{objects: map[string][]byte{
		"b1/essay.txt": []byte("  An essay about rivers.\n"),
	}}
	ex := New(storage)

	text, err := ex.Extract(context.Background(), &domain.Document{
		Filename:    "essay.txt",
		StoragePath: "b1/essay.txt",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "An essay about rivers." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractPlaintextRejectsBinary(t *testing.T) {
	storage := &storageFake{objects: map[string][]byte{
		"b1/blob.bin": {0xff, 0xfe, 0x00, 0x80},
	}}
	ex := New(storage)

	_, err := ex.Extract(context.Background(), &domain.Document{
		Filename:    "blob.bin",
		StoragePath: "b1/blob.bin",
	})
	if err == nil {
		t.Fatal("expected error for non-UTF-8 input")
	}
}

func TestExtractXLSX(t *testing.T) {
	workbook := excelize.NewFile()
	if err := workbook.SetSheetRow("Sheet1", "A1", &[]any{"term", "definition"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := workbook.SetSheetRow("Sheet1", "A2", &[]any{"osmosis", "diffusion of water"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	storage := &storageFake{objects: map[string][]byte{
		"b1/glossary.xlsx": buf.Bytes(),
	}}
	ex := New(storage)

	text, err := ex.Extract(context.Background(), &domain.Document{
		Filename:    "glossary.xlsx",
		StoragePath: "b1/glossary.xlsx",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(text, "term definition") || !strings.Contains(text, "osmosis diffusion of water") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractDispatchIsCaseInsensitive(t *testing.T) {
	storage := &storageFake{objects: map[string][]byte{
		"b1/NOTES.TXT": []byte("upper case extension"),
	}}
	ex := New(storage)

	text, err := ex.Extract(context.Background(), &domain.Document{
		Filename:    "NOTES.TXT",
		StoragePath: "b1/NOTES.TXT",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "upper case extension" {
		t.Fatalf("unexpected text %q", text)
	}
}
