package datafiles

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"decision-backend/internal/shared/storage/object"
)

const (
	mimePDF  = "application/pdf"
	mimeCSV  = "text/csv"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// Previews feed the AI context window, so they are capped hard.
	maxPreviewRows  = 200
	maxPreviewBytes = 64 << 10
)

// ExtractText pulls a text rendering of a stored data file for use as
// analysis context. CSV and XLSX become row previews, PDF becomes plain
// text, anything text-like passes through truncated.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey string, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: read: %w", fileKey, mimeType, err)
	}

	text, err := ExtractTextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	return text, nil
}

// ExtractTextFromBytes extracts text from an in-memory payload.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := normalizeMimeType(mimeType, fileName, data)
	switch {
	case normalized == mimePDF:
		return extractPDF(data)
	case normalized == mimeCSV:
		return extractCSV(data)
	case normalized == mimeXLSX:
		return extractXLSX(data)
	case strings.HasPrefix(normalized, "text/"):
		return truncateText(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported mime type: %s", normalized)
	}
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return truncateText(buf.String()), nil
}

func extractCSV(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var buf strings.Builder
	rows := 0
	for rows < maxPreviewRows {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		buf.WriteString(strings.Join(record, " | "))
		buf.WriteString("\n")
		rows++
	}
	return truncateText(buf.String()), nil
}

// extractXLSX reads shared strings out of the workbook archive. This skips
// per-cell numeric values but captures headers and labels, which is what
// the analysis context needs most.
func extractXLSX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty xlsx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var sharedFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "xl/sharedStrings.xml" {
			sharedFile = f
			break
		}
	}
	if sharedFile == nil {
		return "", errors.New("sharedStrings.xml not found")
	}

	rc, err := sharedFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return truncateText(stripSheetXML(string(raw))), nil
}

func stripSheetXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "si" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func truncateText(text string) string {
	if len(text) <= maxPreviewBytes {
		return text
	}
	return text[:maxPreviewBytes]
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))

	ext := strings.ToLower(filepath.Ext(fileName))
	if clean == "" || clean == "application/octet-stream" || clean == "text/plain" {
		switch ext {
		case ".csv":
			return mimeCSV
		case ".pdf":
			return mimePDF
		case ".xlsx":
			return mimeXLSX
		}
	}
	if clean != "application/zip" {
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}
	if ext == ".xlsx" {
		return mimeXLSX
	}
	return clean
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "xl/workbook.xml" {
			return mimeXLSX
		}
	}
	return ""
}
