package inscriber

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

func buildStartInscriptionRequest(
	input InscriptionInput,
	accountID string,
	network Network,
	options InscriptionOptions,
) (StartInscriptionRequest, error) {
	mode := options.Mode
	if mode == "" {
		mode = ModeFile
	}

	request := StartInscriptionRequest{
		HolderID:     strings.TrimSpace(accountID),
		Mode:         mode,
		Network:      network,
		Metadata:     options.Metadata,
		Tags:         options.Tags,
		Creator:      strings.TrimSpace(stringOrDefault(options.Metadata, "creator", "")),
		Description:  strings.TrimSpace(stringOrDefault(options.Metadata, "description", "")),
		FileStandard: strings.TrimSpace(options.FileStandard),
		ChunkSize:    options.ChunkSize,
	}
	if request.HolderID == "" {
		return StartInscriptionRequest{}, fmt.Errorf("holder ID is required")
	}

	switch input.Type {
	case InscriptionInputTypeURL:
		if strings.TrimSpace(input.URL) == "" {
			return StartInscriptionRequest{}, fmt.Errorf("input.url is required for url input type")
		}
		request.File = FileInput{
			Type: "url",
			URL:  strings.TrimSpace(input.URL),
		}
	case InscriptionInputTypeFile:
		trimmedPath := strings.TrimSpace(input.Path)
		if trimmedPath == "" {
			return StartInscriptionRequest{}, fmt.Errorf("input.path is required for file input type")
		}
		data, err := os.ReadFile(trimmedPath)
		if err != nil {
			return StartInscriptionRequest{}, fmt.Errorf("failed to read file %s: %w", trimmedPath, err)
		}
		fileName := filepath.Base(trimmedPath)
		request.File = base64FileInput(data, fileName, input.MimeType)
	case InscriptionInputTypeBuffer:
		if len(input.Buffer) == 0 {
			return StartInscriptionRequest{}, fmt.Errorf("input.buffer is required for buffer input type")
		}
		fileName := strings.TrimSpace(input.FileName)
		if fileName == "" {
			return StartInscriptionRequest{}, fmt.Errorf("input.fileName is required for buffer input type")
		}
		request.File = base64FileInput(input.Buffer, fileName, input.MimeType)
	default:
		return StartInscriptionRequest{}, fmt.Errorf("input.type must be one of: url, file, buffer")
	}

	return request, nil
}

func base64FileInput(data []byte, fileName string, mimeType string) FileInput {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = DetectMimeType(fileName, data)
	}
	return FileInput{
		Type:     "base64",
		Base64:   base64.StdEncoding.EncodeToString(data),
		FileName: fileName,
		MimeType: mimeType,
	}
}

// DetectMimeType resolves the MIME type from the file extension, sniffing
// the content when the extension is unknown.
func DetectMimeType(fileName string, data []byte) string {
	if mimeType := guessMimeTypeFromName(fileName); mimeType != "" {
		return mimeType
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	detected := mimetype.Detect(data).String()
	if base, _, found := strings.Cut(detected, ";"); found {
		return strings.TrimSpace(base)
	}
	return detected
}

func stringOrDefault(input map[string]any, key string, fallback string) string {
	if input == nil {
		return fallback
	}
	value, ok := input[key].(string)
	if !ok {
		return fallback
	}
	return value
}

func guessMimeTypeFromName(fileName string) string {
	switch strings.ToLower(strings.TrimSpace(filepath.Ext(fileName))) {
	case ".txt":
		return "text/plain"
	case ".json":
		return "application/json"
	case ".html", ".htm":
		return "text/html"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".avif":
		return "image/avif"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".pdf":
		return "application/pdf"
	default:
		return ""
	}
}
