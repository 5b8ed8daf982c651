package hcs1

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/andybalholm/brotli"
)

const DefaultChunkSize = 1024

// EncodeMessages prepares a file for an HCS-1 topic: brotli-compressed,
// wrapped in a base64 data URL and split into {"o","c"} message payloads of
// at most chunkSize content characters.
func EncodeMessages(data []byte, mimeType string, chunkSize int) ([][]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("file content is required")
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "application/octet-stream"
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var compressed bytes.Buffer
	writer := brotli.NewWriterLevel(&compressed, brotli.BestCompression)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress HCS-1 file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress HCS-1 file: %w", err)
	}

	content := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(compressed.Bytes())
	messages := make([][]byte, 0, len(content)/chunkSize+1)
	for order := 0; order*chunkSize < len(content); order++ {
		end := min((order+1)*chunkSize, len(content))
		message, err := json.Marshal(map[string]any{
			"o": order,
			"c": content[order*chunkSize : end],
		})
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, nil
}

// unwrapContent decodes a data URL and brotli-decompresses the result. Data
// that is not brotli-compressed is returned as decoded.
func unwrapContent(content string) ([]byte, error) {
	decoded, err := decodeDataURL(content)
	if err != nil {
		return nil, err
	}

	decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(decoded)))
	if err == nil && len(decompressed) > 0 {
		return decompressed, nil
	}
	return decoded, nil
}

func decodeDataURL(input string) ([]byte, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "data:") {
		return nil, fmt.Errorf("unsupported HCS-1 content format")
	}

	header, dataPart, found := strings.Cut(trimmed, ",")
	if !found {
		return nil, fmt.Errorf("invalid HCS-1 data URL")
	}

	if strings.Contains(strings.ToLower(header), ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(dataPart)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCS-1 base64 content: %w", err)
		}
		return decoded, nil
	}

	unescaped, err := url.QueryUnescape(dataPart)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HCS-1 content: %w", err)
	}
	return []byte(unescaped), nil
}
