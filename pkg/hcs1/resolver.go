package hcs1

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/mirror"
	"go.uber.org/zap"
)

// Resolver reads HCS-1 files back from the mirror node.
type Resolver struct {
	mirror *mirror.Client
	logger *zap.Logger
}

func NewResolver(mirrorClient *mirror.Client, logger *zap.Logger) (*Resolver, error) {
	if mirrorClient == nil {
		return nil, fmt.Errorf("mirror client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{mirror: mirrorClient, logger: logger}, nil
}

// Resolve returns the file stored at the reference. Consensus-level chunks
// are reassembled first, then the HCS-1 ordered content chunks, and the
// result is unwrapped from its data URL and brotli compression.
func (r *Resolver) Resolve(ctx context.Context, reference string) ([]byte, error) {
	topicID, err := ParseReference(reference)
	if err != nil {
		return nil, err
	}

	messages, err := r.mirror.GetTopicMessages(ctx, topicID, mirror.MessageQueryOptions{
		Order: "asc",
	})
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no HCS-1 payload found at %s", reference)
	}
	r.logger.Debug("resolving HCS-1 file",
		zap.String("reference", reference),
		zap.Int("messages", len(messages)),
	)

	payloads, err := assembleMessages(reference, messages)
	if err != nil {
		return nil, err
	}
	return decodePayloads(payloads)
}

// ResolveJSON resolves the reference and decodes the file as JSON.
func (r *Resolver) ResolveJSON(ctx context.Context, reference string, target any) error {
	payload, err := r.Resolve(ctx, reference)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("HCS-1 file at %s is not valid JSON: %w", reference, err)
	}
	return nil
}

type chunkGroup struct {
	total  int
	chunks map[int][]byte
}

// assembleMessages joins messages that were split by the consensus service
// into logical payloads, keeping the order in which each payload started.
func assembleMessages(reference string, messages []mirror.TopicMessage) ([][]byte, error) {
	type slot struct {
		payload []byte
		groupID string
	}

	slots := make([]slot, 0, len(messages))
	groups := map[string]*chunkGroup{}
	for _, message := range messages {
		data, err := mirror.DecodeMessageData(message)
		if err != nil {
			return nil, err
		}

		if message.ChunkInfo == nil || message.ChunkInfo.Total <= 1 {
			slots = append(slots, slot{payload: data})
			continue
		}

		groupID := extractChunkTransactionID(message.ChunkInfo.InitialTransactionID)
		if groupID == "" {
			return nil, fmt.Errorf("chunked HCS-1 payload at %s is missing initial transaction ID", reference)
		}
		if message.ChunkInfo.Number <= 0 {
			continue
		}

		group, ok := groups[groupID]
		if !ok {
			group = &chunkGroup{total: message.ChunkInfo.Total, chunks: map[int][]byte{}}
			groups[groupID] = group
			slots = append(slots, slot{groupID: groupID})
		}
		if message.ChunkInfo.Total != group.total {
			continue
		}
		group.chunks[message.ChunkInfo.Number] = data
	}

	payloads := make([][]byte, 0, len(slots))
	for _, current := range slots {
		if current.groupID == "" {
			payloads = append(payloads, current.payload)
			continue
		}
		combined, err := joinChunkGroup(reference, groups[current.groupID])
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, combined)
	}

	return payloads, nil
}

func joinChunkGroup(reference string, group *chunkGroup) ([]byte, error) {
	if len(group.chunks) != group.total {
		return nil, fmt.Errorf(
			"chunked HCS-1 payload at %s incomplete: expected %d chunks, found %d",
			reference,
			group.total,
			len(group.chunks),
		)
	}

	var combined []byte
	for number := 1; number <= group.total; number++ {
		chunk, ok := group.chunks[number]
		if !ok {
			return nil, fmt.Errorf("chunked HCS-1 payload at %s missing chunk %d", reference, number)
		}
		combined = append(combined, chunk...)
	}
	return combined, nil
}

// extractChunkTransactionID accepts the initial transaction ID either as a
// string or as the mirror node's {account_id, transaction_valid_start} object.
func extractChunkTransactionID(initialTransactionID any) string {
	switch typed := initialTransactionID.(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]any:
		accountID, _ := typed["account_id"].(string)
		validStart, _ := typed["transaction_valid_start"].(string)
		if strings.TrimSpace(validStart) == "" {
			validStart, _ = typed["valid_start_timestamp"].(string)
		}
		if strings.TrimSpace(accountID) != "" && strings.TrimSpace(validStart) != "" {
			return strings.TrimSpace(accountID) + "@" + strings.TrimSpace(validStart)
		}
	}
	return ""
}

type orderedChunk struct {
	order   int
	content string
}

// decodePayloads treats the payloads as HCS-1 {"o","c"} chunks when every
// payload is one; otherwise the first payload is the file.
func decodePayloads(payloads [][]byte) ([]byte, error) {
	if len(payloads) == 0 {
		return nil, fmt.Errorf("no HCS-1 payload to decode")
	}

	chunks := make([]orderedChunk, 0, len(payloads))
	for _, payload := range payloads {
		chunk, ok := parseOrderedChunk(payload)
		if !ok {
			return payloads[0], nil
		}
		chunks = append(chunks, chunk)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].order < chunks[j].order
	})
	var content strings.Builder
	for _, chunk := range chunks {
		content.WriteString(chunk.content)
	}

	return unwrapContent(content.String())
}

func parseOrderedChunk(payload []byte) (orderedChunk, bool) {
	var chunk struct {
		Order   *int    `json:"o"`
		Content *string `json:"c"`
	}
	if err := json.Unmarshal(payload, &chunk); err != nil || chunk.Content == nil {
		return orderedChunk{}, false
	}
	order := 0
	if chunk.Order != nil {
		order = *chunk.Order
	}
	return orderedChunk{order: order, content: *chunk.Content}, true
}
