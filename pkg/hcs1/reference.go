package hcs1

import (
	"fmt"
	"regexp"
	"strings"
)

const referencePrefix = "hcs://1/"

var referencePattern = regexp.MustCompile(`^hcs://1/(\d+\.\d+\.\d+)$`)

// BuildReference returns the HCS-1 URI for a file topic.
func BuildReference(topicID string) string {
	return referencePrefix + strings.TrimSpace(topicID)
}

// ParseReference returns the topic ID of an hcs://1/<topicID> URI.
func ParseReference(reference string) (string, error) {
	matches := referencePattern.FindStringSubmatch(strings.TrimSpace(reference))
	if len(matches) != 2 {
		return "", fmt.Errorf("invalid HCS-1 reference %q", reference)
	}
	return matches[1], nil
}
