package store

import "fmt"

const (
	// KeyPrefixMarks is the prefix for per-resource snapshot keys
	KeyPrefixMarks = "stamp:marks:"
	// KeySettings is the key for the global settings document
	KeySettings = "stamp:settings"
	// KeyAllResources is the key for the set of resource IDs with a snapshot
	KeyAllResources = "stamp:resources:all"
)

// MarksKey returns the key for a resource snapshot
func MarksKey(resourceID string) string {
	return KeyPrefixMarks + resourceID
}

// ExtractResourceID extracts the resource ID from a snapshot key
func ExtractResourceID(key string) (string, error) {
	if len(key) <= len(KeyPrefixMarks) || key[:len(KeyPrefixMarks)] != KeyPrefixMarks {
		return "", fmt.Errorf("invalid marks key: %s", key)
	}
	return key[len(KeyPrefixMarks):], nil
}
