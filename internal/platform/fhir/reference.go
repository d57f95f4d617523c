package fhir

import (
	"fmt"
	"strings"
)

// FormatReference creates a FHIR reference string.
func FormatReference(resourceType, id string) string {
	return fmt.Sprintf("%s/%s", resourceType, id)
}

// ParseReference splits "Patient/123" into ("Patient", "123"). A bare ID
// parses as ("", id).
func ParseReference(ref string) (resourceType, id string) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", ref
}

// ReferenceID returns only the ID portion of a reference string.
func ReferenceID(ref string) string {
	_, id := ParseReference(ref)
	return id
}
