package validate

import "fmt"

// Text field length limits, shared by the backend and the pages.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxEmailLength       = 254
	MaxFilenameLength    = 255
)

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func Title(s string) string       { return checkLen(s, MaxTitleLength, "title") }
func Description(s string) string { return checkLen(s, MaxDescriptionLength, "description") }
func Email(s string) string       { return checkLen(s, MaxEmailLength, "email") }
func Filename(s string) string    { return checkLen(s, MaxFilenameLength, "file name") }

// FieldLimits returns a map of field names to max lengths for the /api/limits endpoint.
func FieldLimits() map[string]int {
	return map[string]int{
		"title":       MaxTitleLength,
		"description": MaxDescriptionLength,
		"email":       MaxEmailLength,
		"fileName":    MaxFilenameLength,
	}
}
