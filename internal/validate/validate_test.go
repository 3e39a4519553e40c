package validate

import "testing"

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid", "My Video", ""},
		{"empty", "", ""},
		{"at limit", string(make([]byte, MaxTitleLength)), ""},
		{"over limit", string(make([]byte, MaxTitleLength+1)), "title must be 200 characters or fewer"},
	}
	for _, tt := range tests {
		if got := Title(tt.input); got != tt.want {
			t.Errorf("Title(%q [len=%d]) = %q, want %q", tt.name, len(tt.input), got, tt.want)
		}
	}
}

func TestDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid", "What this video is about", ""},
		{"empty", "", ""},
		{"at limit", string(make([]byte, MaxDescriptionLength)), ""},
		{"over limit", string(make([]byte, MaxDescriptionLength+1)), "description must be 5000 characters or fewer"},
	}
	for _, tt := range tests {
		if got := Description(tt.input); got != tt.want {
			t.Errorf("Description(%q [len=%d]) = %q, want %q", tt.name, len(tt.input), got, tt.want)
		}
	}
}

func TestEmail(t *testing.T) {
	if got := Email(string(make([]byte, MaxEmailLength+1))); got != "email must be 254 characters or fewer" {
		t.Errorf("Email over limit = %q", got)
	}
	if got := Email("user@example.com"); got != "" {
		t.Errorf("Email valid = %q, want empty", got)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(string(make([]byte, MaxFilenameLength+1))); got != "file name must be 255 characters or fewer" {
		t.Errorf("Filename over limit = %q", got)
	}
	if got := Filename("holiday.mp4"); got != "" {
		t.Errorf("Filename valid = %q, want empty", got)
	}
}

func TestFieldLimits(t *testing.T) {
	limits := FieldLimits()
	if limits["title"] != MaxTitleLength {
		t.Errorf("expected title limit %d, got %d", MaxTitleLength, limits["title"])
	}
	if limits["description"] != MaxDescriptionLength {
		t.Errorf("expected description limit %d, got %d", MaxDescriptionLength, limits["description"])
	}
}
