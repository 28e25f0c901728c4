package strcase

import "testing"

func TestToLowerSnake(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"Action":      "action",
		"UserID":      "user_id",
		"HTTPServer":  "http_server",
		"ExpireAt2FA": "expire_at2_fa",
		"credentials": "credentials",
	}

	for in, want := range tests {
		if got := ToLowerSnake(in); got != want {
			t.Errorf("ToLowerSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
