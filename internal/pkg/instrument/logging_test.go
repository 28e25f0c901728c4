package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggingMasksFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler("otptoken", []string{"Token", "password"}, newJSONHandler(&buf, slog.LevelDebug)))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "otp token sent",
		"token", "123456",
		"credentials", map[string]string{"email": "a@b.test", "password": "secret"},
		"body", `{"token":"654321","action":"login"}`,
	)

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal log line: %v (%s)", err, buf.String())
	}

	if out["token"] != maskedValue {
		t.Errorf("token = %v, want masked", out["token"])
	}
	creds, _ := out["credentials"].(map[string]any)
	if creds["password"] != maskedValue || creds["email"] != "a@b.test" {
		t.Errorf("credentials = %v", creds)
	}
	if body, _ := out["body"].(string); body != `{"action":"login","token":"***"}` {
		t.Errorf("body = %v", out["body"])
	}
	if out["_cID"] != "cid-1" || out["service"] != "otptoken" {
		t.Errorf("context attrs = %v / %v", out["_cID"], out["service"])
	}
}

func TestLoggingFanout(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(newHandler("", nil,
		newJSONHandler(&a, slog.LevelInfo),
		newJSONHandler(&b, slog.LevelError),
	))

	logger.Info("info only")
	logger.Error("both")

	if got := bytes.Count(a.Bytes(), []byte("\n")); got != 2 {
		t.Errorf("first handler wrote %d lines, want 2", got)
	}
	if got := bytes.Count(b.Bytes(), []byte("\n")); got != 1 {
		t.Errorf("second handler wrote %d lines, want 1", got)
	}
}

func TestParseLevel(t *testing.T) {
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Errorf("parseLevel(debug) = %v", got)
	}
	if got := parseLevel("nonsense"); got != slog.LevelInfo {
		t.Errorf("parseLevel(nonsense) = %v", got)
	}
}
