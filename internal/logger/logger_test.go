package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelSelection(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"default", Options{}, false, true, true},
		{"debug", Options{Debug: true}, true, true, true},
		{"quiet", Options{Quiet: true}, false, false, false},
		{"quiet wins over debug", Options{Debug: true, Quiet: true}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Output = &buf
			Init(tt.opts)

			Debug("candidate classified")
			Info("harvest complete")
			Warn("CAPTCHA suspected")

			out := buf.String()
			if got := strings.Contains(out, "candidate classified"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "harvest complete"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "CAPTCHA suspected"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestErrorAlwaysLogged(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Quiet: true, Output: &buf})

	Error("scrape failed", "url", "https://www.facebook.com/atlasbakery")
	if !strings.Contains(buf.String(), "scrape failed") {
		t.Error("error message suppressed in quiet mode")
	}
}

func TestStructuredAttributes(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Output: &buf})

	Info("results page parsed", "combination", "bakery casablanca", "new_urls", 7)
	out := buf.String()
	for _, want := range []string{"combination=", "bakery casablanca", "new_urls=7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q is missing %q", out, want)
		}
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{JSON: true, Output: &buf})

	Info("run complete", "candidates", 12)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not a JSON record: %v\n%s", err, buf.String())
	}
	if record["msg"] != "run complete" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["candidates"] != float64(12) {
		t.Errorf("candidates = %v", record["candidates"])
	}
	if record["level"] != "INFO" {
		t.Errorf("level = %v", record["level"])
	}
}

func TestReinitReplacesHandler(t *testing.T) {
	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second, Debug: true})

	Debug("browser allocated")
	if first.Len() != 0 {
		t.Errorf("old handler still receiving output: %q", first.String())
	}
	if !strings.Contains(second.String(), "browser allocated") {
		t.Error("new handler did not receive the message")
	}
}
