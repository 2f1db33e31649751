package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantWarn: true},
		{level: "INFO", wantInfo: true, wantWarn: true},
		{level: "warn", wantWarn: true},
		{level: "", wantWarn: true},
		{level: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log, _ := New(Options{Level: tt.level, Stderr: &buf})

			log.Debug("debug line")
			log.Info("info line")
			log.Warn("warn line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info line"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "warn line"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, _ := New(Options{Level: "info", Format: "json", Stderr: &buf})

	log.Info("saved directory", "contacts", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output %q is not JSON: %v", buf.String(), err)
	}
	if entry["msg"] != "saved directory" {
		t.Errorf("msg = %v, want %q", entry["msg"], "saved directory")
	}
	if entry["contacts"] != float64(3) {
		t.Errorf("contacts = %v, want 3", entry["contacts"])
	}
}

func TestNew_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{name: "bad level", opts: Options{Level: "chatty"}, want: "could not parse logger level"},
		{name: "bad format", opts: Options{Format: "xml"}, want: "could not parse logger format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Stderr = &buf
			New(tt.opts)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rubrica.log")
	log, closeLog := New(Options{Level: "info", File: path})

	log.Info("to file")
	if err := closeLog(); err != nil {
		t.Fatalf("close error = %v", err)
	}
	// The file is released: closing again reports it.
	if err := closeLog(); err == nil {
		t.Error("second close should fail on a closed file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file = %q, want entry", string(data))
	}
}

func TestNew_UnopenableFileFallsBack(t *testing.T) {
	var buf bytes.Buffer
	// A directory cannot be opened for appending.
	_, closeLog := New(Options{File: t.TempDir(), Stderr: &buf})
	if err := closeLog(); err != nil {
		t.Errorf("close error = %v, want nil for stderr", err)
	}

	if !strings.Contains(buf.String(), "could not open logger file") {
		t.Errorf("output = %q, want fallback warning", buf.String())
	}
}

func TestNew_DevNull(t *testing.T) {
	var buf bytes.Buffer
	log, closeLog := New(Options{Level: "debug", File: os.DevNull, Stderr: &buf})

	log.Error("dropped")

	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing", buf.String())
	}
	if err := closeLog(); err != nil {
		t.Errorf("close error = %v", err)
	}
}
