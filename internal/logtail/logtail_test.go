package logtail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "zero lines",
			maxLines: 0,
			expected: nil,
		},
		{
			name:     "negative",
			maxLines: -1,
			expected: nil,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Read() = %v, want nil", got)
	}
}

func TestReadLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "galeri.log")
	lines := []string{
		`time=2025-10-08T21:01:05.000Z level=DEBUG msg="page loaded" page=1`,
		`time=2025-10-08T21:01:06.000Z level=INFO msg="index ready"`,
		`time=2025-10-08T21:01:07.000Z level=WARN msg="search failed" query=kuş`,
		`panic: unexpected`,
		`time=2025-10-08T21:01:08.000Z level=ERROR msg="data failed"`,
	}
	if err := os.WriteFile(logPath, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadLevel(logPath, 10, slog.LevelWarn)
	if err != nil {
		t.Fatalf("ReadLevel() error = %v", err)
	}
	want := []string{lines[2], lines[3], lines[4]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadLevel() = %v, want %v", got, want)
	}

	got, err = ReadLevel(logPath, 1, slog.LevelInfo)
	if err != nil {
		t.Fatalf("ReadLevel() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{lines[4]}) {
		t.Errorf("ReadLevel() tail = %v, want last record", got)
	}
}

func TestLineLevel(t *testing.T) {
	tests := []struct {
		line  string
		level slog.Level
		ok    bool
	}{
		{`time=x level=INFO msg=a`, slog.LevelInfo, true},
		{`level=ERROR msg=a`, slog.LevelError, true},
		{`time=x level=WARN+2 msg=a`, slog.LevelWarn + 2, true},
		{`time=x msg=a sublevel=INFO`, 0, false},
		{`time=x level=LOUD msg=a`, 0, false},
		{`plain text`, 0, false},
	}
	for _, tt := range tests {
		level, ok := LineLevel(tt.line)
		if ok != tt.ok || level != tt.level {
			t.Errorf("LineLevel(%q) = %v, %v; want %v, %v", tt.line, level, ok, tt.level, tt.ok)
		}
	}
}
