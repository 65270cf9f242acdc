package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jacoelho/docstream/internal/exit"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
	return path
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.json", `{"a":1}`)
	fields := writeFile(t, dir, "fields.txt", "# keep these\nuser.name\n\ntags[]\n")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		check    func(t *testing.T, c *Config)
	}{
		{
			name: "defaults_read_stdin",
			args: []string{"docstream"},
			check: func(t *testing.T, c *Config) {
				if len(c.Inputs) != 1 || c.Inputs[0] != Stdin {
					t.Errorf("Inputs = %v, want [-]", c.Inputs)
				}
				if c.InputFormat != InputAuto || c.Format != "json" {
					t.Errorf("formats = %s/%s, want auto/json", c.InputFormat, c.Format)
				}
				if c.IndentString() != "" {
					t.Errorf("IndentString() = %q, want empty", c.IndentString())
				}
			},
		},
		{
			name: "all_flags",
			args: []string{
				"docstream", "-format", "YAML", "-input", "json", "-fields", "a.b,c",
				"-fields", "d[]", "-select", "$.a", "-indent", "-assign-id", "-last",
				"-rate-limit", "2.5", "-debug", data,
			},
			check: func(t *testing.T, c *Config) {
				if c.Format != "yaml" || c.InputFormat != InputJSON {
					t.Errorf("formats = %s/%s, want json/yaml", c.InputFormat, c.Format)
				}
				var got []string
				for _, p := range c.Fields {
					got = append(got, p.String())
				}
				if strings.Join(got, " ") != "a.b c d[]" {
					t.Errorf("Fields = %v, want [a.b c d[]]", got)
				}
				if c.Select != "$.a" || !c.Indent || !c.AssignID || !c.Last || !c.Debug || c.RateLimit != 2.5 {
					t.Errorf("unexpected config %+v", c)
				}
				if len(c.Inputs) != 1 || c.Inputs[0] != data {
					t.Errorf("Inputs = %v, want [%s]", c.Inputs, data)
				}
			},
		},
		{
			name: "fields_file_before_flags",
			args: []string{"docstream", "-fields", "z", "-fields-file", fields, data},
			check: func(t *testing.T, c *Config) {
				var got []string
				for _, p := range c.Fields {
					got = append(got, p.String())
				}
				if strings.Join(got, " ") != "user.name tags[] z" {
					t.Errorf("Fields = %v, want [user.name tags[] z]", got)
				}
			},
		},
		{
			name: "stream",
			args: []string{"docstream", "-stream", data},
			check: func(t *testing.T, c *Config) {
				if !c.Stream {
					t.Error("Stream = false, want true")
				}
			},
		},
		{name: "missing_file", args: []string{"docstream", filepath.Join(dir, "nope.json")}, wantCode: exit.CodeUsage},
		{name: "unknown_flag", args: []string{"docstream", "-nope"}, wantCode: exit.CodeUsage},
		{name: "bad_output_format", args: []string{"docstream", "-format", "xml"}, wantCode: exit.CodeUsage},
		{name: "bad_input_format", args: []string{"docstream", "-input", "csv"}, wantCode: exit.CodeUsage},
		{name: "stream_with_select", args: []string{"docstream", "-stream", "-select", "$.a"}, wantCode: exit.CodeUsage},
		{name: "stream_with_last", args: []string{"docstream", "-stream", "-last"}, wantCode: exit.CodeUsage},
		{name: "stream_with_yaml", args: []string{"docstream", "-stream", "-format", "yaml"}, wantCode: exit.CodeUsage},
		{name: "negative_rate_limit", args: []string{"docstream", "-rate-limit", "-1"}, wantCode: exit.CodeUsage},
		{name: "bad_field_path", args: []string{"docstream", "-fields", "a..b"}, wantCode: exit.CodeUsage},
		{name: "missing_fields_file", args: []string{"docstream", "-fields-file", filepath.Join(dir, "nope.txt")}, wantCode: exit.CodeUsage},
		{name: "no_arguments", args: nil, wantCode: exit.CodeUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, result := Parse(tt.args)
			if tt.wantCode != exit.CodeOK {
				if result == nil {
					t.Fatalf("Parse() result = nil, want exit code %d", tt.wantCode)
				}
				if result.ExitCode != tt.wantCode {
					t.Errorf("ExitCode = %d, want %d", result.ExitCode, tt.wantCode)
				}
				if !strings.Contains(result.Message, "Usage:") {
					t.Errorf("Message should contain usage, got %q", result.Message)
				}
				return
			}
			if result != nil {
				t.Fatalf("Parse() unexpected exit result: %s", result.Message)
			}
			tt.check(t, c)
		})
	}
}

func TestParseHelpFlag(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		t.Run(flag, func(t *testing.T) {
			c, result := Parse([]string{"docstream", flag})
			if c != nil {
				t.Errorf("Parse() config = %+v, want nil", c)
			}
			if result == nil || result.ExitCode != exit.CodeOK {
				t.Fatalf("Parse() result = %+v, want success", result)
			}
			if result.Message != Usage() {
				t.Errorf("help message should be the usage text")
			}
		})
	}
}

func TestFieldsFlag(t *testing.T) {
	tests := []struct {
		value string
		want  []string
	}{
		{value: "a", want: []string{"a"}},
		{value: "a.b, c[] ,d", want: []string{"a.b", "c[]", "d"}},
		{value: "`x,y`.z,w", want: []string{"`x,y`.z", "w"}},
		{value: ",,", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var f fieldsFlag
			if err := f.Set(tt.value); err != nil {
				t.Fatalf("Set(%q) error = %v", tt.value, err)
			}
			if len(f) != len(tt.want) {
				t.Fatalf("Set(%q) = %v, want %v", tt.value, f.String(), tt.want)
			}
			for i, p := range f {
				if p.String() != tt.want[i] {
					t.Errorf("path %d = %q, want %q", i, p.String(), tt.want[i])
				}
			}
		})
	}
}

func TestLoadFieldsFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("invalid_line", func(t *testing.T) {
		path := writeFile(t, dir, "bad.txt", "ok\n\n[\n")
		_, err := loadFieldsFile(path)
		if err == nil || !strings.Contains(err.Error(), "line 3") {
			t.Errorf("loadFieldsFile() error = %v, want line 3", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := loadFieldsFile(filepath.Join(dir, "missing.txt"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("loadFieldsFile() error = %v, want ErrNotExist", err)
		}
	})
}

func TestUsage(t *testing.T) {
	usage := Usage()
	for _, want := range []string{"--format", "--fields", "--select", "--stream", "--rate-limit"} {
		if !strings.Contains(usage, want) {
			t.Errorf("Usage() missing %q", want)
		}
	}
}
