package gotemplate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"user_name", []string{"user", "name"}},
		{"userName", []string{"user", "Name"}},
		{"HTTPServer2Go", []string{"HTTP", "Server", "2", "Go"}},
		{"UserID", []string{"User", "ID"}},
		{"parseJSONBody", []string{"parse", "JSON", "Body"}},
		{"ABc", []string{"ABc"}},
		{"kebab-case.value", []string{"kebab", "case", "value"}},
		{"  spaced  out ", []string{"spaced", "out"}},
		{"", nil},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitWords(tt.input)); diff != "" {
			t.Errorf("splitWords(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestCaseHelpers(t *testing.T) {
	tests := []struct {
		fn    func(string) string
		name  string
		input string
		want  string
	}{
		{toSnake, "snake", "UserName", "user_name"},
		{toKebab, "kebab", "user_name", "user-name"},
		{toCamel, "camel", "user_name", "userName"},
		{toPascal, "pascal", "user-name", "UserName"},
		{humanize, "humanize", "user_name", "User Name"},
		{toCamel, "camel empty", "", ""},
		{toSnake, "snake acronym", "HTTPServer2Go", "http_server_2_go"},
		{toKebab, "kebab acronym", "parseJSONBody", "parse-json-body"},
	}

	for _, tt := range tests {
		if got := tt.fn(tt.input); got != tt.want {
			t.Errorf("%s(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
		}
	}
}

func TestUUIDFunc(t *testing.T) {
	got, err := New().Render("{{ uuid }}", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("Expected a UUID, got %q", got)
	}
}

func TestCamelDiffersFromSprig(t *testing.T) {
	got, err := New().Render("{{ camel .v }} {{ camelcase .v }}", map[string]any{"v": "http_server"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "httpServer HttpServer" {
		t.Errorf("got %q", got)
	}
}
