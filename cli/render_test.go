package cli

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cpcf/forge/engine"
	"github.com/cpcf/forge/engines/builtin"
	forgetest "github.com/cpcf/forge/testing"
)

type binding struct {
	program  string
	engine   string
	kind     string
	hello    string
	broken   string
	template string
}

var bindings = []binding{
	{"render-jinja", "jinja", "Jinja2", "Hello, {{ name }}!", "{% if %}", "page.j2"},
	{"render-hbs", "handlebars", "Handlebars", "Hello, {{name}}!", "{{#if name}}", "page.hbs"},
	{"render-mustache", "mustache", "Mustache", "Hello, {{name}}!", "{{#section}}", "page.mustache"},
	{"render-gotmpl", "gotemplate", "Go", "Hello, {{.name}}!", "{{.name", "page.tmpl"},
}

// compiledIn reports whether this build can construct the named engine;
// builds tagged nohandlebars leave handlebars out.
func compiledIn(name string) bool {
	_, _, err := builtin.Registry().Resolve(name)
	return err == nil
}

type runResult struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, reg *engine.Registry, b binding, env map[string]string, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := &Renderer{
		Program:  b.program,
		Engine:   b.engine,
		Registry: reg,
		Stdout:   &stdout,
		Stderr:   &stderr,
		Getenv:   func(key string) string { return env[key] },
	}
	code := c.Run(context.Background(), args)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRunRendersEveryEngine(t *testing.T) {
	for _, b := range bindings {
		t.Run(b.engine, func(t *testing.T) {
			ws := forgetest.NewWorkspace(t)
			tpl := ws.Write(b.template, b.hello)
			vars := ws.Write("vars.json", `{"name": "World"}`)
			out := ws.Path("out.txt")

			res := run(t, builtin.Registry(), b, nil, tpl, out, vars)
			if !compiledIn(b.engine) {
				if res.code != 1 || !strings.Contains(res.stderr, "not available") || ws.Exists("out.txt") {
					t.Errorf("compiled-out engine: exit %d, stderr %q", res.code, res.stderr)
				}
				return
			}
			if res.code != 0 {
				t.Fatalf("exit %d, stderr: %s", res.code, res.stderr)
			}
			if got := ws.Read("out.txt"); got != "Hello, World!" {
				t.Errorf("output = %q", got)
			}
			want := "Rendered " + b.kind + " template to " + out + "\n"
			if res.stdout != want {
				t.Errorf("stdout = %q, want %q", res.stdout, want)
			}
			if res.stderr != "" {
				t.Errorf("unexpected stderr %q", res.stderr)
			}
		})
	}
}

func TestRunUsage(t *testing.T) {
	for _, b := range bindings {
		if !compiledIn(b.engine) {
			continue
		}
		for n := 0; n < 3; n++ {
			ws := forgetest.NewWorkspace(t)
			args := []string{ws.Path("a"), ws.Path("b"), ws.Path("c")}[:n]

			res := run(t, builtin.Registry(), b, nil, args...)
			if res.code != 1 {
				t.Errorf("%s with %d args: exit %d, want 1", b.program, n, res.code)
			}
			wantUsage := "Usage: " + b.program + " <template> <output> <vars.json>\n"
			if res.stderr != wantUsage {
				t.Errorf("%s with %d args: stderr = %q, want %q", b.program, n, res.stderr, wantUsage)
			}
			if res.stdout != "" {
				t.Errorf("%s with %d args: unexpected stdout %q", b.program, n, res.stdout)
			}
			if entries := ws.Entries(); len(entries) != 0 {
				t.Errorf("%s with %d args: created %v", b.program, n, entries)
			}
		}
	}
}

func TestRunFailuresLeaveNoOutput(t *testing.T) {
	for _, b := range bindings {
		t.Run(b.engine, func(t *testing.T) {
			if !compiledIn(b.engine) {
				t.Skip("engine not compiled in")
			}
			tests := []struct {
				name     string
				template string
				vars     string
				contains string
			}{
				{"malformed vars", b.hello, `{not json`, "failed to parse variables JSON"},
				{"vars not an object", b.hello, `["World"]`, "must be a JSON object"},
				{"broken template", b.broken, `{"name": "World"}`, "rendering"},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					ws := forgetest.NewWorkspace(t)
					tpl := ws.Write(b.template, tt.template)
					vars := ws.Write("vars.json", tt.vars)

					res := run(t, builtin.Registry(), b, nil, tpl, ws.Path("out.txt"), vars)
					if res.code != 1 {
						t.Fatalf("exit %d, want 1", res.code)
					}
					if !strings.HasPrefix(res.stderr, b.program+": ") || !strings.Contains(res.stderr, tt.contains) {
						t.Errorf("stderr = %q, want %q diagnostic", res.stderr, tt.contains)
					}
					if ws.Exists("out.txt") {
						t.Error("output file created on failure")
					}
				})
			}
		})
	}
}

func TestRunMissingInputs(t *testing.T) {
	b := bindings[0]
	ws := forgetest.NewWorkspace(t)
	tpl := ws.Write("page.j2", "x")
	vars := ws.Write("vars.json", "{}")

	tests := []struct {
		name string
		args []string
	}{
		{"template", []string{ws.Path("nope.j2"), ws.Path("out.txt"), vars}},
		{"variables", []string{tpl, ws.Path("out.txt"), ws.Path("nope.json")}},
		{"output directory", []string{tpl, ws.Path("missing/out.txt"), vars}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, builtin.Registry(), b, nil, tt.args...)
			if res.code != 1 {
				t.Errorf("exit %d, want 1", res.code)
			}
			if !strings.Contains(res.stderr, "failed to") {
				t.Errorf("stderr = %q", res.stderr)
			}
			if ws.Exists("out.txt") {
				t.Error("output file created on failure")
			}
		})
	}
}

func TestRunEngineUnavailable(t *testing.T) {
	reg := engine.NewRegistry()
	reg.Register(engine.Definition{
		Name:       "handlebars",
		Kind:       "Handlebars",
		Extensions: []string{".hbs"},
		Hint:       "rebuild with handlebars support",
	})

	ws := forgetest.NewWorkspace(t)
	tpl := ws.Write("page.hbs", "Hello, {{name}}!")
	vars := ws.Write("vars.json", `{"name": "World"}`)

	for _, args := range [][]string{
		{tpl, ws.Path("out.txt"), vars},
		{},
	} {
		res := run(t, reg, bindings[1], nil, args...)
		if res.code != 1 {
			t.Errorf("exit %d, want 1", res.code)
		}
		if !strings.Contains(res.stderr, "not available") || !strings.Contains(res.stderr, "rebuild with handlebars support") {
			t.Errorf("stderr = %q", res.stderr)
		}
		if ws.Exists("out.txt") {
			t.Error("output file created on failure")
		}
	}
}

func TestRunIdempotentAndOverwrites(t *testing.T) {
	for _, atomic := range []string{"", "true"} {
		for _, b := range bindings {
			if !compiledIn(b.engine) {
				continue
			}
			ws := forgetest.NewWorkspace(t)
			tpl := ws.Write(b.template, b.hello)
			vars := ws.Write("vars.json", `{"name": "World"}`)
			out := ws.Write("out.txt", strings.Repeat("stale content ", 100))
			env := map[string]string{"FORGE_ATOMIC_WRITE": atomic}

			for i := 0; i < 2; i++ {
				if res := run(t, builtin.Registry(), b, env, tpl, out, vars); res.code != 0 {
					t.Fatalf("%s run %d: exit %d, stderr: %s", b.program, i, res.code, res.stderr)
				}
				if got := ws.Read("out.txt"); got != "Hello, World!" {
					t.Errorf("%s run %d: output = %q", b.program, i, got)
				}
			}

			want := []string{b.template, "out.txt", "vars.json"}
			slices.Sort(want)
			if diff := cmp.Diff(want, ws.Entries()); diff != "" {
				t.Errorf("%s: workspace mismatch (-want +got):\n%s", b.program, diff)
			}
		}
	}
}

func TestRunExtraArgumentsIgnored(t *testing.T) {
	b := bindings[3]
	ws := forgetest.NewWorkspace(t)
	tpl := ws.Write(b.template, b.hello)
	vars := ws.Write("vars.json", `{"name": "World"}`)

	env := map[string]string{"FORGE_LOG_LEVEL": "debug"}
	res := run(t, builtin.Registry(), b, env, tpl, ws.Path("out.txt"), vars, "extra")
	if res.code != 0 {
		t.Fatalf("exit %d, stderr: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stderr, "ignoring extra arguments") {
		t.Errorf("expected debug log for extra args, got %q", res.stderr)
	}
}

func TestRunInvalidEnvironment(t *testing.T) {
	res := run(t, builtin.Registry(), bindings[0], map[string]string{"FORGE_LOG_LEVEL": "loud"})
	if res.code != 1 || !strings.Contains(res.stderr, "FORGE_LOG_LEVEL") {
		t.Errorf("exit %d, stderr %q", res.code, res.stderr)
	}
}

func TestParseArgs(t *testing.T) {
	inv, err := ParseArgs("p", []string{"t", "o", "v", "x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	want := Invocation{TemplatePath: "t", OutputPath: "o", VariablesPath: "v", Extra: []string{"x", "y"}}
	if diff := cmp.Diff(want, inv); diff != "" {
		t.Errorf("invocation mismatch (-want +got):\n%s", diff)
	}

	_, err = ParseArgs("p", []string{"t", "", "v"})
	if engine.KindOf(err) != engine.UsageError {
		t.Errorf("Expected usage error for empty argument, got %v", err)
	}
}
