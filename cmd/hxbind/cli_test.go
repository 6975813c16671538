package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm/hxbind"
	"github.com/pthm/hxbind/lib/dom"
)

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, exp := range []string{"hxbind version:", "Git commit:", "Build date:", "Go version:"} {
		if !strings.Contains(out, exp) {
			t.Errorf("output missing %q:\n%s", exp, out)
		}
	}
}

func TestGetCommand(t *testing.T) {
	tests := []struct {
		file string
		path string
		want string
	}{
		{"testdata/profile.yaml", "data.user.name", `"Ada"`},
		{"testdata/profile.yaml", "data.user.tags[0]", `"founder"`},
		{"testdata/profile.yaml", "data.user.admin", "true"},
		{"testdata/settings.toml", "limits.uploads", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			out, err := run(t, "get", tt.file, tt.path)
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("get %s = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestGetCommand_Undefined(t *testing.T) {
	if _, err := run(t, "get", "testdata/profile.yaml", "data.user.missing"); err == nil {
		t.Error("get of an undefined path should fail")
	}
}

func TestSetCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(`{"user": {"name": "Ada"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "set", path, "user.tags[1]", "editor", "--write"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := run(t, "set", path, `user["admin"]`, "true", "--write"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	out, err := run(t, "get", path, "user")
	if err != nil {
		t.Fatal(err)
	}
	var compact bytes.Buffer
	for _, line := range strings.Split(out, "\n") {
		compact.WriteString(strings.TrimSpace(line))
	}
	want := `{"admin": true,"name": "Ada","tags": [null,"editor"]}`
	if compact.String() != want {
		t.Errorf("user = %s, want %s", compact.String(), want)
	}
}

func TestSetCommand_PrintsWithoutWrite(t *testing.T) {
	out, err := run(t, "set", "testdata/profile.yaml", "data.user.name", "Grace")
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !strings.Contains(out, "name: Grace") {
		t.Errorf("output missing new value:\n%s", out)
	}

	orig, err := os.ReadFile("testdata/profile.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(orig), "name: Ada") {
		t.Error("set without --write modified the file")
	}
}

func TestSetCommand_InvalidPath(t *testing.T) {
	if _, err := run(t, "set", "testdata/profile.yaml", "id.name", "x"); !hxbind.IsInvalidPath(err) {
		t.Errorf("set error = %v, want ErrInvalidPath", err)
	}
}

func TestRenderCommand(t *testing.T) {
	out, err := run(t, "render",
		"--page", "testdata/page.html",
		"--config", "testdata/profile.yaml",
		"--template", "profile=testdata/profile.tmpl",
	)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	doc := dom.MustParse(out)
	if got := doc.ElementByID("name").Value(); got != "Ada" {
		t.Errorf("name value = %q, want Ada", got)
	}
	if !doc.ElementByID("admin").Checked() {
		t.Error("admin should be checked")
	}
	html, err := doc.InnerHTML("profile")
	if err != nil {
		t.Fatal(err)
	}
	for _, exp := range []string{"<h1>Ada</h1>", "<p>No bio yet</p>"} {
		if !strings.Contains(html, exp) {
			t.Errorf("profile missing %q: %s", exp, html)
		}
	}
}

func TestRenderCommand_BadTemplateFlag(t *testing.T) {
	_, err := run(t, "render", "--page", "testdata/page.html", "--template", "profile")
	if err == nil {
		t.Error("render should reject a template without an id")
	}
}

func TestServeCommand_RequiresKey(t *testing.T) {
	t.Setenv("HXBIND_KEY", "")
	if _, err := run(t, "serve", "--config", "testdata/profile.yaml"); err == nil {
		t.Error("serve without a key should fail")
	}
}

func TestServeHandler(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := hxbind.NewRegistry(dom.MustParse(""), hxbind.WithMetrics(hxbind.NewMetrics(promReg)))
	defer reg.Close()

	cfg, err := hxbind.LoadConfig("testdata/profile.yaml")
	if err != nil {
		t.Fatal(err)
	}
	c, err := reg.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	c.Set("user.name", "Grace")

	enc, err := hxbind.NewEncoder([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(newServeHandler(reg, enc, promReg, true, []string{"https://app.example"}))
	defer srv.Close()

	client := &hxbind.SnapshotClient{BaseURL: srv.URL + "/_snapshot", Encoder: enc, Sensitive: true}
	data, err := client.Refresh(context.Background(), "profile", nil)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	user, _ := data["user"].(map[string]any)
	if user["name"] != "Grace" {
		t.Errorf("snapshot user = %v", user)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `hxbind_component_sets_total{component="profile"} 1`) {
		t.Errorf("metrics missing set counter:\n%s", body)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("Origin", "https://app.example")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
