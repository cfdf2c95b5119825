package artifacts

import (
	"strings"
	"testing"
)

func TestEntryPointReexportsApplication(t *testing.T) {
	if got := EntryPoint("index.js"); got != "module.exports = require('./index');" {
		t.Fatalf("unexpected entry point: %q", got)
	}
	if got := EntryPoint("./lib/app.js"); got != "module.exports = require('./lib/app');" {
		t.Fatalf("unexpected entry point for nested module: %q", got)
	}
}

func TestComposeAppMountsInitModule(t *testing.T) {
	got, err := ComposeApp(AppSpec{
		Title:      "Auth0 AI Admin Assistant",
		AppModule:  "auth0-ai-admin",
		InitModule: "auth0-init",
		MountPath:  "/",
	})
	if err != nil {
		t.Fatalf("ComposeApp: %v", err)
	}

	want := []string{
		"// Auth0 AI Admin Assistant Extension",
		"const app = require('./auth0-ai-admin');",
		"const initRoutes = require('./auth0-init');",
		"app.use('/', initRoutes);",
		"module.exports = app;",
	}
	last := -1
	for _, line := range want {
		idx := strings.Index(got, line)
		if idx < 0 {
			t.Fatalf("composed app missing %q:\n%s", line, got)
		}
		if idx < last {
			t.Fatalf("line %q out of order:\n%s", line, got)
		}
		last = idx
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatal("expected no trailing newline")
	}
}

func TestComposeAppOmitsEmptyTitle(t *testing.T) {
	got, err := ComposeApp(AppSpec{AppModule: "app", InitModule: "init", MountPath: "/"})
	if err != nil {
		t.Fatalf("ComposeApp: %v", err)
	}
	if !strings.HasPrefix(got, "const app = require('./app');") {
		t.Fatalf("unexpected header:\n%s", got)
	}
}

func TestComposeAppRejectsUnsafeNames(t *testing.T) {
	cases := []AppSpec{
		{AppModule: "", InitModule: "init", MountPath: "/"},
		{AppModule: "app'); evil('", InitModule: "init", MountPath: "/"},
		{AppModule: "app", InitModule: "init\n", MountPath: "/"},
		{AppModule: "app", InitModule: "init", MountPath: `\`},
		{Title: "two\nlines", AppModule: "app", InitModule: "init", MountPath: "/"},
	}
	for _, spec := range cases {
		if _, err := ComposeApp(spec); err == nil {
			t.Errorf("expected error for %+v", spec)
		}
	}
}

func TestDefaultLicenseUsesYearAndHolder(t *testing.T) {
	text := DefaultLicense(2031, "Example Corp")
	if !strings.HasPrefix(text, "MIT License\n\nCopyright (c) 2031 Example Corp\n") {
		t.Fatalf("unexpected license header:\n%s", text)
	}
	if !strings.Contains(text, `THE SOFTWARE IS PROVIDED "AS IS"`) {
		t.Fatal("expected warranty disclaimer")
	}
	if !strings.Contains(DefaultLicense(2031, " "), "2031 The Authors") {
		t.Fatal("expected fallback holder for blank input")
	}
}
