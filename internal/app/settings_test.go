package app

import (
	"path/filepath"
	"testing"

	"profleet/internal/deeplink"
)

func TestAppSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	app := New(Options{ConfigPath: path})

	if app.SettingsPath() != path {
		t.Fatalf("unexpected settings path %q", app.SettingsPath())
	}
	if err := app.SetSetting("root_path", "/srv/farm"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	s, err := app.Settings()
	if err != nil {
		t.Fatalf("Settings returned error: %v", err)
	}
	if s.Root() != "/srv/farm" {
		t.Fatalf("expected /srv/farm, got %q", s.Root())
	}
}

func TestAppPreviewLink(t *testing.T) {
	link, err := New(Options{}).PreviewLink(deeplink.Params{AppName: "@farm_bot"})
	if err != nil {
		t.Fatalf("PreviewLink returned error: %v", err)
	}
	if link != "tg://resolve?domain=farm_bot" {
		t.Fatalf("unexpected link %q", link)
	}
}
