package app

import (
	"profleet/internal/config"
	"profleet/internal/deeplink"
)

// Settings reads the settings file the daemon uses.
func (a *App) Settings() (config.Settings, error) {
	return a.loader().Load()
}

// SettingsPath returns the resolved settings file path.
func (a *App) SettingsPath() string {
	return a.loader().Path()
}

// SetSetting stores one settings key. The daemon picks it up on the next
// request.
func (a *App) SetSetting(key, value string) error {
	return a.loader().Set(key, value)
}

// PreviewLink builds the deep link a launch would deliver.
func (a *App) PreviewLink(p deeplink.Params) (string, error) {
	return deeplink.Build(p)
}
