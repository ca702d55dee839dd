package domain

// Settings is the persisted state of the application. It is loaded once from the
// settings store, merged over DefaultSettings, and rewritten in full on save.
type Settings struct {
	AccessToken string
}

// DefaultSettings returns the values used for keys that were never stored.
func DefaultSettings() Settings {
	return Settings{AccessToken: ""}
}

// Authorized reports whether an access token is present.
func (s Settings) Authorized() bool {
	return s.AccessToken != ""
}
