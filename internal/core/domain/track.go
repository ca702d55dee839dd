package domain

// Track represents a catalog track in the domain layer.
type Track struct {
	ID         string
	Title      string
	Artist     string
	Album      string // optional
	URI        string // spotify:track:{id}
	PreviewURL string // optional
	DurationMs int
}
