package ports

// BrowserOpener shows a URL to the human, usually in the system browser.
type BrowserOpener interface {
	Open(url string) error
}
