package section

// Serve is the [serve] section: the dev-server address and hot-reload
// broadcaster settings (C5).
type Serve struct {
	Addr       string `toml:"addr"`
	WSPort     int    `toml:"ws_port"`
	OpenBrowser bool  `toml:"open_browser"`
	Dashboard  bool   `toml:"dashboard"`
}

// DefaultServe returns [serve]'s defaults.
func DefaultServe() Serve {
	return Serve{Addr: "127.0.0.1:1732", WSPort: 1733}
}
