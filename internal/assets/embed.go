// Package assets serves the browser client embedded via go:embed.
// The client is a thin presentation layer: it keeps the edit tokens for
// messages created in this browser (and the chosen display name) in
// localStorage, and uses them only to unlock the edit/delete UI. The server
// never trusts any of that state.
package assets

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed all:web
var webFS embed.FS

// Handler returns a file server over the embedded client files.
// index.html is served at the root.
func Handler() http.Handler {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		// The embedded layout is fixed at build time
		panic(err)
	}
	return http.FileServerFS(sub)
}
