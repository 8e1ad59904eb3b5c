// Package views holds the server-rendered pages.
package views

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v2"
)

//go:embed *.html layouts/*.html
var FS embed.FS

// NewEngine returns the template engine over the embedded pages.
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(http.FS(FS), ".html")
	engine.AddFunc("imageSrc", imageSrc)
	engine.AddFunc("inc", func(i int) int { return i + 1 })
	return engine
}

// imageSrc lets generated data URIs through html/template, which rejects
// the data scheme by default. Anything that is not an inline image is dropped.
func imageSrc(uri string) template.URL {
	if !strings.HasPrefix(uri, "data:image/") {
		return ""
	}
	return template.URL(uri)
}
