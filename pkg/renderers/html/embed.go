package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl templates/*.css
var embedded embed.FS

// Templates exposes the bundled modal templates rooted at templates/.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return embedded
	}
	return sub
}

func defaultStylesheet() string {
	data, err := fs.ReadFile(embedded, "templates/modal.css")
	if err != nil {
		return ""
	}
	return string(data)
}
