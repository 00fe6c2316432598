package templates

import (
	"embed"
	"io"
	"text/template"
)

//go:embed xml/lti.xml.tmpl
var descriptorFS embed.FS

// DescriptorProps fills the LTI tool descriptor document.
type DescriptorProps struct {
	Title       string
	Description string
	LaunchURL   string
	Domain      string
}

// LoadDescriptor parses the tool descriptor template. The descriptor is
// XML, so it goes through text/template rather than the HTML renderer.
func LoadDescriptor() (*template.Template, error) {
	return template.ParseFS(descriptorFS, "xml/lti.xml.tmpl")
}

// RenderDescriptor executes the descriptor template into w.
func RenderDescriptor(w io.Writer, tmpl *template.Template, props DescriptorProps) error {
	return tmpl.ExecuteTemplate(w, "lti.xml.tmpl", props)
}
