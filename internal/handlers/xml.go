package handlers

import (
	"bytes"
	"log"
	"net/http"
	"text/template"

	"github.com/Thetwam/ltibridge/internal/templates"

	"github.com/gin-gonic/gin"
)

const xmlErrorMsg = "No XML file. Please refresh and try again. " +
	"If this error persists, please contact support."

// XMLHandler serves the LTI tool descriptor the platform reads when the
// tool is installed.
type XMLHandler struct {
	tmpl  *template.Template
	props templates.DescriptorProps
}

func NewXMLHandler(tmpl *template.Template, props templates.DescriptorProps) *XMLHandler {
	return &XMLHandler{
		tmpl:  tmpl,
		props: props,
	}
}

func (h *XMLHandler) Descriptor(c *gin.Context) {
	if h.tmpl == nil {
		log.Printf("[XML] No descriptor template loaded")
		templates.RenderError(c, http.StatusInternalServerError, xmlErrorMsg)
		return
	}

	var buf bytes.Buffer
	if err := templates.RenderDescriptor(&buf, h.tmpl, h.props); err != nil {
		log.Printf("[XML] Descriptor render failed: %v", err)
		templates.RenderError(c, http.StatusInternalServerError, xmlErrorMsg)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}
