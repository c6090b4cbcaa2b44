package view

import (
	"html/template"
	"strings"
)

// Body escapes untrusted LLM text for embedding in the page. Markup
// characters always render as literal text and newlines become explicit
// break tags. Raw model output must never reach a template unescaped.
func Body(text string) template.HTML {
	esc := template.HTMLEscapeString(text)
	esc = strings.ReplaceAll(esc, "\r\n", "\n")
	esc = strings.ReplaceAll(esc, "\n", "<br>")
	return template.HTML(esc)
}

// ResultBox renders one titled result block.
func ResultBox(title, body string) template.HTML {
	var sb strings.Builder
	sb.WriteString(`<div class="result-box"><h4>`)
	sb.WriteString(template.HTMLEscapeString(title))
	sb.WriteString(`</h4><p>`)
	sb.WriteString(string(Body(body)))
	sb.WriteString(`</p></div>`)
	return template.HTML(sb.String())
}
