package templates

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const highlightStyle = "github"

var jsonFormatter = chromahtml.New(
	chromahtml.WithClasses(true),
	chromahtml.TabWidth(2),
)

// HighlightJSON pretty prints an API payload and returns it as highlighted html.
// Payloads that are not valid JSON are highlighted as-is.
func HighlightJSON(payload json.RawMessage) (template.HTML, error) {
	source := string(payload)

	var indented bytes.Buffer
	if err := json.Indent(&indented, payload, "", "  "); err == nil {
		source = indented.String()
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := highlightingStyle()

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := jsonFormatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}

	// the formatter escapes the token text
	return template.HTML(buf.String()), nil // #nosec G203
}

func highlightingStyle() *chroma.Style {
	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	return style
}

// HighlightCSS serves the stylesheet for the classes used by HighlightJSON.
// Inline styles are blocked by the Content-Security-Policy set in the ui server.
func HighlightCSS() http.Handler {
	var css bytes.Buffer
	if err := jsonFormatter.WriteCSS(&css, highlightingStyle()); err != nil {
		panic(err)
	}
	body := css.Bytes()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(body)
	})
}
