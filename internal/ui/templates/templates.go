// Package templates renders the dashboard page and the html fragments returned by the /ui-api routes.
package templates

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

//go:embed html/*.html
var htmlFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = template.Must(template.New("").ParseFS(htmlFS, "html/*.html"))

// Component is a renderable piece of html
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

type component struct {
	name string
	data any
}

// Render executes the template into a buffer first so a failed render never writes a partial page
func (c component) Render(_ context.Context, w io.Writer) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, c.name, c.data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// PanelData is one box on the dashboard: either a highlighted payload or the reason it could not be loaded
type PanelData struct {
	ID         string
	Title      string
	RefreshURL string
	Payload    template.HTML
	Error      string
}

// NewPanel highlights payload for display. errMsg is shown instead of the payload when set.
func NewPanel(id, title, refreshURL string, payload json.RawMessage, errMsg string) PanelData {
	p := PanelData{
		ID:         id,
		Title:      title,
		RefreshURL: refreshURL,
		Error:      errMsg,
	}
	if errMsg != "" {
		return p
	}

	highlighted, err := HighlightJSON(payload)
	if err != nil {
		highlighted = template.HTML("<pre>" + template.HTMLEscapeString(string(payload)) + "</pre>") // #nosec G203
	}
	p.Payload = highlighted
	return p
}

// DashboardData holds everything shown on the dashboard page
type DashboardData struct {
	Lang           string
	Version        string
	APIBaseURL     string
	Panels         []PanelData
	TradeStatuses  []string
	JobIntervals   []string
	Timeframes     []string
	ConfigSections []string
	DataPoints     DataPointLimits
}

type DataPointLimits struct {
	Default int
	Min     int
	Max     int
}

func DashboardPage(data DashboardData) Component {
	return component{name: "dashboard", data: data}
}

func Panel(data PanelData) Component {
	return component{name: "panel", data: data}
}

func ErrorAlert(msg string) Component {
	return component{name: "error_alert", data: msg}
}

// ActionResult is shown after a successful form submission
type ActionResult struct {
	Message string
	Payload template.HTML
}

func SuccessAlert(msg string, payload json.RawMessage) Component {
	result := ActionResult{Message: msg}
	if len(payload) > 0 {
		if highlighted, err := HighlightJSON(payload); err == nil {
			result.Payload = highlighted
		}
	}
	return component{name: "success_alert", data: result}
}

// StaticHandler serves the embedded script and stylesheet. Mount it under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}
