package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/tradebot/dashboard/internal/logger"
	"github.com/tradebot/dashboard/internal/ui/client"
	"github.com/tradebot/dashboard/internal/ui/templates"
	"github.com/tradebot/dashboard/internal/version"
)

// panel describes one dashboard box and how to load it
type panel struct {
	id         string
	title      string
	refreshURL string
	fetch      func(ctx context.Context, c *client.Client) (json.RawMessage, error)
}

var (
	statusPanel = panel{"status", "Bot status", "/ui-api/status", func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
		return c.GetStatus(ctx)
	}}
	statsPanel = panel{"stats", "Trading statistics", "/ui-api/stats", func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
		return c.GetStats(ctx)
	}}
	jobsPanel = panel{"jobs", "Prediction jobs", "/ui-api/jobs", func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
		return c.GetJobs(ctx)
	}}
	tradesPanel = panel{"trades", "Trades", "/ui-api/trades", func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
		return c.GetTrades(ctx, client.DefaultTradeStatus)
	}}
	configPanel = panel{"config", "Configuration", "/ui-api/config", func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
		return c.GetConfig(ctx)
	}}

	dashboardPanels = []panel{statusPanel, statsPanel, jobsPanel, tradesPanel, configPanel}
)

// DashboardHandler renders the dashboard page.
// The panels are loaded concurrently. A panel that fails shows the normalized error and does not affect the others.
func (h *HandlerService) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	panels := make([]templates.PanelData, len(dashboardPanels))

	var g errgroup.Group
	for i, p := range dashboardPanels {
		g.Go(func() error {
			payload, err := p.fetch(r.Context(), h.ApiClient)
			if err != nil {
				h.logAPIError(r, "load "+p.id, err)
				panels[i] = templates.NewPanel(p.id, p.title, p.refreshURL, nil, h.Normalizer.Format(err))
				return nil
			}
			panels[i] = templates.NewPanel(p.id, p.title, p.refreshURL, payload, "")
			return nil
		})
	}
	_ = g.Wait()

	data := templates.DashboardData{
		Lang:           h.Normalizer.Language().String(),
		Version:        version.Get().Version,
		APIBaseURL:     h.ApiClient.BaseURL(),
		Panels:         panels,
		TradeStatuses:  client.TradeStatuses,
		JobIntervals:   client.JobIntervals,
		Timeframes:     client.Timeframes,
		ConfigSections: client.ConfigSections,
		DataPoints: templates.DataPointLimits{
			Default: client.DefaultDataPoints,
			Min:     client.MinDataPoints,
			Max:     client.MaxDataPoints,
		},
	}

	h.renderComponent(w, r, "dashboard page", templates.DashboardPage(data))
}

// StatusPanelHandler, StatsPanelHandler and JobsPanelHandler re-render a single dashboard panel
func (h *HandlerService) StatusPanelHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPanel(w, r, statusPanel)
}

func (h *HandlerService) StatsPanelHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPanel(w, r, statsPanel)
}

func (h *HandlerService) JobsPanelHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPanel(w, r, jobsPanel)
}

// TradesPanelHandler renders the trades panel filtered by the status query parameter (open, closed or all)
func (h *HandlerService) TradesPanelHandler(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !client.ValidTradeStatuses[status] {
		h.renderErrorAlert(w, r, "Invalid trade status: "+status)
		return
	}

	p := tradesPanel
	p.fetch = func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
		return c.GetTrades(ctx, status)
	}
	if status != "" && status != client.DefaultTradeStatus {
		p.title = "Trades (" + status + ")"
		p.refreshURL = "/ui-api/trades?status=" + status
	}
	h.renderPanel(w, r, p)
}

// ConfigPanelHandler renders the configuration panel, optionally limited to one section
func (h *HandlerService) ConfigPanelHandler(w http.ResponseWriter, r *http.Request) {
	section := r.URL.Query().Get("section")
	if section == "" {
		h.renderPanel(w, r, configPanel)
		return
	}

	p := panel{
		id:         "config",
		title:      "Configuration (" + section + ")",
		refreshURL: "/ui-api/config?section=" + section,
		fetch: func(ctx context.Context, c *client.Client) (json.RawMessage, error) {
			return c.GetConfigSection(ctx, section)
		},
	}
	h.renderPanel(w, r, p)
}

func (h *HandlerService) renderPanel(w http.ResponseWriter, r *http.Request, p panel) {
	payload, err := p.fetch(r.Context(), h.ApiClient)
	if err != nil {
		h.logAPIError(r, "load "+p.id, err)
		logger.ContextWithLogAttrs(r.Context(), slog.String("panel", p.id))
		h.renderComponent(w, r, p.id+" panel", templates.Panel(templates.NewPanel(p.id, p.title, p.refreshURL, nil, h.Normalizer.Format(err))))
		return
	}
	h.renderComponent(w, r, p.id+" panel", templates.Panel(templates.NewPanel(p.id, p.title, p.refreshURL, payload, "")))
}
