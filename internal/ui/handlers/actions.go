package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tradebot/dashboard/internal/ui/client"
	"github.com/tradebot/dashboard/internal/ui/templates"
)

// AddJobHandler handles the form submission to schedule a prediction job
func (h *HandlerService) AddJobHandler(w http.ResponseWriter, r *http.Request) {
	job := client.JobRequest{
		Symbol:   strings.TrimSpace(r.FormValue("symbol")),
		Interval: r.FormValue("interval"),
	}
	if job.Interval == "" {
		job.Interval = client.DefaultInterval
	}

	payload, err := h.ApiClient.AddJob(r.Context(), job)
	if err != nil {
		h.renderAPIError(w, r, "add job", err)
		return
	}

	h.renderComponent(w, r, "success alert", templates.SuccessAlert(
		fmt.Sprintf("Job for %s every %s added", job.Symbol, job.Interval), payload))
}

// RemoveJobHandler deletes the job named in the url (DELETE /ui-api/jobs/{id})
func (h *HandlerService) RemoveJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	// chi routes on RawPath when it is set, leaving the param escaped
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(jobID); err == nil {
			jobID = unescaped
		}
	}

	payload, err := h.ApiClient.RemoveJob(r.Context(), jobID)
	if err != nil {
		h.renderAPIError(w, r, "remove job", err)
		return
	}

	h.renderComponent(w, r, "success alert", templates.SuccessAlert(
		fmt.Sprintf("Job %s removed", jobID), payload))
}

// ExecuteTradeHandler handles the manual trade form
func (h *HandlerService) ExecuteTradeHandler(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.FormValue("symbol"))
	action := client.TradeAction(r.FormValue("action"))

	payload, err := h.ApiClient.ExecuteTrade(r.Context(), symbol, action)
	if err != nil {
		h.renderAPIError(w, r, "execute trade", err)
		return
	}

	h.renderComponent(w, r, "success alert", templates.SuccessAlert(
		fmt.Sprintf("%s order for %s executed", action, symbol), payload))
}

// PredictHandler handles the prediction form
func (h *HandlerService) PredictHandler(w http.ResponseWriter, r *http.Request) {
	req := client.PredictionRequest{
		Symbol:    strings.TrimSpace(r.FormValue("symbol")),
		Timeframe: r.FormValue("timeframe"),
	}
	if req.Timeframe == "" {
		req.Timeframe = client.DefaultTimeframe
	}

	payload, err := h.ApiClient.MakePrediction(r.Context(), req)
	if err != nil {
		h.renderAPIError(w, r, "make prediction", err)
		return
	}

	msg := fmt.Sprintf("Prediction for %s (%s)", req.Symbol, req.Timeframe)
	var prediction client.PredictionResponse
	if err := json.Unmarshal(payload, &prediction); err == nil && prediction.Direction != "" {
		msg = fmt.Sprintf("%s: %s %.2f (%+.2f%%)", msg, prediction.Direction, prediction.Prediction, prediction.ChangePct)
	}

	h.renderComponent(w, r, "success alert", templates.SuccessAlert(msg, payload))
}

// SaveConfigHandler handles the configuration form. The config field holds the section parameters as a JSON object.
func (h *HandlerService) SaveConfigHandler(w http.ResponseWriter, r *http.Request) {
	section := r.FormValue("section")
	raw := strings.TrimSpace(r.FormValue("config"))

	if raw == "" {
		h.renderErrorAlert(w, r, "Please enter the configuration parameters.")
		return
	}
	if !json.Valid([]byte(raw)) {
		h.renderErrorAlert(w, r, "The configuration parameters must be valid JSON.")
		return
	}

	payload, err := h.ApiClient.SaveConfig(r.Context(), section, json.RawMessage(raw))
	if err != nil {
		h.renderAPIError(w, r, "save config", err)
		return
	}

	h.renderComponent(w, r, "success alert", templates.SuccessAlert(
		fmt.Sprintf("Configuration section %s updated", section), payload))
}

// TrainModelHandler handles the model training form
func (h *HandlerService) TrainModelHandler(w http.ResponseWriter, r *http.Request) {
	req := client.TrainModelRequest{
		Symbol: strings.TrimSpace(r.FormValue("symbol")),
	}

	if dp := strings.TrimSpace(r.FormValue("data_points")); dp != "" {
		n, err := strconv.Atoi(dp)
		if err != nil {
			h.renderErrorAlert(w, r, "Data points must be a whole number.")
			return
		}
		req.DataPoints = n
	}

	payload, err := h.ApiClient.TrainModel(r.Context(), req)
	if err != nil {
		h.renderAPIError(w, r, "train model", err)
		return
	}

	h.renderComponent(w, r, "success alert", templates.SuccessAlert(
		fmt.Sprintf("Model training for %s started", req.Symbol), payload))
}
