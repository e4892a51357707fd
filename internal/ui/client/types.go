package client

// TradeAction is the side of a manual trade
type TradeAction string

const (
	TradeBuy  TradeAction = "buy"
	TradeSell TradeAction = "sell"
)

// ordered option lists - shown in the ui and the cli help
var (
	TradeStatuses  = []string{"all", "open", "closed"}
	ConfigSections = []string{"global", "model", "trader"}
	JobIntervals   = []string{"15m", "30m", "1h", "2h", "4h", "12h", "1d"}
	Timeframes     = []string{"1m", "5m", "15m", "30m", "1h", "2h", "4h", "6h", "12h", "1d", "3d", "1w"}
)

// common maps - used to validate enum values before they are sent to the API
var (
	ValidTradeActions = map[TradeAction]bool{
		TradeBuy:  true,
		TradeSell: true,
	}
	ValidTradeStatuses  = toSet(TradeStatuses)
	ValidConfigSections = toSet(ConfigSections)
	ValidJobIntervals   = toSet(JobIntervals)
	ValidTimeframes     = toSet(Timeframes)
)

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

const (
	DefaultTradeStatus = "all"
	DefaultInterval    = "1h"
	DefaultTimeframe   = "1h"
	DefaultDataPoints  = 2000
	MinDataPoints      = 100
	MaxDataPoints      = 10000
)

// JobRequest schedules a recurring prediction job for a symbol
type JobRequest struct {
	Symbol   string `json:"symbol" example:"BTC/USDT"`
	Interval string `json:"interval" example:"1h"`
}

// TradeRequest is the body sent by ExecuteTrade
type TradeRequest struct {
	Symbol string      `json:"symbol" example:"BTC/USDT"`
	Action TradeAction `json:"action" example:"buy" enums:"buy,sell"`
}

// PredictionRequest asks the model for a price prediction
type PredictionRequest struct {
	Symbol    string `json:"symbol" example:"BTC/USDT"`
	Timeframe string `json:"timeframe" example:"1h"`
}

// ConfigUpdate is the body sent by SaveConfig
type ConfigUpdate struct {
	Section string `json:"section" example:"trader" enums:"model,trader,global"`
	Config  any    `json:"config"`
}

// TrainModelRequest retrains the model on the latest hourly data for a symbol
type TrainModelRequest struct {
	Symbol     string `json:"symbol" example:"BTC/USDT"`
	DataPoints int    `json:"data_points" example:"2000"`
}

// PredictionResponse is the payload returned by POST /api/predict
type PredictionResponse struct {
	Symbol     string  `json:"symbol"`
	Prediction float64 `json:"prediction"`
	Current    float64 `json:"current"`
	Change     float64 `json:"change"`
	ChangePct  float64 `json:"change_pct"`
	Direction  string  `json:"direction"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}
