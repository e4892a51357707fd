package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tradebot/dashboard/internal/ui/client"
)

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the bot status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(a.client.GetStatus(cmd.Context()))
		},
	}
}

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the trading statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(a.client.GetStats(cmd.Context()))
		},
	}
}

func (a *app) jobsCommand() *cobra.Command {
	jobs := &cobra.Command{
		Use:   "jobs",
		Short: "Manage the scheduled prediction jobs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(a.client.GetJobs(cmd.Context()))
		},
	}

	var interval string
	add := &cobra.Command{
		Use:     "add <symbol>",
		Short:   "Schedule a prediction job for a symbol",
		Example: "  tradebotctl jobs add BTC/USDT --interval 4h",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(a.client.AddJob(cmd.Context(), client.JobRequest{
				Symbol:   args[0],
				Interval: interval,
			}))
		},
	}
	add.Flags().StringVar(&interval, "interval", client.DefaultInterval, "job interval: "+strings.Join(client.JobIntervals, ", "))

	remove := &cobra.Command{
		Use:     "remove <job-id>",
		Short:   "Remove a scheduled job",
		Example: "  tradebotctl jobs remove predict_BTC/USDT_1h",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(a.client.RemoveJob(cmd.Context(), args[0]))
		},
	}

	jobs.AddCommand(list, add, remove)
	return jobs
}

func (a *app) tradesCommand() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List trades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !client.ValidTradeStatuses[status] {
				return fmt.Errorf("invalid status %q (expects %s)", status, strings.Join(client.TradeStatuses, ", "))
			}
			return a.call(a.client.GetTrades(cmd.Context(), status))
		},
	}
	cmd.Flags().StringVar(&status, "status", client.DefaultTradeStatus, "trade status: "+strings.Join(client.TradeStatuses, ", "))
	return cmd
}

func (a *app) tradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "trade <symbol> <buy|sell>",
		Short:   "Execute a manual trade",
		Example: "  tradebotctl trade BTC/USDT buy",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(a.client.ExecuteTrade(cmd.Context(), args[0], client.TradeAction(strings.ToLower(args[1]))))
		},
	}
}

func (a *app) predictCommand() *cobra.Command {
	var timeframe string
	cmd := &cobra.Command{
		Use:   "predict <symbol>",
		Short: "Request a price prediction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(a.client.MakePrediction(cmd.Context(), client.PredictionRequest{
				Symbol:    args[0],
				Timeframe: timeframe,
			}))
		},
	}
	cmd.Flags().StringVar(&timeframe, "timeframe", client.DefaultTimeframe, "timeframe: "+strings.Join(client.Timeframes, ", "))
	return cmd
}

func (a *app) configCommand() *cobra.Command {
	config := &cobra.Command{
		Use:   "config",
		Short: "Show or update the bot configuration",
	}

	var section string
	get := &cobra.Command{
		Use:   "get",
		Short: "Show the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if section == "" {
				return a.call(a.client.GetConfig(cmd.Context()))
			}
			return a.call(a.client.GetConfigSection(cmd.Context(), section))
		},
	}
	get.Flags().StringVar(&section, "section", "", "only show one section: "+strings.Join(client.ConfigSections, ", "))

	set := &cobra.Command{
		Use:     "set <section> <json>",
		Short:   "Update the parameters of a configuration section",
		Example: `  tradebotctl config set trader '{"risk_per_trade": 0.02}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("configuration parameters must be valid JSON")
			}
			return a.call(a.client.SaveConfig(cmd.Context(), args[0], json.RawMessage(args[1])))
		},
	}

	config.AddCommand(get, set)
	return config
}

func (a *app) trainCommand() *cobra.Command {
	var dataPoints int
	cmd := &cobra.Command{
		Use:   "train <symbol>",
		Short: "Retrain the prediction model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(a.client.TrainModel(cmd.Context(), client.TrainModelRequest{
				Symbol:     args[0],
				DataPoints: dataPoints,
			}))
		},
	}
	cmd.Flags().IntVar(&dataPoints, "data-points", client.DefaultDataPoints,
		fmt.Sprintf("number of hourly candles to train on (%d-%d)", client.MinDataPoints, client.MaxDataPoints))
	return cmd
}
