package main

import (
	"context"
	"fmt"
	"io"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	"Plume/internal/api/config"
	"Plume/internal/api/dto"
	"Plume/internal/pkg/database"
	"Plume/internal/pkg/logger"
	"Plume/internal/pkg/mongo"
	"Plume/internal/pkg/util"
	"Plume/internal/service"
	"Plume/internal/wire"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// reportOptions 命令行参数
type reportOptions struct {
	configDir string
	scope     string
	id        uint64
	ids       string
	query     dto.DashboardQuery
}

var opts reportOptions

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute a dashboard report and print it as JSON",
	Long:  "report runs the dashboard computation against the configured stores, bypassing the cache, and writes the result to stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadConfigFrom(opts.configDir); err != nil {
			return err
		}
		cfg := config.Cfg
		logger.InitLogger(cfg.Log)

		dbCfg := cfg.DB
		db, err := database.NewGormDB(&dbCfg)
		if err != nil {
			return err
		}

		var mongoDB *mongodriver.Database
		if cfg.Mongo.URI != "" {
			if mongoDB, err = mongo.InitMongo(cfg.Mongo); err != nil {
				return err
			}
		}

		// 离线报表不读写缓存
		cfg.Cache.Enable = false
		svc, err := wire.BuildDashboardService(db, mongoDB, cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithTraceID(ctx, "report-", "")

		data, err := runReport(ctx, svc, &opts)
		if err != nil {
			log.ErrorContext(ctx, "report failed", "err", err)
			return err
		}
		return writeJSON(cmd.OutOrStdout(), data)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configDir, "config", "c", "./configs", "Directory containing config.yaml")
	flags.StringVar(&opts.scope, "scope", service.ScopeEmployee, "employee, campaign, group or global")
	flags.Uint64Var(&opts.id, "id", 0, "User ID for employee scope, campaign ID for campaign scope")
	flags.StringVar(&opts.ids, "ids", "", "Comma separated campaign IDs for group scope")
	flags.StringVar(&opts.query.Start, "start", "", "Range start, YYYY-MM-DD")
	flags.StringVar(&opts.query.End, "end", "", "Range end, YYYY-MM-DD")
	flags.StringVar(&opts.query.Granularity, "granularity", "daily", "daily, weekly or monthly")
	flags.StringVar(&opts.query.Mode, "mode", "post_date", "post_date or accrual")
	flags.BoolVar(&opts.query.MergeIdentities, "merge-identities", false, "Union handles from every identity source")
}

// runReport 按 scope 分派到看板服务
func runReport(ctx context.Context, svc service.DashboardService, o *reportOptions) (*dto.DashboardDTO, error) {
	query := o.query
	switch o.scope {
	case service.ScopeEmployee:
		if o.id == 0 {
			return nil, fmt.Errorf("--id is required for scope %s", o.scope)
		}
		return svc.GetEmployeeDashboard(ctx, o.id, &query)
	case service.ScopeCampaign:
		if o.id == 0 {
			return nil, fmt.Errorf("--id is required for scope %s", o.scope)
		}
		return svc.GetCampaignDashboard(ctx, o.id, &query)
	case service.ScopeGroup:
		ids, err := util.ParseUint64List(o.ids)
		if err != nil {
			return nil, fmt.Errorf("invalid --ids: %w", err)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("--ids is required for scope %s", o.scope)
		}
		return svc.GetGroupDashboard(ctx, ids, &query)
	case service.ScopeGlobal:
		return svc.GetGlobalDashboard(ctx, &query)
	}
	return nil, fmt.Errorf("unknown scope %q", o.scope)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
