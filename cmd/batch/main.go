package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/lecturemarket/lecturemarket-backend/internal/config"
	"github.com/lecturemarket/lecturemarket-backend/internal/database"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/repository"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/service"
	pkglogger "github.com/lecturemarket/lecturemarket-backend/pkg/logger"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "batch",
		Short:         "결제 배치 작업 수동 실행",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default configs/config.<APP_ENV>.yaml)")

	rootCmd.AddCommand(paymentStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func paymentStatsCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "payment-stats",
		Short: "일일 결제 통계 계산 (기본: 어제)",
		Long: `Compute daily payment stats for the day before --date.

Examples:
  batch payment-stats
  batch payment-stats --date 2026-03-02
  batch payment-stats backfill --from 2026-02-01 --to 2026-02-28`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStatsService(func(ctx context.Context, svc service.StatsService) error {
				result, err := svc.ComputeStats(ctx, date, service.TriggerCLI)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "target date (YYYY-MM-DD); stats are computed for the previous day")

	cmd.AddCommand(backfillCmd())
	return cmd
}

func backfillCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "통계 날짜 구간 재계산 (양끝 포함)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStatsService(func(ctx context.Context, svc service.StatsService) error {
				results, err := svc.Backfill(ctx, from, to, service.TriggerCLI)
				if err != nil {
					return err
				}
				return printJSON(cmd, results)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first stat date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last stat date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// withStatsService 설정/DB 로드 후 통계 서비스로 fn 실행
func withStatsService(fn func(ctx context.Context, svc service.StatsService) error) error {
	if _, err := config.LoadDotEnv(); err != nil {
		return err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)

	path := configPath
	if path == "" {
		path = fmt.Sprintf("configs/config.%s.yaml", env)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(&cfg.Database, false)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := service.NewStatsService(repository.NewStatsRepository(db), cfg.Location())
	return fn(ctx, svc)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
