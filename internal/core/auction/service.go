package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"chitfund-service/internal/core/workbook"
	"chitfund-service/internal/domain"
	"chitfund-service/internal/metrics"
)

// Uploader publishes the workbook after a successful write.
type Uploader interface {
	Up(ctx context.Context) error
}

// Service runs auction settlements against the workbook.
type Service interface {
	Settle(ctx context.Context, req domain.SettleRequest) (domain.SettleReport, error)
	Plans(ctx context.Context) []domain.AuctionPlan
}

type service struct {
	source   *workbook.Source
	uploader Uploader
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates the settlement service. uploader may be nil.
func NewService(source *workbook.Source, uploader Uploader, m *metrics.Metrics, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{source: source, uploader: uploader, metrics: m, logger: logger}
}

func (svc *service) Settle(ctx context.Context, req domain.SettleRequest) (domain.SettleReport, error) {
	name := strings.TrimSpace(req.SheetName)
	if name == "" {
		svc.metrics.Settlement("invalid")
		return domain.SettleReport{}, ErrSheetNameRequired
	}
	bids := derived(req.Bids)
	if len(bids) == 0 {
		svc.metrics.Settlement("invalid")
		return domain.SettleReport{}, ErrNoValidInputs
	}

	var out Outcome
	from, err := svc.source.CopyForward(name, func(src *workbook.Grid, dst workbook.CellWriter) error {
		var err error
		out, err = apply(src, dst, bids, req.EffectiveDate)
		return err
	})
	if err != nil {
		if errors.Is(err, workbook.ErrSourceLocked) {
			svc.metrics.Settlement("locked")
		} else {
			svc.metrics.Settlement("error")
		}
		svc.logger.Error("settlement failed", zap.String("sheet", name), zap.Error(err))
		return domain.SettleReport{}, fmt.Errorf("settle %s: %w", name, err)
	}
	svc.metrics.Settlement("ok")

	report := domain.SettleReport{
		SheetName:     name,
		SourceSheet:   from,
		LedgerRows:    out.LedgerRows,
		SummaryCells:  out.SummaryCells,
		FooterRows:    out.FooterRows,
		PlanRows:      out.PlanRows,
		UnmatchedBids: out.Unmatched,
	}
	svc.logger.Info("settlement applied",
		zap.String("sheet", name),
		zap.String("source", from),
		zap.Int("ledger_rows", out.LedgerRows),
		zap.Int("plan_rows", out.PlanRows),
		zap.Strings("unmatched", out.Unmatched),
	)

	if svc.uploader != nil {
		if err := svc.uploader.Up(ctx); err != nil {
			svc.logger.Warn("workbook upload failed", zap.Error(err))
		}
	}
	return report, nil
}

func (svc *service) Plans(ctx context.Context) []domain.AuctionPlan {
	grid, err := svc.source.Grid("")
	if err != nil {
		svc.logger.Warn("auction plans unavailable", zap.Error(err))
		return []domain.AuctionPlan{}
	}
	return ListPlans(grid)
}
