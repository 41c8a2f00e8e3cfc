package ledger

import (
	"context"
	"errors"
	"sort"

	"github.com/schollz/closestmatch"
	"go.uber.org/zap"

	"chitfund-service/internal/core/paystatus"
	"chitfund-service/internal/core/workbook"
	"chitfund-service/internal/domain"
	"chitfund-service/internal/metrics"
)

// Service reads ledger generations from the workbook.
type Service interface {
	// Extract scans the named generation (the newest when sheet is empty). An
	// unavailable workbook or sheet yields an empty ledger.
	Extract(ctx context.Context, sheet string) domain.LedgerResult
	// Sheets lists the generations, oldest first. Empty when the workbook is unavailable.
	Sheets(ctx context.Context) []string
	// Lookup suggests up to n member names close to the query, from the newest generation.
	Lookup(ctx context.Context, query string, n int) []string
}

type service struct {
	source  *workbook.Source
	store   paystatus.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates the ledger service.
func NewService(source *workbook.Source, store paystatus.Store, m *metrics.Metrics, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{source: source, store: store, metrics: m, logger: logger}
}

func (svc *service) Extract(ctx context.Context, sheet string) domain.LedgerResult {
	grid, err := svc.source.Grid(sheet)
	if err != nil {
		level := svc.logger.Warn
		if errors.Is(err, workbook.ErrSourceMissing) {
			level = svc.logger.Info
		}
		level("ledger source unavailable", zap.String("sheet", sheet), zap.Error(err))
		svc.metrics.Extraction("empty")
		return domain.EmptyLedger()
	}

	snap, err := svc.store.Load(ctx)
	if err != nil {
		svc.logger.Warn("payment status unavailable, treating all as unpaid", zap.Error(err))
		snap = paystatus.Snapshot{}
	}

	result, diag := ExtractGrid(grid, snap)
	diag.Each(func(p Pass, r SkipReason, n int) {
		svc.metrics.RowsSkipped(string(p), string(r), n)
	})
	svc.metrics.Extraction("ok")
	svc.logger.Debug("ledger extracted",
		zap.String("sheet", grid.Name),
		zap.Int("members", len(result.Members)),
		zap.Float64("grand_total", result.GrandTotal),
	)
	return result
}

func (svc *service) Sheets(ctx context.Context) []string {
	sheets, err := svc.source.Sheets()
	if err != nil {
		svc.logger.Warn("could not list sheets", zap.Error(err))
		return []string{}
	}
	return sheets
}

func (svc *service) Lookup(ctx context.Context, query string, n int) []string {
	if n <= 0 {
		n = 5
	}
	result := svc.Extract(ctx, "")
	if len(result.Members) == 0 || workbook.Normalize(query) == "" {
		return []string{}
	}

	byKey := map[string]string{}
	keys := make([]string, 0, len(result.Members))
	for _, m := range result.Members {
		k := workbook.Normalize(m.Name)
		if _, seen := byKey[k]; seen {
			continue
		}
		byKey[k] = m.Name
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := workbook.Normalize(query)
	if name, ok := byKey[q]; ok {
		return []string{name}
	}
	cm := closestmatch.New(keys, []int{2, 3})
	out := []string{}
	for _, k := range cm.ClosestN(q, n) {
		if name, ok := byKey[k]; ok {
			out = append(out, name)
		}
	}
	return out
}
