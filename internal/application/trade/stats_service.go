package trade

import (
	"context"
	"time"

	"github.com/dropship/backoffice/internal/domain/report"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// defaultStatsWindowDays is the query window applied when the caller
// omits both range bounds.
const defaultStatsWindowDays = 30

// maxStatsWindowDays caps the range a single stats request may cover.
const maxStatsWindowDays = 366

// LeadStatsService serves the daily lead statistics. Closed days of
// unfiltered tenant-wide queries are read from materialized snapshots
// written by the nightly job; everything else is aggregated live.
type LeadStatsService struct {
	leadRepo     trade.LeadRepository
	snapshotRepo report.LeadDailySnapshotRepository
	logger       *zap.Logger
}

// NewLeadStatsService creates a new LeadStatsService. The snapshot
// repository is optional; without it every query is aggregated live.
func NewLeadStatsService(
	leadRepo trade.LeadRepository,
	snapshotRepo report.LeadDailySnapshotRepository,
	logger *zap.Logger,
) *LeadStatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadStatsService{
		leadRepo:     leadRepo,
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
}

// GetDailyStats returns one statistics line per day in the requested
// window, most recent day first. Days without leads are zero-filled.
// A non-nil sellerScope restricts the aggregation to that seller's leads.
func (s *LeadStatsService) GetDailyStats(ctx context.Context, tenantID uuid.UUID, filter DailyStatsFilter, sellerScope *uuid.UUID) ([]trade.LeadDailyStat, error) {
	if sellerScope != nil {
		filter.SellerID = sellerScope
	}

	from, to, err := resolveStatsWindow(filter)
	if err != nil {
		return nil, err
	}

	var stats []trade.LeadDailyStat
	if s.canUseSnapshots(filter) {
		stats, err = s.statsWithSnapshots(ctx, tenantID, from, to)
	} else {
		stats, err = s.statsLive(ctx, tenantID, from, to, filter)
	}
	if err != nil {
		return nil, err
	}

	// Most recent day first
	for i, j := 0, len(stats)-1; i < j; i, j = i+1, j-1 {
		stats[i], stats[j] = stats[j], stats[i]
	}

	return stats, nil
}

// canUseSnapshots reports whether the query can be served from the
// materialized read model. Snapshots hold tenant-wide numbers only, so
// any narrowing filter forces a live aggregation.
func (s *LeadStatsService) canUseSnapshots(filter DailyStatsFilter) bool {
	return s.snapshotRepo != nil &&
		filter.Status == "" &&
		filter.SellerID == nil &&
		filter.ProductID == nil &&
		filter.Country == ""
}

// statsLive aggregates the whole window from the leads table
func (s *LeadStatsService) statsLive(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter DailyStatsFilter) ([]trade.LeadDailyStat, error) {
	rows, err := s.leadRepo.CountsByDay(ctx, tenantID, trade.StatsQuery{
		From:      from,
		To:        to.Add(24*time.Hour - time.Nanosecond),
		SellerID:  filter.SellerID,
		ProductID: filter.ProductID,
		Country:   filter.Country,
	})
	if err != nil {
		return nil, err
	}

	if filter.Status != "" {
		status := trade.LeadStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown lead status: "+filter.Status)
		}
		filtered := rows[:0]
		for _, row := range rows {
			if row.Status == status {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	stats := trade.BuildDailyStats(rows)
	return trade.FillMissingDays(stats, from, to), nil
}

// statsWithSnapshots serves closed days from snapshots and aggregates
// the rest (today and any closed day the nightly job has not covered
// yet) live in a single query.
func (s *LeadStatsService) statsWithSnapshots(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]trade.LeadDailyStat, error) {
	closedTo := report.NormalizeDay(time.Now()).AddDate(0, 0, -1)

	snapshotTo := to
	if snapshotTo.After(closedTo) {
		snapshotTo = closedTo
	}

	snapshots := make(map[string]*report.LeadDailySnapshot)
	if !snapshotTo.Before(from) {
		found, err := s.snapshotRepo.FindByDateRange(ctx, tenantID, from, snapshotTo)
		if err != nil {
			return nil, err
		}
		for _, snap := range found {
			snapshots[snap.DateKey()] = snap
		}
	}

	// Live aggregation starts at the first day without a snapshot
	liveFrom := to.AddDate(0, 0, 1)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if day.After(closedTo) {
			liveFrom = day
			break
		}
		if _, ok := snapshots[day.Format("2006-01-02")]; !ok {
			liveFrom = day
			break
		}
	}

	liveByDay := make(map[string]trade.LeadDailyStat)
	if !liveFrom.After(to) {
		rows, err := s.leadRepo.CountsByDay(ctx, tenantID, trade.StatsQuery{
			From: liveFrom,
			To:   to.Add(24*time.Hour - time.Nanosecond),
		})
		if err != nil {
			return nil, err
		}
		for _, stat := range trade.BuildDailyStats(rows) {
			liveByDay[stat.Date] = stat
		}
	}

	stats := make([]trade.LeadDailyStat, 0, int(to.Sub(from).Hours()/24)+1)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if snap, ok := snapshots[key]; ok && day.Before(liveFrom) {
			stats = append(stats, snapshotToDailyStat(snap))
			continue
		}
		if stat, ok := liveByDay[key]; ok {
			stats = append(stats, stat)
			continue
		}
		stats = append(stats, trade.LeadDailyStat{
			Date:       key,
			Revenue:    decimal.Zero,
			PayoutPaid: decimal.Zero,
		})
	}

	return stats, nil
}

// resolveStatsWindow normalizes the requested range to UTC day bounds
func resolveStatsWindow(filter DailyStatsFilter) (time.Time, time.Time, error) {
	to := report.NormalizeDay(time.Now())
	if filter.To != nil {
		to = report.NormalizeDay(*filter.To)
	}

	from := to.AddDate(0, 0, -(defaultStatsWindowDays - 1))
	if filter.From != nil {
		from = report.NormalizeDay(*filter.From)
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_INPUT", "Range end cannot be before range start")
	}
	if to.Sub(from) > maxStatsWindowDays*24*time.Hour {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_INPUT", "Date range cannot exceed one year")
	}

	return from, to, nil
}

// snapshotToDailyStat converts a materialized snapshot row to the
// statistics line shape
func snapshotToDailyStat(snap *report.LeadDailySnapshot) trade.LeadDailyStat {
	return trade.LeadDailyStat{
		Date:        snap.DateKey(),
		Total:       snap.Total,
		New:         snap.New,
		Callback:    snap.Callback,
		Confirmed:   snap.Confirmed,
		Shipped:     snap.Shipped,
		Delivered:   snap.Delivered,
		Paid:        snap.Paid,
		Cancelled:   snap.Cancelled,
		Returned:    snap.Returned,
		Trash:       snap.Trash,
		Approved:    snap.Approved,
		ApproveRate: snap.ApproveRate,
		Revenue:     snap.Revenue,
		PayoutPaid:  snap.PayoutPaid,
	}
}
