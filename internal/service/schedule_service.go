package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/availability"
	"github.com/Ross1116/sitespace-app-sub000/internal/layout"
	"github.com/Ross1116/sitespace-app-sub000/internal/logger"
	"github.com/Ross1116/sitespace-app-sub000/internal/models"
	"github.com/Ross1116/sitespace-app-sub000/internal/normalize"
	"github.com/Ross1116/sitespace-app-sub000/internal/reschedule"
	"github.com/Ross1116/sitespace-app-sub000/internal/store"
)

var (
	ErrNoDayLoaded   = errors.New("no schedule loaded yet")
	ErrDayNotLoaded  = errors.New("requested day is not loaded, refresh it first")
	ErrAssetNotFound = errors.New("asset not found in the loaded schedule")
	ErrCollapsedTile = errors.New("collapsed pending tiles cannot be dragged")
)

// BackendClient is the subset of the upstream sitespace API the scheduler
// consumes. Persistence and conflict arbitration live behind it.
type BackendClient interface {
	FetchBookings(ctx context.Context, projectKey string, day time.Time) ([]models.RawBooking, error)
	FetchAssets(ctx context.Context, projectKey string) ([]models.Asset, error)
	CommitReschedule(ctx context.Context, bookingKey string, payload models.ReschedulePayload) error
}

// SnapshotRepository caches the last fetched raw bookings locally.
type SnapshotRepository interface {
	UpsertAll(ctx context.Context, projectKey string, raws []models.RawBooking) error
	ListByProject(ctx context.Context, projectKey string) ([]models.RawBooking, error)
}

// TileView pairs a positioned tile with the display data of its event. A
// collapsed tile summarizes several pending requests under the first one's
// identity.
type TileView struct {
	layout.Tile
	Title  string            `json:"title"`
	Color  models.EventColor `json:"color"`
	Status string            `json:"status"`
	Start  time.Time         `json:"start"`
	End    time.Time         `json:"end"`
}

// AssetColumn is one asset's rendered day: blocked flags per displayed hour
// plus positioned tiles.
type AssetColumn struct {
	AssetID      string     `json:"asset_id"`
	AssetName    string     `json:"asset_name"`
	AssetCode    string     `json:"asset_code"`
	BlockedHours []bool     `json:"blocked_hours"`
	Tiles        []TileView `json:"tiles"`
}

type ScheduleService interface {
	RefreshDay(ctx context.Context, projectKey string, day time.Time) error
	DayView(day time.Time) ([]AssetColumn, error)
	Reschedule(ctx context.Context, assetID, eventID string, deltaPx float64) (*reschedule.Proposal, error)
	InsertDrafts(drafts []models.RawBooking) int
	Close()
}

type column struct {
	name  string
	code  string
	store *store.EventStore
	ctrl  *reschedule.Controller
}

type scheduleService struct {
	mu        sync.RWMutex
	backend   BackendClient
	snapshots SnapshotRepository
	layoutCfg layout.Config
	dragCfg   reschedule.Config
	log       *logger.Logger

	day     time.Time
	columns []*column
	byAsset map[string]*column

	// assets has its own lock because the controllers' block checkers read it
	// while holding their controller mutex; reading through s.mu there would
	// invert lock order against RefreshDay, which holds s.mu while closing
	// controllers. Order is always s.mu -> ctrl.mu -> assetsMu.
	assetsMu sync.RWMutex
	assets   map[string]models.Asset

	cache *normalize.NameCache
}

func NewScheduleService(backend BackendClient, snapshots SnapshotRepository,
	layoutCfg layout.Config, dragCfg reschedule.Config, log *logger.Logger) ScheduleService {
	return &scheduleService{
		backend:   backend,
		snapshots: snapshots,
		layoutCfg: layoutCfg,
		dragCfg:   dragCfg,
		log:       log,
		byAsset:   make(map[string]*column),
		assets:    make(map[string]models.Asset),
		cache:     normalize.NewNameCache(),
	}
}

// RefreshDay rebuilds every asset calendar wholesale from the backend booking
// list. A failed fetch falls back to the local snapshot so the day view
// degrades to stale data instead of disappearing.
func (s *scheduleService) RefreshDay(ctx context.Context, projectKey string, day time.Time) error {
	if assets, err := s.backend.FetchAssets(ctx, projectKey); err != nil {
		s.log.Warnf("asset metadata fetch failed, keeping previous: %v", err)
	} else {
		s.assetsMu.Lock()
		s.assets = make(map[string]models.Asset, len(assets))
		for _, a := range assets {
			s.assets[a.ID] = a
			s.cache.Remember(a.ID, a.Name)
		}
		s.assetsMu.Unlock()
	}

	raws, err := s.backend.FetchBookings(ctx, projectKey, day)
	if err != nil {
		s.log.Warnf("booking fetch failed, trying local snapshot: %v", err)
		raws, err = s.snapshots.ListByProject(ctx, projectKey)
		if err != nil {
			return fmt.Errorf("fetch bookings: %w", err)
		}
	} else if upErr := s.snapshots.UpsertAll(ctx, projectKey, raws); upErr != nil {
		s.log.Warnf("snapshot upsert failed: %v", upErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, col := range s.columns {
		col.ctrl.Close()
	}

	calendars := normalize.Group(raws, time.Now(), s.cache)
	s.columns = s.columns[:0]
	s.byAsset = make(map[string]*column, len(calendars))
	for _, cal := range calendars {
		col := s.newColumnLocked(cal.ID, cal.Name)
		col.store.Replace(cal.Events)
		if len(cal.Events) > 0 {
			col.code = cal.Events[0].AssetCode
		}
		s.columns = append(s.columns, col)
		s.byAsset[cal.ID] = col
	}
	s.day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	s.log.Infow("schedule refreshed",
		"project", projectKey, "day", s.day.Format("2006-01-02"),
		"assets", len(s.columns), "bookings", len(raws))
	return nil
}

// newColumnLocked builds the store and drag controller for one asset column.
// The controller's block checker closes over the asset id so later metadata
// refreshes are picked up without rebuilding controllers.
func (s *scheduleService) newColumnLocked(assetID, name string) *column {
	st := store.New(assetID)
	blocked := func(at time.Time) bool {
		s.assetsMu.RLock()
		asset, ok := s.assets[assetID]
		s.assetsMu.RUnlock()
		if !ok {
			return false
		}
		return availability.IsBlocked(asset, at)
	}
	ctrl := reschedule.NewController(s.dragCfg, st, blocked, s.backend)
	ctrl.SetCommittedHook(func(ev models.CalendarEvent) {
		s.log.Infow("reschedule committed",
			"booking", ev.BookingKey, "asset", assetID,
			"start", ev.Start.Format("15:04"), "end", ev.End.Format("15:04"))
	})
	return &column{name: name, store: st, ctrl: ctrl}
}

func (s *scheduleService) DayView(day time.Time) ([]AssetColumn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.day.IsZero() {
		return nil, ErrNoDayLoaded
	}
	// The stores hold exactly one refreshed day; a view of any other day would
	// silently render empty columns.
	if !sameDay(day, s.day) {
		return nil, ErrDayNotLoaded
	}

	engine := layout.NewEngine(s.layoutCfg)
	out := make([]AssetColumn, 0, len(s.columns))
	for _, col := range s.columns {
		events := col.store.Events()
		byID := make(map[string]models.CalendarEvent, len(events))
		for _, ev := range events {
			byID[ev.ID] = ev
		}

		s.assetsMu.RLock()
		asset := s.assets[col.store.AssetID()]
		s.assetsMu.RUnlock()
		blocked := make([]bool, engine.Rows())
		for i := range blocked {
			at := time.Date(day.Year(), day.Month(), day.Day(),
				s.layoutCfg.StartHour+i, 0, 0, 0, day.Location())
			blocked[i] = availability.IsBlocked(asset, at)
		}

		tiles := engine.Layout(events, day)
		views := make([]TileView, 0, len(tiles))
		for _, tile := range tiles {
			view := TileView{Tile: tile}
			if tile.Collapsed {
				view.Title = fmt.Sprintf("%d pending requests", tile.PendingCount)
				view.Color = models.ColorAmber
				view.Status = models.StatusPending
			} else if ev, ok := byID[tile.EventID]; ok {
				view.Title = ev.Title
				view.Color = ev.Color
				view.Status = ev.Status
				view.Start = ev.Start
				view.End = ev.End
			}
			views = append(views, view)
		}

		out = append(out, AssetColumn{
			AssetID:      col.store.AssetID(),
			AssetName:    col.name,
			AssetCode:    col.code,
			BlockedHours: blocked,
			Tiles:        views,
		})
	}
	return out, nil
}

// Reschedule runs one full drag gesture against the owning asset's
// controller: begin at the tile, release at the accumulated pixel delta,
// confirm if a proposal survived validation. A zero-snap delta is a no-op
// returning (nil, nil).
func (s *scheduleService) Reschedule(ctx context.Context, assetID, eventID string, deltaPx float64) (*reschedule.Proposal, error) {
	s.mu.RLock()
	col, ok := s.byAsset[assetID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrAssetNotFound
	}

	// A collapsed summary tile stands in for a crowd of pending requests and
	// is not draggable; refuse drags on any member of a collapsed group.
	if ev, found := col.store.Find(eventID); found && ev.Status == models.StatusPending {
		pendingInHour := 0
		for _, sibling := range col.store.Events() {
			if sibling.Status == models.StatusPending &&
				sibling.Start.Hour() == ev.Start.Hour() && sameDay(sibling.Start, ev.Start) {
				pendingInHour++
			}
		}
		if pendingInHour >= s.layoutCfg.CollapseThreshold {
			return nil, ErrCollapsedTile
		}
	}

	if err := col.ctrl.Begin(eventID, 0); err != nil {
		return nil, err
	}
	proposal, err := col.ctrl.End(deltaPx)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, nil
	}
	if err := col.ctrl.Confirm(ctx); err != nil {
		return nil, err
	}
	return proposal, nil
}

// InsertDrafts normalizes creation-dialog output (one partial booking per
// asset for multi-asset creation) and inserts each draft into its calendar,
// creating columns for assets not seen this fetch. Returns the number of
// drafts placed; unresolvable drafts are dropped like any other record.
func (s *scheduleService) InsertDrafts(drafts []models.RawBooking) int {
	events := normalize.NormalizeDraft(drafts, time.Now(), s.cache)

	s.mu.Lock()
	defer s.mu.Unlock()

	placed := 0
	for _, ev := range events {
		if ev.AssetID == "" {
			continue
		}
		col, ok := s.byAsset[ev.AssetID]
		if !ok {
			col = s.newColumnLocked(ev.AssetID, ev.AssetName)
			col.code = ev.AssetCode
			s.columns = append(s.columns, col)
			s.byAsset[ev.AssetID] = col
		}
		col.store.Insert(ev)
		placed++
	}
	return placed
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Close tears down every column's controller so in-flight commits resolve
// without touching dead stores.
func (s *scheduleService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, col := range s.columns {
		col.ctrl.Close()
	}
}
