package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-insights/internal/data/graph"
	"github.com/yungbote/neurobridge-insights/internal/data/repos"
	types "github.com/yungbote/neurobridge-insights/internal/domain"
	"github.com/yungbote/neurobridge-insights/internal/modules/insights"
	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/pkg/dbctx"
	apperrors "github.com/yungbote/neurobridge-insights/internal/pkg/errors"
	"github.com/yungbote/neurobridge-insights/internal/pkg/httpx"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/platform/apierr"
	"github.com/yungbote/neurobridge-insights/internal/platform/neo4jdb"
	"github.com/yungbote/neurobridge-insights/internal/platform/redis"
)

const (
	minLookbackDays = 90
	maxLookbackDays = 180
)

type InsightsServiceConfig struct {
	// LookbackDays bounds the session and progress window. Clamped to [90,180].
	LookbackDays        int
	PeerLookbackDays    int
	PeerSampleLimit     int
	CacheTTL            time.Duration
	ComputeTimeout      time.Duration
	FetchMaxTries       uint
	FetchInitialBackoff time.Duration
	GraphExportTimeout  time.Duration
	DefaultLocation     *time.Location
	DefaultPreferences  insights.StudyPreferences
}

func DefaultInsightsServiceConfig() InsightsServiceConfig {
	return InsightsServiceConfig{
		LookbackDays:        120,
		PeerLookbackDays:    30,
		PeerSampleLimit:     500,
		CacheTTL:            15 * time.Minute,
		ComputeTimeout:      30 * time.Second,
		FetchMaxTries:       3,
		FetchInitialBackoff: 100 * time.Millisecond,
		GraphExportTimeout:  10 * time.Second,
		DefaultLocation:     time.UTC,
		DefaultPreferences:  insights.DefaultPreferences(),
	}
}

func (c InsightsServiceConfig) normalized() InsightsServiceConfig {
	def := DefaultInsightsServiceConfig()
	if c.LookbackDays == 0 {
		c.LookbackDays = def.LookbackDays
	}
	if c.LookbackDays < minLookbackDays {
		c.LookbackDays = minLookbackDays
	}
	if c.LookbackDays > maxLookbackDays {
		c.LookbackDays = maxLookbackDays
	}
	if c.PeerLookbackDays <= 0 {
		c.PeerLookbackDays = def.PeerLookbackDays
	}
	if c.PeerSampleLimit <= 0 {
		c.PeerSampleLimit = def.PeerSampleLimit
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.ComputeTimeout <= 0 {
		c.ComputeTimeout = def.ComputeTimeout
	}
	if c.FetchMaxTries == 0 {
		c.FetchMaxTries = def.FetchMaxTries
	}
	if c.FetchInitialBackoff <= 0 {
		c.FetchInitialBackoff = def.FetchInitialBackoff
	}
	if c.GraphExportTimeout <= 0 {
		c.GraphExportTimeout = def.GraphExportTimeout
	}
	if c.DefaultLocation == nil {
		c.DefaultLocation = time.UTC
	}
	c.DefaultPreferences = c.DefaultPreferences.Normalize()
	if err := c.DefaultPreferences.Validate(); err != nil {
		c.DefaultPreferences = insights.DefaultPreferences()
	}
	return c
}

// InsightsResult is the cached envelope around one computation.
type InsightsResult struct {
	Insights   *insights.Insights `json:"insights"`
	ComputedAt time.Time          `json:"computedAt"`
	Cached     bool               `json:"cached"`
}

type PreferencesView struct {
	Preferences insights.StudyPreferences `json:"preferences"`
	Timezone    string                    `json:"timezone"`
	IsDefault   bool                      `json:"isDefault"`
}

type InsightsService interface {
	GetInsights(ctx context.Context, userID uuid.UUID, refresh bool) (*InsightsResult, error)
	Refresh(ctx context.Context, userID uuid.UUID) (*InsightsResult, error)
	Invalidate(ctx context.Context, userID uuid.UUID, reason string) error
	LearningPaths(ctx context.Context, userID uuid.UUID, subject string) ([]insights.LearningPath, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*PreferencesView, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs insights.StudyPreferences, timezone string) (*PreferencesView, error)
	ComputeStateless(ctx context.Context, in insights.Input) (*insights.Insights, error)
	ListActiveUsers(ctx context.Context, since time.Time, limit int) ([]uuid.UUID, error)
	// HandleInvalidation drops the in-process copy after another instance invalidated a user.
	HandleInvalidation(ctx context.Context, msg redis.Invalidation)
}

// InsightsDeps are the collaborators of the insights service. Cache, Local, Bus and Graph are optional.
type InsightsDeps struct {
	Sessions    repos.StudySessionRepo
	Progress    repos.FlashcardProgressRepo
	Preferences repos.StudyPreferenceRepo
	Cache       ByteCache
	Local       ByteCache
	Bus         redis.InvalidationBus
	Graph       *neo4jdb.Client
	Metrics     *observability.Metrics
}

type insightsService struct {
	log     *logger.Logger
	cfg     InsightsServiceConfig
	deps    InsightsDeps
	metrics *observability.Metrics
	group   singleflight.Group
	now     func() time.Time
}

func NewInsightsService(baseLog *logger.Logger, cfg InsightsServiceConfig, deps InsightsDeps) InsightsService {
	return &insightsService{
		log:     baseLog.With("service", "InsightsService"),
		cfg:     cfg.normalized(),
		deps:    deps,
		metrics: deps.Metrics,
		now:     time.Now,
	}
}

func cacheKey(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func (s *insightsService) GetInsights(ctx context.Context, userID uuid.UUID, refresh bool) (*InsightsResult, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized(apperrors.ErrUnauthorized)
	}
	key := cacheKey(userID)
	if !refresh {
		if res, ok := s.readCache(ctx, key); ok {
			res.Cached = true
			return res, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ComputeTimeout)
		defer cancel()
		return s.compute(cctx, userID)
	})
	if err != nil {
		return nil, err
	}
	res := *v.(*InsightsResult)
	return &res, nil
}

func (s *insightsService) Refresh(ctx context.Context, userID uuid.UUID) (*InsightsResult, error) {
	if err := s.Invalidate(ctx, userID, "refresh"); err != nil {
		s.log.Warn("invalidate before refresh failed", "user_id", userID, "error", err)
	}
	return s.GetInsights(ctx, userID, true)
}

func (s *insightsService) Invalidate(ctx context.Context, userID uuid.UUID, reason string) error {
	if userID == uuid.Nil {
		return apierr.Unauthorized(apperrors.ErrUnauthorized)
	}
	key := cacheKey(userID)
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Delete(ctx, key); err != nil {
			return err
		}
	}
	if s.deps.Bus != nil {
		if err := s.deps.Bus.Publish(ctx, redis.Invalidation{UserID: userID.String(), Reason: reason}); err != nil {
			s.log.Warn("publish invalidation failed", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (s *insightsService) HandleInvalidation(ctx context.Context, msg redis.Invalidation) {
	id, err := uuid.Parse(strings.TrimSpace(msg.UserID))
	if err != nil || s.deps.Local == nil {
		return
	}
	_ = s.deps.Local.Delete(ctx, cacheKey(id))
}

func (s *insightsService) LearningPaths(ctx context.Context, userID uuid.UUID, subject string) ([]insights.LearningPath, error) {
	res, err := s.GetInsights(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return res.Insights.LearningPaths, nil
	}
	out := []insights.LearningPath{}
	for _, p := range res.Insights.LearningPaths {
		if strings.EqualFold(p.Subject, subject) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *insightsService) GetPreferences(ctx context.Context, userID uuid.UUID) (*PreferencesView, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized(apperrors.ErrUnauthorized)
	}
	row, err := fetchWithRetry(ctx, s, "preferences", func(c context.Context) (*types.StudyPreferenceProfile, error) {
		return s.deps.Preferences.GetByUserID(dbctx.Context{Ctx: c}, userID)
	})
	if err != nil {
		return nil, apierr.Unavailable("preferences_unavailable", err)
	}
	view := &PreferencesView{
		Preferences: decodePreferences(s.log, row, s.cfg.DefaultPreferences),
		Timezone:    resolveLocation(row, s.cfg.DefaultLocation).String(),
		IsDefault:   row == nil,
	}
	return view, nil
}

func (s *insightsService) UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs insights.StudyPreferences, timezone string) (*PreferencesView, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized(apperrors.ErrUnauthorized)
	}
	prefs = prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		return nil, apierr.BadRequest("invalid_preferences", err)
	}
	timezone = strings.TrimSpace(timezone)
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, apierr.BadRequest("invalid_timezone", fmt.Errorf("%w: unknown timezone %q", apperrors.ErrInvalidArgument, timezone))
		}
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("marshal preferences: %w", err)
	}
	row := &types.StudyPreferenceProfile{UserID: userID, PrefsJSON: raw, Timezone: timezone}
	if err := s.deps.Preferences.Upsert(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, apierr.Unavailable("preferences_unavailable", classifyStoreErr(err))
	}
	if err := s.Invalidate(ctx, userID, "preferences_updated"); err != nil {
		s.log.Warn("invalidate after preference update failed", "user_id", userID, "error", err)
	}
	return &PreferencesView{
		Preferences: prefs,
		Timezone:    resolveLocation(row, s.cfg.DefaultLocation).String(),
	}, nil
}

func (s *insightsService) ComputeStateless(ctx context.Context, in insights.Input) (*insights.Insights, error) {
	_, span := observability.Tracer().Start(ctx, "insights.compute_stateless")
	defer span.End()
	if in.Location == nil {
		in.Location = s.cfg.DefaultLocation
	}
	if in.Preferences == nil {
		def := s.cfg.DefaultPreferences
		in.Preferences = &def
	}
	start := time.Now()
	out, err := insights.ComputeInsights(in)
	if err != nil {
		s.metrics.ObserveCompute("stateless", "invalid", time.Since(start))
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, apperrors.ErrInvalidArgument) {
			return nil, apierr.BadRequest("invalid_input", err)
		}
		return nil, err
	}
	s.metrics.ObserveCompute("stateless", "ok", time.Since(start))
	return out, nil
}

func (s *insightsService) ListActiveUsers(ctx context.Context, since time.Time, limit int) ([]uuid.UUID, error) {
	return fetchWithRetry(ctx, s, "active_users", func(c context.Context) ([]uuid.UUID, error) {
		return s.deps.Sessions.ListActiveUserIDsSince(dbctx.Context{Ctx: c}, since, limit)
	})
}

type snapshot struct {
	sessions []*types.StudySession
	progress []*types.FlashcardProgress
	prefs    *types.StudyPreferenceProfile
	peers    []repos.PeerTotal
	// peerSince is the start of the window peer totals cover.
	peerSince time.Time
}

func (s *insightsService) loadSnapshot(ctx context.Context, userID uuid.UUID) (*snapshot, error) {
	now := s.now().UTC()
	since := now.AddDate(0, 0, -s.cfg.LookbackDays)
	peerSince := now.AddDate(0, 0, -s.cfg.PeerLookbackDays)

	snap := &snapshot{peerSince: peerSince}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := fetchWithRetry(gctx, s, "sessions", func(c context.Context) ([]*types.StudySession, error) {
			return s.deps.Sessions.ListByUserSince(dbctx.Context{Ctx: c}, userID, since)
		})
		snap.sessions = rows
		return err
	})
	g.Go(func() error {
		rows, err := fetchWithRetry(gctx, s, "progress", func(c context.Context) ([]*types.FlashcardProgress, error) {
			return s.deps.Progress.ListByUserSince(dbctx.Context{Ctx: c}, userID, since)
		})
		snap.progress = rows
		return err
	})
	g.Go(func() error {
		row, err := fetchWithRetry(gctx, s, "preferences", func(c context.Context) (*types.StudyPreferenceProfile, error) {
			return s.deps.Preferences.GetByUserID(dbctx.Context{Ctx: c}, userID)
		})
		snap.prefs = row
		return err
	})
	g.Go(func() error {
		rows, err := fetchWithRetry(gctx, s, "peers", func(c context.Context) ([]repos.PeerTotal, error) {
			return s.deps.Sessions.ListPeerTotalsSince(dbctx.Context{Ctx: c}, userID, peerSince, s.cfg.PeerSampleLimit)
		})
		snap.peers = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *insightsService) compute(ctx context.Context, userID uuid.UUID) (*InsightsResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "insights.compute")
	defer span.End()
	start := time.Now()

	snap, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		s.metrics.ObserveCompute("store", "unavailable", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot fetch failed")
		s.log.Error("insights snapshot fetch failed", "user_id", userID, "error", err)
		return nil, apierr.Unavailable("insights_unavailable", err)
	}

	prefs := decodePreferences(s.log, snap.prefs, s.cfg.DefaultPreferences)
	in := insights.Input{
		Sessions:        toEngineSessions(s.log, snap.sessions),
		Progress:        toEngineProgress(s.log, snap.progress),
		Preferences:     &prefs,
		Peers:           toEnginePeers(snap.peers),
		PeerWindowStart: &snap.peerSince,
		Location:        resolveLocation(snap.prefs, s.cfg.DefaultLocation),
	}
	span.SetAttributes(
		attribute.Int("insights.sessions", len(in.Sessions)),
		attribute.Int("insights.progress", len(in.Progress)),
		attribute.Int("insights.peers", len(in.Peers)),
	)

	out, err := insights.ComputeInsights(in)
	if err != nil {
		s.metrics.ObserveCompute("store", "error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute failed")
		s.log.Error("insights compute failed", "user_id", userID, "error", err)
		return nil, apierr.Unavailable("insights_unavailable", err)
	}
	span.SetAttributes(attribute.String("insights.data_status", string(out.DataStatus)))

	res := &InsightsResult{Insights: out, ComputedAt: s.now().UTC()}
	s.writeCache(ctx, cacheKey(userID), res)
	s.exportLearningPaths(ctx, userID, out.LearningPaths)
	s.metrics.ObserveCompute("store", "ok", time.Since(start))
	s.log.Debug("insights computed", "user_id", userID, "data_status", out.DataStatus, "elapsed_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (s *insightsService) readCache(ctx context.Context, key string) (*InsightsResult, bool) {
	if s.deps.Cache == nil {
		return nil, false
	}
	raw, ok, err := s.deps.Cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var res InsightsResult
	if err := json.Unmarshal(raw, &res); err != nil || res.Insights == nil {
		s.log.Warn("discarding unreadable cached insights", "key", key)
		_ = s.deps.Cache.Delete(ctx, key)
		return nil, false
	}
	return &res, true
}

func (s *insightsService) writeCache(ctx context.Context, key string, res *InsightsResult) {
	if s.deps.Cache == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		s.log.Warn("marshal insights for cache failed", "error", err)
		return
	}
	if err := s.deps.Cache.Set(ctx, key, raw, s.cfg.CacheTTL); err != nil {
		s.log.Warn("cache insights failed", "key", key, "error", err)
	}
}

// exportLearningPaths mirrors paths into the graph store in the background. Failures are logged only.
func (s *insightsService) exportLearningPaths(ctx context.Context, userID uuid.UUID, paths []insights.LearningPath) {
	if s.deps.Graph == nil {
		return
	}
	gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.GraphExportTimeout)
	go func() {
		defer cancel()
		err := graph.UpsertLearningPaths(gctx, s.deps.Graph, s.log, userID, paths)
		s.metrics.GraphExport(err)
		if err != nil {
			s.log.Warn("learning path graph export failed", "user_id", userID, "error", err)
		}
	}()
}

// fetchWithRetry runs op with exponential backoff while the failure is transient.
func fetchWithRetry[T any](ctx context.Context, s *insightsService, dataset string, op func(context.Context) (T, error)) (T, error) {
	ctx, span := observability.Tracer().Start(ctx, "insights.fetch."+dataset)
	defer span.End()
	start := time.Now()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.FetchInitialBackoff
	attempt := 0
	out, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		if attempt > 1 {
			s.metrics.IncFetchRetry()
		}
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		err = classifyStoreErr(err)
		if !httpx.IsRetryableError(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.cfg.FetchMaxTries))
	s.metrics.ObserveFetch(dataset, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return out, fmt.Errorf("fetch %s: %w", dataset, err)
	}
	return out, nil
}

// classifyStoreErr maps storage failures onto the shared sentinels. Anything the store
// does not explain is treated as transient.
func classifyStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %w", apperrors.ErrUnavailable, err)
	}
}
