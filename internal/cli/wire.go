package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/aggregate"
	"github.com/llehouerou/novatone/internal/assistant"
	"github.com/llehouerou/novatone/internal/audio"
	"github.com/llehouerou/novatone/internal/cache"
	"github.com/llehouerou/novatone/internal/config"
	"github.com/llehouerou/novatone/internal/engine"
	"github.com/llehouerou/novatone/internal/errmsg"
	"github.com/llehouerou/novatone/internal/lastfm"
	"github.com/llehouerou/novatone/internal/library"
	"github.com/llehouerou/novatone/internal/logger"
	"github.com/llehouerou/novatone/internal/playback"
	"github.com/llehouerou/novatone/internal/player"
	"github.com/llehouerou/novatone/internal/source"
	"github.com/llehouerou/novatone/internal/source/archive"
	"github.com/llehouerou/novatone/internal/source/audius"
	"github.com/llehouerou/novatone/internal/source/hearthis"
	"github.com/llehouerou/novatone/internal/source/jamendo"
	"github.com/llehouerou/novatone/internal/source/local"
)

// app holds the services shared by commands. Fields are built on demand.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	cache   cache.Cache
	catalog *aggregate.Service
	store   *library.Store
	asst    *assistant.Assistant

	closers []func() error
}

func loadApp(ctx context.Context) (*app, error) {
	var extra []string
	if configPath != "" {
		extra = append(extra, configPath)
	}
	cfg, err := config.Load(extra...)
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpInitialize, err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		OutputPath: cfg.Log.File,
		Console:    cfg.Log.Console,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, logger: log}
	a.closers = append(a.closers, func() error {
		_ = log.Sync()
		return nil
	})
	a.cache = a.openCache(ctx)
	a.catalog = aggregate.New(a.adapters(), aggregate.WithLogger(log))
	a.asst = assistant.New(a.completer(), log.Named("assistant"))
	return a, nil
}

func (a *app) openCache(ctx context.Context) cache.Cache {
	if !a.cfg.HasCacheConfig() {
		return cache.NewMemory()
	}
	cc := a.cfg.GetCacheConfig()
	r, err := cache.NewRedis(ctx, cache.RedisConfig{
		Addr:     cc.RedisAddr,
		Password: cc.RedisPassword,
		DB:       cc.RedisDB,
	}, a.logger)
	if err != nil {
		a.logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		return cache.NewMemory()
	}
	a.closers = append(a.closers, r.Close)
	return r
}

func (a *app) adapters() []source.Adapter {
	sc := a.cfg.GetSourcesConfig()
	ttl := time.Duration(a.cfg.GetCacheConfig().TTLMinutes) * time.Minute

	fetcher := func(name string) *source.Fetcher {
		return source.NewFetcher(source.FetcherConfig{
			Name:              name,
			Timeout:           time.Duration(sc.TimeoutSeconds) * time.Second,
			RequestsPerSecond: sc.RequestsPerSecond,
			Cache:             a.cache,
			CacheTTL:          ttl,
			Logger:            a.logger,
		})
	}

	order := sc.Order
	if len(a.cfg.LibrarySources) > 0 && !slices.Contains(order, "local") {
		order = append(slices.Clone(order), "local")
	}

	var adapters []source.Adapter
	for _, name := range order {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "jamendo":
			adapters = append(adapters, jamendo.New(fetcher("jamendo"), jamendo.Config{
				ClientID: sc.JamendoClientID,
				Limit:    sc.PageSize,
			}))
		case "audius":
			adapters = append(adapters, audius.New(fetcher("audius"), audius.Config{
				AppName: sc.AudiusAppName,
				Limit:   sc.AudiusPageSize,
				Logger:  a.logger,
			}))
		case "hearthis":
			adapters = append(adapters, hearthis.New(fetcher("hearthis"), hearthis.Config{Limit: sc.PageSize}))
		case "archive":
			adapters = append(adapters, archive.New(fetcher("archive"), archive.Config{Limit: sc.PageSize}))
		case "local":
			if len(a.cfg.LibrarySources) == 0 {
				a.logger.Warn("local source enabled without library_sources")
				continue
			}
			adapters = append(adapters, local.New(local.Config{
				Roots:  a.cfg.LibrarySources,
				Limit:  sc.PageSize,
				Logger: a.logger,
			}))
		default:
			a.logger.Warn("unknown source in config", zap.String("source", name))
		}
	}
	return adapters
}

func (a *app) completer() assistant.Completer {
	if !a.cfg.HasAssistantConfig() {
		return nil
	}
	ac := a.cfg.GetAssistantConfig()
	return assistant.NewClient(assistant.ClientConfig{
		BaseURL:     ac.BaseURL,
		APIKey:      ac.APIKey,
		Model:       ac.Model,
		MaxTokens:   ac.MaxTokens,
		Temperature: ac.Temperature,
		Timeout:     time.Duration(ac.TimeoutSeconds) * time.Second,
		Logger:      a.logger.Named("assistant"),
	})
}

// openStore opens the library database once.
func (a *app) openStore() (*library.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	path, err := a.cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := library.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open library %s: %w", path, err)
	}
	a.store = s
	a.closers = append(a.closers, s.Close)
	return s, nil
}

// session is the audio side of the app: output, effects engine, player and
// playback service.
type session struct {
	engine   *engine.Engine
	playback playback.Service
}

func (a *app) openSession(ctx context.Context, store *library.Store) (*session, error) {
	fx := a.cfg.GetEffectsConfig()

	spk := audio.NewSpeaker(beep.SampleRate(fx.SampleRate))
	eng := engine.New(spk.Open, engine.Config{
		BassFrequency: fx.BassFrequency,
		Bands:         fx.Bands,
		FrameInterval: time.Second / time.Duration(fx.FrameRate),
		Logger:        a.logger.Named("engine"),
	})
	pl := player.New(spk, a.logger.Named("player"))

	if ready, err := eng.Bind(pl); err != nil {
		return nil, errmsg.Wrap(errmsg.OpEngineInit, err)
	} else if !ready {
		a.logger.Warn("effects unavailable, playing without them")
	}

	if saved, ok, err := store.LoadEffects(ctx); err != nil {
		a.logger.Warn(errmsg.Format(errmsg.OpEffectsLoad, err))
	} else if ok {
		eng.Effects().Apply(saved)
	}

	svc := playback.New(pl,
		playback.WithResumer(eng),
		playback.WithRecorder(store),
		playback.WithLogger(a.logger.Named("playback")),
	)

	if a.cfg.HasLastfmConfig() {
		lc := a.cfg.Lastfm
		scrobbler := lastfm.NewScrobbler(lastfm.New(lc.APIKey, lc.APISecret, lc.SessionKey), a.logger.Named("lastfm"))
		go scrobbler.Run(ctx, svc.Subscribe())
	}

	// close runs these in reverse: playback, then engine, then the device.
	a.closers = append(a.closers, spk.Close, eng.Dispose, svc.Close)
	return &session{engine: eng, playback: svc}, nil
}

// close releases everything in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("shutdown", zap.Error(err))
		}
	}
}
