package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/syssam/veloxext/contrib/admin"
	"github.com/syssam/veloxext/contrib/admin/sqlstore"
	"github.com/syssam/veloxext/dialect"
	"github.com/syssam/veloxext/dialect/sql"
	"github.com/syssam/veloxext/settings"
)

func (a *app) autocompleteCommand() *cli.Command {
	return &cli.Command{
		Name:  "autocomplete",
		Usage: "Serve the foreignkey_autocomplete endpoint of the admin models",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address",
				Value: ":8000",
			},
		},
		Action: a.runAutocomplete,
	}
}

func (a *app) runAutocomplete(ctx context.Context, cmd *cli.Command) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	router, closeDB, err := newRouter(s, a.log, cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDB(); err != nil {
			a.log.Warn("closing databases", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:              cmd.String("addr"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		a.log.Info("serving autocomplete", zap.String("addr", server.Addr))
		errc <- server.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRouter opens a store per admin model and mounts the endpoint under the
// admin prefix. The returned func closes the databases.
func newRouter(s *settings.Settings, log *zap.Logger, debug bool) (*gin.Engine, func() error, error) {
	site := admin.NewSite(s.Admin.Prefix)
	reg := prometheus.NewRegistry()
	opts := []admin.AutocompleteOption{
		admin.WithLimit(s.Admin.Limit),
		admin.WithLogger(log.Named("autocomplete")),
		admin.WithCache(s.Admin.Cache.Size, s.Admin.Cache.TTL),
	}
	if s.Admin.Metrics {
		opts = append(opts, admin.WithMetrics(reg))
	}
	ac := admin.NewAutocomplete(opts...)

	var (
		drivers = make(map[string]*sql.Driver)
		conns   = make(map[string]*sql.StatsDriver)
	)
	closeAll := func() error {
		var errs []error
		for alias, drv := range drivers {
			log.Info("database stats", zap.String("database", alias), zap.Stringer("stats", conns[alias].QueryStats().Snapshot()))
			errs = append(errs, drv.Close())
		}
		return errors.Join(errs...)
	}
	classifier := s.Classifier()
	for _, m := range s.Admin.Models {
		alias := m.Database
		if alias == "" {
			alias = settings.DefaultDBAlias
		}
		conn, ok := conns[alias]
		if !ok {
			db, err := s.Database(alias)
			if err != nil {
				return nil, nil, errors.Join(err, closeAll())
			}
			drv, err := sqlstore.Open(classifier, db)
			if err != nil {
				return nil, nil, errors.Join(err, closeAll())
			}
			var base dialect.Driver = drv
			if debug {
				base = sql.NewDebugDriver(drv, log.Named("sql"))
			}
			conn = sql.NewStatsDriver(base,
				sql.WithSlowThreshold(s.Admin.SlowQuery),
				sql.WithSlowQueryLog(log.Named("sql")),
			)
			drivers[alias], conns[alias] = drv, conn
		}
		store, err := sqlstore.New(conn, sqlstore.Model{Name: m.Model, Table: m.Table, PK: m.PK, Label: m.Label})
		if err != nil {
			return nil, nil, errors.Join(fmt.Errorf("admin model %s.%s: %w", m.App, m.Model, err), closeAll())
		}
		site.Register(m.App, m.Model)
		ac.Register(m.App, m.Model, store, m.SearchFields...)
		log.Debug("registered admin model",
			zap.String("app", m.App),
			zap.String("model", m.Model),
			zap.String("database", alias),
			zap.String("table", store.Model().Table),
		)
	}

	gin.SetMode(gin.ReleaseMode)
	if debug {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log.Named("http")))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	if len(s.Admin.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: s.Admin.CORSOrigins,
			AllowMethods: []string{http.MethodGet},
			MaxAge:       12 * time.Hour,
		}))
	}
	group := router.Group(site.Prefix())
	if s.Admin.RateLimit.Rate > 0 {
		group.Use(newClientLimiter(s.Admin.RateLimit).middleware())
	}
	ac.Mount(group)
	if s.Admin.Metrics {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	return router, closeAll, nil
}

// requestIDHeader carries the request id. Incoming ids are kept.
const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id and logs it at debug level.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Next()
		log.Debug("request",
			zap.String("id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", c.ClientIP()),
		)
	}
}
