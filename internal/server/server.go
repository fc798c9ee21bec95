package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/denhaven/breeder-backend/internal/config"
	"github.com/denhaven/breeder-backend/internal/handler"
	appmw "github.com/denhaven/breeder-backend/internal/middleware"
	"github.com/denhaven/breeder-backend/internal/notify"
	"github.com/denhaven/breeder-backend/internal/repository"
	"github.com/denhaven/breeder-backend/internal/service"
)

type Server struct {
	e          *echo.Echo
	dispatcher *notify.Dispatcher
	repos      []interface{ SetDB(*gorm.DB) }
	sha        string
	build      string
}

func New(db *gorm.DB, cfg *config.Config, log zerolog.Logger, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			host := u.Hostname()
			if strings.HasSuffix(host, "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	clientThreadRepo := repository.NewClientThreadRepository(db)
	breederThreadRepo := repository.NewBreederThreadRepository(db)
	partyRepo := repository.NewPartyRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	blockRepo := repository.NewBlockRepository(db)

	hub := notify.NewHub(log)
	dispatcher := notify.NewDispatcher(hub, cfg.NotifyBuffer, log)
	dispatcher.Start()

	blockSvc := service.NewBlockService(blockRepo)
	inboxSvc := service.NewInboxService(clientThreadRepo, breederThreadRepo, partyRepo, providerRepo, blockSvc, dispatcher)

	msgHandler := handler.NewMessagingHandler(inboxSvc)
	blockHandler := handler.NewBlockHandler(blockSvc)
	wsHandler := handler.NewWSHandler(hub)

	authMw, err := appmw.NewAuthMiddleware(context.Background(), cfg.FirebaseProjectID, providerRepo)
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/messages/threads", msgHandler.ListThreads, authMw.RequireProvider)
	api.GET("/messages/threads/:id", msgHandler.GetThread, authMw.RequireProvider)
	api.POST("/messages/threads/:id/messages", msgHandler.SendMessage, authMw.RequireProvider)
	api.POST("/messages/threads/:id/mark-read", msgHandler.MarkRead, authMw.RequireProvider)
	api.POST("/messages/threads/:id/archive", msgHandler.Archive, authMw.RequireProvider)
	api.POST("/messages/threads/:id/unarchive", msgHandler.Unarchive, authMw.RequireProvider)
	api.DELETE("/messages/threads/:id", msgHandler.DeleteThread, authMw.RequireProvider)
	api.DELETE("/messages/threads/:threadId/messages/:messageId", msgHandler.DeleteMessage, authMw.RequireProvider)
	api.POST("/messages/inquiries", msgHandler.CreateInquiry, authMw.RequireAuth)
	api.POST("/messages/block-client", blockHandler.BlockClient, authMw.RequireProvider)
	api.POST("/messages/unblock-client", blockHandler.UnblockClient, authMw.RequireProvider)
	api.GET("/messages/blocked-clients", blockHandler.ListBlocked, authMw.RequireProvider)
	api.GET("/ws", wsHandler.Connect, authMw.RequireAuth)

	return &Server{
		e:          e,
		dispatcher: dispatcher,
		repos: []interface{ SetDB(*gorm.DB) }{
			clientThreadRepo, breederThreadRepo, partyRepo, providerRepo, blockRepo,
		},
		sha:   sha,
		build: buildTime,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB injects a connection into every repository after a late connect.
func (s *Server) SetDB(db *gorm.DB) {
	for _, r := range s.repos {
		r.SetDB(db)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.e.Shutdown(ctx)
	s.dispatcher.Close()
	return err
}
