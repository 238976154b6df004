// Package server exposes the report service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cognicore/chatreport/internal/service"
	"github.com/cognicore/chatreport/pkg/chatreport/internalerr"
	"github.com/cognicore/chatreport/pkg/chatreport/store"
)

// DefaultMaxUpload is the upload size limit when Config leaves it unset.
const DefaultMaxUpload = 64 << 20

// Config configures a Server.
type Config struct {
	Addr      string
	MaxUpload int64
}

// Server wires the gin router to a report service.
type Server struct {
	conf   Config
	svc    *service.Service
	router *gin.Engine
	server *http.Server
}

// New creates a Server with its routes registered.
func New(conf Config, svc *service.Service) *Server {
	if conf.MaxUpload <= 0 {
		conf.MaxUpload = DefaultMaxUpload
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Err(err).Msg("failed to set trusted proxies")
	}
	router.MaxMultipartMemory = conf.MaxUpload
	router.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(log.Logger, "/api/health"),
	)

	s := &Server{conf: conf, svc: svc, router: router}
	s.initRouter()
	return s
}

func (s *Server) initRouter() {
	api := s.router.Group("/api")
	api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	api.POST("/upload", s.handleUpload)
	api.POST("/finalize", s.handleFinalize)
	api.GET("/reports", s.handleListReports)
	api.GET("/reports/:id", s.handleGetReport)
	api.DELETE("/reports/:id", s.handleDeleteReport)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until the server is stopped.
func (s *Server) ListenAndServe() error {
	s.server = &http.Server{
		Addr:              s.conf.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", s.conf.Addr).Msg("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.conf.MaxUpload)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		writeError(c, fmt.Errorf("%w: missing file", internalerr.ErrInvalidInput))
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".json") {
		writeError(c, fmt.Errorf("%w: %s", internalerr.ErrUnsupportedFile, fh.Filename))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	autoSelect, _ := strconv.ParseBool(c.PostForm("auto_select"))
	up, err := s.svc.Analyze(c.Request.Context(), f, autoSelect)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, up)
}

type finalizeRequest struct {
	ReportID      string   `json:"report_id"`
	SelectedWords []string `json:"selected_words"`
}

func (s *Server) handleFinalize(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", internalerr.ErrInvalidInput, err))
		return
	}
	rec, err := s.svc.Finalize(c.Request.Context(), req.ReportID, req.SelectedWords)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleListReports(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	res, err := s.svc.List(c.Request.Context(), store.ListOptions{
		Page:     page,
		PageSize: size,
		ChatName: c.Query("chat_name"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetReport(c *gin.Context) {
	rec, err := s.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeleteReport(c *gin.Context) {
	if err := s.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, internalerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, internalerr.ErrInvalidInput), errors.Is(err, internalerr.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, internalerr.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}
