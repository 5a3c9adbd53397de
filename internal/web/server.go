// Package web provides the HTTP server and routing
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"playlist-downloader/internal/config"
	"playlist-downloader/internal/database"
	"playlist-downloader/internal/downloader"
	"playlist-downloader/internal/playlist"
	"playlist-downloader/internal/progress"
	"playlist-downloader/internal/telemetry"
	"playlist-downloader/internal/web/handlers"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	handlers *handlers.Handlers
	logger   *slog.Logger
}

// NewServer creates a new HTTP server. The watcher may be nil when playlist
// watching is not configured.
func NewServer(cfg *config.Config, db *database.DB, orch *downloader.Orchestrator, hub *progress.Hub, sites handlers.SiteLister, watcher *playlist.Watcher, tel *telemetry.Telemetry) *Server {
	h := handlers.New(db, orch, hub, sites, watcher, cfg.DownloadPath, cfg.MaxRecentFiles)

	r := chi.NewRouter()
	r.Use(telemetry.RequestID)
	r.Use(middleware.RealIP)
	r.Use(telemetry.HTTPLogging)
	r.Use(tel.HTTPMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/downloads", h.SubmitDownload)
		r.Get("/downloads", h.ListDownloads)
		r.Get("/downloads/stats", h.DownloadStats)
		r.Get("/downloads/{id}", h.GetDownload)
		r.Get("/progress", h.StreamProgress)
		r.Get("/files/recent", h.RecentFiles)
		r.Get("/supported-sites", h.SupportedSites)
		r.Post("/sync", h.TriggerSync)
		r.Get("/sync/status", h.SyncStatus)
	})

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", tel.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		server:   server,
		handlers: h,
		logger:   slog.Default(),
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	localIP := getLocalIP()
	port := strings.TrimPrefix(s.server.Addr, ":")

	s.logger.Info("Starting HTTP server",
		"addr", s.server.Addr,
		"local_ip", localIP,
		"port", port,
		"url", fmt.Sprintf("http://%s:%s", localIP, port))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// getLocalIP returns the local network IP address so the startup log can
// print a reachable URL
func getLocalIP() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "localhost"
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if ip == nil || ip.IsLoopback() || ip.To4() == nil {
				continue
			}

			ipStr := ip.String()
			if strings.HasPrefix(ipStr, "192.168.") || strings.HasPrefix(ipStr, "10.") {
				return ipStr
			}
			if strings.HasPrefix(ipStr, "172.") && isInRange172(ipStr) {
				return ipStr
			}
		}
	}

	return "localhost"
}

// isInRange172 checks if IP is in 172.16.0.0/12 range (172.16.0.0 - 172.31.255.255)
func isInRange172(ipStr string) bool {
	parts := strings.Split(ipStr, ".")
	if len(parts) < 2 || parts[0] != "172" {
		return false
	}

	var secondOctet int
	if _, err := fmt.Sscanf(parts[1], "%d", &secondOctet); err != nil {
		return false
	}

	return secondOctet >= 16 && secondOctet <= 31
}
