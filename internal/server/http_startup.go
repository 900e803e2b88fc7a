package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"resumeimport/internal/parser"
)

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := s.setupHTTPServer()

	if err := s.startWatchers(); err != nil {
		s.stopWatchers()
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(ctx, httpServer)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWatchers starts the heading file and API key watchers that are configured.
func (s *Server) startWatchers() error {
	parserCfg := s.AppConfig.Parser
	if parserCfg.WatchHeadings && parserCfg.HeadingsFile != "" {
		watcher, err := NewHeadingsWatcher(parserCfg.HeadingsFile, parserCfg.DebounceDelay, s.reloadHeadings, s.Logger)
		if err != nil {
			return fmt.Errorf("failed to create headings watcher: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start headings watcher: %w", err)
		}
		s.headingsWatcher = watcher
	}

	vaultCfg := s.AppConfig.Vault
	if vaultCfg.Enabled && vaultCfg.Watch.Enabled && s.vaultClient != nil {
		watcher := NewSecretWatcher(s.vaultClient, vaultCfg.Watch.PollInterval, s.rotateAPIKeys, s.Logger)
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start secret watcher: %w", err)
		}
		s.secretWatcher = watcher
	}

	return nil
}

// reloadHeadings swaps in a freshly loaded heading table. On error the
// parser keeps its current table.
func (s *Server) reloadHeadings() error {
	table, err := parser.LoadHeadingTable(s.AppConfig.Parser.HeadingsFile)
	s.om.RecordHeadingReload(context.Background(), err == nil)
	if err != nil {
		return err
	}
	s.parser.SetHeadings(table)
	return nil
}

func (s *Server) rotateAPIKeys(keys []string) {
	if len(keys) == 0 {
		// An empty secret would silently turn auth off.
		s.Logger.Warn("Ignoring API key rotation with no keys")
		return
	}
	s.SetAPIKeys(keys)
	s.Logger.Info("API keys rotated", "keys", len(keys))
}

func (s *Server) stopWatchers() {
	if s.headingsWatcher != nil {
		if err := s.headingsWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop headings watcher")
		}
	}
	if s.secretWatcher != nil {
		if err := s.secretWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop secret watcher")
		}
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server) error {
	serverErrors := make(chan error, 1)

	go func() {
		tlsEnabled := s.TLSConfig.Enabled()
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", tlsEnabled)

		var err error
		if tlsEnabled {
			err = server.ListenAndServeTLS(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.cleanup()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"cause", context.Cause(ctx))
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.Logger.Info("Shutting down HTTP server...")
	err := server.Shutdown(shutdownCtx)
	if err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		err = server.Close()
	}

	s.cleanup()

	if err == nil {
		s.Logger.Info("Server shutdown completed successfully")
	}
	return err
}

// cleanup releases everything the server owns once no requests are in flight.
func (s *Server) cleanup() {
	s.stopWatchers()

	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}

	if s.ai != nil {
		if err := s.ai.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close AI service")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}
