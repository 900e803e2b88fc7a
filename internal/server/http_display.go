package server

import "fmt"

// displayServerInfo prints a startup banner to the server's output.
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayStrategies()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayEndpoints() {
	fmt.Fprintln(s.out, "Available endpoints:")
	fmt.Fprintln(s.out, "  GET  /health  - Health check")
	fmt.Fprintln(s.out, "  GET  /stats   - Server statistics")
	fmt.Fprintln(s.out, "  POST /parse   - Parse resume text (requires API key)")
	fmt.Fprintln(s.out, "  POST /score   - Score resume quality (requires API key)")
}

func (s *Server) displayStrategies() {
	fmt.Fprintf(s.out, "Extraction strategies: %v\n", s.service.Chain().Strategies())
	if s.headingsWatcher != nil {
		fmt.Fprintf(s.out, "Heading aliases: %s (watching for changes)\n", s.AppConfig.Parser.HeadingsFile)
	}
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if n := s.APIKeyCount(); n > 0 {
		fmt.Fprintf(s.out, "API authentication: ENABLED (%d keys configured)\n", n)
		fmt.Fprintln(s.out, "Include 'X-API-Key: <your-key>' header in requests to /parse and /score")
		if s.secretWatcher != nil {
			fmt.Fprintln(s.out, "  - Keys are reloaded when the Vault secret changes")
		}
	} else {
		fmt.Fprintln(s.out, "API authentication: DISABLED (no API keys configured)")
		fmt.Fprintln(s.out, "WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Fprintf(s.out, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Fprintln(s.out, "Request size limit: DISABLED")
		fmt.Fprintln(s.out, "WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Fprintf(s.out, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Fprintln(s.out, "  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Fprintln(s.out, "  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Fprintln(s.out, "Rate limiting: DISABLED")
		fmt.Fprintln(s.out, "WARNING: No rate limiting configured!")
	}
}
