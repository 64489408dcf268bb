package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Sternrassler/blitzr-client/pkg/blitzr"
	"github.com/Sternrassler/blitzr-client/pkg/client"
	"github.com/Sternrassler/blitzr-client/pkg/config"
	"github.com/Sternrassler/blitzr-client/pkg/generator"
	"github.com/Sternrassler/blitzr-client/pkg/logging"
	"github.com/Sternrassler/blitzr-client/pkg/metrics"
	"github.com/Sternrassler/blitzr-client/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// maxBatchSize bounds the page size a caller may request.
const maxBatchSize = 100

type server struct {
	catalog *blitzr.Client
	redis   *redis.Client
	cfg     *config.ProxyConfig
	logger  zerolog.Logger
}

func newServer(catalog *blitzr.Client, redisClient *redis.Client, cfg *config.ProxyConfig) *server {
	return &server{
		catalog: catalog,
		redis:   redisClient,
		cfg:     cfg,
		logger:  logging.NewLogger("proxy"),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /v1/search/{entity}", s.handleSearch)
	mux.HandleFunc("GET /v1/artist/{relation}", s.handleArtist)
	mux.HandleFunc("GET /v1/tag/{relation}", s.handleTag)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.redis != nil {
		if err := s.redis.Ping(r.Context()).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("Redis not ready")
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "READY")
}

// streamParams reads max and batch from the query string.
func (s *server) streamParams(r *http.Request) (maxItems int, opts []pagination.Option, err error) {
	maxItems = s.cfg.MaxItems
	if raw := r.URL.Query().Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return 0, nil, fmt.Errorf("%w: max must be a positive integer", blitzr.ErrInvalidParameter)
		}
		maxItems = min(n, s.cfg.MaxItems)
	}

	batch := s.cfg.BatchSize
	if raw := r.URL.Query().Get("batch"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: batch must be an integer", blitzr.ErrInvalidParameter)
		}
		if n > maxBatchSize {
			return 0, nil, fmt.Errorf("%w: batch must be at most %d", blitzr.ErrInvalidParameter, maxBatchSize)
		}
		// Non-positive values are rejected by the pagination cursor.
		batch = n
	}

	return maxItems, []pagination.Option{pagination.WithBatchSize(batch)}, nil
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	maxItems, opts, err := s.streamParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()
	query := r.URL.Query().Get("query")

	switch r.PathValue("entity") {
	case "artist":
		gen, err := s.catalog.SearchArtistGenerator(ctx, blitzr.ArtistSearch{Query: query}, opts...)
		serve(s, w, r, gen, err, maxItems)
	case "label":
		gen, err := s.catalog.SearchLabelGenerator(ctx, blitzr.LabelSearch{Query: query}, opts...)
		serve(s, w, r, gen, err, maxItems)
	case "release":
		gen, err := s.catalog.SearchReleaseGenerator(ctx, blitzr.ReleaseSearch{Query: query}, opts...)
		serve(s, w, r, gen, err, maxItems)
	case "track":
		gen, err := s.catalog.SearchTrackGenerator(ctx, blitzr.TrackSearch{Query: query}, opts...)
		serve(s, w, r, gen, err, maxItems)
	default:
		http.NotFound(w, r)
	}
}

func (s *server) handleArtist(w http.ResponseWriter, r *http.Request) {
	maxItems, opts, err := s.streamParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()
	ref := blitzr.Ref{Slug: r.URL.Query().Get("slug"), UUID: r.URL.Query().Get("uuid")}

	switch r.PathValue("relation") {
	case "bands":
		gen, err := s.catalog.ArtistBandsGenerator(ctx, ref, opts...)
		serve(s, w, r, gen, err, maxItems)
	case "members":
		gen, err := s.catalog.ArtistMembersGenerator(ctx, ref, opts...)
		serve(s, w, r, gen, err, maxItems)
	case "related":
		gen, err := s.catalog.ArtistRelatedGenerator(ctx, ref, opts...)
		serve(s, w, r, gen, err, maxItems)
	case "similar":
		gen, err := s.catalog.ArtistSimilarGenerator(ctx, ref, blitzr.ArtistFilters{}, opts...)
		serve(s, w, r, gen, err, maxItems)
	case "events":
		gen, err := s.catalog.ArtistEventsGenerator(ctx, ref, opts...)
		serve(s, w, r, gen, err, maxItems)
	case "releases":
		gen, err := s.catalog.ArtistReleasesGenerator(ctx, ref, blitzr.ReleaseQuery{}, opts...)
		serve(s, w, r, gen, err, maxItems)
	default:
		http.NotFound(w, r)
	}
}

func (s *server) handleTag(w http.ResponseWriter, r *http.Request) {
	maxItems, opts, err := s.streamParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()
	slug := r.URL.Query().Get("slug")

	switch r.PathValue("relation") {
	case "artists":
		gen, err := s.catalog.TagArtistsGenerator(ctx, slug, opts...)
		serve(s, w, r, gen, err, maxItems)
	case "releases":
		gen, err := s.catalog.TagReleasesGenerator(ctx, slug, opts...)
		serve(s, w, r, gen, err, maxItems)
	default:
		http.NotFound(w, r)
	}
}

// serve writes up to maxItems items of gen as NDJSON and always closes gen.
// A failure before the first item becomes an error status; a later failure
// is written as a final {"error": ...} line.
func serve[T any](s *server, w http.ResponseWriter, r *http.Request, gen *generator.Generator[T], err error, maxItems int) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer gen.Close()

	enc := json.NewEncoder(w)
	rc := http.NewResponseController(w)
	count := 0

	for item, err := range gen.All() {
		if err != nil {
			if r.Context().Err() != nil {
				s.logger.Debug().Str("path", r.URL.Path).Int("items", count).Msg("Client went away")
				return
			}
			if count == 0 {
				s.writeError(w, err)
				return
			}
			s.logger.Warn().Err(err).Str("path", r.URL.Path).Int("items", count).Msg("Stream failed")
			if werr := enc.Encode(map[string]string{"error": err.Error()}); werr != nil {
				s.logger.Debug().Err(werr).Str("path", r.URL.Path).Msg("Failed to write stream error")
			}
			return
		}

		if count == 0 {
			w.Header().Set("Content-Type", "application/x-ndjson")
		}
		if err := enc.Encode(item); err != nil {
			s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Write failed, closing stream")
			return
		}
		rc.Flush()

		count++
		if count >= maxItems {
			break
		}
	}

	if count == 0 {
		// An empty stream is still a valid NDJSON document.
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
	}

	s.logger.Debug().Str("path", r.URL.Path).Int("items", count).Msg("Stream complete")
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if werr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); werr != nil {
		s.logger.Debug().Err(werr).Int("status", status).Msg("Failed to write error response")
	}
}

// statusFor maps an error to the status returned to proxy clients.
func statusFor(err error) int {
	if errors.Is(err, blitzr.ErrInvalidParameter) {
		return http.StatusBadRequest
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorClass {
		case client.ErrorClassRateLimit:
			return http.StatusTooManyRequests
		case client.ErrorClassClient:
			if apiErr.StatusCode == http.StatusNotFound {
				return http.StatusNotFound
			}
		}
	}
	return http.StatusBadGateway
}
