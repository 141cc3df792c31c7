package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"bazaar-flipper/internal/bazaar"
	"bazaar-flipper/internal/config"
	"bazaar-flipper/internal/db"
	"bazaar-flipper/internal/engine"
)

// Server is the HTTP API server that connects the bazaar client, the flip
// engine, and the database.
type Server struct {
	cfg    *config.Config
	client *bazaar.Client
	db     *db.DB
	mu     sync.RWMutex

	// Unit price cache for the minion report (L1; SQLite is the cold-start L2).
	pricesMu   sync.RWMutex
	prices     map[string]float64
	pricesAt   time.Time
	refreshing bool
}

// NewServer creates a Server with the given config, bazaar client, and database.
func NewServer(cfg *config.Config, client *bazaar.Client, database *db.DB) *Server {
	return &Server{
		cfg:    cfg,
		client: client,
		db:     database,
		prices: make(map[string]float64),
	}
}

// SeedPrices loads a previously persisted unit price map, so the minion
// report renders at cold start without a network round trip.
func (s *Server) SeedPrices(prices map[string]float64, refreshedAt time.Time) {
	s.pricesMu.Lock()
	defer s.pricesMu.Unlock()
	if prices != nil {
		s.prices = prices
	}
	s.pricesAt = refreshedAt
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	mux.HandleFunc("POST /api/flips", s.handleFlips)
	mux.HandleFunc("GET /api/flips/history", s.handleFlipHistory)
	mux.HandleFunc("GET /api/flips/history/{id}", s.handleFlipHistoryByID)
	mux.HandleFunc("GET /api/minions", s.handleMinions)
	mux.HandleFunc("POST /api/minions/refresh", s.handleMinionsRefresh)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.pricesMu.RLock()
	priceCount := len(s.prices)
	pricesAt := s.pricesAt
	s.pricesMu.RUnlock()

	resp := map[string]interface{}{
		"ready":       true,
		"price_count": priceCount,
	}
	if !pricesAt.IsZero() {
		resp["prices_refreshed_at"] = pricesAt.UTC().Format(time.RFC3339)
		resp["prices_age_seconds"] = int(time.Since(pricesAt).Seconds())
	}
	writeJSON(w, resp)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.cfg)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid config")
		return
	}
	cfg.Normalize()

	s.mu.Lock()
	*s.cfg = cfg
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.SaveConfig(&cfg); err != nil {
			log.Printf("[API] SaveConfig: %v", err)
		}
	}
	writeJSON(w, &cfg)
}

// flipRequest carries optional per-call overrides of the stored settings.
type flipRequest struct {
	MaxOutlay      *float64 `json:"max_outlay"`
	MaxOffers      *int     `json:"max_offers"`
	MaxBacklogDays *float64 `json:"max_backlog_days"`
	SortMode       *string  `json:"sort_mode"`
}

func (s *Server) flipParams(req flipRequest) engine.FlipParams {
	s.mu.RLock()
	params := engine.FlipParams{
		MaxOutlay:      s.cfg.MaxOutlay,
		MaxOffers:      s.cfg.MaxOffers,
		MaxBacklogDays: s.cfg.MaxBacklogDays,
		SortMode:       engine.ParseSortMode(s.cfg.SortMode),
	}
	s.mu.RUnlock()

	if req.MaxOutlay != nil && *req.MaxOutlay >= 0 {
		params.MaxOutlay = *req.MaxOutlay
	}
	if req.MaxOffers != nil && *req.MaxOffers >= 1 {
		params.MaxOffers = *req.MaxOffers
	}
	if req.MaxBacklogDays != nil && *req.MaxBacklogDays >= 0 {
		params.MaxBacklogDays = *req.MaxBacklogDays
	}
	if req.SortMode != nil {
		params.SortMode = engine.ParseSortMode(*req.SortMode)
	}
	return params
}

func (s *Server) handleFlips(w http.ResponseWriter, r *http.Request) {
	var req flipRequest
	// An empty body means "use stored settings"; anything else must parse.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	params := s.flipParams(req)

	snap, err := s.client.FetchSnapshotCached()
	if err != nil {
		log.Printf("[API] Flips: %v", err)
		writeError(w, http.StatusBadGateway, "market snapshot unavailable")
		return
	}

	report := engine.ComputeFlips(snap.OrderBooks(), params)
	log.Printf("[DEBUG] Flips: %d included, %d/%d/%d excluded",
		len(report.Included), len(report.NotProfitable), len(report.NotAffordable), len(report.NotSellable))

	if s.db != nil && len(report.Included) > 0 {
		scanID := s.db.InsertScan(string(params.SortMode), len(report.Included), topProfit(report.Included))
		s.db.InsertFlipResults(scanID, report.Included)
	}

	writeJSON(w, map[string]interface{}{
		"snapshot_at":    snap.FetchedAt.UTC().Format(time.RFC3339),
		"included":       opportunities(report.Included),
		"not_profitable": opportunities(report.NotProfitable),
		"not_affordable": opportunities(report.NotAffordable),
		"not_sellable":   opportunities(report.NotSellable),
	})
}

// topProfit returns the best total profit in an ordered included list.
func topProfit(ops []engine.FlipOpportunity) float64 {
	best := 0.0
	for _, op := range ops {
		if op.TotalProfit > best {
			best = op.TotalProfit
		}
	}
	return best
}

// opportunities keeps empty buckets as [] instead of null in JSON.
func opportunities(ops []engine.FlipOpportunity) []engine.FlipOpportunity {
	if ops == nil {
		return []engine.FlipOpportunity{}
	}
	return ops
}

func (s *Server) handleFlipHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, []db.ScanRecord{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, s.db.GetScans(limit))
}

func (s *Server) handleFlipHistoryByID(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotFound, "no history")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid scan id")
		return
	}
	results := s.db.GetFlipResults(id)
	if results == nil {
		results = []engine.FlipOpportunity{}
	}
	writeJSON(w, results)
}

func (s *Server) minionParams(r *http.Request) engine.MinionParams {
	s.mu.RLock()
	params := engine.MinionParams{
		ActionTimeSeconds: s.cfg.ActionTimeSeconds,
		ItemsPerAction:    s.cfg.ItemsPerAction,
		SortMode:          engine.ParseMinionSortMode(s.cfg.MinionSortMode),
	}
	s.mu.RUnlock()

	q := r.URL.Query()
	if v, err := strconv.ParseFloat(q.Get("action_time"), 64); err == nil && v > 0 {
		params.ActionTimeSeconds = v
	}
	if v, err := strconv.Atoi(q.Get("items_per_action")); err == nil && v >= 1 {
		params.ItemsPerAction = v
	}
	if v := q.Get("sort"); v != "" {
		params.SortMode = engine.ParseMinionSortMode(v)
	}
	return params
}

func (s *Server) handleMinions(w http.ResponseWriter, r *http.Request) {
	params := s.minionParams(r)

	s.pricesMu.RLock()
	prices := s.prices
	pricesAt := s.pricesAt
	s.pricesMu.RUnlock()

	resp := map[string]interface{}{
		"rows": engine.ComputeMinionReport(prices, params),
	}
	if !pricesAt.IsZero() {
		resp["refreshed_at"] = pricesAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, resp)
}

func (s *Server) handleMinionsRefresh(w http.ResponseWriter, r *http.Request) {
	s.pricesMu.Lock()
	if s.refreshing {
		s.pricesMu.Unlock()
		writeError(w, http.StatusConflict, "refresh already running")
		return
	}
	s.refreshing = true
	s.pricesMu.Unlock()
	defer func() {
		s.pricesMu.Lock()
		s.refreshing = false
		s.pricesMu.Unlock()
	}()

	ids, err := s.client.FetchProductIDs()
	if err != nil {
		log.Printf("[API] MinionsRefresh: %v", err)
		writeError(w, http.StatusBadGateway, "product list unavailable")
		return
	}

	prices := s.client.FetchUnitPrices(ids, func(msg string) {
		log.Printf("[API] MinionsRefresh: %s", msg)
	})
	refreshedAt := time.Now()

	s.pricesMu.Lock()
	s.prices = prices
	s.pricesAt = refreshedAt
	s.pricesMu.Unlock()

	if s.db != nil {
		if err := s.db.SavePrices(prices, refreshedAt); err != nil {
			log.Printf("[API] MinionsRefresh save: %v", err)
		}
	}

	writeJSON(w, map[string]interface{}{
		"price_count":  len(prices),
		"refreshed_at": refreshedAt.UTC().Format(time.RFC3339),
	})
}
