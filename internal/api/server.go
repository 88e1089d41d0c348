// Package api serves the dashboard: REST state and analytics endpoints plus
// a WebSocket push channel fed after every tick.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/worldsim/internal/engine"
	"github.com/talgya/worldsim/internal/region"
	"github.com/talgya/worldsim/internal/treaty"
)

// Server serves the world state over HTTP.
type Server struct {
	World   *engine.World
	Eng     *engine.Engine
	Hub     *Hub
	History *History

	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins string // Extra allowed origins, comma-separated.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	s.routes(mux)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(s.CORSOrigins, mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// routes registers every handler on mux.
func (s *Server) routes(mux *http.ServeMux) {
	// Admin interventions mutate simulation state; keep them paced.
	interveneLimiter := NewRateLimiter(30, time.Minute)

	// Public endpoints (GET, read-only — anyone can check in on the world).
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/resolutions", s.handleResolutions)

	// Analytics endpoints (JSON by default, ?format=csv for CSV).
	mux.HandleFunc("/api/analytics/gdp-history", s.handleGDPHistory)
	mux.HandleFunc("/api/analytics/welfare-history", s.handleWelfareHistory)
	mux.HandleFunc("/api/analytics/trades", s.handleTradeHistory)
	mux.HandleFunc("/api/analytics/overview", s.handleOverview)
	mux.HandleFunc("/api/analytics/trade-volume", s.handleTradeVolume)
	mux.HandleFunc("/api/analytics/climate-summary", s.handleClimateSummary)
	mux.HandleFunc("/api/analytics/trade-activity", s.handleTradeActivity)

	// WebSocket push channel.
	if s.Hub != nil {
		mux.HandleFunc("/ws", s.Hub.HandleWS)
	}

	// Admin endpoints (POST, require bearer token). /api/treaties stays
	// public for GET; only treaty creation needs the token.
	mux.HandleFunc("/api/treaties", s.adminOnly(s.handleTreaties))
	mux.HandleFunc("/api/intervene", s.adminOnly(RateLimitMiddleware(interveneLimiter, s.handleIntervene)))
	mux.HandleFunc("/api/climate-event", s.adminOnly(s.handleClimateEvent))
	mux.HandleFunc("/api/speed", s.adminOnly(s.handleSpeed))
}

// corsMiddleware adds CORS headers for allowed frontend origins. Localhost
// dev servers are always allowed; extra origins come from configuration.
func corsMiddleware(extra string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range strings.Split(extra, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no WORLDSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	running := s.Eng != nil && s.Eng.IsRunning()
	writeJSON(w, map[string]any{
		"status":  "WORLDSIM API running",
		"tick":    s.World.CurrentTick(),
		"running": running,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if s.Hub != nil {
		clients = s.Hub.ClientCount()
	}
	writeJSON(w, map[string]any{
		"ok":         true,
		"tick":       s.World.CurrentTick(),
		"ws_clients": clients,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if s.World.LastReport() == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "simulation not started"})
		return
	}

	ledger := s.World.SnapshotLedger()
	running := s.Eng != nil && s.Eng.IsRunning()
	writeJSON(w, map[string]any{
		"tick":           s.World.CurrentTick(),
		"running":        running,
		"regions":        regionViews(ledger),
		"stats":          buildStats(ledger),
		"trades":         s.World.RecentTrades(20),
		"climate_events": s.World.ClimateLog(20),
		"active_events":  s.World.ActiveClimate(),
	})
}

func (s *Server) handleTreaties(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.handleProposeTreaty(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"active":  s.World.ActiveTreaties(),
		"expired": s.World.ExpiredTreaties(),
	})
}

// handleProposeTreaty registers an admin-brokered treaty. Hitting the
// per-region active cap is reported as a 409, not a server error.
func (s *Server) handleProposeTreaty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From           string                  `json:"from"`
		To             string                  `json:"to"`
		PerTickOffer   map[region.Resource]int `json:"per_tick_offer"`
		PerTickRequest map[region.Resource]int `json:"per_tick_request"`
		DurationTicks  int                     `json:"duration_ticks"`
		Conditions     string                  `json:"conditions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	t, err := s.World.ProposeTreaty(treaty.Proposal{
		From:           req.From,
		To:             req.To,
		PerTickOffer:   req.PerTickOffer,
		PerTickRequest: req.PerTickRequest,
		DurationTicks:  req.DurationTicks,
		Conditions:     req.Conditions,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, engine.ErrTreatyCap) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, map[string]any{"status": "created", "treaty": t})
}

func (s *Server) handleResolutions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"all":      s.World.Resolutions(),
		"in_force": s.World.ActiveResolutions(),
	})
}

func (s *Server) handleGDPHistory(w http.ResponseWriter, r *http.Request) {
	s.writeHistorySeries(w, r, s.History.GDPHistory(queryLimit(r, 50)))
}

func (s *Server) handleWelfareHistory(w http.ResponseWriter, r *http.Request) {
	s.writeHistorySeries(w, r, s.History.WelfareHistory(queryLimit(r, 50)))
}

func (s *Server) writeHistorySeries(w http.ResponseWriter, r *http.Request, series []map[string]any) {
	if !wantsCSV(r) {
		writeJSON(w, series)
		return
	}

	header := append([]string{"tick"}, region.Codes...)
	rows := make([][]string, 0, len(series))
	for _, entry := range series {
		row := make([]string, 0, len(header))
		row = append(row, fmt.Sprintf("%v", entry["tick"]))
		for _, code := range region.Codes {
			if v, ok := entry[code]; ok {
				row = append(row, fmt.Sprintf("%.1f", v))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	writeCSV(w, header, rows)
}

func (s *Server) handleTradeHistory(w http.ResponseWriter, r *http.Request) {
	trades := s.History.Trades(queryLimit(r, 300))
	if !wantsCSV(r) {
		writeJSON(w, trades)
		return
	}

	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			strconv.Itoa(t.Tick), t.From, t.To, t.Type,
			amountsCSV(t.Offered), amountsCSV(t.Received),
		})
	}
	writeCSV(w, []string{"tick", "from", "to", "type", "offered", "received"}, rows)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview := s.History.ResourceOverview()
	if !wantsCSV(r) {
		writeJSON(w, overview)
		return
	}

	rows := make([][]string, 0, len(overview))
	for _, o := range overview {
		rows = append(rows, []string{
			o.State,
			strconv.Itoa(o.Water), strconv.Itoa(o.Energy), strconv.Itoa(o.Food), strconv.Itoa(o.Tech),
			fmt.Sprintf("%.1f", o.GDP), fmt.Sprintf("%.1f", o.Welfare), strconv.Itoa(o.Population),
		})
	}
	writeCSV(w, []string{"state", "water", "energy", "food", "tech", "gdp", "welfare", "population"}, rows)
}

func (s *Server) handleTradeVolume(w http.ResponseWriter, r *http.Request) {
	volumes := s.History.TradeVolumeByResource()
	if !wantsCSV(r) {
		writeJSON(w, volumes)
		return
	}

	rows := make([][]string, 0, len(volumes))
	for _, v := range volumes {
		rows = append(rows, []string{string(v.Resource), strconv.Itoa(v.Volume), strconv.Itoa(v.Count)})
	}
	writeCSV(w, []string{"resource", "volume", "count"}, rows)
}

func (s *Server) handleClimateSummary(w http.ResponseWriter, r *http.Request) {
	summary := s.History.ClimateSummary()
	if !wantsCSV(r) {
		writeJSON(w, summary)
		return
	}

	rows := make([][]string, 0, len(summary))
	for _, c := range summary {
		rows = append(rows, []string{c.Event, strconv.Itoa(c.Count)})
	}
	writeCSV(w, []string{"event", "count"}, rows)
}

func (s *Server) handleTradeActivity(w http.ResponseWriter, r *http.Request) {
	activity := s.History.StateTradeActivity()
	if !wantsCSV(r) {
		writeJSON(w, activity)
		return
	}

	rows := make([][]string, 0, len(activity))
	for _, a := range activity {
		rows = append(rows, []string{a.State, strconv.Itoa(a.Outgoing), strconv.Itoa(a.Incoming)})
	}
	writeCSV(w, []string{"state", "outgoing", "incoming"}, rows)
}

func (s *Server) handleIntervene(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Action string `json:"action"`
		Target string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	msg, err := s.World.Intervene(req.Action, req.Target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"status": "applied", "message": msg})
}

func (s *Server) handleClimateEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		EventID string `json:"event_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	outcome, err := s.World.ForceClimateEvent(req.EventID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"status": "triggered", "outcome": outcome})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func writeCSV(w http.ResponseWriter, header []string, rows [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	cw := csv.NewWriter(w)
	cw.Write(header)
	cw.WriteAll(rows)
	cw.Flush()
}

// wantsCSV checks the format query param and the Accept header.
func wantsCSV(r *http.Request) bool {
	if r.URL.Query().Get("format") == "csv" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/csv")
}

func queryLimit(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 5000 {
			return n
		}
	}
	return def
}

// amountsCSV flattens a resource map to "res:amt;res:amt" in canonical order.
func amountsCSV(m map[region.Resource]int) string {
	parts := make([]string, 0, len(m))
	for _, res := range region.ResourceOrder {
		if amt, ok := m[res]; ok {
			parts = append(parts, fmt.Sprintf("%s:%d", res, amt))
		}
	}
	return strings.Join(parts, ";")
}
