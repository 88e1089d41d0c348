package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/talgya/worldsim/internal/config"
	"github.com/talgya/worldsim/internal/engine"
	"github.com/talgya/worldsim/internal/entropy"
	"github.com/talgya/worldsim/internal/region"
	"github.com/talgya/worldsim/internal/treaty"
)

func testLedger() region.Ledger {
	ledger := make(region.Ledger, 2)
	for _, code := range []string{"PB", "MH"} {
		res := make(map[region.Resource]int, len(region.ResourceOrder))
		for _, r := range region.ResourceOrder {
			res[r] = 5000
		}
		ledger[code] = &region.Region{
			Code:             code,
			Name:             region.Names[code],
			GDPScore:         50,
			WelfareScore:     60,
			TrustScore:       100,
			Population:       1_000_000,
			Resources:        res,
			GenerationRates:  map[region.Resource]int{},
			ConsumptionRates: map[region.Resource]int{},
			Demographics:     region.Demographics{WorkforceEfficiency: 0.7},
			InternalPolicies: map[string]float64{},
		}
	}
	return ledger
}

func newTestServer(adminKey string) (*Server, *httptest.Server) {
	cfg := config.Default()
	cfg.ClimateTriggerProb = 0
	world := engine.NewWorld(testLedger(), cfg, entropy.NewSource(7), nil)
	eng := engine.NewEngine(world, time.Millisecond, 0)

	s := &Server{
		World:    world,
		Eng:      eng,
		History:  NewHistory(),
		AdminKey: adminKey,
	}
	mux := http.NewServeMux()
	s.routes(mux)
	return s, httptest.NewServer(mux)
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer("")
	defer ts.Close()

	var body map[string]any
	if code := getJSON(t, ts.URL+"/api/health", &body); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if ok, _ := body["ok"].(bool); !ok {
		t.Errorf("ok = %v, want true", body["ok"])
	}
}

func TestStateBeforeAndAfterFirstTick(t *testing.T) {
	s, ts := newTestServer("")
	defer ts.Close()

	if code := getJSON(t, ts.URL+"/api/state", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("status before first tick = %d, want 503", code)
	}

	report := s.World.Step()
	s.History.Record(report, s.World.SnapshotLedger())

	var body map[string]any
	if code := getJSON(t, ts.URL+"/api/state", &body); code != http.StatusOK {
		t.Fatalf("status after first tick = %d, want 200", code)
	}
	if got := body["tick"].(float64); got != 1 {
		t.Errorf("tick = %v, want 1", got)
	}
	regions, ok := body["regions"].(map[string]any)
	if !ok || len(regions) != 2 {
		t.Fatalf("regions = %v, want 2 entries", body["regions"])
	}
	if _, ok := body["stats"].(map[string]any); !ok {
		t.Error("stats missing from state payload")
	}
}

func TestAdminAuth(t *testing.T) {
	_, tsNoKey := newTestServer("")
	defer tsNoKey.Close()

	payload := bytes.NewBufferString(`{"action":"drought","target":"PB"}`)
	resp, err := http.Post(tsNoKey.URL+"/api/intervene", "application/json", payload)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("no admin key: status = %d, want 403", resp.StatusCode)
	}

	_, ts := newTestServer("sekrit")
	defer ts.Close()

	post := func(token string) int {
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/intervene",
			bytes.NewBufferString(`{"action":"drought","target":"PB"}`))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := post(""); code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", code)
	}
	if code := post("wrong"); code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", code)
	}
	if code := post("sekrit"); code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", code)
	}
}

func TestProposeTreatyEndpoint(t *testing.T) {
	s, ts := newTestServer("sekrit")
	defer ts.Close()

	post := func(body string) (int, map[string]any) {
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/treaties", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer sekrit")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		defer resp.Body.Close()
		var out map[string]any
		json.NewDecoder(resp.Body).Decode(&out)
		return resp.StatusCode, out
	}

	code, body := post(`{"from":"PB","to":"MH","per_tick_offer":{"water":100},"per_tick_request":{"food":50},"duration_ticks":4}`)
	if code != http.StatusOK {
		t.Fatalf("create treaty: status = %d, want 200", code)
	}
	if body["status"] != "created" || body["treaty"] == nil {
		t.Fatalf("response = %v", body)
	}
	if n := len(s.World.ActiveTreaties()); n != 1 {
		t.Fatalf("active treaties = %d, want 1", n)
	}

	// GET stays public and reflects the new treaty.
	var listing map[string][]map[string]any
	if code := getJSON(t, ts.URL+"/api/treaties", &listing); code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", code)
	}
	if len(listing["active"]) != 1 {
		t.Fatalf("listing = %v, want one active treaty", listing)
	}

	if code, _ := post(`{"from":"XX","to":"MH","per_tick_offer":{"water":1}}`); code != http.StatusBadRequest {
		t.Errorf("unknown region: status = %d, want 400", code)
	}
	if code, _ := post(`not json`); code != http.StatusBadRequest {
		t.Errorf("bad body: status = %d, want 400", code)
	}

	// POST without the bearer token is rejected.
	resp, err := http.Post(ts.URL+"/api/treaties", "application/json",
		bytes.NewBufferString(`{"from":"PB","to":"MH"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated create: status = %d, want 401", resp.StatusCode)
	}
}

func TestProposeTreatyCapConflict(t *testing.T) {
	s, ts := newTestServer("sekrit")
	defer ts.Close()

	// Fill both parties to the cap through the engine, then hit the endpoint.
	for i := 0; i < config.Default().MaxActiveTreaties; i++ {
		if _, err := s.World.ProposeTreaty(treaty.Proposal{
			From:         "PB",
			To:           "MH",
			PerTickOffer: map[region.Resource]int{region.Water: 10},
		}); err != nil {
			t.Fatalf("seed treaty %d: %v", i, err)
		}
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/treaties",
		bytes.NewBufferString(`{"from":"PB","to":"MH","per_tick_offer":{"water":1}}`))
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("cap refusal: status = %d, want 409", resp.StatusCode)
	}
}

func TestInterveneUnknownAction(t *testing.T) {
	_, ts := newTestServer("sekrit")
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/intervene",
		bytes.NewBufferString(`{"action":"locusts","target":"PB"}`))
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSpeedBounds(t *testing.T) {
	s, ts := newTestServer("sekrit")
	defer ts.Close()

	post := func(body string) int {
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/speed", bytes.NewBufferString(body))
		req.Header.Set("Authorization", "Bearer sekrit")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := post(`{"speed":2000}`); code != http.StatusBadRequest {
		t.Errorf("out-of-range speed: status = %d, want 400", code)
	}
	if code := post(`{"speed":2.5}`); code != http.StatusOK {
		t.Errorf("valid speed: status = %d, want 200", code)
	}
	if got := s.Eng.Speed(); got != 2.5 {
		t.Errorf("engine speed = %v, want 2.5", got)
	}
}

func TestAnalyticsCSVFormat(t *testing.T) {
	s, ts := newTestServer("")
	defer ts.Close()

	for i := 0; i < 3; i++ {
		report := s.World.Step()
		s.History.Record(report, s.World.SnapshotLedger())
	}

	resp, err := http.Get(ts.URL + "/api/analytics/overview?format=csv")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q, want text/csv", ct)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 { // header + 2 regions
		t.Fatalf("csv lines = %d, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "state,water,energy,food,tech") {
		t.Errorf("csv header = %q", lines[0])
	}
}

func TestGDPHistoryJSON(t *testing.T) {
	s, ts := newTestServer("")
	defer ts.Close()

	for i := 0; i < 5; i++ {
		report := s.World.Step()
		s.History.Record(report, s.World.SnapshotLedger())
	}

	var series []map[string]any
	if code := getJSON(t, ts.URL+"/api/analytics/gdp-history?limit=3", &series); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(series) != 3 {
		t.Fatalf("series length = %d, want 3", len(series))
	}
	if _, ok := series[0]["PB"]; !ok {
		t.Error("PB missing from gdp history entry")
	}
	if _, ok := series[0]["tick"]; !ok {
		t.Error("tick missing from gdp history entry")
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer("")
	mux := http.NewServeMux()
	s.routes(mux)
	handler := corsMiddleware("https://dash.example.com", mux)

	req := httptest.NewRequest(http.MethodOptions, "/api/state", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Errorf("allow-origin = %q", got)
	}

	// Unknown origins get no CORS headers.
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin for unknown origin = %q, want empty", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request within window should be limited")
	}
	if rl.RetryAfter("1.2.3.4") <= 0 {
		t.Error("retry-after should be positive while limited")
	}
	// Other callers unaffected.
	if !rl.Allow("5.6.7.8") {
		t.Error("separate IP should have its own bucket")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:4321"
	if got := clientIP(r); got != "10.0.0.9" {
		t.Errorf("clientIP = %q, want 10.0.0.9", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.7" {
		t.Errorf("clientIP with XFF = %q, want 203.0.113.7", got)
	}
}
