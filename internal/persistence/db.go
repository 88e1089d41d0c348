// Package persistence stores world state in SQLite or PostgreSQL. The core
// runs fine without it; an empty store falls back to the built-in seed.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/worldsim/internal/assembly"
	"github.com/talgya/worldsim/internal/engine"
	"github.com/talgya/worldsim/internal/region"
	"github.com/talgya/worldsim/internal/treaty"
)

type dialect string

const (
	dialectSQLite   dialect = "sqlite"
	dialectPostgres dialect = "postgres"
)

// Store wraps the backing database for world state persistence.
type Store struct {
	conn    *sqlx.DB
	dialect dialect
}

// Open opens the backing database. A DSN starting with postgres:// or
// postgresql:// selects PostgreSQL via pgx; anything else is a SQLite path
// (":memory:" works for tests).
func Open(dsn string) (*Store, error) {
	driver, dia := "sqlite", dialectSQLite
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver, dia = "pgx", dialectPostgres
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn, dialect: dia}
	if dia == dialectSQLite {
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL;",
			"PRAGMA busy_timeout=5000;",
			"PRAGMA foreign_keys=ON;",
		} {
			if _, err := conn.Exec(pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("pragma: %w", err)
			}
		}
	}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == dialectPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS regions (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		population INTEGER NOT NULL,
		gdp_score REAL NOT NULL,
		welfare_score REAL NOT NULL,
		trust_score REAL NOT NULL,
		resources_json TEXT NOT NULL,
		generation_json TEXT NOT NULL,
		consumption_json TEXT NOT NULL,
		finops_json TEXT NOT NULL,
		demographics_json TEXT NOT NULL,
		infrastructure_json TEXT NOT NULL,
		policies_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS treaties (
		id TEXT PRIMARY KEY,
		from_region TEXT NOT NULL,
		to_region TEXT NOT NULL,
		offer_json TEXT NOT NULL,
		request_json TEXT NOT NULL,
		duration_ticks INTEGER NOT NULL,
		ticks_remaining INTEGER NOT NULL,
		conditions TEXT NOT NULL,
		active INTEGER NOT NULL,
		breaches_json TEXT NOT NULL,
		created_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resolutions (
		id %s,
		name TEXT NOT NULL,
		proposal_json TEXT NOT NULL,
		tick_passed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id %s,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		payload_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_treaties_active ON treaties(active);
	`, serial, serial)

	_, err := s.conn.Exec(schema)
	return err
}

type regionRow struct {
	Code           string  `db:"code"`
	Name           string  `db:"name"`
	Population     int     `db:"population"`
	GDPScore       float64 `db:"gdp_score"`
	WelfareScore   float64 `db:"welfare_score"`
	TrustScore     float64 `db:"trust_score"`
	Resources      string  `db:"resources_json"`
	Generation     string  `db:"generation_json"`
	Consumption    string  `db:"consumption_json"`
	FinOps         string  `db:"finops_json"`
	Demographics   string  `db:"demographics_json"`
	Infrastructure string  `db:"infrastructure_json"`
	Policies       string  `db:"policies_json"`
}

// LoadAllRegions reads the full ledger. An empty table returns an empty
// ledger and no error; the caller decides whether to fall back to seed data.
func (s *Store) LoadAllRegions() (region.Ledger, error) {
	var rows []regionRow
	if err := s.conn.Select(&rows, "SELECT * FROM regions"); err != nil {
		return nil, fmt.Errorf("load regions: %w", err)
	}

	ledger := make(region.Ledger, len(rows))
	for _, row := range rows {
		r := &region.Region{
			Code:         row.Code,
			Name:         row.Name,
			Population:   row.Population,
			GDPScore:     row.GDPScore,
			WelfareScore: row.WelfareScore,
			TrustScore:   row.TrustScore,
		}
		for _, field := range []struct {
			raw  string
			into any
		}{
			{row.Resources, &r.Resources},
			{row.Generation, &r.GenerationRates},
			{row.Consumption, &r.ConsumptionRates},
			{row.FinOps, &r.FinOps},
			{row.Demographics, &r.Demographics},
			{row.Infrastructure, &r.Infrastructure},
			{row.Policies, &r.InternalPolicies},
		} {
			if err := json.Unmarshal([]byte(field.raw), field.into); err != nil {
				return nil, fmt.Errorf("decode region %s: %w", row.Code, err)
			}
		}
		ledger[row.Code] = r
	}
	return ledger, nil
}

// SaveRegions writes the whole ledger (full replace).
func (s *Store) SaveRegions(ledger region.Ledger) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM regions"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(s.conn.Rebind(`INSERT INTO regions
		(code, name, population, gdp_score, welfare_score, trust_score,
		 resources_json, generation_json, consumption_json, finops_json,
		 demographics_json, infrastructure_json, policies_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, code := range ledger.CodesPresent() {
		r := ledger[code]
		if _, err := stmt.Exec(regionArgs(r)...); err != nil {
			return fmt.Errorf("insert region %s: %w", code, err)
		}
	}
	return tx.Commit()
}

// SaveRegion upserts a single region row.
func (s *Store) SaveRegion(r *region.Region) error {
	q := s.conn.Rebind(`INSERT INTO regions
		(code, name, population, gdp_score, welfare_score, trust_score,
		 resources_json, generation_json, consumption_json, finops_json,
		 demographics_json, infrastructure_json, policies_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
		 name=excluded.name, population=excluded.population,
		 gdp_score=excluded.gdp_score, welfare_score=excluded.welfare_score,
		 trust_score=excluded.trust_score, resources_json=excluded.resources_json,
		 generation_json=excluded.generation_json,
		 consumption_json=excluded.consumption_json,
		 finops_json=excluded.finops_json,
		 demographics_json=excluded.demographics_json,
		 infrastructure_json=excluded.infrastructure_json,
		 policies_json=excluded.policies_json`)
	_, err := s.conn.Exec(q, regionArgs(r)...)
	return err
}

func regionArgs(r *region.Region) []any {
	resources, _ := json.Marshal(r.Resources)
	generation, _ := json.Marshal(r.GenerationRates)
	consumption, _ := json.Marshal(r.ConsumptionRates)
	finops, _ := json.Marshal(r.FinOps)
	demographics, _ := json.Marshal(r.Demographics)
	infrastructure, _ := json.Marshal(r.Infrastructure)
	policies, _ := json.Marshal(r.InternalPolicies)

	return []any{
		r.Code, r.Name, r.Population, r.GDPScore, r.WelfareScore, r.TrustScore,
		string(resources), string(generation), string(consumption), string(finops),
		string(demographics), string(infrastructure), string(policies),
	}
}

// SaveTreaties writes active and archived treaties (full replace).
func (s *Store) SaveTreaties(active, expired []*treaty.Treaty) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM treaties"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(s.conn.Rebind(`INSERT INTO treaties
		(id, from_region, to_region, offer_json, request_json, duration_ticks,
		 ticks_remaining, conditions, active, breaches_json, created_tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range append(append([]*treaty.Treaty{}, active...), expired...) {
		offer, _ := json.Marshal(t.PerTickOffer)
		request, _ := json.Marshal(t.PerTickRequest)
		breaches, _ := json.Marshal(t.Breaches)
		activeFlag := 0
		if t.Active {
			activeFlag = 1
		}
		if _, err := stmt.Exec(t.ID, t.From, t.To, string(offer), string(request),
			t.DurationTicks, t.TicksRemaining, t.Conditions, activeFlag,
			string(breaches), t.CreatedTick); err != nil {
			return fmt.Errorf("insert treaty %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

type treatyRow struct {
	ID             string `db:"id"`
	From           string `db:"from_region"`
	To             string `db:"to_region"`
	Offer          string `db:"offer_json"`
	Request        string `db:"request_json"`
	DurationTicks  int    `db:"duration_ticks"`
	TicksRemaining int    `db:"ticks_remaining"`
	Conditions     string `db:"conditions"`
	Active         int    `db:"active"`
	Breaches       string `db:"breaches_json"`
	CreatedTick    int    `db:"created_tick"`
}

// LoadTreaties reads treaties back, split into active and archived sets.
func (s *Store) LoadTreaties() (active, expired []*treaty.Treaty, err error) {
	var rows []treatyRow
	if err := s.conn.Select(&rows, "SELECT * FROM treaties ORDER BY created_tick, id"); err != nil {
		return nil, nil, fmt.Errorf("load treaties: %w", err)
	}

	for _, row := range rows {
		t := &treaty.Treaty{
			ID:             row.ID,
			From:           row.From,
			To:             row.To,
			DurationTicks:  row.DurationTicks,
			TicksRemaining: row.TicksRemaining,
			Conditions:     row.Conditions,
			Active:         row.Active != 0,
			CreatedTick:    row.CreatedTick,
		}
		if err := json.Unmarshal([]byte(row.Offer), &t.PerTickOffer); err != nil {
			return nil, nil, fmt.Errorf("decode treaty %s: %w", row.ID, err)
		}
		if err := json.Unmarshal([]byte(row.Request), &t.PerTickRequest); err != nil {
			return nil, nil, fmt.Errorf("decode treaty %s: %w", row.ID, err)
		}
		if err := json.Unmarshal([]byte(row.Breaches), &t.Breaches); err != nil {
			return nil, nil, fmt.Errorf("decode treaty %s: %w", row.ID, err)
		}
		if t.Active {
			active = append(active, t)
		} else {
			expired = append(expired, t)
		}
	}
	return active, expired, nil
}

// SaveResolutions writes the passed-resolution history (full replace).
func (s *Store) SaveResolutions(resolutions []assembly.Resolution) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM resolutions"); err != nil {
		return err
	}

	q := s.conn.Rebind("INSERT INTO resolutions (name, proposal_json, tick_passed) VALUES (?, ?, ?)")
	for _, r := range resolutions {
		proposal, _ := json.Marshal(r.Proposal)
		if _, err := tx.Exec(q, r.Name, string(proposal), r.TickPassed); err != nil {
			return fmt.Errorf("insert resolution %q: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

// LoadResolutions reads the resolution history in passage order.
func (s *Store) LoadResolutions() ([]assembly.Resolution, error) {
	var rows []struct {
		Name       string `db:"name"`
		Proposal   string `db:"proposal_json"`
		TickPassed int    `db:"tick_passed"`
	}
	if err := s.conn.Select(&rows, "SELECT name, proposal_json, tick_passed FROM resolutions ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load resolutions: %w", err)
	}

	out := make([]assembly.Resolution, 0, len(rows))
	for _, row := range rows {
		r := assembly.Resolution{Name: row.Name, TickPassed: row.TickPassed}
		if err := json.Unmarshal([]byte(row.Proposal), &r.Proposal); err != nil {
			return nil, fmt.Errorf("decode resolution %q: %w", row.Name, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Event is one persisted notable occurrence (climate outcome, intervention).
type Event struct {
	Tick    int             `db:"tick" json:"tick"`
	Kind    string          `db:"kind" json:"kind"`
	Payload json.RawMessage `db:"payload_json" json:"payload"`
}

// AppendEvent records a notable occurrence for dashboard reloads.
func (s *Store) AppendEvent(tick int, kind string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	q := s.conn.Rebind("INSERT INTO events (tick, kind, payload_json) VALUES (?, ?, ?)")
	_, err = s.conn.Exec(q, tick, kind, string(raw))
	return err
}

// RecentEvents returns the most recent events, newest first.
func (s *Store) RecentEvents(limit int) ([]Event, error) {
	var events []Event
	q := s.conn.Rebind("SELECT tick, kind, payload_json FROM events ORDER BY id DESC LIMIT ?")
	err := s.conn.Select(&events, q, limit)
	return events, err
}

// SaveMeta stores a key-value pair in world metadata.
func (s *Store) SaveMeta(key, value string) error {
	q := s.conn.Rebind(`INSERT INTO world_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`)
	_, err := s.conn.Exec(q, key, value)
	return err
}

// GetMeta retrieves a metadata value. A missing key returns "" and no error.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	q := s.conn.Rebind("SELECT value FROM world_meta WHERE key = ?")
	err := s.conn.Get(&value, q, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// GlobalState carries the counters needed to resume a run.
type GlobalState struct {
	Tick            int
	TreatiesCreated int
	Meetings        int
}

// SaveGlobalState persists the resume counters.
func (s *Store) SaveGlobalState(gs GlobalState) error {
	for key, v := range map[string]int{
		"last_tick":        gs.Tick,
		"treaties_created": gs.TreatiesCreated,
		"meetings_held":    gs.Meetings,
	} {
		if err := s.SaveMeta(key, strconv.Itoa(v)); err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}
	return nil
}

// LoadGlobalState reads the resume counters; absent keys load as zero.
func (s *Store) LoadGlobalState() (GlobalState, error) {
	gs := GlobalState{}
	for key, into := range map[string]*int{
		"last_tick":        &gs.Tick,
		"treaties_created": &gs.TreatiesCreated,
		"meetings_held":    &gs.Meetings,
	} {
		raw, err := s.GetMeta(key)
		if err != nil {
			return gs, fmt.Errorf("load meta %s: %w", key, err)
		}
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return gs, fmt.Errorf("parse meta %s: %w", key, err)
		}
		*into = v
	}
	return gs, nil
}

// SaveWorldState performs a full save of everything needed to resume.
func (s *Store) SaveWorldState(w *engine.World) error {
	ledger := w.SnapshotLedger()
	slog.Info("saving world state", "tick", w.CurrentTick(), "regions", len(ledger))

	if err := s.SaveRegions(ledger); err != nil {
		return fmt.Errorf("save regions: %w", err)
	}
	if err := s.SaveTreaties(w.ActiveTreaties(), w.ExpiredTreaties()); err != nil {
		return fmt.Errorf("save treaties: %w", err)
	}
	if err := s.SaveResolutions(w.Resolutions()); err != nil {
		return fmt.Errorf("save resolutions: %w", err)
	}
	gs := GlobalState{
		Tick:            w.CurrentTick(),
		TreatiesCreated: w.Treaties.TotalCreated(),
		Meetings:        w.Parliament.MeetingCount(),
	}
	if err := s.SaveGlobalState(gs); err != nil {
		return fmt.Errorf("save global state: %w", err)
	}

	slog.Info("world state saved")
	return nil
}

// RestoreWorld rehydrates a world's subsystems from the store. The ledger
// itself loads separately via LoadAllRegions before the world is built.
func (s *Store) RestoreWorld(w *engine.World) error {
	gs, err := s.LoadGlobalState()
	if err != nil {
		return err
	}
	active, expired, err := s.LoadTreaties()
	if err != nil {
		return err
	}
	resolutions, err := s.LoadResolutions()
	if err != nil {
		return err
	}

	w.Tick = gs.Tick
	w.Treaties.Restore(active, expired, gs.TreatiesCreated)
	w.Parliament.Restore(resolutions, gs.Meetings)
	if gs.Tick > 0 {
		slog.Info("world state restored",
			"tick", gs.Tick, "treaties", len(active), "resolutions", len(resolutions))
	}
	return nil
}
