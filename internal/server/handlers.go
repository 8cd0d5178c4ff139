package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fluxplot/fluxplot/pkg/cache"
	"github.com/fluxplot/fluxplot/pkg/dispatch"
	"github.com/fluxplot/fluxplot/pkg/energy"
	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/flows"
	"github.com/fluxplot/fluxplot/pkg/plot"
	"github.com/fluxplot/fluxplot/pkg/render"
	"github.com/fluxplot/fluxplot/pkg/topo"
)

// scenarioInfo is the JSON shape of one scenario listing entry.
type scenarioInfo struct {
	Name    string   `json:"name"`
	Periods int      `json:"periods"`
	Start   string   `json:"start"`
	Step    string   `json:"step"`
	Nodes   int      `json:"nodes"`
	Buses   []string `json:"buses"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.scenarioDir)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "read scenario directory"))
		return
	}

	infos := []scenarioInfo{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sys, _, err := s.loadScenario(e.Name())
		if err != nil {
			// Directories without a loadable scenario are skipped, not fatal.
			s.logger.Warn("skipping scenario", "name", e.Name(), "err", err)
			continue
		}
		infos = append(infos, describe(e.Name(), sys))
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sys, _, err := s.loadScenario(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, describe(name, sys))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sys, raw, err := s.loadScenario(name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	key := cache.TopoKey(cache.Hash(raw), "svg")
	if data, ok, _ := s.cache.Get(r.Context(), key); ok {
		s.writeArtifact(w, "image/svg+xml", data)
		return
	}

	data, err := topo.SVG(r.Context(), topo.DOT(sys))
	if err != nil {
		s.writeError(w, err)
		return
	}
	_ = s.cache.Set(r.Context(), key, data, s.ttl)
	s.writeArtifact(w, "image/svg+xml", data)
}

func (s *Server) handleBalanceSVG(w http.ResponseWriter, r *http.Request) {
	s.handleBalance(w, r, "svg")
}

func (s *Server) handleBalancePNG(w http.ResponseWriter, r *http.Request) {
	s.handleBalance(w, r, "png")
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request, format string) {
	name := chi.URLParam(r, "name")
	bus := chi.URLParam(r, "bus")
	if err := errors.ValidateNodeLabel(bus); err != nil {
		s.writeError(w, err)
		return
	}

	opts, keyOpts, err := balanceOptions(r, bus, format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sys, raw, err := s.loadScenario(name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	contentType := "image/svg+xml"
	if format == "png" {
		contentType = "image/png"
	}

	key := cache.PlotKey(cache.Hash(raw), keyOpts)
	if data, ok, _ := s.cache.Get(r.Context(), key); ok {
		s.writeArtifact(w, contentType, data)
		return
	}

	res, err := dispatch.Run(sys)
	if err != nil {
		s.writeError(w, err)
		return
	}
	table, err := res.Node(bus)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan, err := plot.Balance(table, bus, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	renderOpts := []render.Option{render.WithTitle(bus + " balance")}
	if keyOpts.Ticks > 0 {
		renderOpts = append(renderOpts, render.WithTicks(plot.TickSpec{Count: keyOpts.Ticks}))
	}

	var data []byte
	if format == "png" {
		data, err = render.PNG(plan, renderOpts...)
	} else {
		data, err = render.SVG(plan, renderOpts...)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	_ = s.cache.Set(r.Context(), key, data, s.ttl)
	s.writeArtifact(w, contentType, data)
}

// balanceOptions parses the balance query parameters into plot options
// and the matching cache key options.
func balanceOptions(r *http.Request, bus, format string) (plot.Options, cache.PlotKeyOpts, error) {
	q := r.URL.Query()

	mode, err := plot.ParseMode(q.Get("mode"))
	if err != nil {
		return plot.Options{}, cache.PlotKeyOpts{}, err
	}

	var window flows.Window
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return plot.Options{}, cache.PlotKeyOpts{},
				errors.Wrap(errors.ErrCodeInvalidInput, err, "parse from=%q", raw)
		}
		window.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return plot.Options{}, cache.PlotKeyOpts{},
				errors.Wrap(errors.ErrCodeInvalidInput, err, "parse to=%q", raw)
		}
		window.To = t
	}

	ticks := 0
	if raw := q.Get("ticks"); raw != "" {
		ticks, err = strconv.Atoi(raw)
		if err != nil || ticks <= 0 {
			return plot.Options{}, cache.PlotKeyOpts{},
				errors.New(errors.ErrCodeInvalidInput, "ticks must be a positive integer, got %q", raw)
		}
	}

	reverse := q.Get("reverse") == "true" || q.Get("reverse") == "1"

	opts := plot.Options{
		Window:  window,
		Mode:    mode,
		Reverse: reverse,
	}
	keyOpts := cache.PlotKeyOpts{
		Bus:     bus,
		Mode:    mode.String(),
		Format:  format,
		From:    q.Get("from"),
		To:      q.Get("to"),
		Ticks:   ticks,
		Reverse: reverse,
	}
	return opts, keyOpts, nil
}

// loadScenario loads and validates one scenario by directory name,
// returning the system together with the raw scenario bytes used for
// cache keying.
func (s *Server) loadScenario(name string) (*energy.System, []byte, error) {
	if err := errors.ValidateScenarioName(name); err != nil {
		return nil, nil, err
	}
	path := filepath.Join(s.scenarioDir, name, "scenario.toml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.New(errors.ErrCodeNotFound, "scenario %q not found", name)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "read scenario %q", name)
	}
	sys, err := energy.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return sys, raw, nil
}

func describe(name string, sys *energy.System) scenarioInfo {
	sc := sys.Scenario
	return scenarioInfo{
		Name:    name,
		Periods: sc.Periods,
		Start:   sc.Start.Format(time.RFC3339),
		Step:    time.Duration(sc.Step).String(),
		Nodes:   sys.NodeCount(),
		Buses:   sys.BusLabels(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeArtifact(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write artifact", "err", err)
	}
}

// writeError maps structured error codes onto HTTP statuses: missing
// resources to 404, caller mistakes to 400, everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeEmptyBus, errors.ErrCodeEmptyWindow, errors.ErrCodeAmbiguousTicks,
		errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLabel, errors.ErrCodeInvalidScenario,
		errors.ErrCodeInvalidFlow:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}
