package api

import (
	"encoding/json"
	"net/http"

	"stocksense/internal/agent"
	"stocksense/internal/domain/focus"
	"stocksense/internal/domain/layout"
	"stocksense/internal/domain/market"
	"stocksense/internal/domain/user"
	"stocksense/internal/knowledge"
	"stocksense/internal/marketdata"
	focussvc "stocksense/internal/services/focus"
	"stocksense/internal/services/tracking"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

// Handlers bundles the service dependencies behind the REST surface
type Handlers struct {
	tracking  *tracking.Service
	focus     *focussvc.Service
	knowledge *knowledge.Service
	agent     *agent.Agent
	cache     *marketdata.Cache
	provider  market.Provider
	simulator *marketdata.Simulator
	finnhub   *marketdata.FinnhubClient
	iex       *marketdata.IEXClient
	layouts   layout.Repository
	log       *logger.Logger
}

func NewHandlers(
	trackingSvc *tracking.Service,
	focusSvc *focussvc.Service,
	kn *knowledge.Service,
	ag *agent.Agent,
	cache *marketdata.Cache,
	provider market.Provider,
	simulator *marketdata.Simulator,
	finnhub *marketdata.FinnhubClient,
	iex *marketdata.IEXClient,
	layouts layout.Repository,
) *Handlers {
	return &Handlers{
		tracking:  trackingSvc,
		focus:     focusSvc,
		knowledge: kn,
		agent:     ag,
		cache:     cache,
		provider:  provider,
		simulator: simulator,
		finnhub:   finnhub,
		iex:       iex,
		layouts:   layouts,
		log:       logger.Get().With("component", "api"),
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorw("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var verr *errors.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, errors.ErrInvalidInput),
		errors.Is(err, errors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrNoActiveSession):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.log.Errorw("request failed", "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// --- search and tracking ---

func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.tracking.TrackSearch(r.Context(), req.Query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleSearchHistory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.tracking.SearchAnalysisHistory())
}

func (h *Handlers) HandleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.tracking.Profile(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.tracking.Insights())
}

func (h *Handlers) HandleDefine(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	if term == "" {
		h.writeError(w, errors.NewValidationError("term", "query parameter is required", term))
		return
	}
	h.writeJSON(w, http.StatusOK, h.knowledge.Lookup(r.Context(), term))
}

func (h *Handlers) HandleProfileReset(w http.ResponseWriter, r *http.Request) {
	if err := h.tracking.Reset(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handlers) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tier user.ExpertiseTier `json:"tier"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.tracking.Simulate(r.Context(), req.Tier); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "simulated", "tier": string(req.Tier)})
}

func (h *Handlers) HandleClick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Element string `json:"element"`
		Section string `json:"section"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.tracking.TrackClick(r.Context(), req.Element, req.Section); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleSection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Section string `json:"section"`
		Action  string `json:"action"` // enter|leave
	}
	if !h.decode(w, r, &req) {
		return
	}

	switch req.Action {
	case "enter":
		h.tracking.SectionEnter(req.Section)
	case "leave":
		if err := h.tracking.SectionLeave(r.Context(), req.Section); err != nil {
			h.writeError(w, err)
			return
		}
	default:
		h.writeError(w, errors.NewValidationError("action", "must be enter or leave", req.Action))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- market data ---

func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if snap, at := h.cache.Snapshot(); snap != nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"snapshot":    snap,
			"refreshedAt": at,
		})
		return
	}

	// Cache not warmed yet, derive one directly
	snap, err := h.provider.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"snapshot": snap})
}

func (h *Handlers) HandleStocks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeJSON(w, http.StatusOK, market.Catalog())
		return
	}
	h.writeJSON(w, http.StatusOK, market.Search(query))
}

func (h *Handlers) HandleSectors(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, market.Sectors)
}

func (h *Handlers) HandleMovers(w http.ResponseWriter, r *http.Request) {
	list := marketdata.MoverList(r.URL.Query().Get("list"))
	if list == "" {
		list = marketdata.MoversGainers
	}

	if res, ok := h.cache.Movers(list); ok {
		h.writeJSON(w, http.StatusOK, res)
		return
	}
	h.writeJSON(w, http.StatusOK, h.iex.Movers(r.Context(), list))
}

func (h *Handlers) HandleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		h.writeError(w, errors.NewValidationError("symbol", "required", symbol))
		return
	}
	h.writeJSON(w, http.StatusOK, h.iex.GetQuote(r.Context(), symbol))
}

func (h *Handlers) HandleNews(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.cache.News())
}

func (h *Handlers) HandleInsiders(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		h.writeError(w, errors.NewValidationError("symbol", "required", symbol))
		return
	}

	tier := user.TierBeginner
	if profile, err := h.tracking.Profile(r.Context()); err == nil {
		tier = profile.ExpertiseTier
	}

	transactions := h.finnhub.InsiderTransactions(r.Context(), symbol)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"analysis":     marketdata.AnalyzeInsiders(transactions.Data, tier),
	})
}

func (h *Handlers) HandleEarnings(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		h.writeError(w, errors.NewValidationError("symbol", "required", symbol))
		return
	}
	h.writeJSON(w, http.StatusOK, h.finnhub.EarningsData(r.Context(), symbol))
}

func (h *Handlers) HandleMarketPreset(w http.ResponseWriter, r *http.Request) {
	if h.simulator == nil {
		h.writeError(w, errors.Wrap(errors.ErrNotFound, "market presets need the simulated provider"))
		return
	}

	var req struct {
		Preset marketdata.Preset `json:"preset"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.simulator.SetPreset(req.Preset); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"preset": string(req.Preset)})
}

// --- agent ---

func (h *Handlers) HandleAgentStart(w http.ResponseWriter, r *http.Request) {
	h.agent.Start()
	h.writeJSON(w, http.StatusOK, map[string]bool{"running": h.agent.Running()})
}

func (h *Handlers) HandleAgentStop(w http.ResponseWriter, r *http.Request) {
	h.agent.Stop()
	h.writeJSON(w, http.StatusOK, map[string]bool{"running": h.agent.Running()})
}

func (h *Handlers) HandleAgentState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.agent.State())
}

// --- focus timer ---

func (h *Handlers) HandleFocusSession(w http.ResponseWriter, r *http.Request) {
	session, remaining := h.focus.Current()
	if session == nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"active": false})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"active":           true,
		"session":          session,
		"remainingSeconds": remaining,
	})
}

func (h *Handlers) HandleFocusStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind focus.SessionKind `json:"kind"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.focus.StartSession(r.Context(), req.Kind)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, session)
}

func (h *Handlers) HandleFocusStop(w http.ResponseWriter, r *http.Request) {
	session, err := h.focus.StopSession(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

func (h *Handlers) HandleFocusSettings(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.focus.Settings())
}

func (h *Handlers) HandleFocusSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var settings focus.Settings
	if !h.decode(w, r, &settings) {
		return
	}

	if err := h.focus.UpdateSettings(r.Context(), settings); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

func (h *Handlers) HandleFocusStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.focus.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) HandleFocusAttention(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.focus.Attention())
}

func (h *Handlers) HandleFocusActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind focussvc.ActivityKind `json:"kind"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	h.focus.RecordActivity(req.Kind)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleFocusTabSwitch(w http.ResponseWriter, r *http.Request) {
	h.focus.RecordTabSwitch()
	w.WriteHeader(http.StatusNoContent)
}

// --- layout ---

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.layouts.Get(r.Context())
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			h.writeJSON(w, http.StatusOK, layout.DefaultConfig())
			return
		}
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cfg)
}

func (h *Handlers) HandleLayoutUpdate(w http.ResponseWriter, r *http.Request) {
	var cfg layout.Config
	if !h.decode(w, r, &cfg) {
		return
	}

	if err := cfg.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.layouts.Save(r.Context(), &cfg); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &cfg)
}

func (h *Handlers) HandleLayoutPreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	for _, preset := range layout.Presets() {
		if preset.ID == req.ID {
			cfg := layout.ApplyPreset(preset)
			if err := h.layouts.Save(r.Context(), cfg); err != nil {
				h.writeError(w, err)
				return
			}
			h.writeJSON(w, http.StatusOK, cfg)
			return
		}
	}
	h.writeError(w, errors.Wrapf(errors.ErrNotFound, "unknown layout preset %q", req.ID))
}
