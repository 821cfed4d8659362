package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"SignalPilot/internal/model"
)

type analyzeRequest struct {
	Symbol        string `json:"symbol"`
	CompareSymbol string `json:"compareSymbol"`
}

type analyzeResponse struct {
	MarketInfo struct {
		Symbol       string `json:"symbol"`
		CompareAsset string `json:"compareAsset"`
	} `json:"marketInfo"`
	Signal   *model.SignalResult `json:"signal"`
	Levels   model.TradeLevels   `json:"levels"`
	Metadata struct {
		Volatility  model.VolatilityLabel `json:"volatility"`
		Regime      model.RiskRegime      `json:"regime"`
		Correlation float64               `json:"correlationValue"`
		JournalID   string                `json:"journalId,omitempty"`
	} `json:"metadata"`
	Timestamp int64 `json:"timestamp"`
}

// handleAnalyze runs one full evaluation: snapshot, correlation, journal
// stats, score, levels, and - for a directional call - a journal entry.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	benchmark := req.CompareSymbol
	if benchmark == "" {
		benchmark = s.benchmark
	}

	ctx := r.Context()
	snap, err := s.collector.Snapshot(ctx, req.Symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", req.Symbol).Msg("snapshot failed")
		writeError(w, http.StatusBadGateway, "market data unavailable")
		return
	}

	correlation := s.collector.Correlation(ctx, req.Symbol, benchmark)

	// A stats-read failure degrades to "no history" rather than blocking
	// the evaluation.
	stats, err := s.journal.Stats(req.Symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", req.Symbol).
			Msg("journal stats unavailable, evaluating without history")
		stats = model.SymbolStats{}
	}

	result := s.engine.Evaluate(snap, correlation, stats)

	atr := s.collector.ATR(ctx, req.Symbol, snap.Price)
	lv := s.levels.Calculate(snap.Price, result.Direction, atr)

	var resp analyzeResponse
	resp.MarketInfo.Symbol = req.Symbol
	resp.MarketInfo.CompareAsset = benchmark
	resp.Signal = result
	resp.Levels = lv
	resp.Metadata.Volatility = snap.Volatility
	resp.Metadata.Regime = snap.Regime
	resp.Metadata.Correlation = correlation
	resp.Timestamp = time.Now().UnixMilli()

	if result.Direction != model.DirectionHold {
		id, err := s.journal.LogSignal(req.Symbol, result.Direction, snap.Price, result.Confidence)
		if err != nil {
			log.Error().Err(err).Str("symbol", req.Symbol).Msg("journal write failed")
		} else {
			resp.Metadata.JournalID = id
		}
		if s.notifier != nil {
			s.notifier.SignalAlert(req.Symbol, result, lv)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleStats serves win-rate statistics, per symbol or journal-wide.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	var (
		stats model.SymbolStats
		err   error
		scope = "global"
	)
	if symbol != "" {
		stats, err = s.journal.Stats(symbol)
		scope = "local"
	} else {
		stats, err = s.journal.AllStats()
	}
	if err != nil {
		log.Error().Err(err).Msg("journal stats failed")
		writeError(w, http.StatusInternalServerError, "journal unavailable")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		model.SymbolStats
		Scope string `json:"scope"`
	}{stats, scope})
}

// handleTrades serves recent journal entries, newest first.
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.journal.History(limit)
	if err != nil {
		log.Error().Err(err).Msg("journal history failed")
		writeError(w, http.StatusInternalServerError, "journal unavailable")
		return
	}
	if entries == nil {
		entries = []model.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "UP",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
