// Package server exposes the deal analysis engine and the property store over
// a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/iwvelando/deal-finder/internal/analysis"
	"github.com/iwvelando/deal-finder/internal/heatmap"
	"github.com/iwvelando/deal-finder/internal/store"
	"github.com/iwvelando/deal-finder/pkg/constants"
	"github.com/iwvelando/deal-finder/pkg/datetime"
	"github.com/iwvelando/deal-finder/pkg/mathutil"
	"github.com/iwvelando/deal-finder/pkg/validation"
	"go.uber.org/zap"
)

// Options tunes the API handler. Zero values select the defaults.
type Options struct {
	MaxBodySize    int64
	Version        string
	AllowedOrigins []string
	// Assumptions apply to listing, heatmap and analyze requests that do not
	// carry their own. Nil uses analysis.DefaultAssumptions.
	Assumptions *analysis.Assumptions
	Metrics     *Metrics
	Now         func() time.Time
}

type handler struct {
	logger      *zap.Logger
	store       store.Store
	engine      *analysis.Engine
	assumptions analysis.Assumptions
	maxBodySize int64
	version     string
	metrics     *Metrics
	now         func() time.Time
}

// NewHandler constructs the HTTP handler that serves the deal finder API.
func NewHandler(logger *zap.Logger, st store.Store, engine *analysis.Engine, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = analysis.NewEngine(logger)
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}
	assumptions := analysis.DefaultAssumptions()
	if opts.Assumptions != nil {
		assumptions = *opts.Assumptions
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := &handler{
		logger:      logger,
		store:       st,
		engine:      engine,
		assumptions: assumptions,
		maxBodySize: opts.MaxBodySize,
		version:     version,
		metrics:     opts.Metrics,
		now:         opts.Now,
	}

	router := mux.NewRouter()

	router.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/analyze", h.handleAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/properties", h.handleListProperties).Methods(http.MethodGet)
	api.HandleFunc("/properties", h.handleCreateProperty).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id:[0-9]+}", h.handleGetProperty).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/heatmap/{metric}", h.handleHeatmap).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": http.StatusText(http.StatusMethodNotAllowed)})
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger.With(zap.String("op", "server.recover")))),
	)

	return recovery(requestID(cors(h.metrics.Middleware(router))))
}

func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Deal Finder API",
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "not configured"})
		return
	}
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("store ping failed",
			zap.String("op", "server.handleHealth"),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "ok"})
}

func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalyze"

	var req analyzeRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	property := req.Property.toAnalysisProperty()
	assumptions := h.assumptions
	if req.Assumptions != nil {
		assumptions = req.Assumptions.Apply(assumptions)
	}

	if err := errors.Join(validation.ValidateProperty(property), validation.ValidateAssumptions(assumptions)); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	result := h.engine.Analyze(property, assumptions)
	h.metrics.ObserveAnalysis("request", result.DealScore)

	h.logger.Info("deal analyzed",
		zap.String("op", op),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Float64("price", property.Price),
		zap.Int("dealScore", result.DealScore),
	)
	h.writeJSON(w, http.StatusOK, newAnalysisResponse(result))
}

func (h *handler) handleListProperties(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListProperties"
	if !h.requireStore(w, r, op) {
		return
	}

	query := r.URL.Query()
	box, hasBox, err := parseBoundingBox(query)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	filters, err := parseFilters(query)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	var properties []store.Property
	if hasBox {
		properties, err = h.store.ListInBoundingBox(r.Context(), box, filters)
	} else {
		properties, err = h.store.ListAll(r.Context())
	}
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err), op)
		return
	}

	response := make([]propertyResponse, 0, len(properties))
	for _, p := range properties {
		result := h.engine.Analyze(p.ToAnalysisProperty(), h.assumptions)
		h.metrics.ObserveAnalysis("listing", result.DealScore)
		response = append(response, newPropertyResponse(p, result))
	}

	h.logger.Debug("properties listed",
		zap.String("op", op),
		zap.Bool("boundingBox", hasBox),
		zap.Int("count", len(response)),
	)
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetProperty"
	if !h.requireStore(w, r, op) {
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "invalid property id", op)
		return
	}

	p, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Property not found"})
		return
	}
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err), op)
		return
	}

	result := h.engine.Analyze(p.ToAnalysisProperty(), h.assumptions)
	h.metrics.ObserveAnalysis("listing", result.DealScore)
	h.writeJSON(w, http.StatusOK, newPropertyResponse(*p, result))
}

func (h *handler) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateProperty"
	if !h.requireStore(w, r, op) {
		return
	}

	var payload propertyPayload
	if !h.decodeJSON(w, r, &payload, op) {
		return
	}

	if err := errors.Join(
		validation.ValidateProperty(payload.toAnalysisProperty()),
		validation.ValidateCoordinates(payload.Latitude, payload.Longitude),
	); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	property, err := payload.toStoreProperty()
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	if property.DaysOnMarket == 0 && property.DateListed != nil {
		property.DaysOnMarket = datetime.DaysBetween(*property.DateListed, h.now())
	}

	id, err := h.store.Insert(r.Context(), property)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusCreated, createResponse{ID: id, Message: "Property created successfully"})
}

func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStats"
	if !h.requireStore(w, r, op) {
		return
	}

	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err), op)
		return
	}
	stats.AvgPrice = money(stats.AvgPrice)
	stats.AvgPricePerSqft = money(stats.AvgPricePerSqft)
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *handler) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleHeatmap"

	metric, err := heatmap.ParseMetric(mux.Vars(r)["metric"])
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusNotFound, err.Error(), op)
		return
	}
	if !h.requireStore(w, r, op) {
		return
	}

	query := r.URL.Query()
	box, hasBox, err := parseBoundingBox(query)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	if !hasBox {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "north, south, east and west are required", op)
		return
	}
	filters, err := parseFilters(query)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	resolution := 0
	if raw := strings.TrimSpace(query.Get("resolution")); raw != "" {
		resolution, err = strconv.Atoi(raw)
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, "invalid resolution", op)
			return
		}
	}

	properties, err := h.store.ListInBoundingBox(r.Context(), box, filters)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err), op)
		return
	}

	points := heatmap.Points(h.engine, h.assumptions, properties, metric)
	h.metrics.CountAnalyses("heatmap", len(properties))

	grid, err := heatmap.Build(metric, box, resolution, points)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	places := int32(constants.MoneyPlaces)
	if metric == heatmap.MetricCapRate {
		places = constants.RatioPlaces
	}
	for i := range grid.Cells {
		grid.Cells[i].Value = mathutil.RoundTo(grid.Cells[i].Value, places)
	}
	grid.Min = mathutil.RoundTo(grid.Min, places)
	grid.Max = mathutil.RoundTo(grid.Max, places)

	h.writeJSON(w, http.StatusOK, grid)
}

func (h *handler) requireStore(w http.ResponseWriter, r *http.Request, op string) bool {
	if h.store != nil {
		return true
	}
	h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, "Requires database connection", op)
	return false
}

// decodeJSON reads a size-limited JSON body into dst, writing the error
// response itself when decoding fails.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func parseBoundingBox(query map[string][]string) (store.BoundingBox, bool, error) {
	names := []string{"north", "south", "east", "west"}
	values := make([]float64, len(names))
	present := 0
	for i, name := range names {
		raw := ""
		if v, ok := query[name]; ok && len(v) > 0 {
			raw = strings.TrimSpace(v[0])
		}
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || !mathutil.IsFinite(parsed) {
			return store.BoundingBox{}, false, fmt.Errorf("invalid %s: %q", name, raw)
		}
		values[i] = parsed
		present++
	}
	if present < len(names) {
		return store.BoundingBox{}, false, nil
	}
	return store.BoundingBox{North: values[0], South: values[1], East: values[2], West: values[3]}, true, nil
}

func parseFilters(query map[string][]string) (store.Filters, error) {
	get := func(name string) string {
		if v, ok := query[name]; ok && len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	filters := store.Filters{
		Status:   get("status"),
		HomeType: get("home_type"),
	}
	for _, f := range []struct {
		name string
		dst  **float64
	}{
		{"min_price", &filters.MinPrice},
		{"max_price", &filters.MaxPrice},
	} {
		raw := get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !mathutil.IsFinite(v) {
			return store.Filters{}, fmt.Errorf("invalid %s: %q", f.name, raw)
		}
		*f.dst = &v
	}
	if raw := get("min_beds"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return store.Filters{}, fmt.Errorf("invalid min_beds: %q", raw)
		}
		filters.MinBeds = &v
	}
	return filters, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
		zap.String("request_id", RequestIDFromContext(r.Context())),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Warn("request rejected", fields...)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
