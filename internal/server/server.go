package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/rehash-tool/internal/config"
	"github.com/iwvelando/rehash-tool/internal/optimizer"
	"github.com/iwvelando/rehash-tool/internal/worksheet"
	"github.com/iwvelando/rehash-tool/pkg/constants"
	"github.com/iwvelando/rehash-tool/pkg/output"
	"github.com/iwvelando/rehash-tool/pkg/rehash"
	"github.com/iwvelando/rehash-tool/pkg/validation"
)

// ReportIDHeader carries the id assigned to each computed report.
const ReportIDHeader = "X-Report-ID"

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

type worksheetOptions struct {
	Optimize bool
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Post("/calculate", h.handleCalculate)
		r.Post("/worksheets", h.handleWorksheets)
		r.Post("/editor/worksheets", h.handleWorksheetsEditor)
		r.Post("/editor/export", h.handleConfigExport)
		r.Post("/export", h.handleCSVExport)
		r.Get("/terms", h.handleTerms)
		r.Get("/version", h.handleVersion)
	})

	return router
}

// NewServer wraps handler in an http.Server using the configured address and timeouts.
func NewServer(cfg *Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeoutDuration(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

type calculateResponse struct {
	ReportID string         `json:"reportId"`
	Outputs  rehash.Outputs `json:"outputs"`
	Series   rehash.Series  `json:"series"`
	Warnings []string       `json:"warnings,omitempty"`
}

type worksheetResponse struct {
	ReportID   string                 `json:"reportId"`
	Scenarios  []string               `json:"scenarios"`
	Worksheets []worksheet.Worksheet  `json:"worksheets"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var in rehash.Inputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErrorWithOp(w, r, statusForDecodeError(err), fmt.Sprintf("failed to decode inputs: %v", err), op)
		return
	}

	out := rehash.Calculate(in)
	response := calculateResponse{
		ReportID: h.newReportID(w),
		Outputs:  out,
		Series:   rehash.BuildSeries(in, out),
		Warnings: validation.ValidateDeal("Deal", in),
	}

	h.logger.Debug("deal calculated",
		zap.String("op", op),
		zap.String("requestId", chimw.GetReqID(r.Context())),
		zap.String("reportId", response.ReportID),
		zap.String("variant", string(out.Variant)),
		zap.Float64("pti", out.PTI),
		zap.Float64("score", out.Score),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleWorksheets(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleWorksheets"

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	opts := worksheetOptions{Optimize: coerceBool(r.FormValue("optimize"))}
	response, status, err := h.computeWorksheets(configBytes, configMap, start, op, opts)
	if err != nil {
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}
	h.setReportID(w, response.ReportID)
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleWorksheetsEditor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleWorksheetsEditor"

	start := time.Now()
	configBytes, configMap, opts, err := h.decodeEditorPayload(w, r)
	if err != nil {
		h.respondErrorWithOp(w, r, statusForDecodeError(err), err.Error(), op)
		return
	}

	response, status, err := h.computeWorksheets(configBytes, configMap, start, op, opts)
	if err != nil {
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}
	h.setReportID(w, response.ReportID)
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleCSVExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCSVExport"

	start := time.Now()
	configBytes, configMap, opts, err := h.decodeEditorPayload(w, r)
	if err != nil {
		h.respondErrorWithOp(w, r, statusForDecodeError(err), err.Error(), op)
		return
	}

	response, status, err := h.computeWorksheets(configBytes, configMap, start, op, opts)
	if err != nil {
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}

	h.setReportID(w, response.ReportID)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rehash-%s.csv"`, response.ReportID))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, response.CSV); err != nil {
		h.logger.Error("failed to write CSV response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"

	var payload map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadSize)).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, r, statusForDecodeError(err), fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleTerms(w http.ResponseWriter, r *http.Request) {
	variant, err := rehash.ParseVariant(r.URL.Query().Get("variant"))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), "server.handleTerms")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"variant": variant,
		"terms":   variant.Terms(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodeEditorPayload accepts either a bare configuration object or
// {"config": {...}, "options": {"optimize": true}} and re-encodes the
// configuration as YAML.
func (h *handler) decodeEditorPayload(w http.ResponseWriter, r *http.Request) ([]byte, map[string]interface{}, worksheetOptions, error) {
	options := worksheetOptions{}

	var payload map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadSize)).Decode(&payload); err != nil {
		return nil, nil, options, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			return nil, nil, options, fmt.Errorf("invalid config payload: expected object")
		}
		configPayload = cfgMap
	}

	if rawOptions, ok := payload["options"]; ok {
		optsMap, ok := rawOptions.(map[string]interface{})
		if !ok {
			return nil, nil, options, fmt.Errorf("invalid options payload: expected object")
		}
		if optimizeVal, ok := optsMap["optimize"]; ok {
			options.Optimize = coerceBool(optimizeVal)
		}
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		return nil, nil, options, fmt.Errorf("failed to encode configuration: %w", err)
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		return nil, nil, options, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return configBytes, configMap, options, nil
}

func (h *handler) computeWorksheets(configBytes []byte, configMap map[string]interface{}, start time.Time, op string, opts worksheetOptions) (*worksheetResponse, int, error) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	warnings := cfg.ValidateConfiguration()

	var optimizationResult *optimizer.Result
	if opts.Optimize {
		runner, err := optimizer.NewRunner(h.logger, cfg)
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("failed to initialize optimizer: %w", err)
		}

		optimizationResult, err = runner.Run()
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("optimizer execution failed: %w", err)
		}
	}

	results, err := worksheet.GetWorksheets(h.logger, *cfg)
	if err != nil {
		return nil, http.StatusUnprocessableEntity, fmt.Errorf("failed to compute worksheets: %w", err)
	}

	if optimizationResult != nil && !optimizationResult.Empty() {
		optimizationResult.Apply(results)

		updatedBytes, err := yaml.Marshal(cfg)
		if err != nil {
			h.logger.Warn("failed to marshal optimized configuration",
				zap.String("op", op),
				zap.Error(err),
			)
		} else {
			configBytes = updatedBytes
			if updatedMap, mapErr := decodeYAMLToMap(updatedBytes); mapErr == nil {
				configMap = updatedMap
			} else {
				h.logger.Warn("failed to decode optimized configuration map",
					zap.String("op", op),
					zap.Error(mapErr),
				)
			}
		}
	}

	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	elapsed := time.Since(start)
	response := &worksheetResponse{
		ReportID:   uuid.NewString(),
		Scenarios:  extractScenarioNames(results),
		Worksheets: results,
		CSV:        output.CsvString(results),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("worksheets computed",
		zap.String("op", op),
		zap.String("reportId", response.ReportID),
		zap.Int("scenarios", len(response.Scenarios)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("duration", elapsed),
	)

	return response, http.StatusOK, nil
}

func (h *handler) newReportID(w http.ResponseWriter) string {
	id := uuid.NewString()
	h.setReportID(w, id)
	return id
}

func (h *handler) setReportID(w http.ResponseWriter, id string) {
	w.Header().Set(ReportIDHeader, id)
}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "deal", "scenarios"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func statusForDecodeError(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("requestId", chimw.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func extractScenarioNames(results []worksheet.Worksheet) []string {
	names := make([]string, 0, len(results))
	for _, result := range results {
		names = append(names, result.Name)
	}
	return names
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	case json.Number:
		if parsed, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return parsed != 0
		}
	}
	return false
}
