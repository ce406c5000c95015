package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"agrichain/internal/domain"
	"agrichain/internal/usecase"
)

const CorrelationHeader = "X-Correlation-Id"

// Actions is the AI-assisted feature surface, implemented by *usecase.Service.
type Actions interface {
	SuggestCrops(ctx context.Context, in usecase.CropSuggestionInput) usecase.Result[[]string]
	DiagnoseDisease(ctx context.Context, in usecase.DiseaseDiagnosisInput) usecase.Result[usecase.DiseaseDiagnosis]
	CheckWarehouse(ctx context.Context, in usecase.WarehouseInput) usecase.Result[usecase.WarehouseStatus]
	ForumResponse(ctx context.Context, in usecase.ForumInput) usecase.Result[usecase.ForumReply]
	PredictMarketPrice(ctx context.Context, in usecase.MarketPriceInput) usecase.Result[usecase.MarketPrediction]
	WeatherForecast(ctx context.Context, in usecase.WeatherInput) usecase.Result[usecase.WeatherForecast]
	CarbonCredits(ctx context.Context, in usecase.CarbonCreditInput) usecase.Result[usecase.CarbonCreditInfo]
	VoiceAssistance(ctx context.Context, in usecase.VoiceInput) usecase.Result[usecase.VoiceReply]
}

// Ledger is the supply-chain surface, implemented by *usecase.LedgerService.
type Ledger interface {
	CreateBatch(ctx context.Context, in usecase.NewBatchInput) usecase.Result[domain.Batch]
	UpdateBatch(ctx context.Context, id string, in usecase.BatchUpdate) usecase.Result[domain.Batch]
	ApproveBatch(ctx context.Context, id string, in usecase.ApproveInput) usecase.Result[domain.Batch]
	ListBatches(ctx context.Context, status string) usecase.Result[[]domain.Batch]
	ListProducts(ctx context.Context) usecase.Result[[]domain.Product]
	GetProduct(ctx context.Context, id string) usecase.Result[domain.Product]
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type actionFunc func(ctx context.Context, body []byte) (int, any)

// Handler maps transport requests onto the usecase layer. The same Handler
// backs the Lambda entry point and the HTTP server.
type Handler struct {
	actions map[string]actionFunc
	ledger  Ledger
	logger  *slog.Logger
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(actions Actions, ledger Ledger, opts ...Option) (*Handler, error) {
	if actions == nil {
		return nil, errors.New("handler: actions must not be nil")
	}
	if ledger == nil {
		return nil, errors.New("handler: ledger must not be nil")
	}
	h := &Handler{ledger: ledger, logger: slog.Default()}
	h.actions = map[string]actionFunc{
		"crop-suggestions":        bind("suggestions", actions.SuggestCrops),
		"disease-diagnosis":       bind("diagnosis", actions.DiagnoseDisease),
		"warehouse-space":         bind("status", actions.CheckWarehouse),
		"forum-response":          bind("response", actions.ForumResponse),
		"market-price-prediction": bind("prediction", actions.PredictMarketPrice),
		"weather-forecast":        bind("forecast", actions.WeatherForecast),
		"carbon-credit-info":      bind("info", actions.CarbonCredits),
		"voice-assistance":        bind("", actions.VoiceAssistance),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ActionNames lists the routable action names in sorted order.
func (h *Handler) ActionNames() []string {
	names := make([]string, 0, len(h.actions))
	for name := range h.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle is the API Gateway proxy entry point.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	correlationID := ResolveCorrelationID(headerValue(req.Headers, CorrelationHeader))

	status, body := h.route(ctx, req)

	h.logger.InfoContext(ctx, "request handled",
		"correlation_id", correlationID,
		"method", req.HTTPMethod,
		"path", req.Path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return jsonResponse(status, body, correlationID), nil
}

func (h *Handler) route(ctx context.Context, req events.APIGatewayProxyRequest) (int, any) {
	segs := strings.Split(strings.Trim(req.Path, "/"), "/")
	method := strings.ToUpper(req.HTTPMethod)
	body := []byte(req.Body)

	switch {
	case len(segs) == 1 && segs[0] == "healthz":
		if method != http.MethodGet {
			return methodNotAllowed()
		}
		return http.StatusOK, map[string]string{"status": "ok"}

	case len(segs) == 3 && segs[0] == "api" && segs[1] == "actions":
		if method != http.MethodPost {
			return methodNotAllowed()
		}
		return h.Action(ctx, segs[2], body)

	case len(segs) == 2 && segs[0] == "api" && segs[1] == "batches":
		switch method {
		case http.MethodGet:
			return h.ListBatches(ctx, req.QueryStringParameters["status"])
		case http.MethodPost:
			return h.CreateBatch(ctx, body)
		}
		return methodNotAllowed()

	case len(segs) == 3 && segs[0] == "api" && segs[1] == "batches":
		if method != http.MethodPatch {
			return methodNotAllowed()
		}
		return h.UpdateBatch(ctx, segs[2], body)

	case len(segs) == 4 && segs[0] == "api" && segs[1] == "batches" && segs[3] == "approve":
		if method != http.MethodPost {
			return methodNotAllowed()
		}
		return h.ApproveBatch(ctx, segs[2], body)

	case len(segs) == 2 && segs[0] == "api" && segs[1] == "products":
		if method != http.MethodGet {
			return methodNotAllowed()
		}
		return h.ListProducts(ctx)

	case len(segs) == 3 && segs[0] == "api" && segs[1] == "products":
		if method != http.MethodGet {
			return methodNotAllowed()
		}
		return h.GetProduct(ctx, segs[2])
	}
	return http.StatusNotFound, errorResponse{Error: "Route not found.", Code: string(usecase.ErrorNotFound)}
}

// Action runs the named action on a JSON request body.
func (h *Handler) Action(ctx context.Context, name string, body []byte) (int, any) {
	fn, ok := h.actions[name]
	if !ok {
		return http.StatusNotFound, errorResponse{Error: "Unknown action: " + name + ".", Code: string(usecase.ErrorNotFound)}
	}
	return fn(ctx, body)
}

func (h *Handler) ListBatches(ctx context.Context, status string) (int, any) {
	return respond("batches", h.ledger.ListBatches(ctx, status))
}

func (h *Handler) CreateBatch(ctx context.Context, body []byte) (int, any) {
	var in usecase.NewBatchInput
	if err := decodeStrict(body, &in); err != nil {
		return malformedBody()
	}
	res := h.ledger.CreateBatch(ctx, in)
	if !res.OK() {
		return respond("batch", res)
	}
	return http.StatusCreated, map[string]any{"batch": res.Value}
}

func (h *Handler) UpdateBatch(ctx context.Context, id string, body []byte) (int, any) {
	var in usecase.BatchUpdate
	if err := decodeStrict(body, &in); err != nil {
		return malformedBody()
	}
	return respond("batch", h.ledger.UpdateBatch(ctx, id, in))
}

func (h *Handler) ApproveBatch(ctx context.Context, id string, body []byte) (int, any) {
	var in usecase.ApproveInput
	if err := decodeStrict(body, &in); err != nil {
		return malformedBody()
	}
	return respond("batch", h.ledger.ApproveBatch(ctx, id, in))
}

func (h *Handler) ListProducts(ctx context.Context) (int, any) {
	return respond("products", h.ledger.ListProducts(ctx))
}

func (h *Handler) GetProduct(ctx context.Context, id string) (int, any) {
	return respond("product", h.ledger.GetProduct(ctx, id))
}

// bind adapts a typed action to a JSON body. An empty field returns the
// value itself as the response body.
func bind[In, Out any](field string, call func(context.Context, In) usecase.Result[Out]) actionFunc {
	return func(ctx context.Context, body []byte) (int, any) {
		var in In
		if err := decodeStrict(body, &in); err != nil {
			return malformedBody()
		}
		return respond(field, call(ctx, in))
	}
}

func respond[T any](field string, res usecase.Result[T]) (int, any) {
	if res.Err != nil {
		return statusFor(res.Err.Code), errorResponse{Error: res.Err.Public(), Code: string(res.Err.Code)}
	}
	if field == "" {
		return http.StatusOK, res.Value
	}
	return http.StatusOK, map[string]any{field: res.Value}
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorNotFound:
		return http.StatusNotFound
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func malformedBody() (int, any) {
	return http.StatusBadRequest, errorResponse{Error: "Invalid input: malformed JSON body.", Code: string(usecase.ErrorInvalidInput)}
}

func methodNotAllowed() (int, any) {
	return http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed."}
}

// decodeStrict rejects unknown fields and trailing data. An empty body
// decodes as {} so validation reports the missing fields.
func decodeStrict(body []byte, v any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("handler: trailing data after JSON body")
	}
	return nil
}

func jsonResponse(status int, body any, correlationID string) events.APIGatewayProxyResponse {
	headers := map[string]string{
		"Content-Type":    "application/json",
		CorrelationHeader: correlationID,
	}
	buf, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		buf = []byte(`{"error":"An unexpected error occurred.","code":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(buf),
	}
}

func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// ResolveCorrelationID echoes a caller-supplied ID or mints a new one.
func ResolveCorrelationID(incoming string) string {
	if id := strings.TrimSpace(incoming); id != "" {
		return id
	}
	return newUUID()
}

var newUUID = func() string {
	return uuid.NewString()
}
