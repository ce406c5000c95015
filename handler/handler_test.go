package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"agrichain/internal/domain"
	"agrichain/internal/repository"
	"agrichain/internal/usecase"
)

// stubActions records the last input and returns canned results.
type stubActions struct {
	crops   usecase.Result[[]string]
	voice   usecase.Result[usecase.VoiceReply]
	carbon  usecase.Result[usecase.CarbonCreditInfo]
	lastIn  any
	invoked int
}

func (s *stubActions) SuggestCrops(_ context.Context, in usecase.CropSuggestionInput) usecase.Result[[]string] {
	s.lastIn, s.invoked = in, s.invoked+1
	return s.crops
}

func (s *stubActions) DiagnoseDisease(_ context.Context, in usecase.DiseaseDiagnosisInput) usecase.Result[usecase.DiseaseDiagnosis] {
	s.lastIn, s.invoked = in, s.invoked+1
	return usecase.Result[usecase.DiseaseDiagnosis]{Value: usecase.DiseaseDiagnosis{Disease: "Leaf blight", Remedy: "Copper spray"}}
}

func (s *stubActions) CheckWarehouse(_ context.Context, in usecase.WarehouseInput) usecase.Result[usecase.WarehouseStatus] {
	s.lastIn, s.invoked = in, s.invoked+1
	return usecase.Result[usecase.WarehouseStatus]{Value: usecase.WarehouseStatus{WarehouseName: "Salem Central", Availability: "Available"}}
}

func (s *stubActions) ForumResponse(_ context.Context, in usecase.ForumInput) usecase.Result[usecase.ForumReply] {
	s.lastIn, s.invoked = in, s.invoked+1
	return usecase.Result[usecase.ForumReply]{Value: usecase.ForumReply{Response: "Use mulch."}}
}

func (s *stubActions) PredictMarketPrice(_ context.Context, in usecase.MarketPriceInput) usecase.Result[usecase.MarketPrediction] {
	s.lastIn, s.invoked = in, s.invoked+1
	return usecase.Result[usecase.MarketPrediction]{Value: usecase.MarketPrediction{PredictedPriceRange: "Rs.20-25", Trend: "Stable"}}
}

func (s *stubActions) WeatherForecast(_ context.Context, in usecase.WeatherInput) usecase.Result[usecase.WeatherForecast] {
	s.lastIn, s.invoked = in, s.invoked+1
	return usecase.Result[usecase.WeatherForecast]{Value: usecase.WeatherForecast{Forecast: "Sunny"}}
}

func (s *stubActions) CarbonCredits(_ context.Context, in usecase.CarbonCreditInput) usecase.Result[usecase.CarbonCreditInfo] {
	s.lastIn, s.invoked = in, s.invoked+1
	return s.carbon
}

func (s *stubActions) VoiceAssistance(_ context.Context, in usecase.VoiceInput) usecase.Result[usecase.VoiceReply] {
	s.lastIn, s.invoked = in, s.invoked+1
	return s.voice
}

func newTestHandler(t *testing.T, actions Actions) *Handler {
	t.Helper()
	store := repository.NewSeededMemoryStore()
	ledger, err := usecase.NewLedgerService(store, store, nil)
	require.NoError(t, err)
	h, err := NewHandler(actions, ledger)
	require.NoError(t, err)
	return h
}

func makeEvent(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

// ---------------------------------------------------------------------------
// construction
// ---------------------------------------------------------------------------

func TestNewHandler_ValidatesDependencies(t *testing.T) {
	store := repository.NewMemoryStore()
	ledger, err := usecase.NewLedgerService(store, store, nil)
	require.NoError(t, err)

	_, err = NewHandler(nil, ledger)
	require.Error(t, err)
	_, err = NewHandler(&stubActions{}, nil)
	require.Error(t, err)
}

func TestActionNames(t *testing.T) {
	h := newTestHandler(t, &stubActions{})
	require.Equal(t, []string{
		"carbon-credit-info",
		"crop-suggestions",
		"disease-diagnosis",
		"forum-response",
		"market-price-prediction",
		"voice-assistance",
		"warehouse-space",
		"weather-forecast",
	}, h.ActionNames())
}

// ---------------------------------------------------------------------------
// actions
// ---------------------------------------------------------------------------

func TestHandle_ActionHappyPath(t *testing.T) {
	a := &stubActions{crops: usecase.Result[[]string]{Value: []string{"Rice", "Banana"}}}
	h := newTestHandler(t, a)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/actions/crop-suggestions",
		`{"location":"Thanjavur","soilProperties":"Alluvial, pH 6.8"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
	require.Equal(t, usecase.CropSuggestionInput{Location: "Thanjavur", SoilProperties: "Alluvial, pH 6.8"}, a.lastIn)

	out := parseBody[map[string][]string](t, resp.Body)
	require.Equal(t, []string{"Rice", "Banana"}, out["suggestions"])
	require.NotEmpty(t, resp.Headers[CorrelationHeader])
}

func TestHandle_ResultFields(t *testing.T) {
	cases := []struct {
		action string
		body   string
		field  string
	}{
		{"disease-diagnosis", `{"photoDataUri":"data:image/png;base64,AA=="}`, "diagnosis"},
		{"warehouse-space", `{"location":"Salem"}`, "status"},
		{"forum-response", `{"message":"how to store onions"}`, "response"},
		{"market-price-prediction", `{"cropName":"Onion"}`, "prediction"},
		{"weather-forecast", `{"location":"Madurai"}`, "forecast"},
	}
	h := newTestHandler(t, &stubActions{})
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/actions/"+tc.action, tc.body))
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			out := parseBody[map[string]json.RawMessage](t, resp.Body)
			require.Contains(t, out, tc.field)
		})
	}
}

func TestHandle_VoiceReturnsBareReply(t *testing.T) {
	a := &stubActions{voice: usecase.Result[usecase.VoiceReply]{Value: usecase.VoiceReply{AudioDataURI: "data:audio/wav;base64,UklGRg=="}}}
	h := newTestHandler(t, a)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/actions/voice-assistance", `{"query":"நெல் விலை"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"audioDataUri":"data:audio/wav;base64,UklGRg=="}`, resp.Body)
}

func TestHandle_MalformedBody(t *testing.T) {
	cases := map[string]string{
		"not json":      `not-json`,
		"unknown field": `{"location":"Salem","extra":1}`,
		"trailing data": `{"location":"Salem"} {}`,
		"wrong type":    `{"location":42}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			a := &stubActions{}
			h := newTestHandler(t, a)
			resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/actions/weather-forecast", body))
			require.NoError(t, err)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			out := parseBody[errorResponse](t, resp.Body)
			require.Equal(t, string(usecase.ErrorInvalidInput), out.Code)
			require.Zero(t, a.invoked)
		})
	}
}

func TestHandle_EmptyBodyReachesValidation(t *testing.T) {
	a := &stubActions{carbon: usecase.Result[usecase.CarbonCreditInfo]{Value: usecase.CarbonCreditInfo{CreditsEarned: 1.5}}}
	h := newTestHandler(t, a)
	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/actions/carbon-credit-info", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.CarbonCreditInput{}, a.lastIn)
}

func TestHandle_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    *usecase.Error
		status int
	}{
		{"invalid input", &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "validation_failed", Message: "Invalid input: Location must be at least 3 characters."}, http.StatusBadRequest},
		{"rate limited", &usecase.Error{Code: usecase.ErrorRateLimited, Reason: "model_rate_limited"}, http.StatusTooManyRequests},
		{"upstream", &usecase.Error{Code: usecase.ErrorUpstream, Reason: "model_error", Message: "An unexpected error occurred while fetching suggestions: boom"}, http.StatusBadGateway},
		{"not found", &usecase.Error{Code: usecase.ErrorNotFound, Reason: "x"}, http.StatusNotFound},
		{"internal", &usecase.Error{Code: usecase.ErrorInternal, Reason: "panic"}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &stubActions{crops: usecase.Result[[]string]{Err: tc.err}}
			h := newTestHandler(t, a)

			resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/actions/crop-suggestions", `{}`))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			out := parseBody[errorResponse](t, resp.Body)
			require.Equal(t, tc.err.Public(), out.Error)
			require.Equal(t, string(tc.err.Code), out.Code)
		})
	}
}

func TestHandle_UnknownActionAndRoute(t *testing.T) {
	h := newTestHandler(t, &stubActions{})

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/actions/irrigation-plan", `{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, parseBody[errorResponse](t, resp.Body).Error, "irrigation-plan")

	resp, err = h.Handle(context.Background(), makeEvent(http.MethodGet, "/api/farmers", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = h.Handle(context.Background(), makeEvent(http.MethodGet, "/api/actions/crop-suggestions", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandle_Health(t *testing.T) {
	h := newTestHandler(t, &stubActions{})
	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/healthz", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, resp.Body)
}

// ---------------------------------------------------------------------------
// ledger routes
// ---------------------------------------------------------------------------

func TestHandle_LedgerFlow(t *testing.T) {
	h := newTestHandler(t, &stubActions{})
	ctx := context.Background()

	resp, err := h.Handle(ctx, makeEvent(http.MethodPost, "/api/batches",
		`{"cropType":"Millet","location":"Salem","soilProperties":"Red sandy loam"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := parseBody[struct {
		Batch domain.Batch `json:"batch"`
	}](t, resp.Body).Batch
	require.Equal(t, domain.BatchFarmed, created.Status)

	resp, err = h.Handle(ctx, makeEvent(http.MethodPatch, "/api/batches/"+created.ID,
		`{"quality":"Grade A","warehouseConditions":"Dry"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = h.Handle(ctx, makeEvent(http.MethodPost, "/api/batches/"+created.ID+"/approve", `{"agentPrice":"Rs.30 / kg"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := parseBody[struct {
		Batch domain.Batch `json:"batch"`
	}](t, resp.Body).Batch
	require.Equal(t, domain.BatchVerified, approved.Status)
	require.Equal(t, "Rs.30 / kg", approved.Price)

	ev := makeEvent(http.MethodGet, "/api/batches", "")
	ev.QueryStringParameters = map[string]string{"status": "VERIFIED"}
	resp, err = h.Handle(ctx, ev)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := parseBody[struct {
		Batches []domain.Batch `json:"batches"`
	}](t, resp.Body).Batches
	require.Len(t, list, 2)
}

func TestHandle_LedgerErrors(t *testing.T) {
	h := newTestHandler(t, &stubActions{})
	ctx := context.Background()

	resp, err := h.Handle(ctx, makeEvent(http.MethodPost, "/api/batches/BATCH-1678886400000/approve", `{"agentPrice":"Rs.80 / kg"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Please fill all fields, including agent price, before approving.", parseBody[errorResponse](t, resp.Body).Error)

	resp, err = h.Handle(ctx, makeEvent(http.MethodPatch, "/api/batches/BATCH-404", `{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = h.Handle(ctx, makeEvent(http.MethodPost, "/api/batches", `{"cropType":"Millet","color":"red"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandle_Products(t *testing.T) {
	h := newTestHandler(t, &stubActions{})
	ctx := context.Background()

	resp, err := h.Handle(ctx, makeEvent(http.MethodGet, "/api/products", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	products := parseBody[struct {
		Products []domain.Product `json:"products"`
	}](t, resp.Body).Products
	require.Len(t, products, 3)

	resp, err = h.Handle(ctx, makeEvent(http.MethodGet, "/api/products/PROD-TOM-001", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := parseBody[struct {
		Product domain.Product `json:"product"`
	}](t, resp.Body).Product
	require.Equal(t, "PROD-TOM-001", p.Details.ID)
	require.Len(t, p.History, 3)

	resp, err = h.Handle(ctx, makeEvent(http.MethodGet, "/api/products/PROD-NONE", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ---------------------------------------------------------------------------
// correlation IDs
// ---------------------------------------------------------------------------

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	h := newTestHandler(t, &stubActions{})

	event := makeEvent(http.MethodGet, "/healthz", "")
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers[CorrelationHeader])
}

func TestHandle_GeneratesCorrelationID(t *testing.T) {
	prev := newUUID
	newUUID = func() string { return "generated-id" }
	t.Cleanup(func() { newUUID = prev })

	h := newTestHandler(t, &stubActions{})
	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/healthz", ""))
	require.NoError(t, err)
	require.Equal(t, "generated-id", resp.Headers[CorrelationHeader])
}
