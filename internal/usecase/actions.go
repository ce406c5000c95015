package usecase

import (
	"context"

	"agrichain/internal/domain"
)

type CropSuggestionInput struct {
	Location       string `json:"location" validate:"min=3"`
	SoilProperties string `json:"soilProperties" validate:"min=10"`
}

type cropSuggestionOutput struct {
	SuggestedCrops []string `json:"suggestedCrops"`
}

type DiseaseDiagnosisInput struct {
	PhotoDataURI string `json:"photoDataUri" validate:"required,imagedatauri"`
}

type DiseaseDiagnosis struct {
	Disease string `json:"disease"`
	Remedy  string `json:"remedy"`
}

type WarehouseInput struct {
	Location string `json:"location" validate:"min=3"`
}

type WarehouseStatus struct {
	WarehouseName string `json:"warehouseName"`
	Availability  string `json:"availability"`
	Suggestion    string `json:"suggestion,omitempty"`
}

type ForumInput struct {
	Message string `json:"message" validate:"min=5"`
}

type ForumReply struct {
	Response string `json:"response"`
}

type MarketPriceInput struct {
	CropName string `json:"cropName" validate:"min=3"`
}

type MarketPrediction struct {
	PredictedPriceRange string `json:"predictedPriceRange"`
	Trend               string `json:"trend"`
	Recommendation      string `json:"recommendation"`
}

type WeatherInput struct {
	Location string `json:"location" validate:"min=3"`
}

type WeatherForecast struct {
	Forecast       string `json:"forecast"`
	Temperature    string `json:"temperature"`
	Recommendation string `json:"recommendation"`
}

type CarbonCreditInput struct {
	CropTypes []string `json:"cropTypes" validate:"required,dive,notblank"`
}

type CarbonCreditInfo struct {
	CreditsEarned float64 `json:"creditsEarned"`
	Explanation   string  `json:"explanation"`
}

var (
	cropSuggestionFlow = newFlow[cropSuggestionOutput]("suggest_best_crops", cropSuggestionSchema)
	diseaseFlow        = newFlow[DiseaseDiagnosis]("detect_disease", diseaseDiagnosisSchema)
	warehouseFlow      = newFlow[WarehouseStatus]("check_warehouse_availability", warehouseStatusSchema)
	forumFlow          = newFlow[ForumReply]("forum_response", forumReplySchema)
	marketFlow         = newFlow[MarketPrediction]("predict_market_price", marketPredictionSchema)
	weatherFlow        = newFlow[WeatherForecast]("weather_forecast", weatherForecastSchema)
	carbonFlow         = newFlow[CarbonCreditInfo]("carbon_credit_info", carbonCreditSchema)
)

func (s *Service) SuggestCrops(ctx context.Context, in CropSuggestionInput) Result[[]string] {
	return perform(ctx, s, "getCropSuggestions", "An unexpected error occurred while fetching suggestions.", in,
		func(ctx context.Context, in CropSuggestionInput) ([]string, error) {
			out, err := cropSuggestionFlow.run(ctx, s.gen, s.logger, cropSuggestionFlow.prompt(renderCropSuggestionPrompt(in)))
			if err != nil {
				return nil, err
			}
			return out.SuggestedCrops, nil
		})
}

func (s *Service) DiagnoseDisease(ctx context.Context, in DiseaseDiagnosisInput) Result[DiseaseDiagnosis] {
	return perform(ctx, s, "getDiseaseDiagnosis", "An unexpected error occurred during diagnosis.", in,
		func(ctx context.Context, in DiseaseDiagnosisInput) (DiseaseDiagnosis, error) {
			photo, err := domain.ParseDataURI(in.PhotoDataURI)
			if err != nil {
				return DiseaseDiagnosis{}, err
			}
			return diseaseFlow.run(ctx, s.gen, s.logger, diseaseFlow.prompt(renderDiseaseDiagnosisPrompt(), photo))
		})
}

func (s *Service) CheckWarehouse(ctx context.Context, in WarehouseInput) Result[WarehouseStatus] {
	return perform(ctx, s, "checkWarehouseSpace", "An unexpected error occurred while checking availability.", in,
		func(ctx context.Context, in WarehouseInput) (WarehouseStatus, error) {
			return warehouseFlow.run(ctx, s.gen, s.logger, warehouseFlow.prompt(renderWarehousePrompt(in)))
		})
}

func (s *Service) ForumResponse(ctx context.Context, in ForumInput) Result[ForumReply] {
	return perform(ctx, s, "getForumResponse", "An unexpected error occurred while fetching the response.", in,
		func(ctx context.Context, in ForumInput) (ForumReply, error) {
			return forumFlow.run(ctx, s.gen, s.logger, forumFlow.prompt(renderForumPrompt(in)))
		})
}

func (s *Service) PredictMarketPrice(ctx context.Context, in MarketPriceInput) Result[MarketPrediction] {
	return perform(ctx, s, "getMarketPricePrediction", "An unexpected error occurred while fetching the prediction.", in,
		func(ctx context.Context, in MarketPriceInput) (MarketPrediction, error) {
			return marketFlow.run(ctx, s.gen, s.logger, marketFlow.prompt(renderMarketPricePrompt(in)))
		})
}

func (s *Service) WeatherForecast(ctx context.Context, in WeatherInput) Result[WeatherForecast] {
	return perform(ctx, s, "getWeatherForecast", "An unexpected error occurred while fetching the forecast.", in,
		func(ctx context.Context, in WeatherInput) (WeatherForecast, error) {
			return weatherFlow.run(ctx, s.gen, s.logger, weatherFlow.prompt(renderWeatherPrompt(in)))
		})
}

func (s *Service) CarbonCredits(ctx context.Context, in CarbonCreditInput) Result[CarbonCreditInfo] {
	return perform(ctx, s, "getCarbonCreditInfo", "An unexpected error occurred while fetching carbon credit info.", in,
		func(ctx context.Context, in CarbonCreditInput) (CarbonCreditInfo, error) {
			return carbonFlow.run(ctx, s.gen, s.logger, carbonFlow.prompt(renderCarbonCreditPrompt(in)))
		})
}
