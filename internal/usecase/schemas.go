package usecase

const cropSuggestionSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"suggestedCrops": {
			"type": "array",
			"items": {"type": "string"},
			"description": "A list of suggested crops based on the location and soil properties."
		}
	},
	"required": ["suggestedCrops"]
}`

const diseaseDiagnosisSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"disease": {"type": "string", "description": "The name of the detected disease. If none, \"Healthy\"."},
		"remedy": {"type": "string", "description": "The suggested remedy for the detected disease. If healthy, a general plant care tip."}
	},
	"required": ["disease", "remedy"]
}`

const warehouseStatusSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"warehouseName": {"type": "string", "description": "The name of the checked warehouse."},
		"availability": {"type": "string", "description": "The availability status, e.g. \"Available\", \"Limited Space\", \"Full\"."},
		"suggestion": {"type": "string", "description": "A suggested alternative if the warehouse is full."}
	},
	"required": ["warehouseName", "availability"]
}`

const forumReplySchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"response": {"type": "string", "description": "The generated response from the agricultural officer bot."}
	},
	"required": ["response"]
}`

const marketPredictionSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"predictedPriceRange": {"type": "string", "description": "The predicted price range, e.g. \"₹7,800 - ₹8,500 / quintal\"."},
		"trend": {"type": "string", "description": "The market trend, e.g. \"Stable\", \"Likely to Increase\", \"Likely to Decrease\"."},
		"recommendation": {"type": "string", "description": "A brief recommendation for the farmer."}
	},
	"required": ["predictedPriceRange", "trend", "recommendation"]
}`

const weatherForecastSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"forecast": {"type": "string", "description": "A brief summary of the weather for the next 3 days."},
		"temperature": {"type": "string", "description": "The predicted temperature range, e.g. \"28°C - 34°C\"."},
		"recommendation": {"type": "string", "description": "A short, actionable recommendation for a farmer based on the forecast."}
	},
	"required": ["forecast", "temperature", "recommendation"]
}`

const carbonCreditSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"creditsEarned": {"type": "number", "description": "The estimated number of carbon credits earned."},
		"explanation": {"type": "string", "description": "A brief, encouraging explanation of how the credits were earned."}
	},
	"required": ["creditsEarned", "explanation"]
}`

const voiceReplySchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"response": {"type": "string"}
	},
	"required": ["response"]
}`
