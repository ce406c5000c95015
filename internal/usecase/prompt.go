package usecase

import (
	"fmt"
	"strings"
)

func renderCropSuggestionPrompt(in CropSuggestionInput) string {
	return strings.Join([]string{
		"You are an expert agricultural advisor. Based on the farmer's location and soil properties, suggest the best crops to plant.",
		"",
		"Location: " + in.Location,
		"Soil Properties: " + in.SoilProperties,
		"",
		"Suggest the best crops in a list:",
	}, "\n")
}

func renderDiseaseDiagnosisPrompt() string {
	return strings.Join([]string{
		"You are an expert plant pathologist. Analyze the provided image of a crop leaf.",
		"",
		"Based on visual characteristics, identify potential diseases. " +
			"For this prototype, if the leaf appears yellow or has yellow spots, diagnose it as 'Possible Fungal Infection' and suggest a remedy involving neem oil. " +
			"If the leaf looks green and healthy, classify it as 'Healthy' and provide a positive care tip.",
		"",
		"Image:",
	}, "\n")
}

func renderWarehousePrompt(in WarehouseInput) string {
	return strings.Join([]string{
		"You are a warehouse logistics coordinator for a large agricultural network in Tamil Nadu.",
		"Your task is to check warehouse availability based on the provided location.",
		"",
		"Follow these rules exactly:",
		`- If the location is "Erode", you must set the warehouseName to "Erode Central Warehouse", set availability to "Full", and set suggestion to "Coimbatore Storage".`,
		`- If the location is "Thanjavur", you must set the warehouseName to "Thanjavur Delta Warehouse" and set availability to "Limited Space".`,
		`- For ANY OTHER location, you must create a plausible warehouse name by appending "AgriStorage" to the location (e.g., "Madurai" becomes "Madurai AgriStorage"), and you must set its availability to "Available".`,
		"",
		"The user has provided the following location:",
		"Location: " + in.Location,
	}, "\n")
}

func renderForumPrompt(in ForumInput) string {
	return strings.Join([]string{
		"You are an expert agricultural officer bot in a community forum for farmers in Tamil Nadu.",
		"Your role is to provide helpful, encouraging, and concise advice.",
		"",
		"A farmer has asked the following question:",
		fmt.Sprintf("%q", in.Message),
		"",
		"Based on the question, provide a helpful and supportive response.",
		"Keep the tone friendly and professional.",
	}, "\n")
}

func renderMarketPricePrompt(in MarketPriceInput) string {
	return strings.Join([]string{
		"You are an expert agricultural market analyst for Tamil Nadu.",
		"Your task is to predict the market price for a given crop.",
		"",
		"For the given crop, generate a realistic but randomized predicted price range in Rupees per quintal suitable for the Tamil Nadu market.",
		`Also, provide a randomized market trend (e.g., "Stable", "Likely to Increase", "Likely to Decrease") and a brief, corresponding recommendation for the farmer.`,
		"Do not use the same values every time; introduce variability for a more dynamic prototype.",
		"",
		"Crop Name: " + in.CropName,
	}, "\n")
}

func renderWeatherPrompt(in WeatherInput) string {
	return strings.Join([]string{
		"You are a helpful agricultural weather assistant for Tamil Nadu.",
		"Provide a realistic, randomized 3-day weather forecast for the given location.",
		"The forecast should include a brief summary, a temperature range in Celsius, and a simple, actionable tip for a farmer.",
		"",
		`Example for "Madurai":`,
		`- forecast: "Mainly sunny, with a possibility of late afternoon thunderstorms."`,
		`- temperature: "30°C - 37°C"`,
		`- recommendation: "Consider irrigating early in the morning to reduce evaporation."`,
		"",
		"Do not use the same data every time; introduce variability.",
		"",
		"Location: " + in.Location,
	}, "\n")
}

func renderCarbonCreditPrompt(in CarbonCreditInput) string {
	lines := []string{
		"You are an agricultural sustainability advisor.",
		"Your task is to provide a simplified, motivational estimate of carbon credits for a farmer in Tamil Nadu.",
		"",
		"Rules:",
		"- For each crop in the list, assign a random number of credits between 5 and 15.",
		"- Sum the credits for all crops to get the total 'creditsEarned'.",
		fmt.Sprintf("- The 'explanation' should be positive and encouraging, briefly mentioning how sustainable practices with crops like %q contribute to earning these credits and helping the environment.",
			strings.Join(in.CropTypes, ", ")),
		"- If no crops are provided, return 0 credits and a message encouraging the farmer to log their batches to start earning.",
		"",
		"Crops provided by the farmer:",
	}
	if len(in.CropTypes) == 0 {
		lines = append(lines, "No crops listed.")
	}
	for _, c := range in.CropTypes {
		lines = append(lines, "- "+c)
	}
	return strings.Join(lines, "\n")
}

func renderVoicePrompt(in VoiceInput, language string) string {
	return strings.Join([]string{
		"You are an expert agricultural advisor for farmers in Tamil Nadu.",
		fmt.Sprintf("Your role is to provide helpful, encouraging, and concise advice in the %s language.", language),
		"",
		"A farmer has asked the following question:",
		fmt.Sprintf("%q", in.Query),
		"",
		fmt.Sprintf("Based on the question, provide a helpful and supportive response IN %s.", strings.ToUpper(language)),
	}, "\n")
}
