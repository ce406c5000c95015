package domain

// Prompt is a fully rendered model request for a single flow.
type Prompt struct {
	// Name identifies the flow, e.g. "suggest_best_crops".
	Name string
	Text string
	// Media is attached after the text, in order.
	Media []Media
	// Schema is the JSON Schema the reply must satisfy.
	Schema []byte
}
