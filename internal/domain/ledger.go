package domain

import "net/url"

// BatchStatus tracks a crop lot through the supply chain.
type BatchStatus string

const (
	BatchFarmed      BatchStatus = "FARMED"
	BatchInWarehouse BatchStatus = "IN_WAREHOUSE"
	BatchVerified    BatchStatus = "VERIFIED"
	BatchRetail      BatchStatus = "RETAIL"
)

// Valid reports whether s is one of the known statuses.
func (s BatchStatus) Valid() bool {
	switch s {
	case BatchFarmed, BatchInWarehouse, BatchVerified, BatchRetail:
		return true
	}
	return false
}

// Batch is a crop lot registered by a farmer and verified by an agent.
type Batch struct {
	ID                  string      `json:"id"`
	CropType            string      `json:"cropType"`
	Location            string      `json:"location"`
	SoilProperties      string      `json:"soilProperties"`
	Farmer              string      `json:"farmer"`
	DateFarmed          string      `json:"dateFarmed"`
	Status              BatchStatus `json:"status"`
	Quality             string      `json:"quality,omitempty"`
	Price               string      `json:"price,omitempty"`
	WarehouseConditions string      `json:"warehouseConditions,omitempty"`
	Agent               string      `json:"agent,omitempty"`
	DateVerified        string      `json:"dateVerified,omitempty"`
	TransactionHash     string      `json:"transactionHash"`
	QRCodeURL           string      `json:"qrCodeUrl"`
}

const qrCodeEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

// QRCodeURL returns the external QR image URL encoding a batch ID.
func QRCodeURL(batchID string) string {
	return qrCodeEndpoint + "?size=300x300&data=" + url.QueryEscape(batchID)
}

// TimelineIcon names the actor that produced a provenance event.
type TimelineIcon string

const (
	IconFarmer   TimelineIcon = "Farmer"
	IconAgent    TimelineIcon = "Agent"
	IconConsumer TimelineIcon = "Consumer"
)

// TimelineEvent is one entry in a product's provenance history.
type TimelineEvent struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Timestamp   string            `json:"timestamp"`
	Icon        TimelineIcon      `json:"icon"`
	Color       string            `json:"color"`
	Data        map[string]string `json:"data"`
	Hash        string            `json:"hash"`
}

// ProductDetails is a marketplace listing.
type ProductDetails struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Price   string  `json:"price"`
	Quality string  `json:"quality"`
	Farmer  string  `json:"farmer"`
	Rating  float64 `json:"rating"`
	Reviews int     `json:"reviews"`
}

// Product pairs a listing with its provenance history.
type Product struct {
	Details ProductDetails  `json:"details"`
	History []TimelineEvent `json:"history"`
}
