package repository

import (
	"context"
	"fmt"

	"agrichain/internal/domain"
)

// Writer is implemented by every store that can be seeded.
type Writer interface {
	PutBatch(ctx context.Context, b domain.Batch) error
	PutProduct(ctx context.Context, p domain.Product) error
}

// Seed writes the mock batches and products into w.
func Seed(ctx context.Context, w Writer) error {
	for _, b := range SeedBatches() {
		if err := w.PutBatch(ctx, b); err != nil {
			return fmt.Errorf("repository: seed batch %s: %w", b.ID, err)
		}
	}
	for _, p := range SeedProducts() {
		if err := w.PutProduct(ctx, p); err != nil {
			return fmt.Errorf("repository: seed product %s: %w", p.Details.ID, err)
		}
	}
	return nil
}

// SeedBatches returns the batches awaiting agent review in the mock ledger.
func SeedBatches() []domain.Batch {
	return []domain.Batch{
		{
			ID:              "BATCH-1678886400000",
			CropType:        "Turmeric",
			Location:        "Erode, Tamil Nadu",
			SoilProperties:  "Red Loam, pH 6.5",
			Farmer:          "Tamil Farms",
			DateFarmed:      "2023-03-15",
			Status:          domain.BatchInWarehouse,
			Price:           "Rs.81 / kg",
			TransactionHash: "0x1a2b3c4d5e6f7g8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f",
			QRCodeURL:       domain.QRCodeURL("BATCH-1678886400000"),
		},
		{
			ID:              "BATCH-1678972800000",
			CropType:        "Rice",
			Location:        "Thanjavur, Tamil Nadu",
			SoilProperties:  "Alluvial Soil, pH 6.8",
			Farmer:          "Cauvery Delta Farmers",
			DateFarmed:      "2023-03-16",
			Status:          domain.BatchInWarehouse,
			Price:           "Rs.52 / kg",
			TransactionHash: "0x4d5e6f7g8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f",
			QRCodeURL:       domain.QRCodeURL("BATCH-1678972800000"),
		},
		{
			ID:                  "BATCH-1678999900000",
			CropType:            "Sugarcane",
			Location:            "Cuddalore, Tamil Nadu",
			SoilProperties:      "Clay Loam, pH 7.0",
			Farmer:              "Coromandel Sugars",
			DateFarmed:          "2023-03-18",
			Status:              domain.BatchVerified,
			Quality:             "Grade A",
			Price:               "Rs.40 / kg",
			WarehouseConditions: "Temp: 20°C, Humidity: 65%",
			Agent:               "Simulated Agent Rajan",
			DateVerified:        "2023-03-20",
			TransactionHash:     "0x7g8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f1a2b3c4d5e6f",
			QRCodeURL:           domain.QRCodeURL("BATCH-1678999900000"),
		},
	}
}

type seedProduct struct {
	details domain.ProductDetails

	// crop is the description subject, e.g. "Tomatoes were".
	crop                                 string
	batchID, origin, soil                string
	farmerPrice, agent, agentPrice, cost string
	dates                                [3]string
	hashes                               [3]string
}

// SeedProducts returns the marketplace listings with their provenance history.
func SeedProducts() []domain.Product {
	seeds := []seedProduct{
		{
			details: domain.ProductDetails{
				ID:      "PROD-TOM-001",
				Name:    "Vine-Ripened Tomatoes",
				Image:   "https://images.pexels.com/photos/1327838/pexels-photo-1327838.jpeg?auto=compress&cs=tinysrgb&w=600",
				Price:   "Rs.39 / kg",
				Quality: "Grade A",
				Farmer:  "Madurai AgriStorage",
				Rating:  4.7,
				Reviews: 152,
			},
			crop:        "Tomatoes were",
			batchID:     "BATCH-TOM-001",
			origin:      "Madurai, Tamil Nadu",
			soil:        "Red Loam, pH 6.5",
			farmerPrice: "Rs.32 / kg",
			agent:       "Rajan",
			agentPrice:  "Rs.35 / kg",
			cost:        "Rs.2 / kg",
			dates:       [3]string{"2023-03-15", "2023-03-20", "2023-03-21"},
			hashes: [3]string{
				"0x1a2b3c4d5e6f7g8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f",
				"0x7g8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f1a2b3c4d5e6f",
				"0x3c4d5e6f7g8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f1a2b",
			},
		},
		{
			details: domain.ProductDetails{
				ID:      "PROD-POT-002",
				Name:    "Ooty Potatoes",
				Image:   "https://images.pexels.com/photos/144248/potatoes-vegetables-erdfrucht-bio-144248.jpeg?auto=compress&cs=tinysrgb&w=600",
				Price:   "Rs.30 / kg",
				Quality: "Grade B",
				Farmer:  "Nilgiri Growers",
				Rating:  4.6,
				Reviews: 110,
			},
			crop:        "Potatoes were",
			batchID:     "BATCH-POT-002",
			origin:      "Ooty, Tamil Nadu",
			soil:        "Laterite, pH 5.5",
			farmerPrice: "Rs.25 / kg",
			agent:       "Priya",
			agentPrice:  "Rs.28 / kg",
			cost:        "Rs.1 / kg",
			dates:       [3]string{"2023-04-01", "2023-04-05", "2023-04-06"},
			hashes: [3]string{
				"0x2b3c4d5e6f7g8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f1a",
				"0x8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f1a2b3c4d5e6f7g",
				"0x4d5e6f7g8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f1a2b3c",
			},
		},
		{
			details: domain.ProductDetails{
				ID:      "PROD-CAU-003",
				Name:    "Fresh Cauliflower",
				Image:   "https://images.unsplash.com/photo-1566842600175-97dca489844f?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
				Price:   "Rs.26 / piece",
				Quality: "Grade A",
				Farmer:  "Ooty Farms",
				Rating:  4.8,
				Reviews: 98,
			},
			crop:        "Cauliflower was",
			batchID:     "BATCH-CAU-003",
			origin:      "Ooty, Tamil Nadu",
			soil:        "Alluvial, pH 6.2",
			farmerPrice: "Rs.22 / piece",
			agent:       "Kumar",
			agentPrice:  "Rs.24 / piece",
			cost:        "Rs.1 / piece",
			dates:       [3]string{"2023-05-10", "2023-05-12", "2023-05-13"},
			hashes: [3]string{
				"0x3c4d5e6f7g8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f1a2b",
				"0x9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f1a2b3c4d5e6f7g8h",
				"0x5e6f7g8h9i0j1k2l3m4n5o6p7q8r9s0t1u2v3w4x5y6z7a8b9c0d1e2f1a2b3c4d",
			},
		},
	}

	out := make([]domain.Product, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, domain.Product{
			Details: s.details,
			History: []domain.TimelineEvent{
				{
					ID:          "1",
					Title:       "Farmed & Harvested",
					Description: fmt.Sprintf("%s harvested by %s.", s.crop, s.details.Farmer),
					Timestamp:   s.dates[0],
					Icon:        domain.IconFarmer,
					Color:       "bg-primary",
					Data: map[string]string{
						"Batch ID":          s.batchID,
						"Origin":            s.origin,
						"Soil Info":         s.soil,
						"Price from Farmer": s.farmerPrice,
					},
					Hash: s.hashes[0],
				},
				{
					ID:          "2",
					Title:       "Agent Verified",
					Description: fmt.Sprintf("Batch quality and pricing confirmed by Agent %s.", s.agent),
					Timestamp:   s.dates[1],
					Icon:        domain.IconAgent,
					Color:       "bg-accent",
					Data: map[string]string{
						"Quality":             s.details.Quality,
						"Transportation Cost": s.cost,
						"Price from Agent":    s.agentPrice,
					},
					Hash: s.hashes[1],
				},
				{
					ID:          "3",
					Title:       "Ready for Consumer",
					Description: "Product available for purchase in the marketplace.",
					Timestamp:   s.dates[2],
					Icon:        domain.IconConsumer,
					Color:       "bg-consumer",
					Data: map[string]string{
						"Final Consumer Price": s.details.Price,
						"Status":               "Available",
					},
					Hash: s.hashes[2],
				},
			},
		})
	}
	return out
}
