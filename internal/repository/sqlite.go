package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"agrichain/internal/domain"
)

type batchModel struct {
	ID                  string `gorm:"column:id;primaryKey"`
	CropType            string `gorm:"column:crop_type"`
	Location            string `gorm:"column:location"`
	SoilProperties      string `gorm:"column:soil_properties"`
	Farmer              string `gorm:"column:farmer"`
	DateFarmed          string `gorm:"column:date_farmed;index"`
	Status              string `gorm:"column:status;index"`
	Quality             string `gorm:"column:quality"`
	Price               string `gorm:"column:price"`
	WarehouseConditions string `gorm:"column:warehouse_conditions"`
	Agent               string `gorm:"column:agent"`
	DateVerified        string `gorm:"column:date_verified"`
	TransactionHash     string `gorm:"column:transaction_hash"`
	QRCodeURL           string `gorm:"column:qr_code_url"`
}

func (batchModel) TableName() string { return "batches" }

type productModel struct {
	ID      string         `gorm:"column:id;primaryKey"`
	Name    string         `gorm:"column:name"`
	Image   string         `gorm:"column:image"`
	Price   string         `gorm:"column:price"`
	Quality string         `gorm:"column:quality"`
	Farmer  string         `gorm:"column:farmer"`
	Rating  float64        `gorm:"column:rating"`
	Reviews int            `gorm:"column:reviews"`
	History datatypes.JSON `gorm:"column:history;type:TEXT"`
}

func (productModel) TableName() string { return "products" }

// SQLiteStore is a file-backed ledger store.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// seeds it with the mock ledger when it holds no batches.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository: sqlite path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("repository: create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: open sqlite: %w", err)
	}
	return newSQLiteStore(ctx, db)
}

func newSQLiteStore(ctx context.Context, db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&batchModel{}, &productModel{}); err != nil {
		return nil, fmt.Errorf("repository: migrate sqlite: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	s := &SQLiteStore{db: db}

	var count int64
	if err := db.WithContext(ctx).Model(&batchModel{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("repository: count batches: %w", err)
	}
	if count == 0 {
		if err := Seed(ctx, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) ListBatches(ctx context.Context) ([]domain.Batch, error) {
	var rows []batchModel
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("repository: ListBatches: %w", err)
	}
	out := make([]domain.Batch, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *SQLiteStore) GetBatch(ctx context.Context, id string) (domain.Batch, error) {
	var row batchModel
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Batch{}, fmt.Errorf("repository: batch %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Batch{}, fmt.Errorf("repository: GetBatch: %w", err)
	}
	return row.toDomain(), nil
}

func (s *SQLiteStore) PutBatch(ctx context.Context, b domain.Batch) error {
	if b.ID == "" {
		return errors.New("repository: PutBatch: id is required")
	}
	row := batchFromDomain(b)
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("repository: PutBatch: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productModel
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("repository: ListProducts: %w", err)
	}
	out := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		p, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("repository: ListProducts: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *SQLiteStore) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var row productModel
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Product{}, fmt.Errorf("repository: product %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("repository: GetProduct: %w", err)
	}
	p, err := row.toDomain()
	if err != nil {
		return domain.Product{}, fmt.Errorf("repository: GetProduct: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) PutProduct(ctx context.Context, p domain.Product) error {
	if p.Details.ID == "" {
		return errors.New("repository: PutProduct: id is required")
	}
	history := p.History
	if history == nil {
		history = []domain.TimelineEvent{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("repository: PutProduct marshal history: %w", err)
	}
	d := p.Details
	row := productModel{
		ID:      d.ID,
		Name:    d.Name,
		Image:   d.Image,
		Price:   d.Price,
		Quality: d.Quality,
		Farmer:  d.Farmer,
		Rating:  d.Rating,
		Reviews: d.Reviews,
		History: datatypes.JSON(raw),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("repository: PutProduct: %w", err)
	}
	return nil
}

func batchFromDomain(b domain.Batch) batchModel {
	return batchModel{
		ID:                  b.ID,
		CropType:            b.CropType,
		Location:            b.Location,
		SoilProperties:      b.SoilProperties,
		Farmer:              b.Farmer,
		DateFarmed:          b.DateFarmed,
		Status:              string(b.Status),
		Quality:             b.Quality,
		Price:               b.Price,
		WarehouseConditions: b.WarehouseConditions,
		Agent:               b.Agent,
		DateVerified:        b.DateVerified,
		TransactionHash:     b.TransactionHash,
		QRCodeURL:           b.QRCodeURL,
	}
}

func (m batchModel) toDomain() domain.Batch {
	return domain.Batch{
		ID:                  m.ID,
		CropType:            m.CropType,
		Location:            m.Location,
		SoilProperties:      m.SoilProperties,
		Farmer:              m.Farmer,
		DateFarmed:          m.DateFarmed,
		Status:              domain.BatchStatus(m.Status),
		Quality:             m.Quality,
		Price:               m.Price,
		WarehouseConditions: m.WarehouseConditions,
		Agent:               m.Agent,
		DateVerified:        m.DateVerified,
		TransactionHash:     m.TransactionHash,
		QRCodeURL:           m.QRCodeURL,
	}
}

func (m productModel) toDomain() (domain.Product, error) {
	history := []domain.TimelineEvent{}
	if len(m.History) > 0 {
		if err := json.Unmarshal(m.History, &history); err != nil {
			return domain.Product{}, fmt.Errorf("decode history for %s: %w", m.ID, err)
		}
	}
	return domain.Product{
		Details: domain.ProductDetails{
			ID:      m.ID,
			Name:    m.Name,
			Image:   m.Image,
			Price:   m.Price,
			Quality: m.Quality,
			Farmer:  m.Farmer,
			Rating:  m.Rating,
			Reviews: m.Reviews,
		},
		History: history,
	}, nil
}
