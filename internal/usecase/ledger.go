package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"agrichain/internal/domain"
)

const (
	defaultFarmer = "Simulated Tamil Farmer"
	defaultAgent  = "Simulated Agent Rajan"
	dateLayout    = "2006-01-02"

	approveMissingFields = "Please fill all fields, including agent price, before approving."
	batchAlreadyVerified = "Batch is already verified."
)

// BatchStore persists ledger batches.
type BatchStore interface {
	ListBatches(ctx context.Context) ([]domain.Batch, error)
	GetBatch(ctx context.Context, id string) (domain.Batch, error)
	PutBatch(ctx context.Context, b domain.Batch) error
}

// ProductStore serves marketplace products.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

type NewBatchInput struct {
	CropType       string `json:"cropType" validate:"min=2"`
	Location       string `json:"location" validate:"min=3"`
	SoilProperties string `json:"soilProperties" validate:"min=10"`
	Farmer         string `json:"farmer,omitempty"`
}

// BatchUpdate holds the agent-editable fields; nil leaves a field unchanged.
type BatchUpdate struct {
	Quality             *string `json:"quality,omitempty"`
	WarehouseConditions *string `json:"warehouseConditions,omitempty"`
}

type ApproveInput struct {
	Quality             string `json:"quality,omitempty"`
	WarehouseConditions string `json:"warehouseConditions,omitempty"`
	AgentPrice          string `json:"agentPrice"`
	Agent               string `json:"agent,omitempty"`
}

// LedgerService simulates the farm-to-consumer ledger on top of mock stores.
type LedgerService struct {
	batches  BatchStore
	products ProductStore
	logger   *slog.Logger
}

func NewLedgerService(b BatchStore, p ProductStore, logger *slog.Logger) (*LedgerService, error) {
	if b == nil {
		return nil, errors.New("usecase: batch store must not be nil")
	}
	if p == nil {
		return nil, errors.New("usecase: product store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{batches: b, products: p, logger: logger}, nil
}

func (l *LedgerService) CreateBatch(ctx context.Context, in NewBatchInput) Result[domain.Batch] {
	if err := validateInput(in); err != nil {
		return fail[domain.Batch](invalidInput(err))
	}
	ts := now()
	id, err := l.nextBatchID(ctx, ts)
	if err != nil {
		return fail[domain.Batch](l.storeError(ctx, "create_batch", err))
	}
	farmer := strings.TrimSpace(in.Farmer)
	if farmer == "" {
		farmer = defaultFarmer
	}
	b := domain.Batch{
		ID:              id,
		CropType:        strings.TrimSpace(in.CropType),
		Location:        strings.TrimSpace(in.Location),
		SoilProperties:  strings.TrimSpace(in.SoilProperties),
		Farmer:          farmer,
		DateFarmed:      ts.Format(dateLayout),
		Status:          domain.BatchFarmed,
		TransactionHash: newTransactionHash(),
		QRCodeURL:       domain.QRCodeURL(id),
	}
	if err := l.batches.PutBatch(ctx, b); err != nil {
		return fail[domain.Batch](l.storeError(ctx, "create_batch", err))
	}
	l.logger.InfoContext(ctx, "batch created", "batch_id", b.ID, "crop", b.CropType)
	return succeed(b)
}

// nextBatchID derives the ID from the clock, stepping forward on collision.
func (l *LedgerService) nextBatchID(ctx context.Context, ts time.Time) (string, error) {
	ms := ts.UnixMilli()
	for {
		id := fmt.Sprintf("BATCH-%d", ms)
		_, err := l.batches.GetBatch(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
		ms++
	}
}

func (l *LedgerService) UpdateBatch(ctx context.Context, id string, in BatchUpdate) Result[domain.Batch] {
	b, uerr := l.loadBatch(ctx, id)
	if uerr != nil {
		return fail[domain.Batch](uerr)
	}
	if b.Status == domain.BatchVerified {
		return fail[domain.Batch](&Error{Code: ErrorInvalidInput, Reason: "batch_verified", Message: batchAlreadyVerified})
	}
	if in.Quality != nil {
		b.Quality = strings.TrimSpace(*in.Quality)
	}
	if in.WarehouseConditions != nil {
		b.WarehouseConditions = strings.TrimSpace(*in.WarehouseConditions)
	}
	if err := l.batches.PutBatch(ctx, b); err != nil {
		return fail[domain.Batch](l.storeError(ctx, "update_batch", err))
	}
	return succeed(b)
}

func (l *LedgerService) ApproveBatch(ctx context.Context, id string, in ApproveInput) Result[domain.Batch] {
	b, uerr := l.loadBatch(ctx, id)
	if uerr != nil {
		return fail[domain.Batch](uerr)
	}
	if b.Status == domain.BatchVerified {
		return fail[domain.Batch](&Error{Code: ErrorInvalidInput, Reason: "batch_verified", Message: batchAlreadyVerified})
	}
	if q := strings.TrimSpace(in.Quality); q != "" {
		b.Quality = q
	}
	if wc := strings.TrimSpace(in.WarehouseConditions); wc != "" {
		b.WarehouseConditions = wc
	}
	price := strings.TrimSpace(in.AgentPrice)
	if b.Quality == "" || b.WarehouseConditions == "" || price == "" {
		return fail[domain.Batch](&Error{Code: ErrorInvalidInput, Reason: "approve_missing_fields", Message: approveMissingFields})
	}
	agent := strings.TrimSpace(in.Agent)
	if agent == "" {
		agent = defaultAgent
	}

	b.Status = domain.BatchVerified
	b.Price = price
	b.Agent = agent
	b.DateVerified = now().Format(dateLayout)
	b.TransactionHash = newTransactionHash()
	if err := l.batches.PutBatch(ctx, b); err != nil {
		return fail[domain.Batch](l.storeError(ctx, "approve_batch", err))
	}
	l.logger.InfoContext(ctx, "batch approved", "batch_id", b.ID, "agent", b.Agent)
	return succeed(b)
}

// ListBatches returns batches newest first, optionally filtered by status.
func (l *LedgerService) ListBatches(ctx context.Context, status string) Result[[]domain.Batch] {
	filter := domain.BatchStatus(strings.ToUpper(strings.TrimSpace(status)))
	if filter != "" && !filter.Valid() {
		return fail[[]domain.Batch](&Error{
			Code:    ErrorInvalidInput,
			Reason:  "unknown_status",
			Message: fmt.Sprintf("Invalid input: unknown batch status %q.", status),
		})
	}
	all, err := l.batches.ListBatches(ctx)
	if err != nil {
		return fail[[]domain.Batch](l.storeError(ctx, "list_batches", err))
	}
	out := make([]domain.Batch, 0, len(all))
	for _, b := range all {
		if filter == "" || b.Status == filter {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DateFarmed != out[j].DateFarmed {
			return out[i].DateFarmed > out[j].DateFarmed
		}
		return out[i].ID > out[j].ID
	})
	return succeed(out)
}

func (l *LedgerService) ListProducts(ctx context.Context) Result[[]domain.Product] {
	all, err := l.products.ListProducts(ctx)
	if err != nil {
		return fail[[]domain.Product](l.storeError(ctx, "list_products", err))
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Details.ID < all[j].Details.ID })
	return succeed(all)
}

func (l *LedgerService) GetProduct(ctx context.Context, id string) Result[domain.Product] {
	id = strings.TrimSpace(id)
	if id == "" {
		return fail[domain.Product](&Error{Code: ErrorInvalidInput, Reason: "empty_product_id", Message: "Invalid input: product id is required."})
	}
	p, err := l.products.GetProduct(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return fail[domain.Product](&Error{Code: ErrorNotFound, Reason: "product_not_found", Message: fmt.Sprintf("Product %s not found.", id), Err: err})
	}
	if err != nil {
		return fail[domain.Product](l.storeError(ctx, "get_product", err))
	}
	return succeed(p)
}

func (l *LedgerService) loadBatch(ctx context.Context, id string) (domain.Batch, *Error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Batch{}, &Error{Code: ErrorInvalidInput, Reason: "empty_batch_id", Message: "Invalid input: batch id is required."}
	}
	b, err := l.batches.GetBatch(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Batch{}, &Error{Code: ErrorNotFound, Reason: "batch_not_found", Message: fmt.Sprintf("Batch %s not found.", id), Err: err}
	}
	if err != nil {
		return domain.Batch{}, l.storeError(ctx, "get_batch", err)
	}
	return b, nil
}

func (l *LedgerService) storeError(ctx context.Context, op string, err error) *Error {
	uerr := newError(ErrorInternal, op+"_store_error", err)
	uerr.Message = "An unexpected error occurred while updating the ledger."
	l.logger.ErrorContext(ctx, "ledger store failed", "op", op, "err", err)
	return uerr
}

var now = func() time.Time {
	return time.Now().UTC()
}

// newTransactionHash returns a simulated "0x" + 64 hex character hash.
var newTransactionHash = func() string {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return "0x" + hex.EncodeToString(b[:])
}
