package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"agrichain/internal/domain"
)

const (
	pkPrefixBatch   = "BATCH#"
	pkPrefixProduct = "PRODUCT#"
	skMeta          = "META"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Client stores the ledger in a single DynamoDB table keyed by PK/SK.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func batchPK(id string) string {
	return pkPrefixBatch + id
}

func productPK(id string) string {
	return pkPrefixProduct + id
}

func (c *Client) key(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: skMeta},
	}
}

// ListBatches scans every batch record.
func (c *Client) ListBatches(ctx context.Context) ([]domain.Batch, error) {
	items, err := c.scanPrefix(ctx, pkPrefixBatch)
	if err != nil {
		return nil, fmt.Errorf("repository: ListBatches: %w", err)
	}
	out := make([]domain.Batch, 0, len(items))
	for _, item := range items {
		b, err := itemToBatch(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListBatches unmarshal: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *Client) GetBatch(ctx context.Context, id string) (domain.Batch, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.tableName),
		Key:            c.key(batchPK(id)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Batch{}, fmt.Errorf("repository: GetBatch get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Batch{}, fmt.Errorf("repository: batch %q: %w", id, domain.ErrNotFound)
	}
	b, err := itemToBatch(out.Item)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("repository: GetBatch unmarshal: %w", err)
	}
	return b, nil
}

func (c *Client) PutBatch(ctx context.Context, b domain.Batch) error {
	if b.ID == "" {
		return errors.New("repository: PutBatch: id is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      batchItem(b),
	})
	if err != nil {
		return fmt.Errorf("repository: PutBatch: %w", err)
	}
	return nil
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	items, err := c.scanPrefix(ctx, pkPrefixProduct)
	if err != nil {
		return nil, fmt.Errorf("repository: ListProducts: %w", err)
	}
	out := make([]domain.Product, 0, len(items))
	for _, item := range items {
		p, err := itemToProduct(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListProducts unmarshal: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.key(productPK(id)),
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("repository: GetProduct get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Product{}, fmt.Errorf("repository: product %q: %w", id, domain.ErrNotFound)
	}
	p, err := itemToProduct(out.Item)
	if err != nil {
		return domain.Product{}, fmt.Errorf("repository: GetProduct unmarshal: %w", err)
	}
	return p, nil
}

func (c *Client) PutProduct(ctx context.Context, p domain.Product) error {
	if p.Details.ID == "" {
		return errors.New("repository: PutProduct: id is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      productItem(p),
	})
	if err != nil {
		return fmt.Errorf("repository: PutProduct: %w", err)
	}
	return nil
}

// scanPrefix pages through the table collecting META items whose PK starts with prefix.
func (c *Client) scanPrefix(ctx context.Context, prefix string) ([]map[string]types.AttributeValue, error) {
	var (
		items []map[string]types.AttributeValue
		start map[string]types.AttributeValue
	)
	for {
		out, err := c.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(c.tableName),
			FilterExpression: aws.String("begins_with(PK, :prefix) AND SK = :sk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":prefix": &types.AttributeValueMemberS{Value: prefix},
				":sk":     &types.AttributeValueMemberS{Value: skMeta},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		start = out.LastEvaluatedKey
	}
}

func batchItem(b domain.Batch) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":              &types.AttributeValueMemberS{Value: batchPK(b.ID)},
		"SK":              &types.AttributeValueMemberS{Value: skMeta},
		"id":              &types.AttributeValueMemberS{Value: b.ID},
		"cropType":        &types.AttributeValueMemberS{Value: b.CropType},
		"location":        &types.AttributeValueMemberS{Value: b.Location},
		"soilProperties":  &types.AttributeValueMemberS{Value: b.SoilProperties},
		"farmer":          &types.AttributeValueMemberS{Value: b.Farmer},
		"dateFarmed":      &types.AttributeValueMemberS{Value: b.DateFarmed},
		"status":          &types.AttributeValueMemberS{Value: string(b.Status)},
		"transactionHash": &types.AttributeValueMemberS{Value: b.TransactionHash},
		"qrCodeUrl":       &types.AttributeValueMemberS{Value: b.QRCodeURL},
	}
	optional := map[string]string{
		"quality":             b.Quality,
		"price":               b.Price,
		"warehouseConditions": b.WarehouseConditions,
		"agent":               b.Agent,
		"dateVerified":        b.DateVerified,
	}
	for k, v := range optional {
		if v != "" {
			item[k] = &types.AttributeValueMemberS{Value: v}
		}
	}
	return item
}

func itemToBatch(item map[string]types.AttributeValue) (domain.Batch, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Batch{}, err
	}
	status, err := strAttr(item, "status")
	if err != nil {
		return domain.Batch{}, err
	}
	return domain.Batch{
		ID:                  id,
		CropType:            optStrAttr(item, "cropType"),
		Location:            optStrAttr(item, "location"),
		SoilProperties:      optStrAttr(item, "soilProperties"),
		Farmer:              optStrAttr(item, "farmer"),
		DateFarmed:          optStrAttr(item, "dateFarmed"),
		Status:              domain.BatchStatus(status),
		Quality:             optStrAttr(item, "quality"),
		Price:               optStrAttr(item, "price"),
		WarehouseConditions: optStrAttr(item, "warehouseConditions"),
		Agent:               optStrAttr(item, "agent"),
		DateVerified:        optStrAttr(item, "dateVerified"),
		TransactionHash:     optStrAttr(item, "transactionHash"),
		QRCodeURL:           optStrAttr(item, "qrCodeUrl"),
	}, nil
}

func productItem(p domain.Product) map[string]types.AttributeValue {
	d := p.Details
	history := make([]types.AttributeValue, 0, len(p.History))
	for _, ev := range p.History {
		data := make(map[string]types.AttributeValue, len(ev.Data))
		for k, v := range ev.Data {
			data[k] = &types.AttributeValueMemberS{Value: v}
		}
		history = append(history, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"id":          &types.AttributeValueMemberS{Value: ev.ID},
			"title":       &types.AttributeValueMemberS{Value: ev.Title},
			"description": &types.AttributeValueMemberS{Value: ev.Description},
			"timestamp":   &types.AttributeValueMemberS{Value: ev.Timestamp},
			"icon":        &types.AttributeValueMemberS{Value: string(ev.Icon)},
			"color":       &types.AttributeValueMemberS{Value: ev.Color},
			"hash":        &types.AttributeValueMemberS{Value: ev.Hash},
			"data":        &types.AttributeValueMemberM{Value: data},
		}})
	}
	return map[string]types.AttributeValue{
		"PK":      &types.AttributeValueMemberS{Value: productPK(d.ID)},
		"SK":      &types.AttributeValueMemberS{Value: skMeta},
		"id":      &types.AttributeValueMemberS{Value: d.ID},
		"name":    &types.AttributeValueMemberS{Value: d.Name},
		"image":   &types.AttributeValueMemberS{Value: d.Image},
		"price":   &types.AttributeValueMemberS{Value: d.Price},
		"quality": &types.AttributeValueMemberS{Value: d.Quality},
		"farmer":  &types.AttributeValueMemberS{Value: d.Farmer},
		"rating":  &types.AttributeValueMemberN{Value: strconv.FormatFloat(d.Rating, 'f', -1, 64)},
		"reviews": &types.AttributeValueMemberN{Value: strconv.Itoa(d.Reviews)},
		"history": &types.AttributeValueMemberL{Value: history},
	}
}

func itemToProduct(item map[string]types.AttributeValue) (domain.Product, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Product{}, err
	}
	rating, err := floatAttr(item, "rating")
	if err != nil {
		return domain.Product{}, err
	}
	reviews, err := intAttr(item, "reviews")
	if err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		Details: domain.ProductDetails{
			ID:      id,
			Name:    optStrAttr(item, "name"),
			Image:   optStrAttr(item, "image"),
			Price:   optStrAttr(item, "price"),
			Quality: optStrAttr(item, "quality"),
			Farmer:  optStrAttr(item, "farmer"),
			Rating:  rating,
			Reviews: reviews,
		},
		History: []domain.TimelineEvent{},
	}
	list, ok := item["history"].(*types.AttributeValueMemberL)
	if !ok {
		return p, nil
	}
	for i, raw := range list.Value {
		m, ok := raw.(*types.AttributeValueMemberM)
		if !ok {
			return domain.Product{}, fmt.Errorf("repository: history[%d] is not a map", i)
		}
		ev := domain.TimelineEvent{
			ID:          optStrAttr(m.Value, "id"),
			Title:       optStrAttr(m.Value, "title"),
			Description: optStrAttr(m.Value, "description"),
			Timestamp:   optStrAttr(m.Value, "timestamp"),
			Icon:        domain.TimelineIcon(optStrAttr(m.Value, "icon")),
			Color:       optStrAttr(m.Value, "color"),
			Hash:        optStrAttr(m.Value, "hash"),
			Data:        map[string]string{},
		}
		if data, ok := m.Value["data"].(*types.AttributeValueMemberM); ok {
			for k := range data.Value {
				ev.Data[k] = optStrAttr(data.Value, k)
			}
		}
		p.History = append(p.History, ev)
	}
	return p, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func optStrAttr(item map[string]types.AttributeValue, key string) string {
	s, _ := strAttr(item, key) // allow empty
	return s
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

func floatAttr(item map[string]types.AttributeValue, key string) (float64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
