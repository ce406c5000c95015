package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// tokenParameter is appended to the configured prefix to locate the model
// provider credential.
const tokenParameter = "/model-api-token"

// ssmAPI is the subset of *ssm.Client used here.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Getter reads one decrypted parameter value by name.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Client reads SecureString parameters from SSM Parameter Store.
type Client struct {
	api ssmAPI
}

func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{api: api}, nil
}

func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if c.api == nil {
		return "", errors.New("paramstore: client not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}

	withDecryption := true
	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, nil
}

// TokenParameterName returns "<prefix>/model-api-token".
func TokenParameterName(prefix string) string {
	return strings.TrimRight(strings.TrimSpace(prefix), "/") + tokenParameter
}

type tokenPayload struct {
	Token string `json:"token"`
}

// LoadAPIKey fetches the model API key stored as {"token": "..."} under
// prefix. It is called once at startup.
func LoadAPIKey(ctx context.Context, getter Getter, prefix string) (string, error) {
	if getter == nil {
		return "", errors.New("paramstore: getter must not be nil")
	}
	if strings.Trim(strings.TrimSpace(prefix), "/") == "" {
		return "", errors.New("paramstore: parameter prefix must not be empty")
	}

	raw, err := getter.GetParameter(ctx, TokenParameterName(prefix))
	if err != nil {
		return "", fmt.Errorf("paramstore: fetch api token: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("paramstore: unmarshal api token value as JSON: %w", err)
	}
	token := strings.TrimSpace(tp.Token)
	if token == "" {
		return "", errors.New("paramstore: api token is empty")
	}
	return token, nil
}
