package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Media is binary content with its MIME type, e.g. a leaf photo or a speech clip.
type Media struct {
	MIMEType string
	Data     []byte
}

// DataURI renders the media as a base64 data URI.
func (m Media) DataURI() string {
	return "data:" + m.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}

// ParseDataURI decodes a "data:<mime>;base64,<payload>" string.
func ParseDataURI(uri string) (Media, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return Media{}, errors.New("domain: data uri must start with \"data:\"")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Media{}, errors.New("domain: data uri missing payload separator")
	}
	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return Media{}, errors.New("domain: data uri must be base64 encoded")
	}
	mime = strings.TrimSpace(mime)
	if mime == "" {
		return Media{}, errors.New("domain: data uri missing mime type")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Media{}, fmt.Errorf("domain: decode data uri payload: %w", err)
	}
	return Media{MIMEType: mime, Data: data}, nil
}
