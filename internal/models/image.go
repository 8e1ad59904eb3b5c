package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrNoImage = errors.New("no image")

// InlineImage is binary image data with its MIME type, as sent to and received
// from the synthesis backend.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// DataURI renders the image as a base64 data URI.
func (i *InlineImage) DataURI() string {
	if i == nil || len(i.Data) == 0 {
		return ""
	}
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ParseDataURI decodes a base64 data URI. A missing MIME type defaults to image/png.
func ParseDataURI(uri string) (*InlineImage, error) {
	if uri == "" {
		return nil, ErrNoImage
	}
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URI has no payload")
	}
	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, fmt.Errorf("data URI is not base64 encoded")
	}
	if mime == "" {
		mime = "image/png"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI: %w", err)
	}
	return &InlineImage{MIMEType: mime, Data: data}, nil
}
