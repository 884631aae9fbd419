package entity

import (
	"encoding/base64"
	"errors"
	"strings"
)

type SignatureKind string

const (
	SignatureKindConsent SignatureKind = "consent"
	SignatureKindIntake  SignatureKind = "intake"
)

var ErrEmptySignature = errors.New("signature image is empty")

// SignatureArtifact is a base64 image captured by the form. It is consumed
// once to produce an upload.
type SignatureArtifact struct {
	Kind      SignatureKind
	ImageData string
	FileName  string
}

// Decode strips an optional data-URL header ("data:image/png;base64,") and
// returns the raw image bytes.
func (a SignatureArtifact) Decode() ([]byte, error) {
	raw := a.ImageData
	if i := strings.Index(raw, ","); i != -1 {
		raw = raw[i+1:]
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptySignature
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	return data, nil
}
