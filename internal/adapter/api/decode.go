package api

import (
	"fmt"

	"github.com/srgjo27/cinema_client/internal/core/domain"
	"github.com/srgjo27/cinema_client/internal/platform/httpclient"
)

// decodeOne refuses null payloads so callers never store zero values.
func decodeOne[T any](payload *httpclient.Payload, envelope httpclient.Envelope, op string) (*T, error) {
	var out T
	ok, err := payload.Decode(envelope, &out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrEmptyPayload)
	}
	return &out, nil
}
