package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/tagrs/movietagger/internal/http/response"
)

// EnvelopeTransformer wraps every JSON API body in response.Envelope so
// huma operations and plain chi handlers answer in the same shape.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return response.Envelope{
			V:       response.EnvelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}, nil
	}

	return response.Envelope{
		V:       response.EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
