package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/vango-dev/addressform/pkg/addressform"
)

// Version is reported in the OpenAPI document.
var Version = "dev"

// fieldSchema describes one leaf from its rules.
func fieldSchema(id addressform.FieldID) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Title = id.Label()
	if id == addressform.Email {
		s = s.WithFormat("email")
	}
	minLen, maxLen := id.Bounds()
	if minLen > 0 {
		s = s.WithMinLength(int64(minLen))
	} else if id.Required() {
		s = s.WithMinLength(1)
	}
	if maxLen > 0 {
		s = s.WithMaxLength(int64(maxLen))
	}
	return s
}

// valuesSchema is the schema of addressform.Values.
func valuesSchema() *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	address := openapi3.NewObjectSchema()

	for _, id := range addressform.Fields() {
		target := root
		if id.InAddress() {
			target = address
		}
		target.WithProperty(id.String(), fieldSchema(id))
		if id.Required() {
			target.Required = append(target.Required, id.String())
		}
	}

	root.WithProperty(addressform.AddressGroup, address)
	root.Required = append(root.Required, addressform.AddressGroup)
	return root
}

// resultSchema is the schema of the JSON replies.
func resultSchema() *openapi3.Schema {
	errs := openapi3.NewObjectSchema()
	for _, id := range addressform.Fields() {
		errs.WithProperty(id.String(), openapi3.NewStringSchema())
	}
	return openapi3.NewObjectSchema().
		WithProperty("errors", errs).
		WithProperty("valid", openapi3.NewBoolSchema()).
		WithProperty("submitted", openapi3.NewBoolSchema()).
		WithProperty("values", valuesSchema()).
		WithProperty("error", openapi3.NewStringSchema())
}

func jsonResponse(description string) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription(description).
			WithJSONSchema(resultSchema()),
	}
}

// OpenAPI builds the document describing the form endpoints.
func OpenAPI() *openapi3.T {
	// Form posts name nested fields by dotted path, e.g. "address.area".
	body := &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithSchema(valuesSchema(), []string{"application/json", "application/x-www-form-urlencoded"}),
	}

	submit := &openapi3.Operation{
		OperationID: "submitAddress",
		Summary:     "Validate and submit the address form",
		RequestBody: body,
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusAccepted, jsonResponse("Submission accepted")),
			openapi3.WithStatus(http.StatusBadRequest, jsonResponse("Malformed request")),
			openapi3.WithStatus(http.StatusUnprocessableEntity, jsonResponse("Validation failed")),
			openapi3.WithStatus(http.StatusTooManyRequests, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("Rate limit exceeded"),
			}),
			openapi3.WithStatus(http.StatusBadGateway, jsonResponse("Delivery failed")),
		),
	}

	validate := &openapi3.Operation{
		OperationID: "validateAddress",
		Summary:     "Return the error map for the posted values",
		RequestBody: body,
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Current errors")),
			openapi3.WithStatus(http.StatusBadRequest, jsonResponse("Malformed request")),
		),
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Address form",
			Version: Version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/submit", &openapi3.PathItem{Post: submit}),
			openapi3.WithPath("/validate", &openapi3.PathItem{Post: validate}),
		),
	}
}

// buildOpenAPI validates and encodes the document once.
func buildOpenAPI(ctx context.Context) ([]byte, error) {
	doc := OpenAPI()
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi document: %w", err)
	}
	out, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("openapi document: %w", err)
	}
	return out, nil
}
