package utils

import (
	"errors"
	"fmt"
	"testing"
)

type sample struct {
	Name    string `json:"name" validate:"notblank"`
	Comment string `json:"comment"`
}

func TestValidateStructNamesJSONFields(t *testing.T) {
	err := ValidateStruct(sample{Name: "   "})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verr *ValidationError
	errors.As(err, &verr)
	if len(verr.Fields) != 1 || verr.Fields[0] != "name" {
		t.Fatalf("unexpected fields: %v", verr.Fields)
	}
}

func TestValidateStructAcceptsOptionalBlank(t *testing.T) {
	if err := ValidateStruct(sample{Name: "ok"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAggregationErrorUnwraps(t *testing.T) {
	cause := errors.New("missing vote")
	err := fmt.Errorf("rank: %w", NewAggregationError("committee incomplete", cause))
	if !IsAggregation(err) {
		t.Fatalf("expected aggregation error")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if IsValidation(err) {
		t.Fatalf("aggregation error must not look like validation")
	}
}
