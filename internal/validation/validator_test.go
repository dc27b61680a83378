// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type lookupRequest struct {
	UserID string  `json:"user_id" validate:"required,userid"`
	ItemID string  `json:"item_id" validate:"required,itemid"`
	Limit  int     `json:"limit" validate:"min=1,max=50"`
	Sort   string  `json:"sort" validate:"omitempty,oneof=score item_id"`
	Price  float64 `json:"price" validate:"gte=0"`
	Note   string  `validate:"max=5"`
}

func validLookup() lookupRequest {
	return lookupRequest{UserID: "u-1", ItemID: "sku:42", Limit: 10}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(*lookupRequest)
		wantField string
		wantTag   string
	}{
		{"valid", func(*lookupRequest) {}, "", ""},
		{"valid sort", func(r *lookupRequest) { r.Sort = "item_id" }, "", ""},
		{"missing user", func(r *lookupRequest) { r.UserID = "" }, "user_id", "required"},
		{"item with space", func(r *lookupRequest) { r.ItemID = "red shoe" }, "item_id", "itemid"},
		{"item with control char", func(r *lookupRequest) { r.ItemID = "a\x00b" }, "item_id", "itemid"},
		{"item too long", func(r *lookupRequest) { r.ItemID = strings.Repeat("x", MaxIDLength+1) }, "item_id", "itemid"},
		{"limit zero", func(r *lookupRequest) { r.Limit = 0 }, "limit", "min"},
		{"limit too large", func(r *lookupRequest) { r.Limit = 51 }, "limit", "max"},
		{"bad sort", func(r *lookupRequest) { r.Sort = "price" }, "sort", "oneof"},
		{"negative price", func(r *lookupRequest) { r.Price = -1 }, "price", "gte"},
		{"untagged field", func(r *lookupRequest) { r.Note = "toolong" }, "Note", "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := validLookup()
			tt.modify(&req)

			verr := ValidateStruct(&req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestIsValidID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want bool
	}{
		{"abc", true},
		{"SKU-001/blue", true},
		{"ünïcode", true},
		{"", false},
		{"with space", false},
		{"tab\there", false},
		{"new\nline", false},
		{strings.Repeat("a", MaxIDLength), true},
		{strings.Repeat("a", MaxIDLength+1), false},
	}
	for _, tt := range tests {
		if got := IsValidID(tt.id); got != tt.want {
			t.Errorf("IsValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	req := validLookup()
	req.Limit = 99
	apiErr := ValidateStruct(&req).ToAPIError()

	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "limit must be at most 50" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "limit" || apiErr.Details["value"] != 99 {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	req := lookupRequest{Limit: 0}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation errors")
	}
	apiErr := verr.ToAPIError()

	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details[fields] = %v, want 3 entries", apiErr.Details["fields"])
	}
	for _, want := range []string{"user_id is required", "item_id is required", "limit must be at least 1"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("Message %q missing %q", apiErr.Message, want)
		}
	}
	if verr.Error() != apiErr.Message {
		t.Errorf("Error() = %q, want %q", verr.Error(), apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	t.Parallel()

	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Message != "Validation failed" {
		t.Errorf("ToAPIError() = %+v", apiErr)
	}
}
