package employeeshandler

import (
	"encoding/json"
	"testing"

	"attendsuite/internal/domain/employee"
)

func TestSelfUpdateRequestCarriesOnlyAllowedFields(t *testing.T) {
	body := `{
		"address": "12 New Street",
		"emergencyContact": {"name": "Dana", "relation": "spouse", "phone": "555-0101"},
		"position": "CTO",
		"salary": 999999,
		"workSchedule": {"checkInTime": "00:00", "checkOutTime": "23:59"},
		"departmentId": "d1"
	}`

	var payload selfUpdateRequest
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	var in employee.SelfUpdateInput = payload.input()
	if in.Address == nil || *in.Address != "12 New Street" {
		t.Fatalf("expected address to be carried, got %+v", in.Address)
	}
	if in.Emergency == nil || in.Emergency.Name != "Dana" || in.Emergency.Phone != "555-0101" {
		t.Fatalf("expected emergency contact to be carried, got %+v", in.Emergency)
	}
	// The input type has no other fields, so position, salary, schedule
	// and department edits cannot survive the self-update path.
	if in.Empty() {
		t.Fatal("expected a non-empty self update")
	}
}

func TestSelfUpdateRequestPartialBody(t *testing.T) {
	var payload selfUpdateRequest
	if err := json.Unmarshal([]byte(`{"address": "7 Short Lane"}`), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	in := payload.input()
	if in.Emergency != nil {
		t.Fatalf("expected untouched emergency contact to stay nil, got %+v", in.Emergency)
	}
	if in.Address == nil || *in.Address != "7 Short Lane" {
		t.Fatalf("unexpected address: %+v", in.Address)
	}
}

func TestSelfUpdateRequestEmptyBodyIsNoOp(t *testing.T) {
	var payload selfUpdateRequest
	if err := json.Unmarshal([]byte(`{}`), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if in := payload.input(); !in.Empty() {
		t.Fatalf("expected empty input, got %+v", in)
	}
}
