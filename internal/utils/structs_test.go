package utils

import (
	"testing"
)

type update struct {
	Name    *string `db:"name"`
	Court   *string `db:"court"`
	Skipped *string `db:"-"`
	NoTag   *string
}

func TestOptionalFieldMapEmpty(t *testing.T) {
	fields := OptionalFieldMap(&update{})
	if len(fields) != 0 {
		t.Errorf("expected no fields, got %v", fields)
	}
}

func TestOptionalFieldMapPartial(t *testing.T) {
	fields := OptionalFieldMap(&update{
		Name:    StringPtr("Asha Devi"),
		Skipped: StringPtr("ignored"),
		NoTag:   StringPtr("ignored"),
	})

	if len(fields) != 1 {
		t.Fatalf("expected one field, got %v", fields)
	}
	if fields["name"] != "Asha Devi" {
		t.Errorf("name = %v, want Asha Devi", fields["name"])
	}
	if _, ok := fields["court"]; ok {
		t.Error("nil field court should be absent")
	}
}

func TestStructTagValuesSkipsUntagged(t *testing.T) {
	columns := StructTagValues(update{})
	if len(columns) != 2 || columns[0] != "name" || columns[1] != "court" {
		t.Errorf("unexpected columns: %v", columns)
	}
}
