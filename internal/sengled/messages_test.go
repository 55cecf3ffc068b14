package sengled

import (
	"errors"
	"testing"
)

// =============================================================================
// Status payload parsing
// =============================================================================

func TestParseStatus(t *testing.T) {
	payload := []byte(`[
		{"dn":"B0:CE:18:10:A4:BB","type":"switch","value":"1","time":1755993600000},
		{"dn":"B0:CE:18:10:A4:BB","type":"brightness","value":"75"}
	]`)

	attrs, err := ParseStatus(payload)
	if err != nil {
		t.Fatalf("ParseStatus error: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}

	if attrs[0].Type != AttrSwitch || attrs[0].Value != "1" {
		t.Errorf("first attribute = %+v", attrs[0])
	}
	if attrs[0].Time != 1755993600000 {
		t.Errorf("expected timestamp preserved, got %d", attrs[0].Time)
	}
	if attrs[1].Type != AttrBrightness || attrs[1].Value != "75" {
		t.Errorf("second attribute = %+v", attrs[1])
	}
	if attrs[1].Time != 0 {
		t.Errorf("expected zero timestamp when omitted, got %d", attrs[1].Time)
	}
}

func TestParseStatus_DropsTypelessEntries(t *testing.T) {
	payload := []byte(`[
		{"dn":"B0:CE:18:10:A4:BB","value":"1"},
		{"type":"switch","value":"0"}
	]`)

	attrs, err := ParseStatus(payload)
	if err != nil {
		t.Fatalf("ParseStatus error: %v", err)
	}
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(attrs))
	}
	if attrs[0].Type != AttrSwitch {
		t.Errorf("kept attribute = %+v", attrs[0])
	}
}

func TestParseStatus_EmptyArray(t *testing.T) {
	attrs, err := ParseStatus([]byte(`[]`))
	if err != nil {
		t.Fatalf("ParseStatus error: %v", err)
	}
	if len(attrs) != 0 {
		t.Errorf("expected no attributes, got %d", len(attrs))
	}
}

func TestParseStatus_Malformed(t *testing.T) {
	tests := []string{
		``,
		`not json`,
		`{"type":"switch"}`, // object, not array
		`[{"type":1}]`,      // wrong value type
	}

	for _, payload := range tests {
		if _, err := ParseStatus([]byte(payload)); !errors.Is(err, ErrStatusFormat) {
			t.Errorf("ParseStatus(%q) error = %v, want ErrStatusFormat", payload, err)
		}
	}
}
