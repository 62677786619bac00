package models

import (
	"encoding/json"
	"testing"
)

func TestMoneyJSONRoundsToCents(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`"12.345"`), &m); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if m.String() != "12.35" {
		t.Fatalf("expected 12.35, got %s", m.String())
	}
	if err := json.Unmarshal([]byte(`7`), &m); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"7.00"` {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestParseMoneyRejectsGarbage(t *testing.T) {
	if _, err := ParseMoney("ten"); err == nil {
		t.Fatalf("expected parse error")
	}
}
