package msa

import (
	"encoding/json"
	"testing"
)

func TestBuildMatrixShape(t *testing.T) {
	m := BuildMatrix([]string{"AB-D", "ABCD", "A-CD"})
	if m.Rows() != 3 || m.Cols() != 4 || !m.Rectangular() {
		t.Fatalf("unexpected shape rows=%d cols=%d", m.Rows(), m.Cols())
	}
	if got := string(m.Column(1)); got != "BB-" {
		t.Fatalf("column 1 = %q", got)
	}
}

func TestConsensus(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want string
	}{
		{"empty", nil, ""},
		{"single row", []string{"EVQL"}, "EVQL"},
		{"majority", []string{"AC-", "AD-", "GDK"}, "AD-"},
		{"gap wins when most common", []string{"--", "--", "C-"}, "--"},
		{"three-way tie goes to first row", []string{"A-", "--", "C-"}, "A-"},
		{"tie goes to first seen", []string{"AC", "CA"}, "AC"},
		{"tie after scan order", []string{"W", "Y", "Y", "W"}, "W"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Consensus(BuildMatrix(tt.rows)); got != tt.want {
				t.Fatalf("Consensus=%q want %q", got, tt.want)
			}
		})
	}
}

func TestMatrixJSON(t *testing.T) {
	m := BuildMatrix([]string{"EV", "E-"})
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["EV","E-"]` {
		t.Fatalf("json=%s", b)
	}
	var back Matrix
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Rows() != 2 || string(back[1]) != "E-" {
		t.Fatalf("round trip lost data: %q", back)
	}
}

func TestFromStrings(t *testing.T) {
	m := FromStrings([][]string{{"E", "V"}, {"E", "V"}})
	if m.Cols() != 2 || string(m[1]) != "EV" {
		t.Fatalf("FromStrings=%q", m)
	}
}
