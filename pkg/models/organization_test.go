package models

import "testing"

func TestCloneableKind(t *testing.T) {
	tests := []struct {
		kind string
		want bool
	}{
		{OrgKindStandard, true},
		{OrgKindAgency, true},
		{OrgKindTemplate, true},
		{OrgKindPlatform, false},
	}
	for _, tt := range tests {
		if got := CloneableKind(tt.kind); got != tt.want {
			t.Errorf("CloneableKind(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestCanCloneFrom(t *testing.T) {
	tests := []struct {
		kind string
		want bool
	}{
		{OrgKindStandard, true},
		{OrgKindAgency, true},
		{OrgKindTemplate, false},
		{OrgKindPlatform, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := CanCloneFrom(tt.kind); got != tt.want {
			t.Errorf("CanCloneFrom(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
