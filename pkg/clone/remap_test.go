package clone

import "testing"

func TestRemapStorePutBatchAndGet(t *testing.T) {
	store := NewRemapStore([]EntityType{EntityMenuItem, EntitySubmenuItem})

	if err := store.PutBatch(EntityMenuItem, []int64{10, 11, 12}, []int64{50, 51, 52}); err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	tests := []struct {
		original int64
		want     int64
	}{
		{10, 50},
		{11, 51},
		{12, 52},
	}
	for _, tt := range tests {
		got, ok := store.Get(EntityMenuItem, tt.original)
		if !ok {
			t.Fatalf("Get(%d) missing", tt.original)
		}
		if got != tt.want {
			t.Errorf("Get(%d) = %d, want %d", tt.original, got, tt.want)
		}
	}

	if _, ok := store.Get(EntityMenuItem, 999); ok {
		t.Error("Get returned a mapping for an unknown source id")
	}
	if store.Len(EntityMenuItem) != 3 {
		t.Errorf("Len = %d, want 3", store.Len(EntityMenuItem))
	}
}

func TestRemapStoreRejectsLengthMismatch(t *testing.T) {
	store := NewRemapStore([]EntityType{EntityMenuItem})

	err := store.PutBatch(EntityMenuItem, []int64{1, 2, 3}, []int64{7, 8})
	if err == nil {
		t.Fatal("expected error for mismatched batch lengths, got nil")
	}
}

func TestRemapStoreRejectsUnknownType(t *testing.T) {
	store := NewRemapStore([]EntityType{EntityMenuItem})

	if err := store.PutBatch(EntityBanner, []int64{1}, []int64{2}); err == nil {
		t.Fatal("expected error for unregistered type, got nil")
	}
	if _, ok := store.Get(EntityBanner, 1); ok {
		t.Error("Get returned a mapping for an unregistered type")
	}
}

func TestRemapStoreEmptyBatch(t *testing.T) {
	store := NewRemapStore([]EntityType{EntityMenuItem})

	if err := store.PutBatch(EntityMenuItem, nil, nil); err != nil {
		t.Fatalf("empty PutBatch failed: %v", err)
	}
	if store.Len(EntityMenuItem) != 0 {
		t.Errorf("Len = %d, want 0", store.Len(EntityMenuItem))
	}
}
