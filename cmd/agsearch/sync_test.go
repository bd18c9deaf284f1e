package main

import (
	"reflect"
	"testing"
)

func TestDiffDocuments(t *testing.T) {
	tests := []struct {
		name    string
		current []string
		indexed []string
		want    syncDiff
	}{
		{
			name:    "no changes",
			current: []string{"a.md", "b.md"},
			indexed: []string{"a.md", "b.md"},
			want:    syncDiff{Unchanged: []string{"a.md", "b.md"}},
		},
		{
			name:    "additions only",
			current: []string{"a.md", "b.md", "c.md"},
			indexed: []string{"a.md"},
			want: syncDiff{
				ToAdd:     []string{"b.md", "c.md"},
				Unchanged: []string{"a.md"},
			},
		},
		{
			name:    "removals only",
			current: []string{"a.md"},
			indexed: []string{"a.md", "old.md"},
			want: syncDiff{
				ToRemove:  []string{"old.md"},
				Unchanged: []string{"a.md"},
			},
		},
		{
			name:    "mixed",
			current: []string{"keep.md", "new.md"},
			indexed: []string{"keep.md", "gone.md"},
			want: syncDiff{
				ToAdd:     []string{"new.md"},
				ToRemove:  []string{"gone.md"},
				Unchanged: []string{"keep.md"},
			},
		},
		{
			name:    "first sync into empty record",
			current: []string{"a.md"},
			indexed: nil,
			want:    syncDiff{ToAdd: []string{"a.md"}},
		},
		{
			name:    "folder emptied",
			current: nil,
			indexed: []string{"a.md"},
			want:    syncDiff{ToRemove: []string{"a.md"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffDocuments(tt.current, tt.indexed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("diffDocuments() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDiffDocuments_ResultsSorted(t *testing.T) {
	got := diffDocuments(
		[]string{"z.md", "a.md", "m.md"},
		[]string{"z.md"},
	)
	wantAdd := []string{"a.md", "m.md"}
	if !reflect.DeepEqual(got.ToAdd, wantAdd) {
		t.Fatalf("ToAdd = %v, want %v", got.ToAdd, wantAdd)
	}
}
