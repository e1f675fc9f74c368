package resolve

import (
	"reflect"
	"testing"
)

func TestParseFeatures(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"empty", nil, nil},
		{"separators only", []string{" , ,, ", "\t", ""}, nil},
		{"mixed separators", []string{"a, b  c"}, []string{"a", "b", "c"}},
		{"multiple strings", []string{"a", "b,c", " d "}, []string{"a", "b", "c", "d"}},
		{"duplicates collapse", []string{"a,a", "a b"}, []string{"a", "b"}},
		{"case preserved", []string{"Feat,feat"}, []string{"Feat", "feat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := ParseFeatures(tt.raw, false)
			got := fs.Names()
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Names() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeatureSetNamesIsCopy(t *testing.T) {
	fs := ParseFeatures([]string{"a"}, false)
	fs.Names()[0] = "mutated"
	if fs.Names()[0] != "a" {
		t.Error("Names() exposed internal storage")
	}
}

func TestFeatureSetArgs(t *testing.T) {
	fs := ParseFeatures([]string{"x y"}, true)
	want := []string{"--features", "x,y", "--all-features"}
	if got := fs.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}
