package motion

import (
	"reflect"
	"testing"
)

func TestMapping(t *testing.T) {
	t.Run("source columns in canonical order", func(t *testing.T) {
		want := []string{
			"trans_x_mm", "trans_y_mm", "trans_z_mm",
			"rot_x_degrees", "rot_y_degrees", "rot_z_degrees",
			"trans_x_mm_dt", "trans_y_mm_dt", "trans_z_mm_dt",
			"rot_x_degrees_dt", "rot_y_degrees_dt", "rot_z_degrees_dt",
		}
		if got := SourceColumns(); !reflect.DeepEqual(got, want) {
			t.Errorf("SourceColumns() = %v, want %v", got, want)
		}
	})

	t.Run("target columns in canonical order", func(t *testing.T) {
		want := []string{
			"X", "Y", "Z", "RotX", "RotY", "RotZ",
			"XDt", "YDt", "ZDt", "RotXDt", "RotYDt", "RotZDt",
		}
		if got := TargetColumns(); !reflect.DeepEqual(got, want) {
			t.Errorf("TargetColumns() = %v, want %v", got, want)
		}
	})

	t.Run("mapping returns a copy", func(t *testing.T) {
		m := Mapping()
		if len(m) != 12 {
			t.Fatalf("expected 12 mapping entries, got %d", len(m))
		}
		m[0] = ColumnMapping{Source: "mutated", Target: "mutated"}
		if Mapping()[0].Source != "trans_x_mm" {
			t.Error("mutating the returned slice should not change the mapping")
		}
	})
}
