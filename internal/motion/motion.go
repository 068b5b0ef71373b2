// Package motion implements the fixed column projection applied to
// motion-parameter tables: parse, validate required columns, project and
// rename, then rewrite as strict TSV.
package motion

// ColumnMapping maps one upstream motion-parameter column name to its
// canonical short output name.
type ColumnMapping struct {
	Source string
	Target string
}

// mapping is the projection applied to every motion table: exactly these
// twelve source columns are required, renamed and emitted in this order.
// The order is load-bearing; it defines the output column order.
var mapping = []ColumnMapping{
	{Source: "trans_x_mm", Target: "X"},
	{Source: "trans_y_mm", Target: "Y"},
	{Source: "trans_z_mm", Target: "Z"},
	{Source: "rot_x_degrees", Target: "RotX"},
	{Source: "rot_y_degrees", Target: "RotY"},
	{Source: "rot_z_degrees", Target: "RotZ"},
	{Source: "trans_x_mm_dt", Target: "XDt"},
	{Source: "trans_y_mm_dt", Target: "YDt"},
	{Source: "trans_z_mm_dt", Target: "ZDt"},
	{Source: "rot_x_degrees_dt", Target: "RotXDt"},
	{Source: "rot_y_degrees_dt", Target: "RotYDt"},
	{Source: "rot_z_degrees_dt", Target: "RotZDt"},
}

// Mapping returns the fixed source-to-target column mapping in output order.
func Mapping() []ColumnMapping {
	out := make([]ColumnMapping, len(mapping))
	copy(out, mapping)
	return out
}

// SourceColumns returns the twelve required upstream column names in mapping order.
func SourceColumns() []string {
	out := make([]string, len(mapping))
	for i, m := range mapping {
		out[i] = m.Source
	}
	return out
}

// TargetColumns returns the twelve canonical output names in mapping order.
func TargetColumns() []string {
	out := make([]string, len(mapping))
	for i, m := range mapping {
		out[i] = m.Target
	}
	return out
}
