package motion

// Transformer reads a motion table, projects it to the canonical columns
// and writes the result as strict TSV.
type Transformer struct{}

func NewTransformer() *Transformer { return &Transformer{} }

// Transform converts the table at inputPath into a projected table at
// outputPath. It reports the number of data rows and output columns on
// success. The input file is never modified and a failed transform leaves
// no output behind.
func (t *Transformer) Transform(inputPath, outputPath string) (rows, cols int, err error) {
	table, err := ReadTable(inputPath)
	if err != nil {
		return 0, 0, err
	}
	projected, err := table.Project()
	if err != nil {
		return 0, 0, err
	}
	if err := projected.WriteTSV(outputPath); err != nil {
		return 0, 0, err
	}
	return len(projected.Rows), len(projected.Header), nil
}
