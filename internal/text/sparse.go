package text

import "fmt"

// Sparse is a compressed sparse row matrix of document-term weights
type Sparse struct {
	Rows   int
	Cols   int
	RowPtr []int // len Rows+1; row i spans [RowPtr[i], RowPtr[i+1])
	ColIdx []int // ascending within each row
	Data   []float64
}

// Dims returns the matrix shape
func (m *Sparse) Dims() (int, int) {
	return m.Rows, m.Cols
}

// NNZ returns the number of stored entries
func (m *Sparse) NNZ() int {
	return len(m.Data)
}

// Row returns the column indices and values stored for row i
func (m *Sparse) Row(i int) ([]int, []float64) {
	start, end := m.RowPtr[i], m.RowPtr[i+1]
	return m.ColIdx[start:end], m.Data[start:end]
}

// At returns the value at (i, j)
func (m *Sparse) At(i, j int) float64 {
	cols, vals := m.Row(i)
	for k, c := range cols {
		if c == j {
			return vals[k]
		}
		if c > j {
			break
		}
	}
	return 0
}

// Dot returns the inner product of row i with the dense vector w
func (m *Sparse) Dot(i int, w []float64) float64 {
	cols, vals := m.Row(i)
	var sum float64
	for k, c := range cols {
		sum += vals[k] * w[c]
	}
	return sum
}

// ColumnMax returns the largest value in each column, counting implicit zeros
func (m *Sparse) ColumnMax() []float64 {
	out := make([]float64, m.Cols)
	seen := make([]int, m.Cols)
	for k, c := range m.ColIdx {
		if seen[c] == 0 || m.Data[k] > out[c] {
			out[c] = m.Data[k]
		}
		seen[c]++
	}
	for c := range out {
		if seen[c] < m.Rows && out[c] < 0 {
			out[c] = 0
		}
	}
	return out
}

// String summarizes the matrix the way an interactive session would show it
func (m *Sparse) String() string {
	return fmt.Sprintf("<%dx%d sparse matrix with %d stored elements in CSR format>", m.Rows, m.Cols, m.NNZ())
}

// sparseBuilder appends rows in order
type sparseBuilder struct {
	m *Sparse
}

func newSparseBuilder(rows, cols int) *sparseBuilder {
	return &sparseBuilder{
		m: &Sparse{
			Rows:   rows,
			Cols:   cols,
			RowPtr: make([]int, 1, rows+1),
		},
	}
}

func (b *sparseBuilder) addRow(cols []int, vals []float64) {
	b.m.ColIdx = append(b.m.ColIdx, cols...)
	b.m.Data = append(b.m.Data, vals...)
	b.m.RowPtr = append(b.m.RowPtr, len(b.m.Data))
}

func (b *sparseBuilder) build() *Sparse {
	return b.m
}
