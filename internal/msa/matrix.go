// Package msa turns equal-length gapped rows into a character matrix and a
// majority-vote consensus.
package msa

import "encoding/json"

// Matrix is a rectangular grid: one row per sequence, one column per
// alignment position.
type Matrix [][]byte

// BuildMatrix copies aligned rows into a Matrix. Rows are assumed to be of
// equal length (the backend contract).
func BuildMatrix(aligned []string) Matrix {
	m := make(Matrix, len(aligned))
	for i, row := range aligned {
		m[i] = []byte(row)
	}
	return m
}

// FromStrings builds a Matrix from rows of single-character cells.
func FromStrings(cells [][]string) Matrix {
	m := make(Matrix, len(cells))
	for i, row := range cells {
		m[i] = make([]byte, 0, len(row))
		for _, c := range row {
			if c != "" {
				m[i] = append(m[i], c[0])
			}
		}
	}
	return m
}

// Rows returns the number of sequences.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the alignment length (0 for an empty matrix).
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Rectangular reports whether every row has the same length.
func (m Matrix) Rectangular() bool {
	for _, row := range m {
		if len(row) != m.Cols() {
			return false
		}
	}
	return true
}

// Column returns a copy of column j.
func (m Matrix) Column(j int) []byte {
	col := make([]byte, len(m))
	for i, row := range m {
		col[i] = row[j]
	}
	return col
}

// MarshalJSON renders rows as strings so the matrix stays readable on the wire.
func (m Matrix) MarshalJSON() ([]byte, error) {
	rows := make([]string, len(m))
	for i, r := range m {
		rows[i] = string(r)
	}
	return json.Marshal(rows)
}

func (m *Matrix) UnmarshalJSON(b []byte) error {
	var rows []string
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	*m = BuildMatrix(rows)
	return nil
}

// Consensus takes a majority vote per column over every row, counting the
// gap symbol like any other character. Ties go to the value seen first when
// scanning rows in order.
func Consensus(m Matrix) string {
	cols := m.Cols()
	if cols == 0 {
		return ""
	}
	out := make([]byte, cols)
	var counts [256]int
	order := make([]byte, 0, 8)
	for j := 0; j < cols; j++ {
		counts = [256]int{}
		order = order[:0]
		for _, row := range m {
			c := row[j]
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
		best := order[0]
		for _, c := range order[1:] {
			if counts[c] > counts[best] {
				best = c
			}
		}
		out[j] = best
	}
	return string(out)
}
