package matcher

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/textmatch/internal/tensor"
)

// ErrCellNotReady is returned when a grid cell is read before it has been
// computed, which only happens if cells are visited out of row-major order.
var ErrCellNotReady = errors.New("matcher: grid cell read before it was computed")

// sentinel fills every cell until it is computed, so an unchecked read of a
// pending cell poisons everything downstream with NaN.
var sentinel = math.NaN()

// grid is the Match-SRNN hidden-state table. Cell (i, j) holds a
// [1, hidden] vector and, once computed, the [4, hidden] gate weights that
// produced it.
type grid struct {
	rows, cols int
	hidden     int
	cells      []*tensor.Tensor
	gates      []*tensor.Tensor
	ready      []bool
	zero       *tensor.Tensor
}

func newGrid(rows, cols, hidden int, backend tensor.Backend) *grid {
	g := &grid{
		rows:   rows,
		cols:   cols,
		hidden: hidden,
		cells:  make([]*tensor.Tensor, rows*cols),
		gates:  make([]*tensor.Tensor, rows*cols),
		ready:  make([]bool, rows*cols),
		zero:   tensor.Zeros(tensor.Shape{1, hidden}, backend),
	}
	for k := range g.cells {
		g.cells[k] = tensor.Full(tensor.Shape{1, hidden}, sentinel, backend)
	}
	return g
}

// at returns cell (i, j). Coordinates outside the grid are the zero vector;
// a cell inside the grid that has not been computed is an error.
func (g *grid) at(i, j int) (*tensor.Tensor, error) {
	if i < 0 || j < 0 {
		return g.zero, nil
	}
	if i >= g.rows || j >= g.cols {
		return nil, fmt.Errorf("matcher: cell (%d, %d) outside %dx%d grid", i, j, g.rows, g.cols)
	}
	k := i*g.cols + j
	if !g.ready[k] {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrCellNotReady, i, j)
	}
	return g.cells[k], nil
}

// predecessors returns the (i-1, j), (i, j-1) and (i-1, j-1) cells.
func (g *grid) predecessors(i, j int) ([3]*tensor.Tensor, error) {
	var pred [3]*tensor.Tensor
	coords := [3][2]int{{i - 1, j}, {i, j - 1}, {i - 1, j - 1}}
	for n, c := range coords {
		cell, err := g.at(c[0], c[1])
		if err != nil {
			return pred, fmt.Errorf("predecessor of (%d, %d): %w", i, j, err)
		}
		pred[n] = cell
	}
	return pred, nil
}

func (g *grid) set(i, j int, h, gates *tensor.Tensor) {
	k := i*g.cols + j
	g.cells[k] = h
	g.gates[k] = gates
	g.ready[k] = true
}

// last returns the bottom-right cell.
func (g *grid) last() (*tensor.Tensor, error) {
	return g.at(g.rows-1, g.cols-1)
}

// cellOrder visits every (i, j) of a rows×cols grid, stopping at the first
// error.
type cellOrder func(rows, cols int, visit func(i, j int) error) error

// rowMajor is i outer, j inner: every predecessor of a cell is visited
// before the cell itself.
func rowMajor(rows, cols int, visit func(i, j int) error) error {
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if err := visit(i, j); err != nil {
				return err
			}
		}
	}
	return nil
}
