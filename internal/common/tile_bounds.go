package common

import "fmt"

// TileBounds represents the min/max row and column bounds of a tile set
type TileBounds struct {
	MinCol int `json:"min_col"`
	MaxCol int `json:"max_col"`
	MinRow int `json:"min_row"`
	MaxRow int `json:"max_row"`
}

// Cols returns the number of columns in the bounds
func (tb TileBounds) Cols() int {
	return tb.MaxCol - tb.MinCol + 1
}

// Rows returns the number of rows in the bounds
func (tb TileBounds) Rows() int {
	return tb.MaxRow - tb.MinRow + 1
}

// Contains reports whether (col, row) lies inside the bounds
func (tb TileBounds) Contains(col, row int) bool {
	return col >= tb.MinCol && col <= tb.MaxCol && row >= tb.MinRow && row <= tb.MaxRow
}

// Tile represents the minimal interface needed for bounds calculation
type Tile interface {
	GetRow() int
	GetColumn() int
}

// CalculateTileBounds calculates the min/max row and column bounds of a tile set
func CalculateTileBounds[T Tile](tiles []T) (TileBounds, error) {
	if len(tiles) == 0 {
		return TileBounds{}, fmt.Errorf("no tiles provided")
	}

	first := tiles[0]
	bounds := TileBounds{
		MinCol: first.GetColumn(),
		MaxCol: first.GetColumn(),
		MinRow: first.GetRow(),
		MaxRow: first.GetRow(),
	}

	for _, tile := range tiles[1:] {
		bounds.MinCol = min(bounds.MinCol, tile.GetColumn())
		bounds.MaxCol = max(bounds.MaxCol, tile.GetColumn())
		bounds.MinRow = min(bounds.MinRow, tile.GetRow())
		bounds.MaxRow = max(bounds.MaxRow, tile.GetRow())
	}

	return bounds, nil
}
