package console

// Resolve applies a relative column move d to (col, row) on a grid width
// columns wide. Moves wrap across rows in both directions, so a move of
// -width from column 0 lands on column 0 one row up.
func Resolve(col, row, d, width int) (newCol, newRow int) {
	abs := col + d
	newCol = abs % width
	newRow = row + abs/width
	if newCol < 0 {
		newCol += width
		newRow--
	}
	return newCol, newRow
}

// moveCursor shifts the terminal cursor by d characters of line content
func (c *Console) moveCursor(d int) {
	if d == 0 {
		return
	}
	col, row := Resolve(c.driver.CursorColumn(), c.driver.CursorRow(), d, c.driver.BufferWidth())
	c.driver.SetCursorPosition(col, row)
}
