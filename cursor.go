package ecdb

// Cursor iterates a Dataset's Views row by row, skipping holes that have
// not yet been defragmented away. Its shape (Next/Reset, current-row
// state) follows the teacher's own cursor: advance-by-default, explicit
// re-initialization.
type Cursor struct {
	dataset   *Dataset
	viewIndex int
	rowIndex  int
	started   bool
}

// NewCursor returns a Cursor over ds, positioned before the first row.
func NewCursor(ds *Dataset) *Cursor {
	return &Cursor{dataset: ds, rowIndex: -1}
}

// Next advances to the next valid row, returning false once exhausted.
func (c *Cursor) Next() bool {
	c.started = true
	for c.viewIndex < len(c.dataset.Views) {
		view := c.dataset.Views[c.viewIndex]
		c.rowIndex++
		for c.rowIndex < view.Count {
			if view.IsValidRow(c.rowIndex) {
				return true
			}
			c.rowIndex++
		}
		c.viewIndex++
		c.rowIndex = -1
	}
	return false
}

// Reset returns the cursor to its pre-iteration state.
func (c *Cursor) Reset() {
	c.viewIndex = 0
	c.rowIndex = -1
	c.started = false
}

// View returns the View the cursor is currently positioned in.
func (c *Cursor) View() *View {
	return c.dataset.Views[c.viewIndex]
}

// RowInView returns the cursor's current row index within View().
func (c *Cursor) RowInView() int {
	return c.rowIndex
}

// Entity returns the entity handle at the cursor's current row.
func (c *Cursor) Entity() Entity {
	return c.View().Entity(c.rowIndex)
}

// TotalMatched returns the number of valid rows across every view,
// without disturbing the cursor's position.
func (c *Cursor) TotalMatched() int {
	total := 0
	for _, v := range c.dataset.Views {
		total += int(v.valid.Count())
	}
	return total
}
