package gateway

import (
	"context"
	"sync"
)

type FinanceSheetMock struct {
	lock sync.Mutex
	Rows map[string][][]string
}

func (c *FinanceSheetMock) AppendRow(ctx context.Context, sheetName string, row []string) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Rows == nil {
		c.Rows = make(map[string][][]string)
	}

	c.Rows[sheetName] = append(c.Rows[sheetName], row)

	return nil
}

func (c *FinanceSheetMock) SheetRows(sheetName string) [][]string {
	c.lock.Lock()
	defer c.lock.Unlock()

	rows := make([][]string, len(c.Rows[sheetName]))
	copy(rows, c.Rows[sheetName])
	return rows
}
