package resources

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/hrdesk/pkg/authz"
	"github.com/iota-uz/hrdesk/pkg/listview"
)

const defaultSheet = "Sheet1"

// Export writes every filtered and sorted row for state, across all pages,
// as an XLSX workbook.
func (r *Resource[T]) Export(ctx context.Context, state listview.State, dict listview.Dictionary, w io.Writer) error {
	if dict == nil {
		dict = listview.DefaultDictionary()
	}
	if _, err := r.svc.Authorize(ctx, authz.ActionExport); err != nil {
		return err
	}
	rows, err := r.svc.List(ctx)
	if err != nil {
		return err
	}
	_, filtered, err := listview.Render(r.Config(dict), rows, state)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := r.def.Name
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return errors.Wrap(err, "new sheet")
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return errors.Wrap(err, "delete default sheet")
	}

	header := make([]any, len(r.def.Columns))
	for i, c := range r.def.Columns {
		header[i] = dict.T(c.Header)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}
	if len(header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return errors.Wrap(err, "header style")
		}
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return errors.Wrap(err, "apply header style")
		}
	}

	for i, row := range filtered {
		cells := make([]any, len(r.def.Columns))
		for j, c := range r.def.Columns {
			cells[j] = c.Text(row)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return errors.Wrapf(err, "write row %d", i+2)
		}
	}
	return f.Write(w)
}
