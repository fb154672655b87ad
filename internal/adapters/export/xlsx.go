package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/catalogo/internal/domain"
	"github.com/phenrril/catalogo/internal/variant"
)

const SheetName = "Variants"

// Header lists the column titles: one per attribute, then the variant fields.
func Header(names []string) []string {
	out := append([]string(nil), names...)
	return append(out, "SKU", "Price", "Active", "Swatch", "Images")
}

// WriteVariants writes a single-sheet workbook with one row per variant. A
// variant without its own price shows the product base price.
func WriteVariants(w io.Writer, p *domain.Product, names []string, vs []variant.Variant) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	header := Header(names)
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &row); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return err
	}

	for i, v := range vs {
		cells := make([]interface{}, 0, len(header))
		for _, n := range names {
			cells = append(cells, v.Attributes[n])
		}
		price := p.BasePrice
		if v.Price != nil {
			price = *v.Price
		}
		active := "no"
		if v.Active {
			active = "yes"
		}
		cells = append(cells, v.SKU, price, active, v.Color, strings.Join(v.Images, ", "))
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", last, 18); err != nil {
		return err
	}
	return f.Write(w)
}
