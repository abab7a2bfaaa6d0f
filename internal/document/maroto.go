package document

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const lineHeight = 5

var (
	small = props.Text{Size: 8}
	body  = props.Text{Size: 9}
	bold  = props.Text{Size: 9, Style: fontstyle.Bold}
	right = props.Text{Size: 9, Align: align.Right}
	title = props.Text{Size: 16, Style: fontstyle.Bold}
)

// PDFRenderer renders documents as A4 PDFs with maroto.
type PDFRenderer struct{}

// NewPDFRenderer returns a maroto based renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render lays out the document and returns the PDF bytes.
func (r *PDFRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(20).
		WithRightMargin(15).
		WithTopMargin(15).
		WithBottomMargin(15).
		Build()
	m := maroto.New(cfg)

	if len(doc.Footer) > 0 {
		footer := make([]core.Row, 0, len(doc.Footer))
		for _, l := range doc.Footer {
			footer = append(footer, row.New(4).Add(col.New(12).Add(text.New(l, props.Text{Size: 7, Align: align.Center}))))
		}
		if err := m.RegisterFooter(footer...); err != nil {
			return nil, fmt.Errorf("register footer: %w", err)
		}
	}

	// Addresses side by side
	n := max(len(doc.Issuer), len(doc.Recipient))
	for i := 0; i < n; i++ {
		m.AddRow(lineHeight,
			col.New(7).Add(text.New(at(doc.Recipient, i), body)),
			col.New(5).Add(text.New(at(doc.Issuer, i), props.Text{Size: 9, Align: align.Right})),
		)
	}
	m.AddRows(row.New(10))

	m.AddRow(10, col.New(12).Add(text.New(doc.Kind+" "+doc.Title, title)))
	for _, p := range doc.Meta {
		m.AddRow(lineHeight,
			col.New(4).Add(text.New(p.Label, small)),
			col.New(8).Add(text.New(p.Value, small)),
		)
	}

	if doc.Letter != "" {
		m.AddRows(row.New(6))
		m.AddRow(lineHeight*2, col.New(12).Add(text.New(doc.Letter, body)))
	}

	m.AddRows(row.New(6))
	m.AddRow(lineHeight,
		col.New(5).Add(text.New("Description", bold)),
		col.New(1).Add(text.New("Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
		col.New(2).Add(text.New("Unit", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
		col.New(1).Add(text.New("Tax", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
		col.New(3).Add(text.New("Total", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
	)
	m.AddRow(1, col.New(12).Add(line.New(props.Line{Thickness: 0.2})))
	for _, l := range doc.Lines {
		m.AddRow(lineHeight,
			col.New(5).Add(text.New(l.Description, body)),
			col.New(1).Add(text.New(l.Quantity, right)),
			col.New(2).Add(text.New(l.UnitPrice, right)),
			col.New(1).Add(text.New(l.Rate, right)),
			col.New(3).Add(text.New(l.Total, right)),
		)
	}
	m.AddRow(1, col.New(12).Add(line.New(props.Line{Thickness: 0.2})))

	for _, p := range doc.Totals {
		m.AddRow(lineHeight,
			col.New(6),
			col.New(3).Add(text.New(p.Label, body)),
			col.New(3).Add(text.New(p.Value, right)),
		)
	}

	for _, s := range []string{doc.Terms, doc.Note} {
		if s == "" {
			continue
		}
		m.AddRows(row.New(6))
		m.AddRow(lineHeight*2, col.New(12).Add(text.New(s, small)))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return out.GetBytes(), nil
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
