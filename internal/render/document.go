package render

import (
	"image"
	"time"

	"tookjai-pos/internal/domain"

	"github.com/shopspring/decimal"
)

// Kind identifies the type of printed document
type Kind string

const (
	KindReceipt Kind = "receipt"
	KindLabel   Kind = "label"
)

// Document is a fully pre-fetched printable document. The renderer never
// reads from the store.
type Document interface {
	Kind() Kind
}

// Shop is the header printed on every receipt
type Shop struct {
	Name    string
	Address string
	Phone   string
}

// Receipt renders a persisted order
type Receipt struct {
	Shop  Shop
	Order *domain.Order
}

func (Receipt) Kind() Kind { return KindReceipt }

// Label renders a shelf label for one product
type Label struct {
	Barcode  string
	Name     string
	TypeName string
	Price    decimal.Decimal
}

func (Label) Kind() Kind { return KindLabel }

// Style selects the face a text row is drawn with
type Style int

const (
	StyleNormal Style = iota
	StyleTitle
)

// Row is one laid-out line of a document: text, an image or a rule.
// Rows with both Left and Right text are drawn left and right aligned.
type Row struct {
	Left      string
	Right     string
	Centered  bool
	Style     Style
	Image     image.Image
	Rule      bool
	Timestamp bool
}

// Text is the row as a single line of plain text
func (r Row) Text() string {
	switch {
	case r.Right == "":
		return r.Left
	case r.Left == "":
		return r.Right
	default:
		return r.Left + " " + r.Right
	}
}

// Texts returns the text of every text row, skipping the render timestamp
func Texts(rows []Row) []string {
	var out []string
	for _, row := range rows {
		if row.Image != nil || row.Rule || row.Timestamp {
			continue
		}
		out = append(out, row.Text())
	}
	return out
}

const timestampLayout = "02/01/2006 15:04:05"

func formatStamp(t time.Time) string {
	return t.Format(timestampLayout)
}
