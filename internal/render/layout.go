package render

import (
	"fmt"
	"image"
	"strconv"

	"tookjai-pos/internal/domain"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

const currency = "บาท"

var paymentLabels = map[domain.PaymentType]string{
	domain.PaymentCash:     "เงินสด",
	domain.PaymentTransfer: "โอนเงิน",
}

func baht(amount decimal.Decimal) string {
	return domain.FormatMoney(amount) + " " + currency
}

func points(n int64) string {
	return strconv.FormatInt(n, 10) + " แต้ม"
}

// Layout turns a document into rows without drawing anything
func (r *Renderer) Layout(doc Document) ([]Row, error) {
	switch d := doc.(type) {
	case Receipt:
		return r.receiptRows(d)
	case *Receipt:
		return r.receiptRows(*d)
	case Label:
		return labelRows(d)
	case *Label:
		return labelRows(*d)
	default:
		return nil, fmt.Errorf("unsupported document %T", doc)
	}
}

func (r *Renderer) receiptRows(d Receipt) ([]Row, error) {
	order := d.Order
	if order == nil {
		return nil, fmt.Errorf("receipt has no order")
	}

	var rows []Row
	if r.logo != nil {
		rows = append(rows, Row{Image: r.logo})
	}

	if d.Shop.Name != "" {
		rows = append(rows, Row{Left: d.Shop.Name, Centered: true, Style: StyleTitle})
	}
	if d.Shop.Address != "" {
		rows = append(rows, Row{Left: d.Shop.Address, Centered: true})
	}
	if d.Shop.Phone != "" {
		rows = append(rows, Row{Left: "โทร: " + d.Shop.Phone, Centered: true})
	}

	rows = append(rows, Row{Rule: true})
	if order.ID != "" {
		rows = append(rows, Row{Left: "เลขที่:", Right: order.ID})
	}
	rows = append(rows, Row{Left: "วันที่:", Right: order.Date.In(r.location).Format("02/01/2006 15:04")})
	rows = append(rows, Row{Rule: true})

	for _, item := range order.Items {
		rows = append(rows, Row{
			Left:  fmt.Sprintf("%s x%d", item.DisplayName(), item.Qty),
			Right: domain.FormatMoney(item.Total),
		})
	}

	rows = append(rows, Row{Rule: true})
	rows = append(rows, Row{Left: "ยอดรวม:", Right: baht(order.Total)})
	if order.RedeemPoints > 0 {
		rows = append(rows, Row{
			Left:  fmt.Sprintf("ส่วนลดแต้ม (%s):", points(order.RedeemPoints)),
			Right: "-" + baht(order.RedeemValue),
		})
	}
	rows = append(rows, Row{Left: "ยอดสุทธิ:", Right: baht(order.NetTotal()), Style: StyleTitle})

	payment, ok := paymentLabels[order.PaymentType]
	if !ok {
		payment = string(order.PaymentType)
	}
	rows = append(rows, Row{Left: "ชำระโดย:", Right: payment})
	if order.PaymentType == domain.PaymentCash {
		rows = append(rows,
			Row{Left: "รับเงิน:", Right: baht(order.Cash)},
			Row{Left: "เงินทอน:", Right: baht(order.Change)},
		)
	}

	if order.HasMember() {
		member := order.Member
		name := member.Phone
		if member.Name != "" {
			name = member.Name + " (" + member.Phone + ")"
		}
		rows = append(rows,
			Row{Rule: true},
			Row{Left: "สมาชิก:", Right: name},
			Row{Left: "แต้มก่อนหน้า:", Right: points(member.Points)},
			Row{Left: "แต้มที่ใช้:", Right: points(order.RedeemPoints)},
			Row{Left: "แต้มที่ได้รับ:", Right: points(order.EarnedPoints)},
			Row{Left: "แต้มคงเหลือ:", Right: points(order.PointsAfter())},
		)
	}

	rows = append(rows,
		Row{Rule: true},
		Row{Left: "ขอบคุณที่อุดหนุน", Centered: true},
		Row{Left: formatStamp(r.now().In(r.location)), Centered: true, Timestamp: true},
	)

	return rows, nil
}

func labelRows(d Label) ([]Row, error) {
	if d.Barcode == "" {
		return nil, fmt.Errorf("label has no barcode")
	}

	qr, err := qrImage(d.Barcode)
	if err != nil {
		return nil, err
	}

	rows := []Row{
		{Image: qr},
		{Left: d.Name, Centered: true, Style: StyleTitle},
	}
	if d.TypeName != "" {
		rows = append(rows, Row{Left: "ประเภท: " + d.TypeName, Centered: true})
	}
	rows = append(rows,
		Row{Left: "ราคา: " + baht(d.Price), Centered: true, Style: StyleTitle},
		Row{Left: d.Barcode, Centered: true},
	)

	return rows, nil
}

func qrImage(content string) (image.Image, error) {
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return code.Image(qrSize), nil
}
