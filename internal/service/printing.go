package service

import (
	"context"
	"fmt"
	"image"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/printer"
	"tookjai-pos/internal/render"
)

// DocumentRenderer rasterizes receipts and labels
type DocumentRenderer interface {
	Render(doc render.Document) (*image.Paletted, error)
}

// PrintSpooler delivers rendered documents and applies the failure policy
type PrintSpooler interface {
	Print(ctx context.Context, job printer.Job) (domain.PrintStatus, error)
}

// printDocument renders and prints doc. A render failure is reported the
// same way as a delivery failure: in the status and the returned error.
func printDocument(ctx context.Context, renderer DocumentRenderer, spooler PrintSpooler, doc render.Document, name string) (domain.PrintStatus, error) {
	img, err := renderer.Render(doc)
	if err != nil {
		err = fmt.Errorf("failed to render %s: %w", doc.Kind(), err)
		return domain.PrintStatus{Error: err.Error()}, err
	}

	return spooler.Print(ctx, printer.Job{Kind: doc.Kind(), Name: name, Image: img})
}

func receiptJob(order *domain.Order, img *image.Paletted) printer.Job {
	return printer.Job{Kind: render.KindReceipt, Name: order.ID, Image: img}
}
