package printer

import (
	"context"
	"fmt"
	"image"
	"net"
	"time"

	"tookjai-pos/internal/config"

	"go.uber.org/zap"
)

// DeliveryError reports a failed print transmission
type DeliveryError struct {
	Op      string
	Address string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("printer %s: %s: %v", e.Address, e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Deliverer sends a raster image to a printer
type Deliverer interface {
	Deliver(ctx context.Context, img *image.Paletted) error
}

// NetworkPrinter speaks ESC/POS to a raw TCP printer port. Each call opens
// and closes its own connection.
type NetworkPrinter struct {
	address    string
	timeout    time.Duration
	feedLines  int
	cutEnabled bool
	logger     *zap.Logger
	dial       func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewNetworkPrinter creates a printer client from configuration
func NewNetworkPrinter(cfg config.PrinterConfig, logger *zap.Logger) *NetworkPrinter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}
	return &NetworkPrinter{
		address:    cfg.Address,
		timeout:    timeout,
		feedLines:  cfg.FeedLines,
		cutEnabled: cfg.CutEnabled,
		logger:     logger,
		dial:       dialer.DialContext,
	}
}

// Deliver streams img and cuts the paper. When the cut command cannot be
// written, blank lines are fed instead so the paper can be torn off.
func (p *NetworkPrinter) Deliver(ctx context.Context, img *image.Paletted) error {
	conn, err := p.dial(ctx, "tcp", p.address)
	if err != nil {
		return &DeliveryError{Op: "connect", Address: p.address, Err: err}
	}
	defer conn.Close()

	write := func(op string, data []byte) error {
		if err := conn.SetWriteDeadline(time.Now().Add(p.timeout)); err != nil {
			return &DeliveryError{Op: op, Address: p.address, Err: err}
		}
		if _, err := conn.Write(data); err != nil {
			return &DeliveryError{Op: op, Address: p.address, Err: err}
		}
		return nil
	}

	if err := write("init", initCommand()); err != nil {
		return err
	}

	for _, band := range rasterBands(img) {
		if err := ctx.Err(); err != nil {
			return &DeliveryError{Op: "raster", Address: p.address, Err: err}
		}
		if err := write("raster", band); err != nil {
			return err
		}
	}

	if p.cutEnabled {
		err := write("cut", cutCommand())
		if err == nil {
			return nil
		}
		p.logger.Warn("Cut failed, feeding paper instead", zap.String("printer", p.address), zap.Error(err))
	}

	return write("feed", feedCommand(p.feedLines))
}
