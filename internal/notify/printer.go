package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Printer produces a human-readable copy of a receipt.
type Printer interface {
	Print(ctx context.Context, r Receipt) error
}

// FilePrinter spools one text file per order for the shop's print daemon.
type FilePrinter struct {
	dir string
}

func NewFilePrinter(dir string) (*FilePrinter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipt dir: %w", err)
	}
	return &FilePrinter{dir: dir}, nil
}

func (p *FilePrinter) Path(orderID string) string {
	return filepath.Join(p.dir, "pedido-"+filepath.Base(orderID)+".txt")
}

// Print writes through a temp file so the spooler never sees half a receipt.
func (p *FilePrinter) Print(_ context.Context, r Receipt) error {
	tmp, err := os.CreateTemp(p.dir, ".pedido-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(r.Text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p.Path(r.OrderID))
}

// MultiPrinter prints to every printer and joins their errors.
type MultiPrinter []Printer

func (m MultiPrinter) Print(ctx context.Context, r Receipt) error {
	var errs []error
	for _, p := range m {
		if err := p.Print(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
