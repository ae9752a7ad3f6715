package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/logger"
	"github.com/sangkips/tillpoint-api/pkg/printer"
)

// PrinterService sends thermal receipts to the configured printer.
type PrinterService struct {
	printer     printer.Printer
	receipts    *ReceiptService
	printerType string
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, receipts *ReceiptService, printerType string) *PrinterService {
	return &PrinterService{
		printer:     p,
		receipts:    receipts,
		printerType: printerType,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// TestPrint sends a test slip to the printer.
// The receipt is returned so the handler can show it when no printer is attached.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			StoreName: "PRINTER TEST",
			Address:   "Test Address",
			Phone:     "+254 000 000 000",
		},
		InvoiceNo:     "TEST-0001",
		Date:          time.Now().Format("2006-01-02 15:04"),
		Cashier:       "System",
		PaymentStatus: enum.PaymentStatusPaid.String(),
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: 10.00, OriginalPrice: 10.00, Total: 10.00},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: 5.00, OriginalPrice: 5.00, Total: 10.00},
		},
		SubTotal: 20.00,
		Total:    20.00,
		Paid:     20.00,
	}

	if err := s.printer.Print(FormatThermal(receipt, s.receipts.width, false)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// PrintInvoice prints an invoice in one of the thermal formats.
func (s *PrinterService) PrintInvoice(ctx context.Context, invoiceID uuid.UUID, format enum.ReceiptFormat) (*entity.Receipt, error) {
	if !format.Thermal() {
		return nil, apperror.NewBadRequestError("Only thermal formats can be sent to the printer")
	}
	receipt, err := s.receipts.Receipt(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := s.PrintReceipt(receipt, format); err != nil {
		return receipt, err
	}
	return receipt, nil
}

// PrintReceipt renders and prints a receipt that is already built.
func (s *PrinterService) PrintReceipt(receipt *entity.Receipt, format enum.ReceiptFormat) error {
	data := FormatThermal(receipt, s.receipts.width, format.Advanced())
	if err := s.printer.Print(data); err != nil {
		logger.LogError("printer", "PrintReceipt", "print failed", map[string]any{"invoice_no": receipt.InvoiceNo}, err)
		return fmt.Errorf("failed to print receipt: %w", err)
	}
	return nil
}
