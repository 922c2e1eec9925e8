package domain

import "time"

// Status is the terminal outcome of processing a ticket. Permanent business
// rejection is a successful pipeline outcome, not a failure.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Address is the requester's postal address. JSON names follow the external
// contract; only the complement is optional.
type Address struct {
	Street     string `json:"rua" validate:"required"`
	Number     string `json:"numero" validate:"required"`
	Complement string `json:"complemento,omitempty"`
	District   string `json:"bairro" validate:"required"`
	City       string `json:"cidade" validate:"required"`
	State      string `json:"estado" validate:"required"`
	PostalCode string `json:"cep" validate:"required"`
}

// DeviceInfo describes the device under warranty. The purchase date arrives as
// a string (date-only or RFC 3339) and is parsed during validation. Serial
// number and invoice are checked by business rules rather than presence tags
// so they surface as INVALID_SERIAL / MISSING_INVOICE instead of a generic
// missing-field reason.
type DeviceInfo struct {
	Brand          string `json:"marca" validate:"required"`
	Model          string `json:"modelo" validate:"required"`
	SerialNumber   string `json:"numero_serie"`
	PurchaseDate   string `json:"data_compra"`
	InvoiceNumber  string `json:"nota_fiscal"`
	ReportedDefect string `json:"defeito_relatado" validate:"required"`
}

// TicketRequest is the transient intake payload. It is never persisted; the
// Validator either rejects it or normalizes it into a TicketDraft.
type TicketRequest struct {
	FullName   string     `json:"nome_completo" validate:"required"`
	NationalID string     `json:"cpf" validate:"required,cpf"`
	Email      string     `json:"email" validate:"required,email"`
	Phone      string     `json:"telefone" validate:"required"`
	Address    Address    `json:"endereco"`
	Device     DeviceInfo `json:"aparelho"`
	Notes      string     `json:"observacoes,omitempty"`
}

// TicketDraft is a validated request in transit through the queue. Immutable
// once enqueued; the queue owns it exclusively between publish and delivery.
// PurchaseDate is the normalized form of Device.PurchaseDate so the processor
// never re-parses user input.
type TicketDraft struct {
	TicketID     string     `json:"ticket_id"`
	IntakeTime   time.Time  `json:"data_abertura"`
	FullName     string     `json:"nome_completo"`
	NationalID   string     `json:"cpf"`
	Email        string     `json:"email"`
	Phone        string     `json:"telefone"`
	Address      Address    `json:"endereco"`
	Device       DeviceInfo `json:"aparelho"`
	PurchaseDate time.Time  `json:"data_compra_normalizada"`
	Notes        string     `json:"observacoes,omitempty"`
}

// Ticket is the finalized record persisted in the ticket store. Write-once
// from the processor's perspective; idempotent retries write identical
// content.
type Ticket struct {
	TicketDraft
	Status          Status    `json:"status"`
	RejectionReason string    `json:"motivo_processamento,omitempty"`
	ProcessedAt     time.Time `json:"data_processamento"`
}
