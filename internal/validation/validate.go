// Package validation holds the pure business rules for warranty-exchange
// requests. Validate has no I/O and no side effects beyond generating the
// ticket id on success; all rules are evaluated and every violation is
// collected so the caller gets the full picture in one round trip.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"garantia/internal/domain"
)

// WarrantyMonths is the eligibility window counted from the purchase date.
// Reaching the boundary exactly is already out of warranty.
const WarrantyMonths = 12

// Result is either a normalized draft or an ordered list of violations.
type Result struct {
	Draft  *domain.TicketDraft
	Errors []domain.FieldError
}

// Valid reports whether the request passed every rule.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return ValidCPF(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate applies every rule to the request against the given reference time
// and, on success, assembles the draft: fresh uuid4 ticket id, intake
// timestamp, normalized purchase date.
//
// Error ordering is deterministic: the three business rules first (warranty,
// invoice, serial), then presence/format violations in struct field order,
// then purchase-date format problems.
func Validate(req domain.TicketRequest, now time.Time) Result {
	var errs []domain.FieldError

	purchase, purchaseErr := ParsePurchaseDate(req.Device.PurchaseDate)
	hasPurchase := strings.TrimSpace(req.Device.PurchaseDate) != ""

	if hasPurchase && purchaseErr == nil && !purchase.After(now) && WarrantyExpired(purchase, now) {
		errs = append(errs, domain.FieldError{
			Field:  "aparelho.data_compra",
			Reason: domain.ReasonExpiredWarranty,
		})
	}
	if strings.TrimSpace(req.Device.InvoiceNumber) == "" {
		errs = append(errs, domain.FieldError{
			Field:  "aparelho.nota_fiscal",
			Reason: domain.ReasonMissingInvoice,
		})
	}
	if !ValidSerial(req.Device.SerialNumber) {
		errs = append(errs, domain.FieldError{
			Field:  "aparelho.numero_serie",
			Reason: domain.ReasonInvalidSerial,
		})
	}

	if err := structValidator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				path := fieldPath(fe)
				if fe.Tag() == "required" {
					errs = append(errs, domain.MissingField(path))
				} else {
					errs = append(errs, domain.InvalidFormat(path))
				}
			}
		} else {
			// InvalidValidationError cannot happen for a struct argument.
			errs = append(errs, domain.InvalidFormat("request"))
		}
	}

	switch {
	case !hasPurchase:
		errs = append(errs, domain.MissingField("aparelho.data_compra"))
	case purchaseErr != nil:
		errs = append(errs, domain.InvalidFormat("aparelho.data_compra"))
	case purchase.After(now):
		// purchase date must be past or present
		errs = append(errs, domain.InvalidFormat("aparelho.data_compra"))
	}

	if len(errs) > 0 {
		return Result{Errors: errs}
	}

	return Result{Draft: &domain.TicketDraft{
		TicketID:     uuid.NewString(),
		IntakeTime:   now,
		FullName:     req.FullName,
		NationalID:   req.NationalID,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Device:       req.Device,
		PurchaseDate: purchase,
		Notes:        req.Notes,
	}}
}

// Outcome re-evaluates the business rules for a queued draft and decides the
// final ticket status. The warranty window is checked against the intake
// timestamp the draft carries, never the processing time, so queueing delay
// cannot flip a verdict.
func Outcome(draft domain.TicketDraft) (domain.Status, string) {
	if WarrantyExpired(draft.PurchaseDate, draft.IntakeTime) {
		return domain.StatusRejected, domain.ReasonExpiredWarranty
	}
	if strings.TrimSpace(draft.Device.InvoiceNumber) == "" {
		return domain.StatusRejected, domain.ReasonMissingInvoice
	}
	if !ValidSerial(draft.Device.SerialNumber) {
		return domain.StatusRejected, domain.ReasonInvalidSerial
	}
	return domain.StatusAccepted, ""
}

// WarrantyExpired reports whether the device fell out of its warranty window
// at the reference time. The boundary itself is out of warranty.
func WarrantyExpired(purchase, at time.Time) bool {
	return !at.Before(purchase.AddDate(0, WarrantyMonths, 0))
}

// ValidSerial requires a non-empty serial of at least five characters.
func ValidSerial(serial string) bool {
	return len(strings.TrimSpace(serial)) >= 5
}

// ParsePurchaseDate accepts a date-only value or a full RFC 3339 timestamp.
func ParsePurchaseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// fieldPath turns a validator namespace ("TicketRequest.endereco.rua") into
// the external JSON path ("endereco.rua").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
