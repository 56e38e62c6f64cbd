package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Cash   PaymentMethod = "cash"
	Online PaymentMethod = "online"

	SourceA  Source = "sourceA"
	SourceB  Source = "sourceB"
	Personal Source = "personal"
)

// MaxDescriptionLength bounds the free-text label.
const MaxDescriptionLength = 200

type (
	TransactionType string
	PaymentMethod   string

	// Source is the cost-center / fund tag of a transaction.
	Source string

	Transaction struct {
		ID             string          `json:"id"`
		Description    string          `json:"description"`
		Amount         Amount          `json:"amount"`
		Type           TransactionType `json:"type"`
		Category       string          `json:"category"`
		Date           time.Time       `json:"date"`
		PaymentMethod  PaymentMethod   `json:"paymentMethod"`
		Bank           string          `json:"bank,omitempty"`
		Source         Source          `json:"source,omitempty"`
		IsReimbursable bool            `json:"isReimbursable,omitempty"`
		IsCleared      bool            `json:"isCleared,omitempty"`
	}

	// Category is keyed by Value within its own type set. Icon is an opaque
	// key resolved by whatever renders the category.
	Category struct {
		Value string `json:"value"`
		Label string `json:"label"`
		Icon  string `json:"icon,omitempty"`
	}

	Bank struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
)

// ErrValidation is wrapped by every field-level validation error.
var ErrValidation = errors.New("validation error")

var (
	ErrEmptyDescription     = fmt.Errorf("%w: empty description", ErrValidation)
	ErrDescriptionTooLong   = fmt.Errorf("%w: description too long (max %d characters)", ErrValidation, MaxDescriptionLength)
	ErrInvalidAmount        = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidType          = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrInvalidPaymentMethod = fmt.Errorf("%w: invalid payment method", ErrValidation)
	ErrInvalidSource        = fmt.Errorf("%w: invalid source", ErrValidation)
	ErrMissingBank          = fmt.Errorf("%w: bank is required for online payments", ErrValidation)
	ErrEmptyCategory        = fmt.Errorf("%w: empty category", ErrValidation)
	ErrZeroDate             = fmt.Errorf("%w: date cannot be zero", ErrValidation)
	ErrEmptyLabel           = fmt.Errorf("%w: empty label", ErrValidation)
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p PaymentMethod) Valid() bool {
	return p == Cash || p == Online
}

// Valid reports whether s is a known tag. The empty tag is valid and means Personal.
func (s Source) Valid() bool {
	switch s {
	case "", SourceA, SourceB, Personal:
		return true
	}
	return false
}

// Effective maps the empty tag of legacy records to Personal.
func (s Source) Effective() Source {
	if s == "" {
		return Personal
	}
	return s
}

// Sources lists the known tags in display order.
func Sources() []Source {
	return []Source{SourceA, SourceB, Personal}
}

// EffectiveSource is the record's source with the legacy default applied.
func (t Transaction) EffectiveSource() Source {
	return t.Source.Effective()
}

// Validate checks the fields required to create or edit a transaction.
func (t Transaction) Validate() error {
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if len(desc) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if !t.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if t.PaymentMethod == Online && strings.TrimSpace(t.Bank) == "" {
		return ErrMissingBank
	}
	if !t.Source.Valid() {
		return ErrInvalidSource
	}
	return nil
}

// UnmarshalJSON accepts RFC 3339 timestamps as well as bare YYYY-MM-DD dates
// written by older versions.
func (t *Transaction) UnmarshalJSON(b []byte) error {
	type plain Transaction
	aux := struct {
		*plain
		Date string `json:"date"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	d, err := ParseDate(aux.Date, time.Local)
	if err != nil {
		return fmt.Errorf("transaction %q: %w", t.ID, err)
	}
	t.Date = d
	return nil
}

// Draft is a transaction before it has been assigned an id.
type Draft struct {
	Description    string
	Amount         Amount
	Type           TransactionType
	Category       string
	Date           time.Time
	PaymentMethod  PaymentMethod
	Bank           string
	Source         Source
	IsReimbursable bool
}

// Build creates the transaction. The calendar day comes from the draft, the
// time of day from now, so entries made on the same day keep entry order.
func (d Draft) Build(id string, now time.Time) Transaction {
	t := Transaction{
		ID:             id,
		Description:    strings.TrimSpace(d.Description),
		Amount:         NewAmount(d.Amount.Decimal),
		Type:           d.Type,
		Category:       d.Category,
		Date:           StampTimeOfDay(d.Date, now),
		PaymentMethod:  d.PaymentMethod,
		Source:         d.Source.Effective(),
		IsReimbursable: d.IsReimbursable,
	}
	if d.Date.IsZero() {
		t.Date = time.Time{}
	}
	if d.PaymentMethod == Online {
		t.Bank = d.Bank
	}
	return t.Normalized()
}

// Patch holds the fields an edit may change; nil means unchanged. The cleared
// flag is not editable: it only moves through Clear and CancelClear.
type Patch struct {
	Description    *string
	Amount         *Amount
	Type           *TransactionType
	Category       *string
	Date           *time.Time
	PaymentMethod  *PaymentMethod
	Bank           *string
	Source         *Source
	IsReimbursable *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply merges p into t. A new date keeps the record's original time of day.
// Turning reimbursement off clears isCleared; income is never reimbursable.
func (p Patch) Apply(t Transaction) Transaction {
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Amount != nil {
		t.Amount = NewAmount(p.Amount.Decimal)
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = StampTimeOfDay(*p.Date, t.Date)
	}
	if p.PaymentMethod != nil {
		t.PaymentMethod = *p.PaymentMethod
	}
	if p.Bank != nil {
		t.Bank = *p.Bank
	}
	if p.Source != nil {
		t.Source = *p.Source
	}
	if p.IsReimbursable != nil {
		t.IsReimbursable = *p.IsReimbursable
	}
	return t.Normalized()
}

// Normalized returns t with the reimbursement flags made consistent: income
// is never reimbursable and only a reimbursable transaction can be cleared.
func (t Transaction) Normalized() Transaction {
	if t.Type == Income {
		t.IsReimbursable = false
	}
	if !t.IsReimbursable {
		t.IsCleared = false
	}
	return t
}
