// Package apperr описывает таксономию ошибок бизнес-логики биллинга.
// Каждая ошибка несёт вид (Kind), по которому транспортный слой выбирает
// код ответа, и уточняющую причину (Reason) для клиентов API и тестов.
package apperr

import (
	"errors"
	"fmt"
)

// Kind — категория ошибки.
type Kind int

const (
	// KindUnknown — ошибка не из таксономии (сбой хранилища и т.п.).
	KindUnknown Kind = iota
	// KindNotFound — сущность не существует или скрыта мягким удалением клиента.
	KindNotFound
	// KindInvalidInput — некорректная сумма, диапазон дат или период продления.
	KindInvalidInput
	// KindConflict — дубликат идентификатора, активной подписки или действующего договора.
	KindConflict
	// KindInvalidState — операция над истёкшей, неактивной или закрытой сущностью.
	KindInvalidState
	// KindBusinessRule — несовпадение суммы, переплата, период уже оплачен.
	KindBusinessRule
	// KindExternal — отказ внешней зависимости (курсы валют).
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidInput:
		return "InvalidInput"
	case KindConflict:
		return "Conflict"
	case KindInvalidState:
		return "InvalidState"
	case KindBusinessRule:
		return "BusinessRuleViolation"
	case KindExternal:
		return "ExternalDependency"
	default:
		return "Unknown"
	}
}

// Reason уточняет причину в пределах вида.
type Reason string

// Причины ошибок.
const (
	ReasonNotFound          Reason = "NotFound"
	ReasonInvalidTerm       Reason = "InvalidTerm"
	ReasonInvalidAmount     Reason = "InvalidAmount"
	ReasonInvalidPeriod     Reason = "InvalidPeriod"
	ReasonInvalidRange      Reason = "InvalidRange"
	ReasonInvalidClient     Reason = "InvalidClient"
	ReasonInvalidSupport    Reason = "InvalidSupportYears"
	ReasonInvalidDiscount   Reason = "InvalidDiscount"
	ReasonAlreadyCommitted  Reason = "AlreadyCommitted"
	ReasonDuplicateSub      Reason = "DuplicateSubscription"
	ReasonDuplicateIdentity Reason = "DuplicateIdentity"
	ReasonDuplicateProduct  Reason = "DuplicateProduct"
	ReasonImmutableIdentity Reason = "ImmutableIdentity"
	ReasonExpired           Reason = "Expired"
	ReasonInactive          Reason = "Inactive"
	ReasonWindowExpired     Reason = "WindowExpired"
	ReasonOverpayment       Reason = "Overpayment"
	ReasonPriceMismatch     Reason = "PriceMismatch"
	ReasonAlreadyPaid       Reason = "AlreadyPaid"
	ReasonConversionFailed  Reason = "ConversionFailed"
)

// Error — ошибка бизнес-логики с видом и причиной.
type Error struct {
	Kind   Kind
	Reason Reason
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает ошибки по виду и причине, так что работают сравнения
// с шаблонами вида errors.Is(err, apperr.ErrOverpayment).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

// Шаблоны для errors.Is.
var (
	ErrNotFound          = &Error{Kind: KindNotFound, Reason: ReasonNotFound}
	ErrInvalidTerm       = &Error{Kind: KindInvalidInput, Reason: ReasonInvalidTerm}
	ErrInvalidAmount     = &Error{Kind: KindInvalidInput, Reason: ReasonInvalidAmount}
	ErrInvalidPeriod     = &Error{Kind: KindInvalidInput, Reason: ReasonInvalidPeriod}
	ErrInvalidRange      = &Error{Kind: KindInvalidInput, Reason: ReasonInvalidRange}
	ErrInvalidClient     = &Error{Kind: KindInvalidInput, Reason: ReasonInvalidClient}
	ErrInvalidSupport    = &Error{Kind: KindInvalidInput, Reason: ReasonInvalidSupport}
	ErrInvalidDiscount   = &Error{Kind: KindInvalidInput, Reason: ReasonInvalidDiscount}
	ErrAlreadyCommitted  = &Error{Kind: KindConflict, Reason: ReasonAlreadyCommitted}
	ErrDuplicateSub      = &Error{Kind: KindConflict, Reason: ReasonDuplicateSub}
	ErrDuplicateIdentity = &Error{Kind: KindConflict, Reason: ReasonDuplicateIdentity}
	ErrDuplicateProduct  = &Error{Kind: KindConflict, Reason: ReasonDuplicateProduct}
	ErrImmutableIdentity = &Error{Kind: KindConflict, Reason: ReasonImmutableIdentity}
	ErrExpired           = &Error{Kind: KindInvalidState, Reason: ReasonExpired}
	ErrInactive          = &Error{Kind: KindInvalidState, Reason: ReasonInactive}
	ErrWindowExpired     = &Error{Kind: KindInvalidState, Reason: ReasonWindowExpired}
	ErrOverpayment       = &Error{Kind: KindBusinessRule, Reason: ReasonOverpayment}
	ErrPriceMismatch     = &Error{Kind: KindBusinessRule, Reason: ReasonPriceMismatch}
	ErrAlreadyPaid       = &Error{Kind: KindBusinessRule, Reason: ReasonAlreadyPaid}
	ErrConversionFailed  = &Error{Kind: KindExternal, Reason: ReasonConversionFailed}
)

// New создаёт ошибку по шаблону с сообщением.
func New(tmpl *Error, format string, args ...any) *Error {
	return &Error{Kind: tmpl.Kind, Reason: tmpl.Reason, Msg: fmt.Sprintf(format, args...)}
}

// Wrap создаёт ошибку по шаблону, сохраняя причину.
func Wrap(tmpl *Error, cause error, format string, args ...any) *Error {
	return &Error{Kind: tmpl.Kind, Reason: tmpl.Reason, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// NotFound — сокращение для самой частой ошибки.
func NotFound(entity string, id int64) *Error {
	return New(ErrNotFound, "%s %d not found", entity, id)
}

// KindOf возвращает вид первой ошибки из таксономии в цепочке.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ReasonOf возвращает причину первой ошибки из таксономии в цепочке.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
