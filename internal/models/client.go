// Package models содержит доменные структуры биллинга: клиентов, продукты,
// скидки, договоры, подписки и платежи, а также структуры запросов
// и ответов, которые принимает и отдаёт HTTP-слой.
package models

import "strings"

// ClientKind — вариант клиента: физическое лицо или компания.
type ClientKind string

const (
	// ClientPersonal — физическое лицо, идентифицируется по PESEL.
	ClientPersonal ClientKind = "personal"
	// ClientCompany — компания, идентифицируется по номеру KRS.
	ClientCompany ClientKind = "company"
)

// Contact — общие для обоих вариантов контактные данные.
type Contact struct {
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// Personal — профиль физического лица.
type Personal struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Pesel     string `json:"pesel" validate:"omitempty,len=11,numeric"`
}

// Company — профиль компании.
type Company struct {
	Name string `json:"company_name" validate:"required"`
	Krs  string `json:"krs" validate:"omitempty,len=10,numeric"`
}

// Client — клиент поставщика ПО. Ровно одно из полей Personal и Company
// заполнено, и оно определяет Kind. Идентификатор (PESEL или KRS)
// задаётся при создании и больше не меняется.
type Client struct {
	ID          int64      `json:"id"`
	Kind        ClientKind `json:"kind"`
	Contact     Contact    `json:"contact"`
	Personal    *Personal  `json:"person,omitempty"`
	Company     *Company   `json:"company,omitempty"`
	SoftDeleted bool       `json:"-"`
}

// Identity возвращает неизменяемый идентификатор клиента.
func (c Client) Identity() string {
	switch c.Kind {
	case ClientPersonal:
		return c.Personal.Pesel
	case ClientCompany:
		return c.Company.Krs
	default:
		return ""
	}
}

// ClientRequest используется для приёма данных клиента из JSON-запроса.
// Должен быть заполнен ровно один из профилей person или company.
type ClientRequest struct {
	Contact Contact   `json:"contact" validate:"required"`
	Person  *Personal `json:"person,omitempty" validate:"omitempty"`
	Company *Company  `json:"company,omitempty" validate:"omitempty"`
}

// HasPesel сообщает, передан ли в запросе PESEL.
func (r ClientRequest) HasPesel() bool {
	return r.Person != nil && strings.TrimSpace(r.Person.Pesel) != ""
}

// HasKrs сообщает, передан ли в запросе KRS.
func (r ClientRequest) HasKrs() bool {
	return r.Company != nil && strings.TrimSpace(r.Company.Krs) != ""
}
