package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// CreateClient вставляет клиента и возвращает его ID.
func (s *Storage) CreateClient(ctx context.Context, c models.Client) (int64, error) {
	const op = "storage.CreateClient"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var (
		firstName, lastName, pesel, companyName, krs sql.NullString
	)
	if c.Personal != nil {
		firstName = sql.NullString{String: c.Personal.FirstName, Valid: true}
		lastName = sql.NullString{String: c.Personal.LastName, Valid: true}
		pesel = sql.NullString{String: c.Personal.Pesel, Valid: true}
	}
	if c.Company != nil {
		companyName = sql.NullString{String: c.Company.Name, Valid: true}
		krs = sql.NullString{String: c.Company.Krs, Valid: true}
	}

	query := `INSERT INTO clients (kind, email, phone, address, first_name, last_name, pesel, company_name, krs)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var id int64
	err := s.conn(ctx).QueryRowContext(ctx, query,
		string(c.Kind), c.Contact.Email, c.Contact.Phone, c.Contact.Address,
		firstName, lastName, pesel, companyName, krs).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "") {
			return 0, fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.ErrDuplicateIdentity, err, "client with identity %s already exists", c.Identity()))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Client возвращает не удалённого клиента по ID.
func (s *Storage) Client(ctx context.Context, id int64) (*models.Client, error) {
	const op = "storage.Client"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, kind, email, phone, address, first_name, last_name, pesel, company_name, krs
			  FROM clients
			  WHERE id = $1 AND NOT is_soft_deleted`
	var (
		c                                            models.Client
		kind                                         string
		firstName, lastName, pesel, companyName, krs sql.NullString
	)
	err := s.conn(ctx).QueryRowContext(ctx, query, id).Scan(&c.ID, &kind,
		&c.Contact.Email, &c.Contact.Phone, &c.Contact.Address,
		&firstName, &lastName, &pesel, &companyName, &krs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.NotFound("client", id))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.Kind = models.ClientKind(kind)
	switch c.Kind {
	case models.ClientPersonal:
		c.Personal = &models.Personal{FirstName: firstName.String, LastName: lastName.String, Pesel: pesel.String}
	case models.ClientCompany:
		c.Company = &models.Company{Name: companyName.String, Krs: krs.String}
	}
	return &c, nil
}

// UpdateClient сохраняет контактные данные и имена. PESEL, KRS и вид клиента не меняются.
func (s *Storage) UpdateClient(ctx context.Context, c models.Client) error {
	const op = "storage.UpdateClient"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	var firstName, lastName, companyName sql.NullString
	if c.Personal != nil {
		firstName = sql.NullString{String: c.Personal.FirstName, Valid: true}
		lastName = sql.NullString{String: c.Personal.LastName, Valid: true}
	}
	if c.Company != nil {
		companyName = sql.NullString{String: c.Company.Name, Valid: true}
	}

	query := `UPDATE clients
			  SET email = $1, phone = $2, address = $3,
			      first_name = COALESCE($4, first_name),
			      last_name = COALESCE($5, last_name),
			      company_name = COALESCE($6, company_name)
			  WHERE id = $7 AND NOT is_soft_deleted`
	result, err := s.conn(ctx).ExecContext(ctx, query,
		c.Contact.Email, c.Contact.Phone, c.Contact.Address, firstName, lastName, companyName, c.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(result, op, "client", c.ID)
}

// SoftDeleteClient помечает клиента удалённым.
func (s *Storage) SoftDeleteClient(ctx context.Context, id int64) error {
	const op = "storage.SoftDeleteClient"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE clients SET is_soft_deleted = true WHERE id = $1 AND NOT is_soft_deleted`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(result, op, "client", id)
}

// ClientExists сообщает, существует ли не удалённый клиент.
func (s *Storage) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	const op = "storage.ClientExists"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1 AND NOT is_soft_deleted)`, clientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// LockClient блокирует строку клиента до конца транзакции. Параллельные
// создания договоров и подписок одного клиента выполняются по очереди.
func (s *Storage) LockClient(ctx context.Context, clientID int64) (bool, error) {
	const op = "storage.LockClient"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var id int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id FROM clients WHERE id = $1 AND NOT is_soft_deleted FOR UPDATE`, clientID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func requireAffected(result sql.Result, op, entity string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, apperr.NotFound(entity, id))
	}
	return nil
}
