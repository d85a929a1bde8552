package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

const contractColumns = `ct.id, ct.client_id, ct.product_version_id, pv.product_id, ct.start_date, ct.end_date,
	ct.price, ct.support_years, ct.is_signed`

// contractFrom соединяет договоры с версиями продуктов и отсекает мягко удалённых клиентов.
const contractFrom = `FROM contracts ct
	JOIN product_versions pv ON pv.id = ct.product_version_id
	JOIN clients c ON c.id = ct.client_id AND NOT c.is_soft_deleted`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (models.Contract, error) {
	var c models.Contract
	err := row.Scan(&c.ID, &c.ClientID, &c.ProductVersionID, &c.ProductID, &c.StartDate, &c.EndDate,
		&c.Price, &c.SupportYears, &c.Signed)
	return c, err
}

// CreateContract вставляет договор вместе со снимками применённых скидок.
// Вызывается внутри WithinTx, чтобы договор и скидки записались атомарно.
func (s *Storage) CreateContract(ctx context.Context, c models.Contract) (int64, error) {
	const op = "storage.CreateContract"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO contracts (client_id, product_version_id, start_date, end_date, price, support_years, is_signed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		c.ClientID, c.ProductVersionID, c.StartDate, c.EndDate, c.Price, c.SupportYears, c.Signed).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, d := range c.Discounts {
		_, err := s.conn(ctx).ExecContext(ctx,
			`INSERT INTO contract_discounts (contract_id, discount_id, name, category, percentage, applied_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, d.DiscountID, d.Name, string(d.Category), d.Percentage, d.AppliedAt)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}
	return id, nil
}

// Contract возвращает договор с платежами и скидками.
func (s *Storage) Contract(ctx context.Context, id int64) (*models.Contract, error) {
	return s.contract(ctx, "storage.Contract", id, false)
}

// ContractForUpdate возвращает договор с платежами и блокирует строку договора
// до конца транзакции, так что платежи по одному договору записываются по очереди.
func (s *Storage) ContractForUpdate(ctx context.Context, id int64) (*models.Contract, error) {
	return s.contract(ctx, "storage.ContractForUpdate", id, true)
}

func (s *Storage) contract(ctx context.Context, op string, id int64, lock bool) (*models.Contract, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + contractColumns + ` ` + contractFrom + ` WHERE ct.id = $1`
	if lock {
		query += ` FOR UPDATE OF ct`
	}
	c, err := scanContract(s.conn(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.NotFound("contract", id))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payments, err := s.contractPayments(ctx, []int64{c.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.Payments = payments[c.ID]

	c.Discounts, err = s.appliedDiscounts(ctx,
		`SELECT discount_id, name, category, percentage, applied_at
		 FROM contract_discounts WHERE contract_id = $1 ORDER BY discount_id`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// ContractsByClient возвращает договоры клиента с платежами.
func (s *Storage) ContractsByClient(ctx context.Context, clientID int64) ([]models.Contract, error) {
	const op = "storage.ContractsByClient"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	contracts, err := s.listContracts(ctx,
		`SELECT `+contractColumns+` `+contractFrom+` WHERE ct.client_id = $1 ORDER BY ct.id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return contracts, nil
}

// AddContractPayment добавляет платёж по договору и возвращает его ID.
func (s *Storage) AddContractPayment(ctx context.Context, p models.Payment) (int64, error) {
	const op = "storage.AddContractPayment"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO contract_payments (contract_id, amount, paid_at) VALUES ($1, $2, $3) RETURNING id`,
		p.ContractID, p.Amount, p.PaidAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// MarkContractSigned переводит договор в подписанные.
func (s *Storage) MarkContractSigned(ctx context.Context, id int64) error {
	const op = "storage.MarkContractSigned"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.conn(ctx).ExecContext(ctx, `UPDATE contracts SET is_signed = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(result, op, "contract", id)
}

func (s *Storage) listContracts(ctx context.Context, query string, args ...any) ([]models.Contract, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := make([]models.Contract, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return contracts, nil
	}

	payments, err := s.contractPayments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range contracts {
		contracts[i].Payments = payments[contracts[i].ID]
	}
	return contracts, nil
}

func (s *Storage) contractPayments(ctx context.Context, contractIDs []int64) (map[int64][]models.Payment, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, contract_id, amount, paid_at FROM contract_payments
		 WHERE contract_id = ANY($1) ORDER BY paid_at, id`, contractIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]models.Payment, len(contractIDs))
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.ContractID, &p.Amount, &p.PaidAt); err != nil {
			return nil, err
		}
		result[p.ContractID] = append(result[p.ContractID], p)
	}
	return result, rows.Err()
}

func (s *Storage) appliedDiscounts(ctx context.Context, query string, ownerID int64) ([]models.AppliedDiscount, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.AppliedDiscount
	for rows.Next() {
		var (
			d   models.AppliedDiscount
			cat string
		)
		if err := rows.Scan(&d.DiscountID, &d.Name, &cat, &d.Percentage, &d.AppliedAt); err != nil {
			return nil, err
		}
		d.Category = models.DiscountCategory(cat)
		result = append(result, d)
	}
	return result, rows.Err()
}
