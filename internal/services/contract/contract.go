// Package contract содержит бизнес-логику жизненного цикла договоров:
// проверку права на покупку, расчёт цены, приём платежей и подписание.
package contract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/events"
	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/metrics"
	"github.com/magabrotheeeer/software-billing/internal/models"
	"github.com/magabrotheeeer/software-billing/internal/services/pricing"
)

// Границы срока договора в днях, обе не включительно.
const (
	MinTermDays = 3
	MaxTermDays = 30
)

// ContractRepository определяет методы хранилища, нужные для работы с договорами.
type ContractRepository interface {
	// WithinTx выполняет fn в одной транзакции.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockClient блокирует запись клиента до конца транзакции и сообщает, существует ли он.
	LockClient(ctx context.Context, clientID int64) (bool, error)
	// ClientExists сообщает, существует ли клиент.
	ClientExists(ctx context.Context, clientID int64) (bool, error)
	// ProductVersion возвращает версию продукта или apperr.ErrNotFound.
	ProductVersion(ctx context.Context, id int64) (*models.ProductVersion, error)
	// ContractsByClient возвращает договоры клиента с платежами.
	ContractsByClient(ctx context.Context, clientID int64) ([]models.Contract, error)
	// SubscriptionsByClient возвращает подписки клиента с платежами.
	SubscriptionsByClient(ctx context.Context, clientID int64) ([]models.Subscription, error)
	// CreateContract сохраняет договор вместе с применёнными скидками и возвращает его ID.
	CreateContract(ctx context.Context, c models.Contract) (int64, error)
	// ContractForUpdate возвращает договор с платежами и блокирует его до конца транзакции.
	ContractForUpdate(ctx context.Context, id int64) (*models.Contract, error)
	// Contract возвращает договор с платежами.
	Contract(ctx context.Context, id int64) (*models.Contract, error)
	// AddContractPayment добавляет платёж и возвращает его ID.
	AddContractPayment(ctx context.Context, p models.Payment) (int64, error)
	// MarkContractSigned переводит договор в подписанные.
	MarkContractSigned(ctx context.Context, id int64) error
}

// DiscountResolver находит применимые скидки.
type DiscountResolver interface {
	ResolveBest(ctx context.Context, category models.DiscountCategory, productID *int64, at time.Time) (*models.Discount, error)
	ResolveLoyaltyPercent(ctx context.Context, at time.Time) (decimal.Decimal, error)
}

// ContractService реализует жизненный цикл договоров.
type ContractService struct {
	repo      ContractRepository
	discounts DiscountResolver
	events    events.Publisher
	log       *slog.Logger
}

// NewContractService создает новый экземпляр ContractService.
func NewContractService(repo ContractRepository, discounts DiscountResolver, publisher events.Publisher, log *slog.Logger) *ContractService {
	return &ContractService{
		repo:      repo,
		discounts: discounts,
		events:    publisher,
		log:       log,
	}
}

// Create проверяет право клиента на покупку, рассчитывает цену и сохраняет
// новый неподписанный договор. now — момент создания, на который выбираются скидки.
func (s *ContractService) Create(ctx context.Context, req models.ContractRequest, now time.Time) (*models.Contract, error) {
	const op = "contract.Create"

	var created models.Contract
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.repo.LockClient(ctx, req.ClientID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("client", req.ClientID)
		}

		version, err := s.repo.ProductVersion(ctx, req.ProductVersionID)
		if err != nil {
			return err
		}

		if err := validateTerm(req.StartDate, req.EndDate); err != nil {
			return err
		}
		if req.SupportYears < 0 || req.SupportYears > pricing.MaxSupportYears {
			return apperr.New(apperr.ErrInvalidSupport, "support years must be between 0 and %d", pricing.MaxSupportYears)
		}

		contracts, err := s.repo.ContractsByClient(ctx, req.ClientID)
		if err != nil {
			return err
		}
		subscriptions, err := s.repo.SubscriptionsByClient(ctx, req.ClientID)
		if err != nil {
			return err
		}
		if hasCommitment(contracts, subscriptions, now) {
			return apperr.New(apperr.ErrAlreadyCommitted, "client %d already has an active contract or subscription", req.ClientID)
		}

		best, err := s.discounts.ResolveBest(ctx, models.DiscountUpfront, nil, now)
		if err != nil {
			return err
		}
		percent := decimal.Zero
		if best != nil {
			percent = best.Percentage
		}
		if pricing.IsLoyal(contracts, subscriptions) {
			loyalty, err := s.discounts.ResolveLoyaltyPercent(ctx, now)
			if err != nil {
				return err
			}
			percent = pricing.CombinePercent(percent, loyalty)
		}

		created = models.Contract{
			ClientID:         req.ClientID,
			ProductVersionID: version.ID,
			ProductID:        version.ProductID,
			StartDate:        req.StartDate,
			EndDate:          req.EndDate,
			Price:            pricing.ContractPrice(version.YearlyPrice, req.SupportYears, percent),
			SupportYears:     req.SupportYears,
			Signed:           false,
		}
		if best != nil {
			created.Discounts = []models.AppliedDiscount{best.Snapshot(now)}
		}

		id, err := s.repo.CreateContract(ctx, created)
		if err != nil {
			return err
		}
		created.ID = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ContractsCreated.Inc()
	s.log.Info("created new contract",
		slog.Int64("id", created.ID),
		slog.Int64("client_id", created.ClientID),
		sl.Money("price", created.Price))
	events.Emit(ctx, s.events, s.log, events.New(events.ContractCreated, now, created.Response()))

	return &created, nil
}

// AddPayment записывает платёж по договору. Если сумма платежей становится
// в точности равной цене, договор подписывается. Возвращает договор
// в состоянии после платежа.
func (s *ContractService) AddPayment(ctx context.Context, contractID int64, amount decimal.Decimal, now time.Time) (*models.Contract, error) {
	const op = "contract.AddPayment"

	var (
		contract   *models.Contract
		justSigned bool
	)
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		contract, err = s.repo.ContractForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if !amount.IsPositive() {
			return apperr.New(apperr.ErrInvalidAmount, "amount must be greater than 0")
		}
		if now.After(contract.EndDate) {
			return apperr.New(apperr.ErrExpired, "contract %d ended at %s", contract.ID, contract.EndDate.Format(time.RFC3339))
		}

		paid := contract.Paid().Add(amount)
		if paid.GreaterThan(contract.Price) {
			return apperr.New(apperr.ErrOverpayment, "payment of %s exceeds contract price %s (already paid %s)",
				amount.StringFixed(2), contract.Price.StringFixed(2), contract.Paid().StringFixed(2))
		}

		payment := models.Payment{ContractID: contract.ID, Amount: amount, PaidAt: now}
		payment.ID, err = s.repo.AddContractPayment(ctx, payment)
		if err != nil {
			return err
		}
		contract.Payments = append(contract.Payments, payment)

		if paid.Equal(contract.Price) && !contract.Signed {
			if err := s.repo.MarkContractSigned(ctx, contract.ID); err != nil {
				return err
			}
			contract.Signed = true
			justSigned = true
		}
		return nil
	})
	if err != nil {
		metrics.PaymentsRejected.WithLabelValues(metrics.KindContract, string(apperr.ReasonOf(err))).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.PaymentsRecorded.WithLabelValues(metrics.KindContract).Inc()
	s.log.Info("recorded contract payment", slog.Int64("contract_id", contractID), sl.Money("amount", amount))
	events.Emit(ctx, s.events, s.log, events.New(events.ContractPaid, now, map[string]any{
		"contract_id": contractID,
		"amount":      amount,
	}))

	if justSigned {
		metrics.ContractsSigned.Inc()
		s.log.Info("contract signed", slog.Int64("contract_id", contractID))
		events.Emit(ctx, s.events, s.log, events.New(events.ContractSigned, now, contract.Response()))
	}
	return contract, nil
}

// IsRevenueRecognized сообщает, можно ли признать выручку по договору:
// договор подписан и оплачен полностью.
func (s *ContractService) IsRevenueRecognized(ctx context.Context, contractID int64) (bool, error) {
	contract, err := s.repo.Contract(ctx, contractID)
	if err != nil {
		return false, fmt.Errorf("contract.IsRevenueRecognized: %w", err)
	}
	return contract.Signed && contract.Paid().GreaterThanOrEqual(contract.Price), nil
}

// Get возвращает договор по ID.
func (s *ContractService) Get(ctx context.Context, contractID int64) (*models.Contract, error) {
	contract, err := s.repo.Contract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("contract.Get: %w", err)
	}
	return contract, nil
}

// ListForClient возвращает договоры клиента.
func (s *ContractService) ListForClient(ctx context.Context, clientID int64) ([]models.Contract, error) {
	const op = "contract.ListForClient"
	exists, err := s.repo.ClientExists(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, apperr.NotFound("client", clientID))
	}
	contracts, err := s.repo.ContractsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return contracts, nil
}

func validateTerm(start, end time.Time) error {
	days := end.Sub(start).Hours() / 24
	if days <= MinTermDays || days >= MaxTermDays {
		return apperr.New(apperr.ErrInvalidTerm, "contract term must be longer than %d and shorter than %d days, got %.2f",
			MinTermDays, MaxTermDays, days)
	}
	return nil
}

// hasCommitment сообщает, есть ли у клиента действующая подписка или действующий подписанный договор.
func hasCommitment(contracts []models.Contract, subscriptions []models.Subscription, now time.Time) bool {
	for _, sub := range subscriptions {
		if sub.ActiveAt(now) {
			return true
		}
	}
	for _, c := range contracts {
		if c.ActiveAt(now) {
			return true
		}
	}
	return false
}
