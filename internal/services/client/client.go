// Package client реализует реестр клиентов: физических лиц с PESEL и компаний с KRS.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// ClientRepository определяет методы для работы с клиентами в хранилище.
type ClientRepository interface {
	// CreateClient сохраняет клиента и возвращает его ID. Занятый PESEL или KRS
	// отклоняется с apperr.ErrDuplicateIdentity.
	CreateClient(ctx context.Context, c models.Client) (int64, error)
	// Client возвращает не удалённого клиента по ID.
	Client(ctx context.Context, id int64) (*models.Client, error)
	// UpdateClient сохраняет контактные данные и профиль клиента.
	UpdateClient(ctx context.Context, c models.Client) error
	// SoftDeleteClient помечает клиента удалённым.
	SoftDeleteClient(ctx context.Context, id int64) error
}

// ClientService реализует бизнес-логику реестра клиентов.
type ClientService struct {
	repo ClientRepository
	log  *slog.Logger
}

// NewClientService создает новый экземпляр ClientService.
func NewClientService(repo ClientRepository, log *slog.Logger) *ClientService {
	return &ClientService{
		repo: repo,
		log:  log,
	}
}

// Create регистрирует клиента. В запросе должен быть ровно один профиль:
// физическое лицо с PESEL или компания с KRS.
func (s *ClientService) Create(ctx context.Context, req models.ClientRequest) (*models.Client, error) {
	const op = "client.Create"

	c := models.Client{Contact: req.Contact}
	switch {
	case req.Person != nil && req.Company != nil:
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrInvalidClient, "client must be either a person or a company"))
	case req.Person != nil:
		if !req.HasPesel() {
			return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrInvalidClient, "pesel is required for a person"))
		}
		c.Kind = models.ClientPersonal
		person := *req.Person
		c.Personal = &person
	case req.Company != nil:
		if !req.HasKrs() {
			return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrInvalidClient, "krs is required for a company"))
		}
		c.Kind = models.ClientCompany
		company := *req.Company
		c.Company = &company
	default:
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrInvalidClient, "person or company profile is required"))
	}

	id, err := s.repo.CreateClient(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.ID = id

	s.log.Info("registered new client", slog.Int64("id", id), slog.String("kind", string(c.Kind)))
	return &c, nil
}

// Update меняет контактные данные и профиль клиента. PESEL или KRS можно
// не передавать; переданный должен совпадать с сохранённым. Сменить вид
// клиента нельзя.
func (s *ClientService) Update(ctx context.Context, id int64, req models.ClientRequest) (*models.Client, error) {
	const op = "client.Update"

	if req.Person != nil && req.Company != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrInvalidClient, "client must be either a person or a company"))
	}

	c, err := s.repo.Client(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch c.Kind {
	case models.ClientPersonal:
		if req.Company != nil {
			return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrImmutableIdentity, "person cannot become a company"))
		}
		if req.Person != nil {
			if req.HasPesel() && req.Person.Pesel != c.Personal.Pesel {
				return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrImmutableIdentity, "pesel cannot be changed"))
			}
			c.Personal.FirstName = req.Person.FirstName
			c.Personal.LastName = req.Person.LastName
		}
	case models.ClientCompany:
		if req.Person != nil {
			return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrImmutableIdentity, "company cannot become a person"))
		}
		if req.Company != nil {
			if req.HasKrs() && req.Company.Krs != c.Company.Krs {
				return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrImmutableIdentity, "krs cannot be changed"))
			}
			c.Company.Name = req.Company.Name
		}
	}
	c.Contact = req.Contact

	if err := s.repo.UpdateClient(ctx, *c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("updated client", slog.Int64("id", id))
	return c, nil
}

// Get возвращает клиента по ID.
func (s *ClientService) Get(ctx context.Context, id int64) (*models.Client, error) {
	c, err := s.repo.Client(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("client.Get: %w", err)
	}
	return c, nil
}

// Delete мягко удаляет клиента. Его договоры, подписки и платежи
// перестают попадать в выборки.
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDeleteClient(ctx, id); err != nil {
		return fmt.Errorf("client.Delete: %w", err)
	}
	s.log.Info("client soft-deleted", slog.Int64("id", id))
	return nil
}
