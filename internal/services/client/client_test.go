package client

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateClient(ctx context.Context, c models.Client) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) Client(ctx context.Context, id int64) (*models.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *RepoMock) UpdateClient(ctx context.Context, c models.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *RepoMock) SoftDeleteClient(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var contact = models.Contact{Email: "jan@example.com", Phone: "+48500100200", Address: "Warszawa"}

func person() *models.Personal {
	return &models.Personal{FirstName: "Jan", LastName: "Kowalski", Pesel: "90010112345"}
}

func company() *models.Company {
	return &models.Company{Name: "Acme", Krs: "0000123456"}
}

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		req      models.ClientRequest
		wantKind models.ClientKind
		wantErr  error
	}{
		{
			name:     "person",
			req:      models.ClientRequest{Contact: contact, Person: person()},
			wantKind: models.ClientPersonal,
		},
		{
			name:     "company",
			req:      models.ClientRequest{Contact: contact, Company: company()},
			wantKind: models.ClientCompany,
		},
		{
			name:    "both profiles",
			req:     models.ClientRequest{Contact: contact, Person: person(), Company: company()},
			wantErr: apperr.ErrInvalidClient,
		},
		{
			name:    "no profile",
			req:     models.ClientRequest{Contact: contact},
			wantErr: apperr.ErrInvalidClient,
		},
		{
			name:    "person without pesel",
			req:     models.ClientRequest{Contact: contact, Person: &models.Personal{FirstName: "Jan", LastName: "K"}},
			wantErr: apperr.ErrInvalidClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewClientService(repo, newNoopLogger())
			repo.On("CreateClient", ctx, mock.AnythingOfType("models.Client")).Return(int64(1), nil).Maybe()

			c, err := svc.Create(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "CreateClient", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, c.Kind)
			assert.Equal(t, int64(1), c.ID)
		})
	}

	t.Run("duplicate identity from storage", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewClientService(repo, newNoopLogger())
		repo.On("CreateClient", ctx, mock.AnythingOfType("models.Client")).
			Return(int64(0), apperr.New(apperr.ErrDuplicateIdentity, "pesel taken"))

		_, err := svc.Create(ctx, models.ClientRequest{Contact: contact, Person: person()})
		assert.ErrorIs(t, err, apperr.ErrDuplicateIdentity)
	})
}

func TestClientService_Update(t *testing.T) {
	ctx := context.Background()
	stored := func() *models.Client {
		return &models.Client{ID: 1, Kind: models.ClientPersonal, Contact: contact, Personal: person()}
	}

	t.Run("changes names and contact", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewClientService(repo, newNoopLogger())
		repo.On("Client", ctx, int64(1)).Return(stored(), nil)
		repo.On("UpdateClient", ctx, mock.MatchedBy(func(c models.Client) bool {
			return c.Personal.LastName == "Nowak" && c.Personal.Pesel == "90010112345" && c.Contact.Phone == "123"
		})).Return(nil)

		newContact := contact
		newContact.Phone = "123"
		got, err := svc.Update(ctx, 1, models.ClientRequest{
			Contact: newContact,
			Person:  &models.Personal{FirstName: "Jan", LastName: "Nowak"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Nowak", got.Personal.LastName)
		repo.AssertExpectations(t)
	})

	rejected := []struct {
		name    string
		req     models.ClientRequest
		wantErr error
	}{
		{
			name:    "different pesel",
			req:     models.ClientRequest{Contact: contact, Person: &models.Personal{FirstName: "Jan", LastName: "K", Pesel: "00000000000"}},
			wantErr: apperr.ErrImmutableIdentity,
		},
		{
			name:    "person becomes company",
			req:     models.ClientRequest{Contact: contact, Company: company()},
			wantErr: apperr.ErrImmutableIdentity,
		},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewClientService(repo, newNoopLogger())
			repo.On("Client", ctx, int64(1)).Return(stored(), nil)

			_, err := svc.Update(ctx, 1, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "UpdateClient", mock.Anything, mock.Anything)
		})
	}

	t.Run("both profiles", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewClientService(repo, newNoopLogger())

		_, err := svc.Update(ctx, 1, models.ClientRequest{Contact: contact, Person: person(), Company: company()})
		assert.ErrorIs(t, err, apperr.ErrInvalidClient)
	})
}

func TestClientService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	svc := NewClientService(repo, newNoopLogger())
	repo.On("SoftDeleteClient", ctx, int64(4)).Return(apperr.NotFound("client", 4))

	err := svc.Delete(ctx, 4)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
