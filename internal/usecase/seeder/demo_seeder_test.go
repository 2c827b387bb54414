package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/walletflow-backend/internal/adapter/repository/memory"
	"github.com/simaogato/walletflow-backend/internal/domain"
	"github.com/simaogato/walletflow-backend/internal/usecase/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOwnerDirectory is a mock implementation of OwnerDirectory
type MockOwnerDirectory struct {
	mock.Mock
}

func (m *MockOwnerDirectory) Exists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockOwnerDirectory) Register(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func newSeeder() (*DemoSeeder, *memory.OwnerDirectory, *memory.WalletRepository) {
	owners := memory.NewOwnerDirectory()
	wallets := memory.NewWalletRepository()
	service := wallet.NewWalletService(wallets, memory.NewTransferRepository(), owners)
	return NewDemoSeeder(owners, wallets, service), owners, wallets
}

func TestDemoSeeder_Seed_FreshStore(t *testing.T) {
	ctx := context.Background()
	seeder, owners, wallets := newSeeder()

	ids, err := seeder.Seed(ctx, DefaultDemoOwners())
	require.NoError(t, err)
	require.Len(t, ids, 2)

	for _, name := range []string{"userA", "userB"} {
		ok, err := owners.Exists(ctx, name)
		require.NoError(t, err)
		assert.True(t, ok, "owner %s should be registered", name)
	}

	a, err := wallets.GetByID(ctx, ids["userA"])
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(a.Balance))

	b, err := wallets.GetByID(ctx, ids["userB"])
	require.NoError(t, err)
	assert.True(t, b.Balance.IsZero())
}

func TestDemoSeeder_Seed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	seeder, _, wallets := newSeeder()

	first, err := seeder.Seed(ctx, DefaultDemoOwners())
	require.NoError(t, err)

	// Spend from userA; a second seed must not top it up or open another wallet
	a, err := wallets.GetByID(ctx, first["userA"])
	require.NoError(t, err)
	require.NoError(t, a.Debit(decimal.NewFromInt(400)))
	require.NoError(t, wallets.Save(ctx, a))

	second, err := seeder.Seed(ctx, DefaultDemoOwners())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	list, err := wallets.ListByOwner(ctx, "userA")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.NewFromInt(600).Equal(list[0].Balance))
}

func TestDemoSeeder_Seed_DirectoryError(t *testing.T) {
	ctx := context.Background()
	owners := new(MockOwnerDirectory)
	wallets := memory.NewWalletRepository()
	seeder := NewDemoSeeder(owners, wallets, wallet.NewWalletService(wallets, memory.NewTransferRepository(), owners))

	owners.On("Exists", ctx, "userA").Return(false, nil)
	owners.On("Register", ctx, "userA").Return(errors.New("directory down"))

	_, err := seeder.Seed(ctx, DefaultDemoOwners())

	assert.ErrorContains(t, err, "directory down")
	owners.AssertExpectations(t)
}

func TestDemoSeeder_Seed_ConcurrentRegistration(t *testing.T) {
	ctx := context.Background()
	owners := new(MockOwnerDirectory)
	wallets := memory.NewWalletRepository()
	opener := wallet.NewWalletService(wallets, memory.NewTransferRepository(), owners)
	seeder := NewDemoSeeder(owners, wallets, opener)

	// Another instance registered the owner between Exists and Register
	owners.On("Exists", ctx, "userA").Return(false, nil).Once()
	owners.On("Register", ctx, "userA").Return(domain.ErrOwnerExists)
	owners.On("Exists", ctx, "userA").Return(true, nil)

	ids, err := seeder.Seed(ctx, []DemoOwner{{Username: "userA", InitialCredit: decimal.NewFromInt(5)}})

	require.NoError(t, err)
	assert.Contains(t, ids, "userA")
}
