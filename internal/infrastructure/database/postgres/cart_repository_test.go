package postgres_test

import (
	"testing"

	"github.com/alma-store/storefront-api/internal/domain/cart"
	"github.com/alma-store/storefront-api/internal/infrastructure/database/postgres"
	"github.com/alma-store/storefront-api/internal/pkg/logger"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type cartRepositorySuite struct {
	suite.Suite

	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	repo      *postgres.CartRepository
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(cartRepositorySuite))
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	container, err := tcpostgres.Run(ctx, "postgres:17.6-alpine3.22",
		tcpostgres.BasicWaitStrategies(),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	suite.db, err = gorm.Open(gormpostgres.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)

	suite.Require().NoError(postgres.NewMigration(suite.db, logger.Discard()).RunAutoMigrations())

	suite.repo = postgres.NewCartRepository(suite.db, "alma_cart")
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	if suite.db != nil {
		if sqlDB, err := suite.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if suite.container != nil {
		_ = testcontainers.TerminateContainer(suite.container)
	}
}

func (suite *cartRepositorySuite) TestSaveAndLoad() {
	defer suite.deleteAll()
	ctx := suite.T().Context()

	tests := []struct {
		name  string
		owner string
		saves [][]cart.LineItem
	}{
		{
			name:  "single save",
			owner: "session:" + gofakeit.UUID(),
			saves: [][]cart.LineItem{{randomItem(), randomItem()}},
		},
		{
			name:  "second save replaces the record",
			owner: "user:" + gofakeit.UUID(),
			saves: [][]cart.LineItem{{randomItem()}, {randomItem(), randomItem(), randomItem()}},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			for _, items := range tt.saves {
				suite.Require().NoError(suite.repo.Save(ctx, tt.owner, items))
			}

			loaded, err := suite.repo.Load(ctx, tt.owner)
			suite.Require().NoError(err)
			assertItems(suite.T(), tt.saves[len(tt.saves)-1], loaded)
		})
	}
}

func (suite *cartRepositorySuite) TestLoadMissing() {
	items, err := suite.repo.Load(suite.T().Context(), "session:"+gofakeit.UUID())
	suite.NoError(err)
	suite.Empty(items)
}

func (suite *cartRepositorySuite) TestNamespacesAreIsolated() {
	defer suite.deleteAll()
	ctx := suite.T().Context()

	other := postgres.NewCartRepository(suite.db, "other_shop")
	suite.Require().NoError(suite.repo.Save(ctx, "user:1", []cart.LineItem{randomItem()}))

	items, err := other.Load(ctx, "user:1")
	suite.NoError(err)
	suite.Empty(items)
}

func (suite *cartRepositorySuite) TestDelete() {
	defer suite.deleteAll()
	ctx := suite.T().Context()

	suite.Require().NoError(suite.repo.Save(ctx, "user:2", []cart.LineItem{randomItem()}))
	suite.Require().NoError(suite.repo.Delete(ctx, "user:2"))

	items, err := suite.repo.Load(ctx, "user:2")
	suite.NoError(err)
	suite.Empty(items)

	suite.NoError(suite.repo.Delete(ctx, "user:2"))
	suite.ErrorIs(suite.repo.Delete(ctx, ""), cart.ErrOwnerRequired)
}

func (suite *cartRepositorySuite) TestStoreLifecycle() {
	defer suite.deleteAll()
	ctx := suite.T().Context()

	store, err := cart.Open(ctx, "session:lifecycle", suite.repo, logger.Discard())
	suite.Require().NoError(err)
	store.AddQuantity(ctx, cart.LineItem{ID: "1", PriceNumber: decimal.NewFromInt(50)}, 2)
	store.AddToCart(ctx, cart.LineItem{ID: "2", PriceNumber: decimal.NewFromInt(25)})

	reopened, err := cart.Open(ctx, "session:lifecycle", suite.repo, logger.Discard())
	suite.Require().NoError(err)
	suite.Equal(3, reopened.Snapshot().Totals.TotalItems)
	suite.True(decimal.NewFromInt(125).Equal(reopened.Snapshot().Totals.TotalPrice))

	reopened.ClearCart(ctx)

	var count int64
	suite.Require().NoError(suite.db.Model(&postgres.CartRecord{}).
		Where("owner = ?", "session:lifecycle").
		Count(&count).Error)
	suite.Zero(count)
}

func (suite *cartRepositorySuite) deleteAll() {
	err := suite.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&postgres.CartRecord{}).Error
	suite.NoError(err)
}

func randomItem() cart.LineItem {
	return cart.LineItem{
		ID:             cart.ItemID(gofakeit.UUID()),
		Name:           gofakeit.ProductName(),
		Collection:     gofakeit.ProductCategory(),
		Price:          gofakeit.Word(),
		PriceNumber:    decimal.NewFromFloat(gofakeit.Price(1, 5000)).Round(2),
		Image:          gofakeit.URL(),
		Specifications: []string{gofakeit.Word()},
		Quantity:       gofakeit.IntRange(1, 5),
	}
}

func assertItems(t *testing.T, expected, actual []cart.LineItem) {
	t.Helper()

	diff := cmp.Diff(expected, actual,
		cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) }),
		cmpopts.EquateEmpty(),
	)
	require.Empty(t, diff)
}
