package storefront

import (
	"context"

	"github.com/storefront/backend/internal/domain/configurator"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/stretchr/testify/mock"
)

// MockShopReader is a mock implementation of shop.Reader
type MockShopReader struct {
	mock.Mock
}

func (m *MockShopReader) Read(ctx context.Context, ids []int, tc shared.TranslationContext) (*shop.Collection, error) {
	args := m.Called(ctx, ids, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shop.Collection), args.Error(1)
}

// MockPageReader is a mock implementation of shop.PageReader
type MockPageReader struct {
	mock.Mock
}

func (m *MockPageReader) GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*shop.Page, error) {
	args := m.Called(ctx, ids, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]*shop.Page), args.Error(1)
}

// MockConfiguratorRepository is a mock implementation of configurator.Repository
type MockConfiguratorRepository struct {
	mock.Mock
}

func (m *MockConfiguratorRepository) FindSetByProduct(ctx context.Context, productID int, tc shared.TranslationContext) (*configurator.Set, error) {
	args := m.Called(ctx, productID, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*configurator.Set), args.Error(1)
}

func (m *MockConfiguratorRepository) FindVariants(ctx context.Context, productID int) ([]*configurator.Variant, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*configurator.Variant), args.Error(1)
}

func (m *MockConfiguratorRepository) FindVariantGroupsByNumbers(ctx context.Context, numbers []string, tc shared.TranslationContext) (map[string][]*configurator.Group, error) {
	args := m.Called(ctx, numbers, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]*configurator.Group), args.Error(1)
}
