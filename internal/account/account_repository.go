package account

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"crosspost/internal/dbmysql"
)

type AccountRepository interface {
	ListByUser(ctx context.Context, userID uint64) ([]dbmysql.ConnectedAccount, error)
	FindByUserAndPlatform(ctx context.Context, userID uint64, platformID string) (*dbmysql.ConnectedAccount, error)
	// FindActive resolves the credential for (owner, platform); a missing
	// account is (nil, nil). This is the resolver the publish engine uses.
	FindActive(ctx context.Context, userID uint64, platformID string) (*dbmysql.ConnectedAccount, error)
	CreateAccount(ctx context.Context, account *dbmysql.ConnectedAccount) error
	UpdateAccount(ctx context.Context, account *dbmysql.ConnectedAccount) error
	DeleteAccount(ctx context.Context, accountID uint64) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uint64) ([]dbmysql.ConnectedAccount, error) {
	var accounts []dbmysql.ConnectedAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("connected_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) FindByUserAndPlatform(ctx context.Context, userID uint64, platformID string) (*dbmysql.ConnectedAccount, error) {
	var account dbmysql.ConnectedAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform_id = ?", userID, platformID).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindActive(ctx context.Context, userID uint64, platformID string) (*dbmysql.ConnectedAccount, error) {
	var account dbmysql.ConnectedAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform_id = ? AND is_active = ?", userID, platformID, true).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) CreateAccount(ctx context.Context, account *dbmysql.ConnectedAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) UpdateAccount(ctx context.Context, account *dbmysql.ConnectedAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepository) DeleteAccount(ctx context.Context, accountID uint64) error {
	return r.db.WithContext(ctx).Delete(&dbmysql.ConnectedAccount{}, accountID).Error
}
