package repository

import (
	"context"

	"reelhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository defines interface for identity records of the session service.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	FindOrCreate(ctx context.Context, account *models.Account) (*models.Account, error)
}

type accountRepository struct {
	table
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *gorm.DB, cols models.Collections) AccountRepository {
	return &accountRepository{table: newTable(db, cols.Accounts)}
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.q(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, translate(err, "Account", id)
	}
	return &account, nil
}

// FindOrCreate returns the account for (provider, subject), creating it on first sight.
// Email and name are refreshed from the provider on every login.
func (r *accountRepository) FindOrCreate(ctx context.Context, account *models.Account) (*models.Account, error) {
	err := r.q(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
	}).Create(account).Error
	if err != nil {
		return nil, translate(err, "Account", account.Subject)
	}

	var stored models.Account
	err = r.q(ctx).Where("provider = ? AND subject = ?", account.Provider, account.Subject).First(&stored).Error
	if err != nil {
		return nil, translate(err, "Account", account.Subject)
	}
	return &stored, nil
}
