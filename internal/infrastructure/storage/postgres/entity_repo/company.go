package entity_repo

import (
	"pms/internal/domain/company"
	"pms/internal/infrastructure/storage/postgres"
)

// CompanyRepo implements company.Repository.
type CompanyRepo struct {
	*BaseRepo[*company.Company]
}

// NewCompanyRepo creates a new company repository.
func NewCompanyRepo(txManager *postgres.TxManager) *CompanyRepo {
	return &CompanyRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"companies",
			postgres.ExtractDBColumns[company.Company](),
			[]string{"name", "code"},
			func() *company.Company { return &company.Company{} },
		),
	}
}
