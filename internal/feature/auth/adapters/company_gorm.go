package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/usecase"
)

// companyGorm はCompanyRepositoryインターフェースのGORM実装です。
type companyGorm struct {
	db *gorm.DB
}

// companyGormがCompanyRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.CompanyRepository = (*companyGorm)(nil)

// NewCompanyGorm は指定されたgorm.DB接続でcompanyGormの新しいインスタンスを生成します。
func NewCompanyGorm(db *gorm.DB) *companyGorm {
	return &companyGorm{db: db}
}

// Create は企業をデータベースに追加します。
func (r *companyGorm) Create(ctx context.Context, c *entity.ClientCompany) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// List は登録済みの全企業を登録順に返します。
func (r *companyGorm) List(ctx context.Context) ([]entity.ClientCompany, error) {
	var companies []entity.ClientCompany
	if err := r.db.WithContext(ctx).Order("id").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// ConsumeCredit はAPIキーに一致する企業のクレジットを原子的に1消費します。
//
// 減算は単一のUPDATE文で行い、WHERE句でクレジット残を同時に検査する
// ことで、並行リクエスト間のcheck-then-act競合を排除します。
func (r *companyGorm) ConsumeCredit(ctx context.Context, apiKey string) (*entity.ClientCompany, error) {
	tx := r.db.WithContext(ctx).
		Model(&entity.ClientCompany{}).
		Where("api_key = ? AND credits_remaining > 0", apiKey).
		UpdateColumn("credits_remaining", gorm.Expr("credits_remaining - 1"))
	if tx.Error != nil {
		return nil, tx.Error
	}

	if tx.RowsAffected == 0 {
		// キー不一致とクレジット枯渇を区別するために再検索する
		var c entity.ClientCompany
		err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCompanyNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, usecase.ErrNoCredits
	}

	var c entity.ClientCompany
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
