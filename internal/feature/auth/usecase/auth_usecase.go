// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
)

// UserRepository は管理者ユーザーの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しい管理者ユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、エラーを返します。
	Create(ctx context.Context, user *entity.AdminUser) error

	// FindByEmail は指定されたメールアドレスに一致する管理者ユーザーを取得します。
	// ユーザーが存在しない場合、エラーを返します。
	FindByEmail(ctx context.Context, email string) (*entity.AdminUser, error)
}

// CompanyRepository はテナント企業の永続化層を抽象化します。
type CompanyRepository interface {
	// Create は新しい企業をストレージに永続化します。
	Create(ctx context.Context, company *entity.ClientCompany) error

	// List は登録済みの全企業を返します。
	List(ctx context.Context) ([]entity.ClientCompany, error)

	// ConsumeCredit はAPIキーに一致する企業のクレジットを原子的に1消費し、
	// 消費後の企業を返します。キー不一致はErrCompanyNotFound、クレジット
	// 枯渇はErrNoCreditsを返します。
	ConsumeCredit(ctx context.Context, apiKey string) (*entity.ClientCompany, error)
}

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type JWTGenerator interface {
	// GenerateToken は指定されたユーザーの署名済みJWTトークンを生成します。
	GenerateToken(userID uint, email string) (string, error)
}

// authUsecase は認証・クレジット管理のビジネスロジックを実装します。
type authUsecase struct {
	users        UserRepository
	companies    CompanyRepository
	jwtGenerator JWTGenerator
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, companies CompanyRepository, jwtGenerator JWTGenerator) *authUsecase {
	return &authUsecase{
		users:        users,
		companies:    companies,
		jwtGenerator: jwtGenerator,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// Signup はハッシュ化されたパスワードで新規管理者ユーザーを登録します。
func (u *authUsecase) Signup(ctx context.Context, email, password string) error {
	// パスワード強度を検証
	if err := validatePassword(password); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.AdminUser{Email: email, Password: string(hashed)}
	return u.users.Create(ctx, user)
}

// Login は管理者を認証し、成功時にJWTトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	// メールアドレスでユーザーを検索
	user, err := u.users.FindByEmail(ctx, email)

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	// bcrypt.CompareHashAndPasswordが常に呼ばれることを保証する
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // ダミーハッシュ
	if err == nil {
		passwordHash = user.Password
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return "", errors.New("invalid email or password")
	}

	token, tokenErr := u.jwtGenerator.GenerateToken(user.ID, user.Email)
	if tokenErr != nil {
		return "", fmt.Errorf("failed to generate token: %w", tokenErr)
	}

	return token, nil
}

// CreateCompany は新しいテナント企業を登録し、APIキーを発行します。
// APIキーは推測不能なUUIDで、初期クレジットが付与されます。
func (u *authUsecase) CreateCompany(ctx context.Context, name string) (*entity.ClientCompany, error) {
	if name == "" {
		return nil, errors.New("company name is required")
	}

	company := &entity.ClientCompany{
		Name:             name,
		APIKey:           uuid.NewString(),
		CreditsRemaining: entity.DefaultCredits,
	}
	if err := u.companies.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return company, nil
}

// ListCompanies は登録済みの全企業を返します。
func (u *authUsecase) ListCompanies(ctx context.Context) ([]entity.ClientCompany, error) {
	return u.companies.List(ctx)
}

// Authorize はAPIキーを検証し、スキャン1回分のクレジットを消費します。
// 消費はリポジトリ層で原子的に行われるため、並行リクエストでも
// クレジットが負になることはありません。
func (u *authUsecase) Authorize(ctx context.Context, apiKey string) (*entity.ClientCompany, error) {
	if apiKey == "" {
		return nil, ErrCompanyNotFound
	}
	return u.companies.ConsumeCredit(ctx, apiKey)
}
