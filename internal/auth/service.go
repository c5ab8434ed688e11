// Package auth はユーザー登録、メール確認、ログイン、Google OAuthログインを提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/mogumogu/internal/model"
	"github.com/hitoshi/mogumogu/internal/repository"
	"github.com/hitoshi/mogumogu/internal/security"
)

// GoogleUserInfo はGoogleから取得したユーザー情報を表す。
type GoogleUserInfo struct {
	GoogleID string
	Email    string
	Name     string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*GoogleUserInfo, error)
}

// VerificationMailer はメールアドレス確認メールの送信インターフェース。
type VerificationMailer interface {
	// SendVerification は確認リンク付きのメールを送信する。
	SendVerification(ctx context.Context, toEmail, toName, userID string) error
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Name     string
	Country  string
	Email    string
	Password string
}

const minPasswordLength = 6

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
)

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   *TokenIssuer
	oauth    OAuthProvider
	mailer   VerificationMailer
}

// NewService はServiceを生成する。
// mailerがnilの場合、確認メールの送信はスキップされる。
func NewService(
	userRepo repository.UserRepository,
	tokens *TokenIssuer,
	oauth OAuthProvider,
	mailer VerificationMailer,
) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		oauth:    oauth,
		mailer:   mailer,
	}
}

// validateRegisterInput は登録入力を検証する。
// 最初の違反で打ち切らず、検出した全ての違反を返す。
func validateRegisterInput(input RegisterInput) model.ValidationErrors {
	var errs model.ValidationErrors

	if input.Name == "" {
		errs = append(errs, model.FieldError{Field: "name", Message: "名前を入力してください。"})
	}
	if !emailPattern.MatchString(input.Email) {
		errs = append(errs, model.FieldError{Field: "email", Message: "メールアドレスの形式が正しくありません。"})
	}
	if len(input.Password) < minPasswordLength {
		errs = append(errs, model.FieldError{Field: "password", Message: "パスワードは6文字以上で入力してください。"})
	}
	if !digitPattern.MatchString(input.Password) {
		errs = append(errs, model.FieldError{Field: "password", Message: "パスワードには数字を1文字以上含めてください。"})
	}
	if !letterPattern.MatchString(input.Password) {
		errs = append(errs, model.FieldError{Field: "password", Message: "パスワードには英字を1文字以上含めてください。"})
	}

	return errs
}

// Register は新規ユーザーを未確認状態で登録し、確認メールを送信する。
// メール送信は非同期で行い、失敗しても登録自体は成功扱いとする。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if errs := validateRegisterInput(input); len(errs) > 0 {
		return nil, errs
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Country:      input.Country,
		Email:        input.Email,
		PasswordHash: hash,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, model.NewUserAlreadyExistsError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	if s.mailer != nil {
		go func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.mailer.SendVerification(sendCtx, user.Email, user.Name, user.ID); err != nil {
				slog.Error("failed to send verification email",
					slog.String("user_id", user.ID),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	return user, nil
}

// VerifyEmail はメール確認リンクのユーザーIDを受け取り、確認済みに更新する。
// すでに確認済みのユーザーに対しても成功を返す（冪等）。
func (s *Service) VerifyEmail(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if err := s.userRepo.SetVerified(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	slog.Info("email verified", slog.String("user_id", userID))
	return nil
}

// Login はメールアドレスとパスワードで認証し、アクセストークンを発行する。
// メールアドレス未登録とパスワード不一致は同一のエラーを返す。
// メール未確認の場合は認証失敗とは別のエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	if !user.IsVerified {
		return "", nil, model.NewEmailNotVerifiedError()
	}

	if !user.HasPassword() || !security.VerifyPassword(password, user.PasswordHash) {
		return "", nil, model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return token, user, nil
}

// GetLoginURL はGoogle OAuthの認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// GoogleLogin はOAuthコールバックの認可コードを処理し、アクセストークンを発行する。
// 未登録ユーザーは確認済み状態で自動作成する。
// 同一メールアドレスの既存ユーザーにはGoogleアカウントを紐付ける。
func (s *Service) GoogleLogin(ctx context.Context, code string) (string, *model.User, error) {
	info, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	user, err := s.resolveGoogleUser(ctx, info)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in via google", slog.String("user_id", user.ID))
	return token, user, nil
}

// resolveGoogleUser はGoogleのユーザー情報から既存ユーザーを特定するか、新規作成する。
func (s *Service) resolveGoogleUser(ctx context.Context, info *GoogleUserInfo) (*model.User, error) {
	user, err := s.userRepo.FindByGoogleID(ctx, info.GoogleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by google id: %w", err)
	}
	if user != nil {
		return user, nil
	}

	// 同一メールアドレスで登録済みならGoogleアカウントを紐付ける
	user, err = s.userRepo.FindByEmail(ctx, info.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user != nil {
		return s.linkGoogleAccount(ctx, user, info.GoogleID)
	}

	now := time.Now()
	newUser := &model.User{
		ID:         uuid.New().String(),
		Name:       info.Name,
		Email:      info.Email,
		GoogleID:   info.GoogleID,
		IsVerified: true, // Googleがメールアドレスの所有を保証している
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if repository.IsUniqueViolation(err) {
			// 同時リクエストに作成を先行された場合は読み直す
			return s.rereadGoogleUser(ctx, info)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created via google",
		slog.String("user_id", newUser.ID),
		slog.String("email", newUser.Email),
	)
	return newUser, nil
}

// linkGoogleAccount は既存ユーザーにGoogleアカウントを紐付けて確認済みにする。
func (s *Service) linkGoogleAccount(ctx context.Context, user *model.User, googleID string) (*model.User, error) {
	if err := s.userRepo.LinkGoogleID(ctx, user.ID, googleID); err != nil {
		return nil, fmt.Errorf("failed to link google account: %w", err)
	}
	if !user.IsVerified {
		if err := s.userRepo.SetVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to mark user verified: %w", err)
		}
		user.IsVerified = true
	}
	user.GoogleID = googleID

	slog.Info("google account linked", slog.String("user_id", user.ID))
	return user, nil
}

// rereadGoogleUser は一意制約違反後の再読み込みを行う。
func (s *Service) rereadGoogleUser(ctx context.Context, info *GoogleUserInfo) (*model.User, error) {
	user, err := s.userRepo.FindByGoogleID(ctx, info.GoogleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by google id: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user, err = s.userRepo.FindByEmail(ctx, info.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user disappeared after unique violation")
	}
	return s.linkGoogleAccount(ctx, user, info.GoogleID)
}

// GenerateState はCSRF対策用のOAuth stateパラメータを生成する。
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
