// Package service handles login and account provisioning.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"skillaudit/internal/auth/models"
	"skillaudit/internal/auth/secrets"
	"skillaudit/internal/auth/store"
	"skillaudit/internal/auth/token"
	id "skillaudit/pkg/domain"
	dErrors "skillaudit/pkg/domain-errors"
	"skillaudit/pkg/platform/audit"
	"skillaudit/pkg/platform/sentinel"
	"skillaudit/pkg/requestcontext"
)

// AuditPublisher is the emission seam; nil disables auditing (tests).
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type Service struct {
	users   store.UserStore
	tokens  *token.Service
	auditor AuditPublisher
	logger  *slog.Logger
}

func New(users store.UserStore, tokens *token.Service, auditor AuditPublisher, logger *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, auditor: auditor, logger: logger}
}

// LoginResult pairs the signed token with the account it belongs to.
type LoginResult struct {
	Token string
	User  *models.User
}

// Login verifies credentials and issues an access token. Lookup failures
// and password mismatches produce the same error so usernames cannot be
// probed.
func (s *Service) Login(ctx context.Context, username, password, userAgentHeader string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "login lookup failed")
	}
	if !user.Active {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account is disabled")
	}
	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "password verification failed")
	}

	signed, err := s.tokens.Generate(user)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}

	s.emit(ctx, audit.Event{
		Category:  audit.CategorySecurity,
		Action:    audit.ActionUserLoggedIn,
		ActorID:   user.ID,
		Detail:    describeDevice(userAgentHeader),
		RequestID: requestcontext.RequestID(ctx),
	})
	return &LoginResult{Token: signed, User: user}, nil
}

// describeDevice turns a User-Agent header into the short note the audit
// trail records ("Chrome 120 on Linux").
func describeDevice(header string) string {
	if header == "" {
		return "unknown device"
	}
	ua := useragent.New(header)
	name, version := ua.Browser()
	parts := name
	if version != "" {
		if i := strings.Index(version, "."); i > 0 {
			version = version[:i]
		}
		parts += " " + version
	}
	if ua.OS() != "" {
		parts += " on " + ua.OS()
	}
	if ua.Mobile() {
		parts += " (mobile)"
	}
	return parts
}

// CreateParams is one account to provision, password still plaintext.
type CreateParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Role      string
}

// Create provisions one account. A blank password gets a generated one so
// spreadsheet imports with empty cells still yield usable accounts.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.User, error) {
	role, err := models.ParseRole(p.Role)
	if err != nil {
		return nil, err
	}
	password := p.Password
	if password == "" {
		if password, err = secrets.Generate(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "password generation failed")
		}
	}
	hash, err := secrets.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           id.UserID(uuid.New()),
		Username:     strings.TrimSpace(p.Username),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		Email:        strings.TrimSpace(p.Email),
		Mobile:       strings.TrimSpace(p.Mobile),
		Role:         role,
		Active:       true,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "username %q is taken", user.Username)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	return user, nil
}

// ImportOutcome summarizes a bulk import: created accounts plus per-row
// failures keyed by spreadsheet row number.
type ImportOutcome struct {
	Created int
	Errors  map[int]string
}

// ImportRow is one parsed spreadsheet row; Row is 1-based as shown in the
// sheet, for error reporting.
type ImportRow struct {
	Row    int
	Params CreateParams
}

// Import provisions accounts in bulk. Bad rows are reported, not fatal;
// one malformed line must not sink a 200-row sheet.
func (s *Service) Import(ctx context.Context, rows []ImportRow) (*ImportOutcome, error) {
	if len(rows) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "no user rows to import")
	}
	outcome := &ImportOutcome{Errors: make(map[int]string)}
	for _, row := range rows {
		if _, err := s.Create(ctx, row.Params); err != nil {
			var de *dErrors.Error
			if errors.As(err, &de) {
				outcome.Errors[row.Row] = de.Message
			} else {
				outcome.Errors[row.Row] = "could not create user"
			}
			continue
		}
		outcome.Created++
	}

	s.emit(ctx, audit.Event{
		Category:  audit.CategoryOperations,
		Action:    audit.ActionUsersImported,
		ActorID:   requestcontext.UserID(ctx),
		Detail:    fmt.Sprintf("%d created, %d failed", outcome.Created, len(outcome.Errors)),
		RequestID: requestcontext.RequestID(ctx),
	})
	return outcome, nil
}

func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user lookup failed")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

func (s *Service) emit(ctx context.Context, e audit.Event) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, e)
}
