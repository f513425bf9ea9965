// Package identity is the process-local identity backend: password accounts,
// a signed session token and session-change notifications.
package identity

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
	"github.com/perfilapp/perfil/internal/infrastructure/queue"
)

const (
	defaultRecentLoginWindow = 5 * time.Minute
	defaultCheckInterval     = 30 * time.Second
)

// Config holds the provider's session settings.
type Config struct {
	Secret            string
	SessionTTL        time.Duration
	RecentLoginWindow time.Duration
	CheckInterval     time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock overrides the provider's time source.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// Provider implements ports.IdentityService for a single device session.
type Provider struct {
	accounts ports.AccountRepository
	limiter  ports.AttemptLimiter
	notifier *queue.Notifier
	validate *validator.Validate
	cfg      Config
	now      func() time.Time
	tokens   *TokenIssuer
	log      zerolog.Logger

	mu        sync.RWMutex
	current   *domain.Identity
	token     string
	expiresAt time.Time
	authTime  time.Time
}

var _ ports.IdentityService = (*Provider)(nil)

func NewProvider(accounts ports.AccountRepository, limiter ports.AttemptLimiter, cfg Config, log zerolog.Logger, opts ...Option) *Provider {
	if cfg.RecentLoginWindow <= 0 {
		cfg.RecentLoginWindow = defaultRecentLoginWindow
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultCheckInterval
	}

	p := &Provider{
		accounts: accounts,
		limiter:  limiter,
		notifier: queue.NewNotifier(log),
		validate: validator.New(),
		cfg:      cfg,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tokens = NewTokenIssuer(cfg.Secret, cfg.SessionTTL, p.now)
	return p
}

// OnSessionChange implements ports.SessionSource.
func (p *Provider) OnSessionChange(listener ports.SessionListener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notifier.Subscribe(p.current, listener)
}

// CurrentIdentity returns a copy of the signed-in identity, or nil.
func (p *Provider) CurrentIdentity() *domain.Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil
	}
	c := *p.current
	return &c
}

// Token returns the current session token and its expiry. The token is
// empty when signed out.
func (p *Provider) Token() (string, time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, p.expiresAt
}

// Tokens exposes the issuer so callers can verify session tokens.
func (p *Provider) Tokens() *TokenIssuer {
	return p.tokens
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	if err := p.validate.Var(email, "required,email"); err != nil {
		return nil, errInvalidEmail
	}

	allowed, err := p.limiter.Allow(ctx, email)
	if err != nil {
		return nil, classify(err)
	}
	if !allowed {
		return nil, errTooManyRequests
	}

	account, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, classify(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		if err := p.limiter.RecordFailure(ctx, email); err != nil {
			p.log.Warn().Err(err).Msg("record failed sign-in")
		}
		return nil, errWrongPassword
	}

	if err := p.limiter.Reset(ctx, email); err != nil {
		p.log.Warn().Err(err).Msg("reset sign-in attempts")
	}

	return p.startSession(account.Identity())
}

func (p *Provider) SignUpWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	if err := p.validate.Var(email, "required,email"); err != nil {
		return nil, errInvalidEmail
	}
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return nil, errWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, classify(err)
	}

	now := p.now().UTC()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		return nil, classify(err)
	}

	p.log.Info().Str("identity_id", account.ID).Msg("account created")
	return p.startSession(account.Identity())
}

// SignOut ends the session. Signing out without a session is a no-op.
func (p *Provider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil
	}
	p.clearLocked()
	return nil
}

func (p *Provider) UpdateDisplayName(ctx context.Context, identity domain.Identity, name string) error {
	if err := p.requireCurrent(identity); err != nil {
		return err
	}
	if err := p.accounts.UpdateDisplayName(ctx, identity.ID, name); err != nil {
		return classify(err)
	}

	p.mutateCurrent(identity.ID, func(c *domain.Identity) { c.DisplayName = name })
	return nil
}

func (p *Provider) UpdateEmail(ctx context.Context, identity domain.Identity, email string) error {
	if err := p.requireRecent(identity); err != nil {
		return err
	}
	email = domain.NormalizeEmail(email)
	if err := p.validate.Var(email, "required,email"); err != nil {
		return errInvalidEmail
	}
	if err := p.accounts.UpdateEmail(ctx, identity.ID, email); err != nil {
		return classify(err)
	}

	p.mutateCurrent(identity.ID, func(c *domain.Identity) { c.Email = email })
	return nil
}

func (p *Provider) UpdatePassword(ctx context.Context, identity domain.Identity, password string) error {
	if err := p.requireRecent(identity); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return errWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return classify(err)
	}
	if err := p.accounts.UpdatePasswordHash(ctx, identity.ID, string(hash)); err != nil {
		return classify(err)
	}
	return nil
}

// Reauthenticate confirms the password of the signed-in identity and
// refreshes its recent-login time.
func (p *Provider) Reauthenticate(ctx context.Context, identity domain.Identity, email, currentPassword string) error {
	if err := p.requireCurrent(identity); err != nil {
		return err
	}

	account, err := p.accounts.FindByID(ctx, identity.ID)
	if err != nil {
		return classify(err)
	}
	if !strings.EqualFold(account.Email, domain.NormalizeEmail(email)) {
		return errInvalidCredential
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)) != nil {
		return errWrongPassword
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.ID != identity.ID {
		return errNoCurrentUser
	}
	p.authTime = p.now()
	return p.issueLocked()
}

// Run ends the session once its token expires. It blocks until ctx is done
// and closes the notifier on return.
func (p *Provider) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.CheckInterval)
	defer ticker.Stop()
	defer p.notifier.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.checkExpiry()
		}
	}
}

func (p *Provider) checkExpiry() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return
	}
	if _, err := p.tokens.Parse(p.token); err != nil {
		p.log.Info().
			Str("identity_id", p.current.ID).
			Bool("expired", IsExpired(err)).
			Msg("session token no longer valid")
		p.clearLocked()
	}
}

func (p *Provider) startSession(identity *domain.Identity) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = identity
	p.authTime = p.now()
	if err := p.issueLocked(); err != nil {
		p.current = nil
		return nil, classify(err)
	}

	p.notifier.Publish(p.current)
	out := *identity
	return &out, nil
}

func (p *Provider) issueLocked() error {
	token, expiresAt, err := p.tokens.Issue(*p.current, p.authTime)
	if err != nil {
		return err
	}
	p.token = token
	p.expiresAt = expiresAt
	return nil
}

func (p *Provider) clearLocked() {
	p.current = nil
	p.token = ""
	p.expiresAt = time.Time{}
	p.authTime = time.Time{}
	p.notifier.Publish(nil)
}

func (p *Provider) requireCurrent(identity domain.Identity) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil || p.current.ID != identity.ID {
		return errNoCurrentUser
	}
	return nil
}

func (p *Provider) requireRecent(identity domain.Identity) error {
	if err := p.requireCurrent(identity); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.now().Sub(p.authTime) > p.cfg.RecentLoginWindow {
		return errRequiresRecentLogin
	}
	return nil
}

// mutateCurrent applies fn to the live identity without notifying: profile
// field changes are not session changes.
func (p *Provider) mutateCurrent(id string, fn func(*domain.Identity)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.ID != id {
		return
	}
	c := *p.current
	fn(&c)
	p.current = &c
	if err := p.issueLocked(); err != nil {
		p.log.Error().Err(err).Msg("reissue session token")
	}
}
