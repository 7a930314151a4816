package authz

import (
	"bufio"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrdesk/pkg/authn"
)

// Service provides helpers for enforcing authorization decisions.
type Service struct {
	cfg          Config
	enforcer     *casbin.Enforcer
	logger       *logrus.Entry
	flagProvider FlagProvider
	mu           sync.RWMutex
}

// NewService constructs a Service with the provided config.
func NewService(cfg Config) (*Service, error) {
	cfg = cfg.normalized()

	var logger *logrus.Entry
	if cfg.Logger != nil {
		logger = cfg.Logger.WithField("component", "authz")
	} else {
		logger = logrus.WithField("component", "authz")
	}

	m, err := loadModel(cfg.ModelPath)
	if err != nil {
		return nil, err
	}

	var enf *casbin.Enforcer
	if cfg.PolicyPath != "" {
		enf, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enf, err = casbin.NewEnforcer(m)
	}
	if err != nil {
		return nil, errors.Wrap(err, "authz: failed to initialize enforcer")
	}
	if cfg.PolicyPath == "" {
		rules, err := parsePolicy(defaultPolicy)
		if err != nil {
			return nil, err
		}
		if _, err := enf.AddPolicies(rules); err != nil {
			return nil, errors.Wrap(err, "authz: failed to load policies")
		}
	}

	return &Service{
		cfg:          cfg,
		enforcer:     enf,
		logger:       logger,
		flagProvider: cfg.FlagProvider,
	}, nil
}

func loadModel(path string) (model.Model, error) {
	if path == "" {
		m, err := model.NewModelFromString(defaultModel)
		if err != nil {
			return nil, errors.Wrap(err, "authz: embedded model")
		}
		return m, nil
	}
	m, err := model.NewModelFromFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "authz: model %s", path)
	}
	return m, nil
}

// parsePolicy reads casbin CSV policy lines. Only "p" rules are accepted.
func parsePolicy(text string) ([][]string, error) {
	var rules [][]string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] != "p" || len(parts) != 5 {
			return nil, configError("policy line %d: expected \"p, sub, dom, obj, act\"", n)
		}
		rules = append(rules, parts[1:])
	}
	return rules, scanner.Err()
}

// Mode reports the current enforcement mode.
func (s *Service) Mode() Mode {
	return sanitizeMode(s.flagProvider.Mode())
}

// Authorize returns an error if the request is denied.
func (s *Service) Authorize(ctx context.Context, req Request) error {
	return s.decide(ctx, req, func() (bool, error) {
		return s.Check(ctx, req)
	})
}

// AuthorizeState checks whether any role held by state may perform action on object
// within the state's tenant.
func (s *Service) AuthorizeState(ctx context.Context, state authn.AuthState, object, action string) error {
	req := NewRequest(SubjectForUser(state.TenantID, state.UserID), DomainFromTenant(state.TenantID), object, action)
	return s.decide(ctx, req, func() (bool, error) {
		for _, role := range state.Roles {
			ok, err := s.Check(ctx, NewRequest(SubjectForRole(role), req.Domain, req.Object, req.Action))
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	})
}

func (s *Service) decide(ctx context.Context, req Request, check func() (bool, error)) error {
	mode := s.Mode()
	if mode == ModeDisabled {
		return nil
	}
	start := time.Now()
	allowed, err := check()
	if err != nil {
		return err
	}
	recordMetrics(mode, allowed, time.Since(start))
	if allowed {
		return nil
	}
	fields := logrus.Fields{
		"subject": req.Subject,
		"domain":  req.Domain,
		"object":  req.Object,
		"action":  req.Action,
		"mode":    mode,
	}
	if mode == ModeShadow {
		s.logger.WithContext(ctx).WithFields(fields).Warn("authz shadow deny")
		return nil
	}
	s.logger.WithContext(ctx).WithFields(fields).Warn("authz denied request")
	return forbiddenError(req)
}

// Check evaluates a request without returning an authorization error.
func (s *Service) Check(ctx context.Context, req Request) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := s.enforcer.Enforce(req.Subject, req.Domain, req.Object, req.Action)
	if err != nil {
		return false, errors.Wrap(err, "authz: enforce failed")
	}
	return res, nil
}

// ReloadPolicy reloads policy data from disk. A no-op for embedded policies.
func (s *Service) ReloadPolicy(ctx context.Context) error {
	if s.cfg.PolicyPath == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enforcer.LoadPolicy(); err != nil {
		return errors.Wrap(err, "authz: reload policy failed")
	}
	s.logger.WithContext(ctx).Info("authz policy reloaded")
	return nil
}

var (
	defaultServiceOnce sync.Once
	defaultService     *Service
	defaultServiceErr  error
)

// Use returns a singleton Service configured via environment variables.
func Use() *Service {
	defaultServiceOnce.Do(func() {
		defaultService, defaultServiceErr = NewService(DefaultConfig())
	})
	if defaultServiceErr != nil {
		panic(defaultServiceErr)
	}
	return defaultService
}
