package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// Error kinds returned by Access. Match them with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrStoreFailure = errors.New("store failure")
)

// CallerKind identifies which front-end is calling the access layer.
type CallerKind int

const (
	CallerBot CallerKind = iota + 1
	CallerAPI
)

func (k CallerKind) String() string {
	switch k {
	case CallerBot:
		return "bot"
	case CallerAPI:
		return "api"
	default:
		return "unknown"
	}
}

// CallerContext describes who is invoking the access layer. Build one with
// BotCaller or APICaller.
type CallerContext struct {
	Kind CallerKind
	// UserID is the chat user issuing a bot command.
	UserID uint64
	// Credential is what an API request presented in its Authorization header.
	Credential string
}

func BotCaller(userID uint64) CallerContext {
	return CallerContext{Kind: CallerBot, UserID: userID}
}

func APICaller(credential string) CallerContext {
	return CallerContext{Kind: CallerAPI, Credential: credential}
}

// Operation names an access layer operation for authorization and metrics.
type Operation int

const (
	OpGetReason Operation = iota + 1
	OpSetReason
)

func (o Operation) String() string {
	switch o {
	case OpGetReason:
		return "get_reason"
	case OpSetReason:
		return "set_reason"
	default:
		return "unknown"
	}
}

// AccessConfig holds the process-lifetime authorization settings.
type AccessConfig struct {
	Whitelist  []uint64
	Credential string
	// AcceptTokens additionally allows API callers to present a signed token
	// minted with MintToken instead of the raw credential.
	AcceptTokens bool
}

// Access is the single entry point both front-ends use to read and write
// reasons. It is safe for concurrent use: its whitelist and credential are
// never modified after NewAccess returns.
type Access struct {
	store        Store
	whitelist    map[uint64]struct{}
	credential   []byte
	acceptTokens bool
	metrics      *Metrics
	logger       *slog.Logger
}

// NewAccess creates an Access over store. metrics may be nil.
func NewAccess(store Store, cfg AccessConfig, metrics *Metrics, logger *slog.Logger) *Access {
	whitelist := make(map[uint64]struct{}, len(cfg.Whitelist))
	for _, id := range cfg.Whitelist {
		whitelist[id] = struct{}{}
	}
	return &Access{
		store:        store,
		whitelist:    whitelist,
		credential:   []byte(cfg.Credential),
		acceptTokens: cfg.AcceptTokens,
		metrics:      metrics,
		logger:       logger,
	}
}

// Authorize reports whether caller may perform op. Bot callers may always
// look up reasons but must be whitelisted to set them; API callers must
// present the credential for every operation.
func (a *Access) Authorize(caller CallerContext, op Operation) error {
	switch caller.Kind {
	case CallerBot:
		if op == OpGetReason {
			return nil
		}
		if _, ok := a.whitelist[caller.UserID]; !ok {
			return fmt.Errorf("%w: user %d is not whitelisted", ErrForbidden, caller.UserID)
		}
		return nil
	case CallerAPI:
		if !a.validCredential(caller.Credential) {
			return fmt.Errorf("%w: invalid credential", ErrForbidden)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown caller", ErrForbidden)
	}
}

func (a *Access) validCredential(presented string) bool {
	if len(a.credential) == 0 {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(presented), a.credential) == 1 {
		return true
	}
	return a.acceptTokens && verifyToken(presented, a.credential) == nil
}

// SetReason stores reason for every id in userIDs, in order, and returns the
// ids it updated. Writes are not atomic across ids: on a store failure it
// stops, returns the ids written so far and an error wrapping
// ErrStoreFailure. Callers must treat a non-empty result with an error as a
// partial success.
func (a *Access) SetReason(ctx context.Context, caller CallerContext, userIDs []uint64, reason string) ([]uint64, error) {
	if err := a.Authorize(caller, OpSetReason); err != nil {
		a.metrics.observe(OpSetReason, caller, outcomeForbidden)
		return nil, err
	}

	switch {
	case len(userIDs) == 0:
		a.metrics.observe(OpSetReason, caller, outcomeInvalidInput)
		return nil, fmt.Errorf("%w: at least one user id is required", ErrInvalidInput)
	case reason == "":
		a.metrics.observe(OpSetReason, caller, outcomeInvalidInput)
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	case !utf8.ValidString(reason):
		a.metrics.observe(OpSetReason, caller, outcomeInvalidInput)
		return nil, fmt.Errorf("%w: reason is not valid UTF-8", ErrInvalidInput)
	}

	updated := make([]uint64, 0, len(userIDs))
	for _, id := range userIDs {
		if err := a.store.Put(ctx, id, reason); err != nil {
			a.logger.Error("store.Put failed",
				"error", err,
				"userId", id,
				"caller", caller.Kind.String(),
				"updated", len(updated),
				"requested", len(userIDs),
			)
			outcome := outcomeStoreFailure
			if len(updated) > 0 {
				outcome = outcomePartial
			}
			a.metrics.observe(OpSetReason, caller, outcome)
			return updated, fmt.Errorf("%w: user %d: %w", ErrStoreFailure, id, err)
		}
		updated = append(updated, id)
	}

	a.metrics.observe(OpSetReason, caller, outcomeOK)
	return updated, nil
}

// GetReason returns the reason stored for userID. A user with no reason is
// reported with found == false and a nil error.
func (a *Access) GetReason(ctx context.Context, caller CallerContext, userID uint64) (ReasonRecord, bool, error) {
	if err := a.Authorize(caller, OpGetReason); err != nil {
		a.metrics.observe(OpGetReason, caller, outcomeForbidden)
		return ReasonRecord{}, false, err
	}

	rec, found, err := a.store.Get(ctx, userID)
	if err != nil {
		a.logger.Error("store.Get failed", "error", err, "userId", userID, "caller", caller.Kind.String())
		a.metrics.observe(OpGetReason, caller, outcomeStoreFailure)
		return ReasonRecord{}, false, fmt.Errorf("%w: user %d: %w", ErrStoreFailure, userID, err)
	}

	if !found {
		a.metrics.observe(OpGetReason, caller, outcomeNotFound)
		return ReasonRecord{}, false, nil
	}

	a.metrics.observe(OpGetReason, caller, outcomeOK)
	return rec, true, nil
}
