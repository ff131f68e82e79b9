// Package names implements username validation and the availability
// predictor built on rename-history records.
package names

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"skincraft-api/internal/laby"
)

// ErrInvalidUsername rejects identifiers outside the 3-16 char
// [A-Za-z0-9_] format before any upstream call is made.
var ErrInvalidUsername = errors.New("names: invalid username")

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

// ValidUsername reports whether name is a well-formed Minecraft username.
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

const (
	// A released name stays locked for 37 days after the rename that
	// superseded it.
	cooldownDays = 37

	// Upstream timestamps run two hours ahead of the instant names
	// actually unlock. Empirical constant, kept verbatim.
	upstreamSkew = -2 * time.Hour
)

// Searcher is the lookup capability the predictor needs: every account
// whose rename history contains the given name, or laby.ErrNotFound.
type Searcher interface {
	SearchProfiles(ctx context.Context, name string) ([]laby.SearchAccount, error)
}

// Result reports whether a name can be claimed right now and, if not yet,
// when it unlocks. AvailableFrom is always null while Available is true.
type Result struct {
	Name          string     `json:"name"`
	Available     bool       `json:"available"`
	AvailableFrom *time.Time `json:"available_from"`
}

type Predictor struct {
	search Searcher
	log    *slog.Logger
	now    func() time.Time
}

func NewPredictor(search Searcher, log *slog.Logger) *Predictor {
	return &Predictor{
		search: search,
		log:    log,
		now:    time.Now,
	}
}

// Predict determines current or future availability of a username from the
// rename histories of every account that ever held it.
func (p *Predictor) Predict(ctx context.Context, username string) (Result, error) {
	if !ValidUsername(username) {
		return Result{}, ErrInvalidUsername
	}

	accounts, err := p.search.SearchProfiles(ctx, username)
	if errors.Is(err, laby.ErrNotFound) {
		// never registered
		return Result{Name: username, Available: true}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("search accounts: %w", err)
	}
	if len(accounts) == 0 {
		return Result{Name: username, Available: true}, nil
	}

	// actively held by any account, regardless of case
	for _, account := range accounts {
		if strings.EqualFold(account.Name, username) {
			return Result{Name: username, Available: false}, nil
		}
	}

	// The name only appears in rename history. Only the first account is
	// consulted; upstream orders matches by relevance.
	history := accounts[0].History
	idx := -1
	for i, event := range history {
		if strings.EqualFold(event.Name, username) {
			idx = i
			break
		}
	}
	if idx == -1 {
		// matched account without a matching history entry; treat as free
		return Result{Name: username, Available: true}, nil
	}
	if idx == 0 {
		// most recent entry is the live name; the holder check above
		// should have caught this
		return Result{Name: username, Available: false}, nil
	}

	// History is most-recent-first, so the entry at idx-1 is the rename
	// that released the queried name and started the cooldown.
	changedAt := history[idx-1].ChangedAt
	availableFrom := changedAt.AddDate(0, 0, cooldownDays).Add(upstreamSkew)

	if p.now().After(availableFrom) {
		return Result{Name: username, Available: true}, nil
	}
	return Result{Name: username, Available: false, AvailableFrom: &availableFrom}, nil
}
