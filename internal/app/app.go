// Package app wires configuration into a ready refresher for the cmd tools.
package app

import (
	"context"

	"go.uber.org/zap"

	"employee-directory/internal/config"
	"employee-directory/internal/contacts"
	"employee-directory/internal/httpx"
	"employee-directory/internal/providers"
	"employee-directory/internal/providers/office"
	"employee-directory/internal/refresh"
)

// Providers builds one office client per configured location, in fetch order.
func Providers(cfg config.DirectoryConfig, log *zap.Logger) []providers.EmployeeProvider {
	locs := cfg.Locations()
	out := make([]providers.EmployeeProvider, 0, len(locs))
	for _, loc := range locs {
		c := office.New(loc.Name, loc.URL, cfg.FetchTimeout, log)
		c.Retry = httpx.WithAttempts(cfg.MaxAttempts)
		out = append(out, c)
	}
	return out
}

// Matcher loads the address book when one is configured. With Watch set the
// file is followed until ctx is done.
func Matcher(ctx context.Context, cfg config.ContactsConfig, log *zap.Logger) (contacts.Matcher, error) {
	if cfg.CSVPath == "" {
		log.Info("contacts disabled, no CONTACTS_CSV")
		return contacts.None{}, nil
	}
	live, err := contacts.OpenLive(cfg.CSVPath, log)
	if err != nil {
		return nil, err
	}
	log.Info("contacts loaded", zap.String("path", cfg.CSVPath), zap.Int("entries", live.Store().Len()))
	if cfg.Watch {
		if err := live.Watch(ctx); err != nil {
			return nil, err
		}
	}
	return live, nil
}

func NewRefresher(ctx context.Context, cfg *config.Config, log *zap.Logger) (*refresh.Refresher, error) {
	m, err := Matcher(ctx, cfg.Contacts, log)
	if err != nil {
		return nil, err
	}
	return refresh.New(
		Providers(cfg.Directory, log),
		refresh.WithMatcher(m),
		refresh.WithParallel(cfg.Directory.Parallel),
		refresh.WithLogger(log),
	), nil
}
