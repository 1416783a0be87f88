package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/backend"
	"github.com/sindhu2707/expense-tracker/internal/client"
	"github.com/sindhu2707/expense-tracker/internal/core"
	apphttp "github.com/sindhu2707/expense-tracker/internal/http"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

// openStore opens the local repository selected by the backend settings.
func openStore(ctx context.Context) (*backend.Result, error) {
	cfg := backend.Config{
		Type:         backend.Type(viper.GetString("backend")),
		SQLiteDBPath: viper.GetString("db_path"),
		DatabaseURL:  viper.GetString("database_url"),
	}
	return backend.NewFactory(logger).Open(ctx, cfg)
}

func lookupUser(ctx context.Context, users storage.Users, email string) (core.User, error) {
	if email == "" {
		return core.User{}, errors.New("--user is required")
	}
	u, err := users.UserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, fmt.Errorf("no account for %s", email)
	}
	return u, err
}

// newAPIClient returns a client using the configured API URL and session file.
func newAPIClient() (*client.Client, error) {
	path := viper.GetString("session_file")
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, fmt.Errorf("failed to locate session file: %w", err)
		}
	}
	return client.New(viper.GetString("api_url"), client.NewSessionStore(path)), nil
}

// filterFlags are the view selectors shared by export, report and list.
var filterFlags = []struct {
	name, usage string
}{
	{"month", "month to include (YYYY-MM, or all)"},
	{"date", "single day to include (YYYY-MM-DD)"},
	{"mode", "period mode (month or date)"},
	{"category", "only this category"},
	{"payment", "only this payment method"},
	{"search", "text to look for in title, note and merchant"},
	{"sort", "sort order (date-desc, date-asc, amount-desc, amount-asc, name-asc, name-desc)"},
}

func addFilterFlags(cmd *cobra.Command) {
	for _, f := range filterFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
}

// filterQuery collects the filter flags the user actually set.
func filterQuery(cmd *cobra.Command) url.Values {
	query := url.Values{}
	for _, f := range filterFlags {
		if cmd.Flags().Changed(f.name) {
			v, _ := cmd.Flags().GetString(f.name)
			query.Set(f.name, v)
		}
	}
	return query
}

// filterFromFlags reads the filter flags the same way the API reads its
// query string.
func filterFromFlags(cmd *cobra.Command, today core.Date) (aggregate.Filter, error) {
	return apphttp.ParseFilter(filterQuery(cmd), today)
}

func today() core.Date {
	return aggregate.Today(time.Now(), time.Local)
}
