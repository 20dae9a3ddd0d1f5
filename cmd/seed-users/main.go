package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/app"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
)

const defaultTimeout = 30 * time.Second

// seedUser: пользователь с начальной статистикой.
type seedUser struct {
	ID          string
	TotalOrders int64
	TotalSpent  decimal.Decimal
}

func main() {
	usersFlag := flag.String("users", "", "comma separated users: id[:total_orders[:total_spent]]")
	flag.Parse()

	users, err := parseUsers(*usersFlag)
	if err != nil {
		fail(err)
	}

	// Хранилище задаётся окружением и файлами; флаги командной строки принадлежат seed-users.
	cfg, err := app.LoadConfig([]string{})
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	repo, closeFn, err := app.OpenUserRepository(ctx, cfg, log.WithField("component", "seed-users"))
	if err != nil {
		fail(err)
	}
	defer func() { _ = closeFn() }()

	if err := seed(ctx, repo, users, os.Stdout); err != nil {
		fail(err)
	}
}

func fail(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func parseUsers(raw string) ([]seedUser, error) {
	var users []seedUser
	for _, spec := range strings.Split(raw, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		parts := strings.Split(spec, ":")
		if len(parts) > 3 {
			return nil, fmt.Errorf("user %q: expected id[:total_orders[:total_spent]]", spec)
		}

		user := seedUser{ID: strings.TrimSpace(parts[0]), TotalSpent: decimal.Zero}
		if user.ID == "" {
			return nil, fmt.Errorf("user %q: id is required", spec)
		}
		if len(parts) > 1 {
			orders, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
			if err != nil || orders < 0 {
				return nil, fmt.Errorf("user %q: total_orders must be a non-negative integer", spec)
			}
			user.TotalOrders = orders
		}
		if len(parts) > 2 {
			spent, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
			if err != nil || spent.IsNegative() {
				return nil, fmt.Errorf("user %q: total_spent must be a non-negative decimal", spec)
			}
			user.TotalSpent = spent.Round(domain.MoneyPlaces)
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil, errors.New("no users to seed: pass -users")
	}
	return users, nil
}

// seed создаёт пользователей; уже существующие пропускаются.
func seed(ctx context.Context, repo domain.UserRepository, users []seedUser, out io.Writer) error {
	for _, u := range users {
		_, err := repo.Create(ctx, domain.User{ID: u.ID, TotalOrders: u.TotalOrders, TotalSpent: u.TotalSpent})
		switch {
		case errors.Is(err, domain.ErrUserExists):
			_, _ = fmt.Fprintf(out, "skipped %s: already exists\n", u.ID)
		case err != nil:
			return fmt.Errorf("create user %s: %w", u.ID, err)
		default:
			_, _ = fmt.Fprintf(out, "created %s: total_orders=%d total_spent=%s\n", u.ID, u.TotalOrders, u.TotalSpent.StringFixed(domain.MoneyPlaces))
		}
	}
	return nil
}
