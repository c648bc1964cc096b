package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	config "github.com/maheshrc27/editorial-api/configs"
	"github.com/maheshrc27/editorial-api/internal/app"
	"github.com/maheshrc27/editorial-api/internal/models"
)

type opener func(ctx context.Context, cfg config.Config) (*app.Container, app.Deps, func(), error)

type commandContext struct {
	storeFlag string
	open      opener

	configOnce sync.Once
	config     *config.Config
}

// newCommandContext uses open to reach the stores. Nil connects with app.Open.
func newCommandContext(open opener) *commandContext {
	if open == nil {
		open = openContainer
	}
	return &commandContext{open: open}
}

func openContainer(ctx context.Context, cfg config.Config) (*app.Container, app.Deps, func(), error) {
	deps, closeDeps, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, deps, closeDeps, err
	}
	c, err := app.Wire(cfg, deps)
	if err != nil {
		closeDeps()
		return nil, deps, func() {}, err
	}
	return c, deps, closeDeps, nil
}

func (c *commandContext) ensureConfig() config.Config {
	c.configOnce.Do(func() {
		c.config = config.LoadConfig()
		if store := strings.TrimSpace(c.storeFlag); store != "" {
			c.config.StoreDriver = strings.ToLower(store)
		}
	})
	return *c.config
}

func (c *commandContext) withContainer(ctx context.Context, fn func(*app.Container, app.Deps) error) error {
	container, deps, closeDeps, err := c.open(ctx, c.ensureConfig())
	if err != nil {
		return err
	}
	defer closeDeps()
	return fn(container, deps)
}

func parseID(value, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, value)
	}
	return id, nil
}

func loadActor(ctx context.Context, c *app.Container, id int64) (*models.User, error) {
	user, ok, err := c.Repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %d", models.ErrNotFound, id)
	}
	return user, nil
}
