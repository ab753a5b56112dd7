package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type (
	Bot struct {
		Token   string `envconfig:"BOT_TOKEN" required:"true" validate:"required"`
		AdminID int64  `envconfig:"ADMIN_ID" validate:"gte=0"`
		Dev     bool   `envconfig:"DEV" default:"false"`

		LevelsDBPath string `envconfig:"LEVELS_DB_PATH" default:"levels.db" validate:"required"`
		StateDBPath  string `envconfig:"STATE_DB_PATH" default:"bot_state.db" validate:"required,nefield=LevelsDBPath"`
		DBMaxRetry   int    `envconfig:"DB_MAX_RETRY" default:"3" validate:"min=1,max=10"`

		LevelCacheTTL time.Duration `envconfig:"LEVEL_CACHE_TTL" default:"1h" validate:"gt=0"`
		HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s" validate:"gt=0"`

		// PersistCallbackMisses makes a "next level" tap on a missing level
		// record the notice in chat state, like a typed command does.
		PersistCallbackMisses bool `envconfig:"PERSIST_CALLBACK_MISSES" default:"false"`
	}

	Import struct {
		LevelsDBPath string `envconfig:"LEVELS_DB_PATH" default:"levels.db" validate:"required"`
		Dev          bool   `envconfig:"DEV" default:"false"`
	}
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PollTimeout is the long polling timeout, kept below the HTTP client timeout.
func (b *Bot) PollTimeout() time.Duration {
	return b.HTTPTimeout / 2
}

func GetBot() (*Bot, error) {
	res := &Bot{}
	if err := envconfig.Process("", res); err != nil {
		return nil, fmt.Errorf("parse bot environment: %w", err)
	}
	if err := validateStruct(res); err != nil {
		return nil, err
	}
	return res, nil
}

func GetImport() (*Import, error) {
	res := &Import{}
	if err := envconfig.Process("", res); err != nil {
		return nil, fmt.Errorf("parse import environment: %w", err)
	}
	if err := validateStruct(res); err != nil {
		return nil, err
	}
	return res, nil
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	errs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(errs, ", "))
}
