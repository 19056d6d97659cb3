package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	ratingdomain "github.com/smallbiznis/mymart/internal/rating/domain"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RatingColorHolder keeps the current rating color policy and swaps it when
// rating_colors.yml changes on disk.
type RatingColorHolder struct {
	current atomic.Value // holds ratingdomain.ColorPolicy
}

func NewRatingColorHolder(log *zap.Logger) (*RatingColorHolder, error) {
	v := viper.New()
	v.AddConfigPath("/etc/mymart") // System config
	v.AddConfigPath(".")           // Current directory (dev mode)
	return newRatingColorHolder(v, log)
}

// NewStaticRatingColorHolder pins a policy without watching any file.
func NewStaticRatingColorHolder(policy ratingdomain.ColorPolicy) (*RatingColorHolder, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	holder := &RatingColorHolder{}
	holder.current.Store(policy)
	return holder, nil
}

func newRatingColorHolder(v *viper.Viper, log *zap.Logger) (*RatingColorHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.rating_colors")

	v.SetConfigName("rating_colors")
	v.SetConfigType("yml")
	v.SetEnvPrefix("MYMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	policy := ratingdomain.DefaultColorPolicy()
	if fileFound {
		var err error
		if policy, err = decodeColorPolicy(v); err != nil {
			return nil, err
		}
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	holder := &RatingColorHolder{}
	holder.current.Store(policy)

	if !fileFound {
		log.Info("rating color policy file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := holder.reload(v); err != nil {
			log.Warn("rating color policy reload ignored", zap.Error(err))
			return
		}
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *RatingColorHolder) Get() ratingdomain.ColorPolicy {
	return h.current.Load().(ratingdomain.ColorPolicy)
}

// reload decodes the file again and swaps the policy only when it validates.
func (h *RatingColorHolder) reload(v *viper.Viper) error {
	updated, err := decodeColorPolicy(v)
	if err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	h.current.Store(updated)
	return nil
}

// decodeColorPolicy reads the rating_colors key over the defaults, so a file
// that sets only one table keeps the default for the other.
func decodeColorPolicy(v *viper.Viper) (ratingdomain.ColorPolicy, error) {
	policy := ratingdomain.DefaultColorPolicy()
	if err := v.UnmarshalKey("rating_colors", &policy); err != nil {
		return ratingdomain.ColorPolicy{}, err
	}
	return policy, nil
}
