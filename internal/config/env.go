package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vango-dev/taskboard/internal/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TASKBOARD_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from TASKBOARD_* variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	strs := map[string]*string{
		"ADDRESS":         &c.Server.Address,
		"API_URL":         &c.API.BaseURL,
		"METRICS_PATH":    &c.Metrics.Path,
		"LOG_LEVEL":       &c.Log.Level,
		"LOG_FORMAT":      &c.Log.Format,
		"EXPORT_BUCKET":   &c.Export.Bucket,
		"EXPORT_PREFIX":   &c.Export.Prefix,
		"EXPORT_REGION":   &c.Export.Region,
		"EXPORT_ENDPOINT": &c.Export.Endpoint,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	var err error
	set := func(key string, parse func(string) error) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || err != nil {
			return
		}
		if perr := parse(v); perr != nil {
			err = errors.New("TB103").
				WithDetail(fmt.Sprintf("%s%s=%q: %v", EnvPrefix, key, v, perr))
		}
	}

	set("DEV", boolInto(&c.Server.Dev))
	set("METRICS", boolInto(&c.Metrics.Enabled))
	set("MAX_SESSIONS", intInto(&c.Server.MaxSessions))
	set("EVENT_QUEUE", intInto(&c.Session.MaxEventQueue))
	set("EVENT_BURST", intInto(&c.Session.EventBurst))
	set("EVENTS_PER_SECOND", func(s string) error {
		f, perr := strconv.ParseFloat(s, 64)
		if perr == nil {
			c.Session.EventsPerSecond = f
		}
		return perr
	})
	set("API_TIMEOUT", durationInto(&c.API.Timeout))
	set("TOAST_DURATION", durationInto(&c.Toast.Duration))
	return err
}

func boolInto(dst *bool) func(string) error {
	return func(s string) error {
		b, err := strconv.ParseBool(s)
		if err == nil {
			*dst = b
		}
		return err
	}
}

func intInto(dst *int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err == nil {
			*dst = n
		}
		return err
	}
}

func durationInto(dst *Duration) func(string) error {
	return func(s string) error {
		d, err := time.ParseDuration(s)
		if err == nil {
			*dst = Duration(d)
		}
		return err
	}
}
