package supervisor

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Strategy is kept as a string so it can come straight out of a config file.
type Strategy string

const (
	// if a child process terminates, only that process is restarted
	OneForOne Strategy = "one_for_one"
)

const (
	defaultMaxRestarts  = 3
	defaultMaxSeconds   = 5
	defaultRetryBackoff = 10 * time.Millisecond
)

// Flags configure a dynamic supervisor. Start from DefaultFlags: the zero value has no strategy
// and allows no restarts.
type Flags struct {
	Strategy Strategy `mapstructure:"strategy"`
	// more than MaxRestarts restarts within MaxSeconds make the supervisor give up
	MaxRestarts int `mapstructure:"max_restarts" validate:"gte=0"`
	MaxSeconds  int `mapstructure:"max_seconds" validate:"gte=0"`
	// Name registers the supervisor in the process registry
	Name string `mapstructure:"name"`
	// MaxChildren caps the number of children, 0 means no cap
	MaxChildren int `mapstructure:"max_children" validate:"gte=0"`
	// ExtraArgs are prepended to the args of every child
	ExtraArgs []interface{} `mapstructure:"extra_args"`
	// RetryBackoff is the first delay before retrying a restart that failed
	RetryBackoff time.Duration `mapstructure:"retry_backoff" validate:"gte=0"`
}

func DefaultFlags() Flags {
	return Flags{
		Strategy:     OneForOne,
		MaxRestarts:  defaultMaxRestarts,
		MaxSeconds:   defaultMaxSeconds,
		RetryBackoff: defaultRetryBackoff,
	}
}

func (f Flags) SetMaxRestarts(n int) Flags {
	f.MaxRestarts = n
	return f
}

func (f Flags) SetMaxSeconds(n int) Flags {
	f.MaxSeconds = n
	return f
}

func (f Flags) SetName(name string) Flags {
	f.Name = name
	return f
}

func (f Flags) SetMaxChildren(n int) Flags {
	f.MaxChildren = n
	return f
}

func (f Flags) SetExtraArgs(args ...interface{}) Flags {
	f.ExtraArgs = args
	return f
}

func (f Flags) SetRetryBackoff(d time.Duration) Flags {
	f.RetryBackoff = d
	return f
}

// decodeFlags accepts Flags, *Flags, or a keyed map such as a config subtree. Keys missing
// from a map keep their default, except the strategy which must be given.
func decodeFlags(raw interface{}) (Flags, error) {
	switch v := raw.(type) {
	case Flags:
		return v, nil
	case *Flags:
		if v != nil {
			return *v, nil
		}
	case map[string]interface{}:
		flags := DefaultFlags()
		flags.Strategy = ""
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &flags,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		})
		if err != nil {
			return Flags{}, err
		}
		if err := dec.Decode(v); err != nil {
			return Flags{}, badOptions(fmt.Sprintf("invalid options: %v", err), raw)
		}
		return flags, nil
	}
	return Flags{}, badOptions("options must be a keyed list", raw)
}

func checkFlags(flags Flags) error {
	switch flags.Strategy {
	case OneForOne:
	case "":
		return badOptions("a strategy must be given", flags)
	default:
		return badOptions("unknown supervision strategy", flags.Strategy)
	}
	if err := validateStruct(flags); err != nil {
		return badOptions(err.Error(), flags)
	}
	return nil
}
