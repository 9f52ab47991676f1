package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RegisterFlags declares one flag per scalar schema key so operators can
// override any field from the command line ("--web.port=9901"). Slice-valued
// keys (watch lists) stay file-only.
func RegisterFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()
	for _, key := range Keys() {
		if flags.Lookup(key) != nil {
			continue
		}
		value, err := defaults.Get(key)
		if err != nil {
			continue
		}
		switch v := value.(type) {
		case int:
			flags.Int(key, v, "override "+key)
		case string:
			flags.String(key, v, "override "+key)
		}
	}
}

// WithFlags binds a parsed flag set. Flags set by the operator take
// precedence over every other source.
func (l *ViperLoader) WithFlags(flags *pflag.FlagSet) *ViperLoader {
	if l == nil {
		return l
	}
	l.flags = flags
	return l
}

// bindFlags binds registered schema flags into viper. Unchanged flags do not
// shadow other sources.
func (l *ViperLoader) bindFlags(v *viper.Viper) {
	if l.flags == nil {
		return
	}
	for _, key := range Keys() {
		if flag := l.flags.Lookup(key); flag != nil {
			_ = v.BindPFlag(key, flag)
		}
	}
}
