package cli

import (
	"time"

	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/spf13/pflag"
)

// clockValue is a pflag.Value that accepts the same duration forms as the
// config file: 90, 90s, 1m30s, 01:30 or 1:02:03.
type clockValue struct {
	d *time.Duration
}

var _ pflag.Value = (*clockValue)(nil)

func newClockValue(def time.Duration, p *time.Duration) *clockValue {
	*p = def
	return &clockValue{d: p}
}

func (v *clockValue) Set(s string) error {
	d, err := config.ParseDuration(s)
	if err != nil {
		return err
	}
	*v.d = d
	return nil
}

func (v *clockValue) String() string {
	if v.d == nil || *v.d <= 0 {
		return ""
	}
	return domain.FormatClock(*v.d, false)
}

func (v *clockValue) Type() string { return "duration" }
