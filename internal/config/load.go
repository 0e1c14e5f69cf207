package config

import "github.com/spf13/viper"

// Load merges ResolveOptions defaults with whatever v has accumulated from a
// config file, environment variables, and CLI flags (cmd/enginectl sets all
// three up, mirroring philjestin-philtographer's cmd/root.go), then
// unmarshals the result.
func Load(v *viper.Viper) (ResolveOptions, error) {
	opts := Default()
	if err := v.Unmarshal(&opts); err != nil {
		return ResolveOptions{}, err
	}
	return opts, nil
}
